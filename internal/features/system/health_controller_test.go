package system

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct{ err error }

func (p probe) Ping(context.Context) error { return p.err }

func healthApp(checks map[string]Pinger) *fiber.App {
	app := fiber.New()
	app.Get("/health", NewHealthController(checks).Health)
	return app
}

func TestHealthReportsEachCheck(t *testing.T) {
	app := healthApp(map[string]Pinger{"mongo": probe{}, "redis": probe{}})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"mongo": "ok", "redis": "ok"}, body.Checks)
}

func TestHealthDegradesWhenADependencyFails(t *testing.T) {
	app := healthApp(map[string]Pinger{"mongo": probe{err: errors.New("connection refused")}, "redis": probe{}})

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
