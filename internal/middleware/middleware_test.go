package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"eduvibe/internal/features/access"
	"eduvibe/internal/metrics"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
}

func bearer(t *testing.T, role access.Role) string {
	t.Helper()
	utils.SetSecret("middleware-test")
	token, _, err := utils.GenerateToken("user-1", "u@example.com", string(role))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, app *fiber.App, method, path, auth string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthMiddlewareRejectsMissingAndMalformedTokens(t *testing.T) {
	app := newTestApp()
	app.Get("/me", AuthMiddleware(false), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "GET", "/me", "").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "GET", "/me", "Token abc").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, do(t, app, "GET", "/me", "Bearer not-a-jwt").StatusCode)
	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/me", bearer(t, access.RoleStudent)).StatusCode)
}

func TestAuthMiddlewarePropagatesClaimsToUserContext(t *testing.T) {
	app := newTestApp()
	app.Get("/me", AuthMiddleware(false), func(c *fiber.Ctx) error {
		claims, ok := utils.ClaimsFromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.Role)
	})

	resp := do(t, app, "GET", "/me", bearer(t, access.RoleMentor))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "mentor", string(body))
}

func TestSkipAuthInjectsSuperAdmin(t *testing.T) {
	app := newTestApp()
	app.Get("/admin", AuthMiddleware(true), RequireAccess(access.ActionManage, access.ResourceUser),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	assert.Equal(t, fiber.StatusNoContent, do(t, app, "GET", "/admin", "").StatusCode)
}

func TestRequireAccess(t *testing.T) {
	app := newTestApp()
	app.Get("/recommendations", AuthMiddleware(false), RequireAccess(access.ActionRead, access.ResourceRecommendation),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/recommendations", bearer(t, access.RoleStudent)).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, do(t, app, "GET", "/recommendations", bearer(t, access.RoleMentor)).StatusCode)
	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/recommendations", bearer(t, access.RoleAdmin)).StatusCode)
}

func TestRequireAccessPanicsForUnguardableRules(t *testing.T) {
	assert.Panics(t, func() { RequireAccess(access.ActionExport, access.ResourceFile) })
	assert.Panics(t, func() { RequireAccess(access.ActionUpdateOwn, access.ResourceSession) })
}

func TestRequireRole(t *testing.T) {
	app := newTestApp()
	app.Get("/ops", AuthMiddleware(false), RequireRole(access.RoleSuperAdmin),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	assert.Equal(t, fiber.StatusForbidden, do(t, app, "GET", "/ops", bearer(t, access.RoleAdmin)).StatusCode)
	assert.Equal(t, fiber.StatusOK, do(t, app, "GET", "/ops", bearer(t, access.RoleSuperAdmin)).StatusCode)
}

func TestErrorHandlerMapsTypedErrors(t *testing.T) {
	app := newTestApp()
	app.Use(RequestLogger(zap.NewNop(), metrics.New()))
	app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.ErrNotFound })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db down") })

	resp := do(t, app, "GET", "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	assert.Equal(t, fiber.StatusInternalServerError, do(t, app, "GET", "/boom", "").StatusCode)
}
