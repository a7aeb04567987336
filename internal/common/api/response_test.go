package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paginate(t *testing.T, query string) (int64, int64) {
	t.Helper()
	app := fiber.New()
	app.Get("/items", func(c *fiber.Ctx) error {
		page, limit := Pagination(c, 20)
		return c.JSON(fiber.Map{"page": page, "limit": limit})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items"+query, nil))
	require.NoError(t, err)
	var body struct {
		Page  int64 `json:"page"`
		Limit int64 `json:"limit"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Page, body.Limit
}

func TestPaginationDefaultsAndBounds(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int64
	}{
		{"", 1, 20},
		{"?page=3&limit=50", 3, 50},
		{"?page=0&limit=0", 1, 20},
		{"?page=-4&limit=500", 1, 20},
		{"?page=abc", 1, 20},
		{"?page=9223372036854775807&limit=100", MaxPage, 100},
		{"?page=99999999999999999999", MaxPage, 20},
	}
	for _, tc := range cases {
		page, limit := paginate(t, tc.query)
		assert.Equalf(t, tc.page, page, "page for %q", tc.query)
		assert.Equalf(t, tc.limit, limit, "limit for %q", tc.query)
		assert.GreaterOrEqualf(t, (page-1)*limit, int64(0), "skip for %q", tc.query)
	}
}
