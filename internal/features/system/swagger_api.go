package system

import (
	"eduvibe/internal/common/api"
	"eduvibe/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type SwaggerApi struct {
	config *config.Config
}

func NewSwaggerApi(cfg *config.Config) api.Route {
	return &SwaggerApi{config: cfg}
}

// Setup serves the API browser outside production only.
func (h *SwaggerApi) Setup(app *fiber.App) {
	if h.config.IsProduction() {
		return
	}
	app.Get("/swagger/*", swagger.New(swagger.Config{
		Title:                "EduVibe API",
		DocExpansion:         "list",
		PersistAuthorization: true,
	}))
}
