package auth

import (
	"eduvibe/internal/config"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")

	auth.Post("/register", h.controller.Register)
	auth.Post("/login", h.controller.Login)
	auth.Get("/me", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Me)
}
