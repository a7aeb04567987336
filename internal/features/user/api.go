package user

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
}

func NewUserApi(controller *UserController, config *config.Config) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	users.Put("/me", h.controller.UpdateMyProfile)
	users.Get("/", middleware.RequireAccess(access.ActionList, access.ResourceUser), h.controller.ListUsers)
	users.Get("/:id", h.controller.GetUser)
	users.Put("/:id/status", middleware.RequireAccess(access.ActionUpdate, access.ResourceUser), h.controller.UpdateUserStatus)
	users.Put("/:id/role", middleware.RequireAccess(access.ActionManage, access.ResourceUser), h.controller.UpdateUserRole)
}
