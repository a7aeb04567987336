package session

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SessionApi struct {
	controller *SessionController
	config     *config.Config
}

func NewSessionApi(controller *SessionController, config *config.Config) *SessionApi {
	return &SessionApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all session-related routes
func (h *SessionApi) Setup(app *fiber.App) {
	sessions := app.Group("/api/sessions", middleware.AuthMiddleware(h.config.SkipAuth))

	sessions.Post("/", middleware.RequireAccess(access.ActionCreate, access.ResourceSession), h.controller.BookSession)
	sessions.Get("/", middleware.RequireAccess(access.ActionList, access.ResourceSession), h.controller.ListSessions)
	sessions.Get("/mine", h.controller.ListMySessions)
	sessions.Get("/export", middleware.RequireAccess(access.ActionExport, access.ResourceReport), h.controller.ExportSessions)
	sessions.Get("/:id", h.controller.GetSession)
	sessions.Put("/:id/status", h.controller.UpdateSessionStatus)
}
