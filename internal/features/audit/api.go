package audit

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
}

func NewAuditApi(controller *AuditController, config *config.Config) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth))

	audit.Get("/", middleware.RequireAccess(access.ActionList, access.ResourceAuditLog), h.controller.ListLogs)
}
