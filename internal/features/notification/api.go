package notification

import (
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/middleware"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	controller *NotificationController
	config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) *NotificationApi {
	return &NotificationApi{
		controller: controller,
		config:     config,
	}
}

func (h *NotificationApi) Setup(app *fiber.App) {
	app.Get("/api/ws", h.controller.UpgradeSocket, websocket.New(h.controller.Stream))

	group := app.Group("/api/notifications", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", middleware.RequireAccess(access.ActionList, access.ResourceNotification), h.controller.List)
	group.Get("/unread-count", middleware.RequireAccess(access.ActionList, access.ResourceNotification), h.controller.GetUnreadCount)
	group.Put("/:id/read", h.controller.MarkAsRead)
	group.Post("/mark-all-read", middleware.RequireAccess(access.ActionList, access.ResourceNotification), h.controller.MarkAllAsRead)
	group.Post("/", middleware.RequireAccess(access.ActionCreate, access.ResourceNotification), h.controller.Send)
}
