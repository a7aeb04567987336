package notification

import (
	"strings"
	"sync"

	common_api "eduvibe/internal/common/api"
	"eduvibe/internal/middleware"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const wsUserKey = "ws_user_id"

type NotificationController struct {
	service NotificationService
	hub     *Hub
	logger  *zap.Logger
}

func NewNotificationController(service NotificationService, hub *Hub, logger *zap.Logger) *NotificationController {
	return &NotificationController{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// List godoc
// @Summary      List my notifications
// @Tags         notifications
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Router       /api/notifications [get]
func (c *NotificationController) List(ctx *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromCtx(ctx)
	if !ok {
		return common_api.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}
	page, limit := common_api.Pagination(ctx, 10)

	notifications, total, err := c.service.GetUserNotifications(ctx.UserContext(), claims.UserID, page, limit)
	if err != nil {
		return common_api.ErrorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{
		"data":  notifications,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUnreadCount godoc
// @Summary      Unread notification count
// @Tags         notifications
// @Router       /api/notifications/unread-count [get]
func (c *NotificationController) GetUnreadCount(ctx *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromCtx(ctx)
	if !ok {
		return common_api.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}

	count, err := c.service.GetUnreadCount(ctx.UserContext(), claims.UserID)
	if err != nil {
		return common_api.ErrorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"count": count})
}

// MarkAsRead godoc
// @Summary      Mark one notification read
// @Tags         notifications
// @Param        id path string true "Notification ID"
// @Router       /api/notifications/{id}/read [put]
func (c *NotificationController) MarkAsRead(ctx *fiber.Ctx) error {
	caller, ok := middleware.AccessContext(ctx)
	if !ok {
		return common_api.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}

	if err := c.service.MarkAsRead(ctx.UserContext(), caller, ctx.Params("id")); err != nil {
		return common_api.ErrorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"status": "success"})
}

// MarkAllAsRead godoc
// @Summary      Mark all my notifications read
// @Tags         notifications
// @Router       /api/notifications/mark-all-read [post]
func (c *NotificationController) MarkAllAsRead(ctx *fiber.Ctx) error {
	claims, ok := utils.ClaimsFromCtx(ctx)
	if !ok {
		return common_api.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}

	updated, err := c.service.MarkAllAsRead(ctx.UserContext(), claims.UserID)
	if err != nil {
		return common_api.ErrorResponse(ctx, err)
	}

	return ctx.JSON(fiber.Map{"status": "success", "updated": updated})
}

// Send godoc
// @Summary      Send a system notification to a user
// @Tags         notifications
// @Param        input body SendRequest true "Notification"
// @Router       /api/notifications [post]
func (c *NotificationController) Send(ctx *fiber.Ctx) error {
	var req SendRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := common_api.Validate(req); err != nil {
		return common_api.ErrorResponse(ctx, err)
	}

	n := Notification{UserID: req.UserID, Title: req.Title, Message: req.Message, Link: req.Link, Type: TypeSystem}
	if err := c.service.Notify(ctx.UserContext(), n); err != nil {
		return common_api.ErrorResponse(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "sent"})
}

// UpgradeSocket authenticates the websocket handshake. Browsers cannot set headers on
// websocket requests, so the token may also come from the "token" query parameter.
func (c *NotificationController) UpgradeSocket(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	token := ctx.Query("token")
	if bearer, ok := strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer "); ok {
		token = bearer
	}
	if token == "" {
		return common_api.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return common_api.ErrorResponse(ctx, apperrors.ErrUnauthorized)
	}

	ctx.Locals(wsUserKey, claims.UserID)
	return ctx.Next()
}

// Stream keeps the socket registered until the client disconnects. Inbound frames are ignored.
func (c *NotificationController) Stream(conn *websocket.Conn) {
	userID, _ := conn.Locals(wsUserKey).(string)
	client := &socketClient{conn: conn}

	c.hub.Register(userID, client)
	defer c.hub.Unregister(userID, client)

	c.logger.Debug("websocket connected", zap.String("user_id", userID))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.logger.Debug("websocket closed", zap.String("user_id", userID), zap.Error(err))
			return
		}
	}
}

// socketClient serialises writes; a websocket connection allows one writer at a time.
type socketClient struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *socketClient) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}
