package notification

import (
	"context"

	"eduvibe/internal/features/access"
	"eduvibe/pkg/apperrors"

	"go.uber.org/zap"
)

// Notifier is what other features use to reach a user.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type NotificationService interface {
	Notifier
	GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, caller access.AccessContext, id string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
}

type NotificationServiceImpl struct {
	repo   NotificationRepository
	hub    *Hub
	logger *zap.Logger
}

func NewNotificationService(repo NotificationRepository, hub *Hub, logger *zap.Logger) NotificationService {
	return &NotificationServiceImpl{
		repo:   repo,
		hub:    hub,
		logger: logger,
	}
}

// Notify stores the notification and pushes it to any open websocket of the recipient.
func (s *NotificationServiceImpl) Notify(ctx context.Context, n Notification) error {
	if n.UserID == "" {
		return apperrors.WithMessage(apperrors.ErrValidation, "notification recipient is required")
	}
	if n.Type == "" {
		n.Type = TypeSystem
	}
	if err := s.repo.Create(ctx, &n); err != nil {
		return err
	}

	if s.hub != nil {
		delivered := s.hub.Send(n.UserID, socketMessage{Event: "notification", Data: n})
		s.logger.Debug("notification stored",
			zap.String("user_id", n.UserID),
			zap.String("type", string(n.Type)),
			zap.Int("live_clients", delivered),
		)
	}
	return nil
}

func (s *NotificationServiceImpl) GetUserNotifications(ctx context.Context, userID string, page, limit int64) ([]Notification, int64, error) {
	return s.repo.GetByUserID(ctx, userID, page, limit)
}

func (s *NotificationServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationServiceImpl) MarkAsRead(ctx context.Context, caller access.AccessContext, id string) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanPerform(caller.ForResource(id, n.UserID), access.ActionUpdateOwn, access.ResourceNotification) {
		return apperrors.ErrForbidden
	}
	return s.repo.MarkAsRead(ctx, n.ID)
}

func (s *NotificationServiceImpl) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// socketMessage is the frame written to websocket clients.
type socketMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
