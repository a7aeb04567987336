package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/config"
	"eduvibe/internal/events"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/email"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/session"
	"eduvibe/internal/features/user"
	"eduvibe/internal/metrics"
	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrAlreadyPaid  = apperrors.WithMessage(apperrors.ErrConflict, "session is already paid")
	ErrNotPayable   = apperrors.WithMessage(apperrors.ErrConflict, "only pending or confirmed sessions can be paid")
	ErrNotSettled   = apperrors.WithMessage(apperrors.ErrConflict, "receipt is available once the payment succeeds")
	ErrNothingToPay = apperrors.WithMessage(apperrors.ErrValidation, "session has no price")
)

// SessionLedger is the slice of session storage payments read and update.
type SessionLedger interface {
	FindByID(ctx context.Context, id string) (*session.Session, error)
	SetPaymentStatus(ctx context.Context, id string, status session.PaymentStatus) error
}

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Mailer interface {
	SendTemplate(ctx context.Context, to []string, name email.TemplateName, data interface{}, attachments ...email.Attachment) error
}

type PaymentService interface {
	Create(ctx context.Context, caller access.AccessContext, req CreateRequest) (*Payment, error)
	ListMine(ctx context.Context, caller access.AccessContext, page, limit int64) ([]Payment, int64, error)
	Receipt(ctx context.Context, caller access.AccessContext, id string) ([]byte, *Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentServiceImpl struct {
	Repo         PaymentRepository
	Gateway      Gateway
	Sessions     SessionLedger
	Users        UserDirectory
	Notifier     notification.Notifier
	Mailer       Mailer
	Publisher    events.Publisher
	Metrics      *metrics.Metrics
	AuditService audit.AuditService
	Currency     string
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewPaymentService(
	repo PaymentRepository,
	gateway Gateway,
	sessions SessionLedger,
	users UserDirectory,
	notifier notification.Notifier,
	mailer Mailer,
	publisher events.Publisher,
	m *metrics.Metrics,
	auditService audit.AuditService,
	cfg *config.Config,
	logger *zap.Logger,
) PaymentService {
	return &PaymentServiceImpl{
		Repo:         repo,
		Gateway:      gateway,
		Sessions:     sessions,
		Users:        users,
		Notifier:     notifier,
		Mailer:       mailer,
		Publisher:    publisher,
		Metrics:      m,
		AuditService: auditService,
		Currency:     cfg.Stripe.Currency,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Create opens (or reopens) the single payment of a session. The session id is the
// provider idempotency key, so retries never create a second charge.
func (s *PaymentServiceImpl) Create(ctx context.Context, caller access.AccessContext, req CreateRequest) (*Payment, error) {
	if !access.CanPerform(caller, access.ActionCreate, access.ResourcePayment) {
		return nil, apperrors.ErrForbidden
	}

	sess, err := s.Sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.StudentID != caller.UserID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "you can only pay for your own sessions")
	}
	if sess.Status != session.StatusPending && sess.Status != session.StatusConfirmed {
		return nil, ErrNotPayable
	}
	if sess.PaymentStatus == session.PaymentPaid {
		return nil, ErrAlreadyPaid
	}
	if sess.PriceCents <= 0 {
		return nil, ErrNothingToPay
	}

	existing, err := s.Repo.FindBySession(ctx, req.SessionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return s.reopen(ctx, existing)
	}

	now := s.Now().UTC()
	p := &Payment{
		ID:          primitive.NewObjectID(),
		SessionID:   sess.ID.Hex(),
		StudentID:   sess.StudentID,
		StudentName: sess.StudentName,
		MentorID:    sess.MentorID,
		MentorName:  sess.MentorName,
		Subject:     sess.Subject,
		ScheduledAt: sess.ScheduledAt,
		AmountCents: sess.PriceCents,
		Currency:    s.Currency,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	intent, err := s.Gateway.CreateIntent(ctx, IntentRequest{
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Description:    fmt.Sprintf("%s session with %s", p.Subject, p.MentorName),
		IdempotencyKey: p.SessionID,
		Metadata: map[string]string{
			"payment_id": p.ID.Hex(),
			"session_id": p.SessionID,
			"student_id": p.StudentID,
		},
	})
	if err != nil {
		return nil, err
	}
	p.IntentID, p.ClientSecret = intent.ID, intent.ClientSecret

	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.Sessions.SetPaymentStatus(ctx, p.SessionID, session.PaymentProcessing); err != nil {
		s.Logger.Warn("failed to mark session payment processing", zap.String("session_id", p.SessionID), zap.Error(err))
	}

	s.Metrics.RecordPayment(string(StatusPending))
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionPayment, "payments", p.ID.Hex(), map[string]common_models.Change{
		"status": {New: StatusPending},
		"amount": {New: p.AmountCents},
	})
	return p, nil
}

func (s *PaymentServiceImpl) reopen(ctx context.Context, p *Payment) (*Payment, error) {
	switch p.Status {
	case StatusSucceeded:
		return nil, ErrAlreadyPaid
	case StatusFailed:
		if _, err := s.Repo.Resolve(ctx, p.ID, []Status{StatusFailed}, StatusPending, "", s.Now().UTC()); err != nil {
			return nil, err
		}
		p.Status, p.FailureReason = StatusPending, ""
		if err := s.Sessions.SetPaymentStatus(ctx, p.SessionID, session.PaymentProcessing); err != nil {
			s.Logger.Warn("failed to mark session payment processing", zap.String("session_id", p.SessionID), zap.Error(err))
		}
	}
	return p, nil
}

func (s *PaymentServiceImpl) ListMine(ctx context.Context, caller access.AccessContext, page, limit int64) ([]Payment, int64, error) {
	payments, total, err := s.Repo.ListByStudent(ctx, caller.UserID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range payments {
		payments[i] = payments[i].Redacted()
	}
	return payments, total, nil
}

func (s *PaymentServiceImpl) Receipt(ctx context.Context, caller access.AccessContext, id string) ([]byte, *Payment, error) {
	p, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanPerform(caller.ForResource(id, p.StudentID), access.ActionReadOwn, access.ResourcePayment) {
		return nil, nil, apperrors.ErrForbidden
	}
	if p.Status != StatusSucceeded {
		return nil, nil, ErrNotSettled
	}
	pdf, err := RenderReceipt(p)
	if err != nil {
		return nil, nil, err
	}
	return pdf, p, nil
}

// HandleWebhook applies a verified provider event. Replays and unknown intents are acknowledged without effect.
func (s *PaymentServiceImpl) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ev, err := s.Gateway.ParseEvent(payload, signature)
	if err != nil {
		return err
	}
	if ev == nil {
		return nil
	}

	p, err := s.Repo.FindByIntent(ctx, ev.IntentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.Logger.Warn("webhook for unknown payment intent", zap.String("intent_id", ev.IntentID))
			return nil
		}
		return err
	}

	switch ev.Kind {
	case EventSucceeded:
		return s.settle(ctx, p)
	case EventFailed:
		return s.fail(ctx, p, ev.FailureReason)
	}
	return nil
}

func (s *PaymentServiceImpl) settle(ctx context.Context, p *Payment) error {
	now := s.Now().UTC()
	changed, err := s.Repo.Resolve(ctx, p.ID, []Status{StatusPending, StatusFailed}, StatusSucceeded, "", now)
	if err != nil {
		return err
	}
	if changed {
		p.Status, p.PaidAt, p.UpdatedAt = StatusSucceeded, &now, now
		s.Metrics.RecordPayment(string(StatusSucceeded))
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionPayment, "payments", p.ID.Hex(), map[string]common_models.Change{
			"status": {Old: StatusPending, New: StatusSucceeded},
		})
	} else if p, err = s.current(ctx, p, StatusSucceeded); p == nil || err != nil {
		return err
	}

	synced, err := s.syncSession(ctx, p.SessionID, session.PaymentPaid)
	if err != nil || !synced {
		return err
	}

	events.PublishAsync(s.Publisher, s.Logger, events.PaymentSucceeded, map[string]interface{}{
		"payment_id": p.ID.Hex(),
		"session_id": p.SessionID,
		"amount":     p.AmountCents,
		"currency":   p.Currency,
	})
	s.notify(ctx, p, "Payment received", fmt.Sprintf("We received %s for your %s session.", p.FormattedAmount(), p.Subject))
	s.sendReceipt(ctx, p)
	return nil
}

func (s *PaymentServiceImpl) fail(ctx context.Context, p *Payment, reason string) error {
	changed, err := s.Repo.Resolve(ctx, p.ID, []Status{StatusPending}, StatusFailed, reason, s.Now().UTC())
	if err != nil {
		return err
	}
	if changed {
		p.Status, p.FailureReason = StatusFailed, reason
		s.Metrics.RecordPayment(string(StatusFailed))
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionPayment, "payments", p.ID.Hex(), map[string]common_models.Change{
			"status": {Old: StatusPending, New: StatusFailed},
		})
	} else if p, err = s.current(ctx, p, StatusFailed); p == nil || err != nil {
		return err
	}

	synced, err := s.syncSession(ctx, p.SessionID, session.PaymentFailed)
	if err != nil || !synced {
		return err
	}

	events.PublishAsync(s.Publisher, s.Logger, events.PaymentFailed, map[string]interface{}{
		"payment_id": p.ID.Hex(),
		"session_id": p.SessionID,
		"reason":     p.FailureReason,
	})

	msg := fmt.Sprintf("Your payment for the %s session did not go through.", p.Subject)
	if p.FailureReason != "" {
		msg += " " + p.FailureReason
	}
	s.notify(ctx, p, "Payment failed", msg)
	return nil
}

// current reloads a payment the webhook did not move. It returns nil when the
// payment is not in want, meaning the event is stale.
func (s *PaymentServiceImpl) current(ctx context.Context, p *Payment, want Status) (*Payment, error) {
	stored, err := s.Repo.FindByID(ctx, p.ID.Hex())
	if err != nil {
		return nil, err
	}
	if stored.Status != want {
		return nil, nil
	}
	return stored, nil
}

// syncSession brings the session's payment status in line with a resolved payment.
// It reports false when the session already carried that status, so follow-ups run once
// even when a provider retry arrives after a partial failure.
func (s *PaymentServiceImpl) syncSession(ctx context.Context, sessionID string, status session.PaymentStatus) (bool, error) {
	sess, err := s.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if sess.PaymentStatus == status {
		return false, nil
	}
	if err := s.Sessions.SetPaymentStatus(ctx, sessionID, status); err != nil {
		return false, err
	}
	return true, nil
}

func (s *PaymentServiceImpl) notify(ctx context.Context, p *Payment, title, message string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, notification.Notification{
		UserID:  p.StudentID,
		Type:    notification.TypePayment,
		Title:   title,
		Message: message,
		Link:    "/sessions/" + p.SessionID,
	}); err != nil {
		s.Logger.Warn("payment notification failed", zap.String("payment_id", p.ID.Hex()), zap.Error(err))
	}
}

func (s *PaymentServiceImpl) sendReceipt(ctx context.Context, p *Payment) {
	if s.Mailer == nil || s.Users == nil {
		return
	}
	student, err := s.Users.FindByID(ctx, p.StudentID)
	if err != nil {
		s.Logger.Warn("receipt recipient lookup failed", zap.String("student_id", p.StudentID), zap.Error(err))
		return
	}
	pdf, err := RenderReceipt(p)
	if err != nil {
		s.Logger.Error("failed to render receipt", zap.String("payment_id", p.ID.Hex()), zap.Error(err))
		return
	}
	err = s.Mailer.SendTemplate(ctx, []string{student.Email}, email.TemplatePaymentReceipt,
		email.ReceiptData{Name: student.Name, Subject: p.Subject, Amount: p.FormattedAmount()},
		email.Attachment{Name: "receipt-" + p.ID.Hex() + ".pdf", Data: pdf},
	)
	if err != nil {
		s.Logger.Warn("failed to email receipt", zap.String("payment_id", p.ID.Hex()), zap.Error(err))
	}
}
