package session

import (
	"context"
	"math"
	"strings"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/events"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/email"
	"eduvibe/internal/features/mentor"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/user"
	"eduvibe/internal/metrics"
	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrSlotTaken    = apperrors.WithMessage(apperrors.ErrConflict, "mentor already has a session at that time")
	ErrNotStarted   = apperrors.WithMessage(apperrors.ErrConflict, "session has not started yet")
	ErrStaleSession = apperrors.WithMessage(apperrors.ErrConflict, "session was changed by someone else, reload and retry")
)

const expiredReason = "not confirmed before the scheduled start"

// MentorDirectory is the slice of the mentor feature sessions depend on.
type MentorDirectory interface {
	GetBookable(ctx context.Context, id string) (*mentor.MentorProfile, error)
	IncrementSessions(ctx context.Context, id string) error
}

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Mailer interface {
	SendTemplate(ctx context.Context, to []string, name email.TemplateName, data interface{}, attachments ...email.Attachment) error
}

type SessionService interface {
	Book(ctx context.Context, caller access.AccessContext, req BookRequest) (*Session, error)
	Get(ctx context.Context, caller access.AccessContext, id string) (*Session, error)
	ListMine(ctx context.Context, caller access.AccessContext, filter ListFilter, page, limit int64) ([]Session, int64, error)
	ListAll(ctx context.Context, filter ListFilter, page, limit int64) ([]Session, int64, error)
	UpdateStatus(ctx context.Context, caller access.AccessContext, id string, req StatusUpdateRequest) (*Session, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error
	BookedSubjects(ctx context.Context, studentID string) ([]string, error)
	SendUpcomingReminders(ctx context.Context, window time.Duration) (int, error)
	ExpireStalePending(ctx context.Context) (int, error)
	Export(ctx context.Context, filter ListFilter) ([]byte, error)
}

type SessionServiceImpl struct {
	Repo         SessionRepository
	Mentors      MentorDirectory
	Users        UserDirectory
	Notifier     notification.Notifier
	Mailer       Mailer
	Publisher    events.Publisher
	Metrics      *metrics.Metrics
	AuditService audit.AuditService
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewSessionService(
	repo SessionRepository,
	mentors MentorDirectory,
	users UserDirectory,
	notifier notification.Notifier,
	mailer Mailer,
	publisher events.Publisher,
	m *metrics.Metrics,
	auditService audit.AuditService,
	logger *zap.Logger,
) SessionService {
	return &SessionServiceImpl{
		Repo:         repo,
		Mentors:      mentors,
		Users:        users,
		Notifier:     notifier,
		Mailer:       mailer,
		Publisher:    publisher,
		Metrics:      m,
		AuditService: auditService,
		Logger:       logger,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// PriceCents charges the mentor's hourly rate pro rata, rounded to the nearest cent.
func PriceCents(hourlyRate float64, minutes int) int64 {
	return int64(math.Round(hourlyRate * 100 * float64(minutes) / 60))
}

func (s *SessionServiceImpl) Book(ctx context.Context, caller access.AccessContext, req BookRequest) (*Session, error) {
	if !access.CanPerform(caller, access.ActionCreate, access.ResourceSession) {
		return nil, apperrors.ErrForbidden
	}
	if req.MentorID == caller.UserID {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "you cannot book a session with yourself")
	}
	if req.DurationMinutes < MinDurationMinutes || req.DurationMinutes > MaxDurationMinutes {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "duration must be between 30 and 180 minutes")
	}

	now := s.Now()
	start := req.ScheduledAt.UTC()
	if !start.After(now) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "scheduled time must be in the future")
	}
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	profile, err := s.Mentors.GetBookable(ctx, req.MentorID)
	if err != nil {
		return nil, err
	}

	subject, ok := taughtSubject(profile, req.Subject)
	if !ok {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "mentor does not teach "+strings.TrimSpace(req.Subject))
	}

	overlap, err := s.Repo.HasOverlap(ctx, req.MentorID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrSlotTaken
	}

	studentName := ""
	if student, err := s.Users.FindByID(ctx, caller.UserID); err == nil {
		studentName = student.Name
	}

	sess := &Session{
		ID:              primitive.NewObjectID(),
		StudentID:       caller.UserID,
		StudentName:     studentName,
		MentorID:        req.MentorID,
		MentorName:      profile.Name,
		Subject:         subject,
		Notes:           strings.TrimSpace(req.Notes),
		ScheduledAt:     start,
		EndsAt:          end,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      PriceCents(profile.HourlyRate, req.DurationMinutes),
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.Logger.Info("session booked",
		zap.String("session_id", sess.ID.Hex()),
		zap.String("student_id", sess.StudentID),
		zap.String("mentor_id", sess.MentorID),
	)
	s.Metrics.RecordSessionTransition(string(StatusPending))
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "sessions", sess.ID.Hex(), map[string]common_models.Change{
		"status":      {New: sess.Status},
		"mentor_id":   {New: sess.MentorID},
		"price_cents": {New: sess.PriceCents},
	})

	s.notify(ctx, sess.MentorID, notification.TypeSessionRequested,
		"New session request",
		studentName+" requested a "+sess.Subject+" session.", sess)
	s.mailAsync(sess, email.TemplateSessionBooked, []string{sess.MentorID, sess.StudentID}, "")
	events.PublishAsync(s.Publisher, s.Logger, events.SessionRequested, eventPayload(sess))

	return sess, nil
}

func (s *SessionServiceImpl) Get(ctx context.Context, caller access.AccessContext, id string) (*Session, error) {
	sess, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canRead(caller, sess) {
		return nil, apperrors.ErrForbidden
	}
	return sess, nil
}

// ListMine scopes the listing to the caller's side of their sessions.
func (s *SessionServiceImpl) ListMine(ctx context.Context, caller access.AccessContext, filter ListFilter, page, limit int64) ([]Session, int64, error) {
	filter.StudentID, filter.MentorID = "", ""
	if caller.Role == access.RoleMentor {
		filter.MentorID = caller.UserID
	} else {
		filter.StudentID = caller.UserID
	}
	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *SessionServiceImpl) ListAll(ctx context.Context, filter ListFilter, page, limit int64) ([]Session, int64, error) {
	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *SessionServiceImpl) UpdateStatus(ctx context.Context, caller access.AccessContext, id string, req StatusUpdateRequest) (*Session, error) {
	sess, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanPerform(caller.ForResource(id, sess.OwnerFor(caller.UserID)), access.ActionUpdateOwn, access.ResourceSession) {
		return nil, apperrors.ErrForbidden
	}

	by := participant(caller, sess)
	if by == ByMentor && !access.HasPermission(caller, access.PermRespondToSessions) {
		return nil, apperrors.ErrForbidden
	}
	if err := CheckTransition(sess.Status, req.Status, by); err != nil {
		return nil, err
	}

	now := s.Now()
	if req.Status == StatusCompleted && now.Before(sess.ScheduledAt) {
		return nil, ErrNotStarted
	}

	return s.apply(ctx, sess, req.Status, strings.TrimSpace(req.Reason), by, now)
}

func (s *SessionServiceImpl) apply(ctx context.Context, sess *Session, to Status, reason string, by Participant, now time.Time) (*Session, error) {
	from := sess.Status
	ok, err := s.Repo.Transition(ctx, sess.ID, from, to, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleSession
	}

	sess.Status, sess.UpdatedAt = to, now
	if reason != "" {
		sess.StatusReason = reason
	}
	if to == StatusCompleted {
		sess.CompletedAt = &now
		if err := s.Mentors.IncrementSessions(ctx, sess.MentorID); err != nil {
			s.Logger.Warn("failed to bump mentor session count", zap.String("mentor_id", sess.MentorID), zap.Error(err))
		}
	}

	s.Logger.Info("session status changed",
		zap.String("session_id", sess.ID.Hex()),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("by", string(by)),
	)
	s.Metrics.RecordSessionTransition(string(to))
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionStatus, "sessions", sess.ID.Hex(), map[string]common_models.Change{
		"status": {Old: from, New: to},
	})

	recipients := counterparts(sess, by)
	for _, userID := range recipients {
		s.notify(ctx, userID, notification.TypeSessionUpdated,
			"Session "+string(to),
			"Your "+sess.Subject+" session is now "+string(to)+".", sess)
	}
	s.mailAsync(sess, email.TemplateSessionStatus, recipients, reason)

	eventType := statusEvents[to]
	if reason == expiredReason {
		eventType = events.SessionExpired
	}
	events.PublishAsync(s.Publisher, s.Logger, eventType, eventPayload(sess))

	return sess, nil
}

func (s *SessionServiceImpl) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error {
	return s.Repo.SetPaymentStatus(ctx, id, status)
}

func (s *SessionServiceImpl) BookedSubjects(ctx context.Context, studentID string) ([]string, error) {
	return s.Repo.BookedSubjects(ctx, studentID)
}

// SendUpcomingReminders notifies both participants of confirmed sessions starting
// within window. Each session is reminded at most once.
func (s *SessionServiceImpl) SendUpcomingReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.Now()
	due, err := s.Repo.DueForReminder(ctx, now, now.Add(window))
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range due {
		sess := &due[i]
		claimed, err := s.Repo.MarkReminded(ctx, sess.ID, now)
		if err != nil {
			s.Logger.Warn("failed to mark reminder", zap.String("session_id", sess.ID.Hex()), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		for _, userID := range []string{sess.StudentID, sess.MentorID} {
			s.notify(ctx, userID, notification.TypeSessionReminder,
				"Upcoming session",
				"Your "+sess.Subject+" session starts at "+sess.ScheduledAt.Format(time.RFC1123)+".", sess)
		}
		s.mailAsync(sess, email.TemplateSessionReminder, []string{sess.StudentID, sess.MentorID}, "")
		sent++
	}
	return sent, nil
}

// ExpireStalePending cancels pending sessions whose start time has passed.
func (s *SessionServiceImpl) ExpireStalePending(ctx context.Context) (int, error) {
	now := s.Now()
	stale, err := s.Repo.StalePending(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		if _, err := s.apply(ctx, &stale[i], StatusCancelled, expiredReason, BySystem, now); err != nil {
			s.Logger.Warn("failed to expire session", zap.String("session_id", stale[i].ID.Hex()), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *SessionServiceImpl) notify(ctx context.Context, userID string, typ notification.NotificationType, title, message string, sess *Session) {
	if s.Notifier == nil {
		return
	}
	err := s.Notifier.Notify(ctx, notification.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    "/sessions/" + sess.ID.Hex(),
	})
	if err != nil {
		s.Logger.Warn("session notification failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// mailAsync looks up each recipient and sends the template in the background.
func (s *SessionServiceImpl) mailAsync(sess *Session, tmpl email.TemplateName, userIDs []string, reason string) {
	if s.Mailer == nil || len(userIDs) == 0 {
		return
	}
	snapshot := *sess
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		for _, id := range userIDs {
			u, err := s.Users.FindByID(ctx, id)
			if err != nil {
				s.Logger.Warn("email recipient lookup failed", zap.String("user_id", id), zap.Error(err))
				continue
			}
			data := email.SessionData{
				RecipientName: u.Name,
				StudentName:   snapshot.StudentName,
				MentorName:    snapshot.MentorName,
				Subject:       snapshot.Subject,
				ScheduledAt:   snapshot.ScheduledAt,
				Duration:      snapshot.DurationMinutes,
				Status:        string(snapshot.Status),
				Reason:        reason,
			}
			if err := s.Mailer.SendTemplate(ctx, []string{u.Email}, tmpl, data); err != nil {
				s.Logger.Warn("session email failed", zap.String("user_id", id), zap.String("template", string(tmpl)), zap.Error(err))
			}
		}
	}()
}

var statusEvents = map[Status]string{
	StatusConfirmed: events.SessionConfirmed,
	StatusRejected:  events.SessionRejected,
	StatusCancelled: events.SessionCancelled,
	StatusCompleted: events.SessionCompleted,
}

func eventPayload(sess *Session) map[string]interface{} {
	return map[string]interface{}{
		"session_id":   sess.ID.Hex(),
		"student_id":   sess.StudentID,
		"mentor_id":    sess.MentorID,
		"status":       sess.Status,
		"scheduled_at": sess.ScheduledAt,
	}
}

func canRead(caller access.AccessContext, sess *Session) bool {
	return access.CanPerform(caller, access.ActionRead, access.ResourceSession) ||
		access.CanPerform(caller.ForResource(sess.ID.Hex(), sess.OwnerFor(caller.UserID)), access.ActionReadOwn, access.ResourceSession)
}

func participant(caller access.AccessContext, sess *Session) Participant {
	switch caller.UserID {
	case sess.MentorID:
		return ByMentor
	case sess.StudentID:
		return ByStudent
	}
	return BySystem
}

func counterparts(sess *Session, by Participant) []string {
	switch by {
	case ByMentor:
		return []string{sess.StudentID}
	case ByStudent:
		return []string{sess.MentorID}
	}
	return []string{sess.StudentID, sess.MentorID}
}

// taughtSubject matches the requested subject case-insensitively and returns the mentor's spelling.
func taughtSubject(profile *mentor.MentorProfile, requested string) (string, bool) {
	requested = strings.TrimSpace(requested)
	for _, s := range profile.Subjects {
		if s = strings.TrimSpace(s); strings.EqualFold(s, requested) {
			return s, true
		}
	}
	return "", false
}
