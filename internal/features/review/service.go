package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/events"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/session"
	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrSessionNotCompleted = apperrors.WithMessage(apperrors.ErrConflict, "only completed sessions can be reviewed")

type SessionLookup interface {
	FindByID(ctx context.Context, id string) (*session.Session, error)
}

// RatingSink receives recomputed mentor ratings.
type RatingSink interface {
	SetRating(ctx context.Context, id string, rating float64, reviews int) error
}

type ReviewService interface {
	Create(ctx context.Context, caller access.AccessContext, req CreateRequest) (*Review, error)
	ListByMentor(ctx context.Context, caller access.AccessContext, mentorID string, page, limit int64) ([]Review, int64, error)
	DeleteOwn(ctx context.Context, caller access.AccessContext, id string) error
	Moderate(ctx context.Context, id string, hidden bool) error
}

type ReviewServiceImpl struct {
	Repo         ReviewRepository
	Sessions     SessionLookup
	Ratings      RatingSink
	Notifier     notification.Notifier
	Publisher    events.Publisher
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewReviewService(
	repo ReviewRepository,
	sessions SessionLookup,
	ratings RatingSink,
	notifier notification.Notifier,
	publisher events.Publisher,
	auditService audit.AuditService,
	logger *zap.Logger,
) ReviewService {
	return &ReviewServiceImpl{
		Repo:         repo,
		Sessions:     sessions,
		Ratings:      ratings,
		Notifier:     notifier,
		Publisher:    publisher,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *ReviewServiceImpl) Create(ctx context.Context, caller access.AccessContext, req CreateRequest) (*Review, error) {
	if !access.CanPerform(caller, access.ActionCreate, access.ResourceReview) {
		return nil, apperrors.ErrForbidden
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "rating must be between 1 and 5")
	}

	sess, err := s.Sessions.FindByID(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.StudentID != caller.UserID {
		return nil, apperrors.WithMessage(apperrors.ErrForbidden, "you can only review your own sessions")
	}
	if sess.Status != session.StatusCompleted {
		return nil, ErrSessionNotCompleted
	}

	review := &Review{
		ID:          primitive.NewObjectID(),
		SessionID:   sess.ID.Hex(),
		StudentID:   sess.StudentID,
		StudentName: sess.StudentName,
		MentorID:    sess.MentorID,
		Rating:      req.Rating,
		Comment:     strings.TrimSpace(req.Comment),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.recompute(ctx, review.MentorID)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "reviews", review.ID.Hex(), map[string]common_models.Change{
		"rating": {New: review.Rating},
	})

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, notification.Notification{
			UserID:  review.MentorID,
			Type:    notification.TypeReviewReceived,
			Title:   "New review",
			Message: fmt.Sprintf("%s rated your %s session %d/5.", review.StudentName, sess.Subject, review.Rating),
			Link:    "/mentors/" + review.MentorID + "/reviews",
		}); err != nil {
			s.Logger.Warn("review notification failed", zap.Error(err))
		}
	}
	events.PublishAsync(s.Publisher, s.Logger, events.ReviewCreated, map[string]interface{}{
		"review_id": review.ID.Hex(),
		"mentor_id": review.MentorID,
		"rating":    review.Rating,
	})
	return review, nil
}

// ListByMentor shows hidden reviews to moderators only.
func (s *ReviewServiceImpl) ListByMentor(ctx context.Context, caller access.AccessContext, mentorID string, page, limit int64) ([]Review, int64, error) {
	includeHidden := access.CanPerform(caller, access.ActionModerate, access.ResourceReview)
	return s.Repo.ListByMentor(ctx, mentorID, includeHidden, limit, (page-1)*limit)
}

func (s *ReviewServiceImpl) DeleteOwn(ctx context.Context, caller access.AccessContext, id string) error {
	review, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanPerform(caller.ForResource(id, review.StudentID), access.ActionDeleteOwn, access.ResourceReview) {
		return apperrors.ErrForbidden
	}
	if err := s.Repo.Delete(ctx, review.ID); err != nil {
		return err
	}

	s.recompute(ctx, review.MentorID)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "reviews", id, map[string]common_models.Change{
		"rating": {Old: review.Rating},
	})
	return nil
}

func (s *ReviewServiceImpl) Moderate(ctx context.Context, id string, hidden bool) error {
	review, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if review.Hidden == hidden {
		return nil
	}
	if err := s.Repo.SetHidden(ctx, review.ID, hidden); err != nil {
		return err
	}

	s.recompute(ctx, review.MentorID)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "reviews", id, map[string]common_models.Change{
		"hidden": {Old: review.Hidden, New: hidden},
	})
	return nil
}

// recompute refreshes the mentor's rating from visible reviews. Failures are logged;
// the next review change corrects them.
func (s *ReviewServiceImpl) recompute(ctx context.Context, mentorID string) {
	summary, err := s.Repo.Summary(ctx, mentorID)
	if err != nil {
		s.Logger.Error("failed to aggregate mentor rating", zap.String("mentor_id", mentorID), zap.Error(err))
		return
	}
	if err := s.Ratings.SetRating(ctx, mentorID, summary.Average, summary.Count); err != nil {
		s.Logger.Error("failed to store mentor rating", zap.String("mentor_id", mentorID), zap.Error(err))
	}
}
