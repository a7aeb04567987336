package mentor

import (
	"context"
	"strings"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/events"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/recommendation"
	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrMentorUnavailable = apperrors.WithMessage(apperrors.ErrConflict, "mentor is not accepting sessions")

// PoolInvalidator drops any cached copy of the eligible mentor pool.
type PoolInvalidator interface {
	Invalidate(ctx context.Context) error
}

// NameLookup resolves user ids to display names.
type NameLookup interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type MentorService interface {
	Browse(ctx context.Context, caller access.AccessContext, filter ListFilter, page, limit int64) ([]MentorProfile, int64, error)
	Get(ctx context.Context, caller access.AccessContext, id string) (*MentorProfile, error)
	GetBookable(ctx context.Context, id string) (*MentorProfile, error)
	UpsertOwn(ctx context.Context, caller access.AccessContext, req UpsertProfileRequest) (*MentorProfile, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementSessions(ctx context.Context, id string) error
	SetRating(ctx context.Context, id string, rating float64, reviews int) error
}

type MentorServiceImpl struct {
	Repo         MentorRepository
	Names        NameLookup
	Pool         PoolInvalidator
	Notifier     notification.Notifier
	Publisher    events.Publisher
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewMentorService(
	repo MentorRepository,
	names NameLookup,
	pool PoolInvalidator,
	notifier notification.Notifier,
	publisher events.Publisher,
	auditService audit.AuditService,
	logger *zap.Logger,
) MentorService {
	return &MentorServiceImpl{
		Repo:         repo,
		Names:        names,
		Pool:         pool,
		Notifier:     notifier,
		Publisher:    publisher,
		AuditService: auditService,
		Logger:       logger,
	}
}

// Browse lists bookable mentors. Admins may ask for hidden profiles as well.
func (s *MentorServiceImpl) Browse(ctx context.Context, caller access.AccessContext, filter ListFilter, page, limit int64) ([]MentorProfile, int64, error) {
	if filter.IncludeHidden && !access.CanPerform(caller, access.ActionModerate, access.ResourceMentorProfile) {
		filter.IncludeHidden = false
	}
	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

// Get hides unapproved or inactive profiles from everyone but their owner and moderators.
func (s *MentorServiceImpl) Get(ctx context.Context, caller access.AccessContext, id string) (*MentorProfile, error) {
	profile, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.Eligible() {
		return profile, nil
	}
	if caller.UserID == profile.ID.Hex() || access.CanPerform(caller, access.ActionModerate, access.ResourceMentorProfile) {
		return profile, nil
	}
	return nil, apperrors.WithMessage(apperrors.ErrNotFound, "mentor not found")
}

// GetBookable returns the profile only when the mentor is active and approved.
func (s *MentorServiceImpl) GetBookable(ctx context.Context, id string) (*MentorProfile, error) {
	profile, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !profile.Eligible() {
		return nil, ErrMentorUnavailable
	}
	return profile, nil
}

func (s *MentorServiceImpl) UpsertOwn(ctx context.Context, caller access.AccessContext, req UpsertProfileRequest) (*MentorProfile, error) {
	// Ownership alone always holds here since the profile id is the caller's id.
	if !access.HasPermission(caller, access.PermManageMentorProfile) ||
		!access.CanPerform(caller.ForResource(caller.UserID, caller.UserID), access.ActionUpdateOwn, access.ResourceMentorProfile) {
		return nil, apperrors.ErrForbidden
	}

	oid, err := primitive.ObjectIDFromHex(caller.UserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	name := ""
	if names, err := s.Names.NamesByIDs(ctx, []string{caller.UserID}); err == nil {
		name = names[caller.UserID]
	} else {
		s.Logger.Warn("could not resolve mentor name", zap.String("user_id", caller.UserID), zap.Error(err))
	}

	var location *string
	if req.Location != nil {
		if l := strings.TrimSpace(*req.Location); l != "" {
			location = &l
		}
	}

	saved, err := s.Repo.Upsert(ctx, &MentorProfile{
		ID:              oid,
		Name:            name,
		Bio:             strings.TrimSpace(req.Bio),
		Subjects:        trimAll(req.Subjects),
		HourlyRate:      req.HourlyRate,
		ExperienceLevel: recommendation.ExperienceLevel(req.ExperienceLevel),
		ResponseTime:    strings.TrimSpace(req.ResponseTime),
		Languages:       trimAll(req.Languages),
		Location:        location,
		Availability:    req.Availability,
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "mentor_profiles", saved.ID.Hex(), map[string]common_models.Change{
		"subjects":    {New: saved.Subjects},
		"hourly_rate": {New: saved.HourlyRate},
	})
	return saved, nil
}

func (s *MentorServiceImpl) SetApproved(ctx context.Context, id string, approved bool) error {
	profile, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SetApproved(ctx, id, approved); err != nil {
		return err
	}
	s.invalidate(ctx)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionApproval, "mentor_profiles", id, map[string]common_models.Change{
		"is_approved": {Old: profile.IsApproved, New: approved},
	})

	if approved && !profile.IsApproved {
		if err := s.Notifier.Notify(ctx, notification.Notification{
			UserID:  id,
			Type:    notification.TypeMentorApproved,
			Title:   "Your mentor profile is live",
			Message: "Students can now find and book you.",
			Link:    "/mentors/" + id,
		}); err != nil {
			s.Logger.Warn("approval notification failed", zap.String("mentor_id", id), zap.Error(err))
		}
		events.PublishAsync(s.Publisher, s.Logger, events.MentorApproved, map[string]string{"mentor_id": id})
	}
	return nil
}

func (s *MentorServiceImpl) SetActive(ctx context.Context, id string, active bool) error {
	profile, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate(ctx)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionStatus, "mentor_profiles", id, map[string]common_models.Change{
		"is_active": {Old: profile.IsActive, New: active},
	})
	return nil
}

func (s *MentorServiceImpl) IncrementSessions(ctx context.Context, id string) error {
	if err := s.Repo.IncrementSessions(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MentorServiceImpl) SetRating(ctx context.Context, id string, rating float64, reviews int) error {
	if err := s.Repo.SetRating(ctx, id, rating, reviews); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MentorServiceImpl) invalidate(ctx context.Context) {
	if s.Pool == nil {
		return
	}
	if err := s.Pool.Invalidate(ctx); err != nil {
		s.Logger.Warn("failed to invalidate mentor pool cache", zap.Error(err))
	}
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
