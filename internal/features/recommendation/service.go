package recommendation

import (
	"context"

	"eduvibe/internal/metrics"

	"go.uber.org/zap"
)

const errCandidatesUnavailable = "mentor candidates are temporarily unavailable"

type RecommendationService interface {
	GetRecommendations(ctx context.Context, studentID string, filters Filters, limit int) Result
	GetPopularSubjects(ctx context.Context, limit int) ([]SubjectCount, error)
}

type RecommendationServiceImpl struct {
	Mentors  MentorSource
	Profiles ProfileSource
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

func NewRecommendationService(mentors MentorSource, profiles ProfileSource, logger *zap.Logger, m *metrics.Metrics) RecommendationService {
	return &RecommendationServiceImpl{
		Mentors:  mentors,
		Profiles: profiles,
		Logger:   logger,
		Metrics:  m,
	}
}

// GetRecommendations never returns a Go error; pool failures surface as Success=false.
// An explicit limit wins over filters.Limit.
func (s *RecommendationServiceImpl) GetRecommendations(ctx context.Context, studentID string, filters Filters, limit int) Result {
	if limit <= 0 {
		limit = filters.Limit
	}

	pool, err := s.Mentors.ListEligibleMentors(ctx)
	if err != nil {
		s.Logger.Error("failed to load mentor candidates",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		s.Metrics.ObserveRecommendation("failure", -1)
		return Result{Success: false, Error: errCandidatesUnavailable, Recommendations: []MentorRecommendation{}}
	}

	profile := s.loadProfile(ctx, studentID)

	recs := Rank(pool, filters, profile, limit)

	s.Logger.Debug("recommendations computed",
		zap.String("student_id", studentID),
		zap.Int("pool", len(pool)),
		zap.Int("returned", len(recs)),
	)
	s.Metrics.ObserveRecommendation("success", len(pool))

	return Result{Success: true, Recommendations: recs}
}

// loadProfile degrades to no profile; personalisation is best effort.
func (s *RecommendationServiceImpl) loadProfile(ctx context.Context, studentID string) *StudentProfile {
	if s.Profiles == nil || studentID == "" {
		return nil
	}
	profile, err := s.Profiles.GetStudentProfile(ctx, studentID)
	if err != nil {
		s.Logger.Warn("student profile unavailable, ranking without it",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return nil
	}
	return profile
}

func (s *RecommendationServiceImpl) GetPopularSubjects(ctx context.Context, limit int) ([]SubjectCount, error) {
	pool, err := s.Mentors.ListEligibleMentors(ctx)
	if err != nil {
		s.Logger.Error("failed to load mentor candidates for popular subjects", zap.Error(err))
		return nil, err
	}
	return PopularSubjects(pool, limit), nil
}
