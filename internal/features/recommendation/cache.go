package recommendation

import (
	"context"
	"errors"
	"time"

	"eduvibe/internal/cache"
	"eduvibe/internal/metrics"

	"go.uber.org/zap"
)

const mentorPoolKey = "recommendation:mentor_pool"

// CachedMentorSource keeps the eligible mentor pool in Redis for a short TTL.
type CachedMentorSource struct {
	next    MentorSource
	cache   *cache.Repository
	ttl     time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewCachedMentorSource(next MentorSource, repo *cache.Repository, ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *CachedMentorSource {
	return &CachedMentorSource{next: next, cache: repo, ttl: ttl, logger: logger, metrics: m}
}

func (s *CachedMentorSource) ListEligibleMentors(ctx context.Context) ([]MentorCandidate, error) {
	if s.cache.Enabled() {
		var pool []MentorCandidate
		err := s.cache.Get(ctx, mentorPoolKey, &pool)
		switch {
		case err == nil:
			s.metrics.RecordCacheLookup("mentor_pool", true)
			return pool, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			s.logger.Warn("mentor pool cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup("mentor_pool", false)
	}

	pool, err := s.next.ListEligibleMentors(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, mentorPoolKey, pool, s.ttl); err != nil {
		s.logger.Warn("mentor pool cache write failed", zap.Error(err))
	}
	return pool, nil
}

// Invalidate drops the cached pool after a mentor profile, approval or rating changes.
func (s *CachedMentorSource) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, mentorPoolKey)
}
