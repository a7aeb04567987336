package mentor

import (
	"context"

	"eduvibe/internal/features/recommendation"
)

// EligiblePool reads active, approved mentors straight from Mongo.
type EligiblePool struct {
	Repo MentorRepository
}

func NewEligiblePool(repo MentorRepository) *EligiblePool {
	return &EligiblePool{Repo: repo}
}

func (p *EligiblePool) ListEligibleMentors(ctx context.Context) ([]recommendation.MentorCandidate, error) {
	profiles, err := p.Repo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]recommendation.MentorCandidate, 0, len(profiles))
	for i := range profiles {
		out = append(out, profiles[i].ToCandidate())
	}
	return out, nil
}
