package mentor

import (
	"context"
	"testing"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/notification"
	"eduvibe/internal/features/recommendation"
	"eduvibe/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memoryMentors struct {
	profiles map[string]*MentorProfile
}

func newMemoryMentors(profiles ...*MentorProfile) *memoryMentors {
	m := &memoryMentors{profiles: map[string]*MentorProfile{}}
	for _, p := range profiles {
		m.profiles[p.ID.Hex()] = p
	}
	return m
}

func (m *memoryMentors) Upsert(_ context.Context, p *MentorProfile) (*MentorProfile, error) {
	existing, ok := m.profiles[p.ID.Hex()]
	if !ok {
		cp := *p
		cp.IsActive = true
		cp.CreatedAt = time.Now()
		m.profiles[p.ID.Hex()] = &cp
		return &cp, nil
	}
	existing.Name, existing.Bio, existing.Subjects = p.Name, p.Bio, p.Subjects
	existing.HourlyRate, existing.Languages = p.HourlyRate, p.Languages
	return existing, nil
}

func (m *memoryMentors) FindByID(_ context.Context, id string) (*MentorProfile, error) {
	if p, ok := m.profiles[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *memoryMentors) List(_ context.Context, f ListFilter, _, _ int64) ([]MentorProfile, int64, error) {
	var out []MentorProfile
	for _, p := range m.profiles {
		if f.IncludeHidden || p.Eligible() {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryMentors) ListEligible(context.Context) ([]MentorProfile, error) {
	var out []MentorProfile
	for _, p := range m.profiles {
		if p.Eligible() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryMentors) SetApproved(_ context.Context, id string, approved bool) error {
	m.profiles[id].IsApproved = approved
	return nil
}

func (m *memoryMentors) SetActive(_ context.Context, id string, active bool) error {
	m.profiles[id].IsActive = active
	return nil
}

func (m *memoryMentors) IncrementSessions(_ context.Context, id string) error {
	m.profiles[id].TotalSessions++
	return nil
}

func (m *memoryMentors) SetRating(_ context.Context, id string, rating float64, reviews int) error {
	m.profiles[id].Rating, m.profiles[id].TotalReviews = rating, reviews
	return nil
}

func (m *memoryMentors) EnsureIndexes(context.Context) error { return nil }

type countingPool struct{ invalidations int }

func (c *countingPool) Invalidate(context.Context) error {
	c.invalidations++
	return nil
}

type staticNames map[string]string

func (s staticNames) NamesByIDs(context.Context, []string) (map[string]string, error) {
	return s, nil
}

type inbox struct{ sent []notification.Notification }

func (i *inbox) Notify(_ context.Context, n notification.Notification) error {
	i.sent = append(i.sent, n)
	return nil
}

type nopAudit struct{}

func (nopAudit) LogChange(context.Context, common_models.AuditAction, string, string, map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(context.Context, audit.Filter, int64, int64) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

func profile(approved, active bool) *MentorProfile {
	return &MentorProfile{
		ID:              primitive.NewObjectID(),
		Name:            "Grace",
		Subjects:        []string{"Math"},
		HourlyRate:      40,
		ExperienceLevel: recommendation.ExperienceExpert,
		Languages:       []string{"English"},
		IsApproved:      approved,
		IsActive:        active,
	}
}

func newService(repo MentorRepository) (*MentorServiceImpl, *countingPool, *inbox) {
	pool, box := &countingPool{}, &inbox{}
	svc := NewMentorService(repo, staticNames{}, pool, box, nil, nopAudit{}, zap.NewNop()).(*MentorServiceImpl)
	return svc, pool, box
}

func TestUpsertOwnStartsUnapprovedAndInvalidatesPool(t *testing.T) {
	mentorID := primitive.NewObjectID().Hex()
	repo := newMemoryMentors()
	svc, pool, _ := newService(repo)
	svc.Names = staticNames{mentorID: "Grace Hopper"}

	saved, err := svc.UpsertOwn(context.Background(), access.NewContext(mentorID, access.RoleMentor), UpsertProfileRequest{
		Bio:             "Compiler engineer who loves teaching.",
		Subjects:        []string{" Math ", ""},
		HourlyRate:      55,
		ExperienceLevel: "expert",
		Languages:       []string{"English"},
	})
	require.NoError(t, err)

	assert.Equal(t, mentorID, saved.ID.Hex())
	assert.Equal(t, "Grace Hopper", saved.Name)
	assert.Equal(t, []string{"Math"}, saved.Subjects)
	assert.False(t, saved.IsApproved)
	assert.Equal(t, 1, pool.invalidations)
}

func TestUpsertOwnRejectsStudents(t *testing.T) {
	repo := newMemoryMentors()
	svc, pool, _ := newService(repo)

	_, err := svc.UpsertOwn(context.Background(), access.NewContext(primitive.NewObjectID().Hex(), access.RoleStudent), UpsertProfileRequest{
		Bio:             "Experienced tutor who is actually a student account.",
		Subjects:        []string{"Math"},
		HourlyRate:      30,
		ExperienceLevel: "beginner",
		Languages:       []string{"English"},
	})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Empty(t, repo.profiles)
	assert.Zero(t, pool.invalidations)
}

func TestHiddenProfilesVisibleToOwnerAndModerators(t *testing.T) {
	pending := profile(false, true)
	svc, _, _ := newService(newMemoryMentors(pending))
	id := pending.ID.Hex()

	_, err := svc.Get(context.Background(), access.NewContext(primitive.NewObjectID().Hex(), access.RoleStudent), id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := svc.Get(context.Background(), access.NewContext(id, access.RoleMentor), id)
	require.NoError(t, err)
	assert.Equal(t, pending.ID, got.ID)

	_, err = svc.Get(context.Background(), access.NewContext("admin", access.RoleAdmin), id)
	assert.NoError(t, err)
}

func TestBrowseIgnoresIncludeHiddenForStudents(t *testing.T) {
	svc, _, _ := newService(newMemoryMentors(profile(true, true), profile(false, true)))

	_, total, err := svc.Browse(context.Background(), access.NewContext("s", access.RoleStudent), ListFilter{IncludeHidden: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.Browse(context.Background(), access.NewContext("a", access.RoleAdmin), ListFilter{IncludeHidden: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestApprovalNotifiesOnceAndFeedsPool(t *testing.T) {
	pending := profile(false, true)
	repo := newMemoryMentors(pending)
	svc, pool, box := newService(repo)
	id := pending.ID.Hex()

	_, err := svc.GetBookable(context.Background(), id)
	assert.ErrorIs(t, err, ErrMentorUnavailable)

	require.NoError(t, svc.SetApproved(context.Background(), id, true))
	require.NoError(t, svc.SetApproved(context.Background(), id, true))

	require.Len(t, box.sent, 1)
	assert.Equal(t, notification.TypeMentorApproved, box.sent[0].Type)
	assert.Equal(t, 2, pool.invalidations)

	candidates, err := NewEligiblePool(repo).ListEligibleMentors(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, id, candidates[0].ID)

	require.NoError(t, svc.SetActive(context.Background(), id, false))
	candidates, err = NewEligiblePool(repo).ListEligibleMentors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestStatsUpdatesInvalidatePool(t *testing.T) {
	p := profile(true, true)
	repo := newMemoryMentors(p)
	svc, pool, _ := newService(repo)

	require.NoError(t, svc.IncrementSessions(context.Background(), p.ID.Hex()))
	require.NoError(t, svc.SetRating(context.Background(), p.ID.Hex(), 4.5, 2))

	assert.Equal(t, 1, p.TotalSessions)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, 2, pool.invalidations)
}
