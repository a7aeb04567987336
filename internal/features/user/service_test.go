package user

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockUserRepo struct {
	users map[string]*User
}

func newMockUserRepo(users ...*User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*User{}}
	for _, u := range users {
		m.users[u.ID.Hex()] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	m.users[u.ID.Hex()] = u
	return nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockUserRepo) FindByIDs(_ context.Context, ids []string) ([]User, error) {
	var out []User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) List(context.Context, ListFilter, int64, int64) ([]User, int64, error) {
	var out []User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, id string, role access.Role) error {
	m.users[id].Role = role
	return nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id string, active bool) error {
	m.users[id].IsActive = active
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, id string, req UpdateProfileRequest) error {
	u := m.users[id]
	if req.Name != "" {
		u.Name = req.Name
	}
	if req.Interests != nil {
		u.Interests = req.Interests
	}
	if req.Languages != nil {
		u.Languages = req.Languages
	}
	return nil
}

func (m *mockUserRepo) TouchLogin(context.Context, string, time.Time) error { return nil }
func (m *mockUserRepo) EnsureIndexes(context.Context) error                 { return nil }

type nopAudit struct{ entries []common_models.AuditAction }

func (n *nopAudit) LogChange(_ context.Context, action common_models.AuditAction, _ string, _ string, _ map[string]common_models.Change) error {
	n.entries = append(n.entries, action)
	return nil
}

func (n *nopAudit) ListLogs(context.Context, audit.Filter, int64, int64) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

func newUser(role access.Role) *User {
	return &User{ID: primitive.NewObjectID(), Name: "U " + string(role), Email: string(role) + "@example.com", Role: role, IsActive: true}
}

func TestGetUserOwnershipAndAdminRead(t *testing.T) {
	student := newUser(access.RoleStudent)
	other := newUser(access.RoleMentor)
	svc := NewUserService(newMockUserRepo(student, other), &nopAudit{}, zap.NewNop())
	ctx := context.Background()

	got, err := svc.GetUser(ctx, access.NewContext(student.ID.Hex(), access.RoleStudent), student.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, student.Email, got.Email)

	_, err = svc.GetUser(ctx, access.NewContext(student.ID.Hex(), access.RoleStudent), other.ID.Hex())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.GetUser(ctx, access.NewContext("admin", access.RoleAdmin), other.ID.Hex())
	assert.NoError(t, err)
}

func TestChangeRole(t *testing.T) {
	target := newUser(access.RoleStudent)
	auditLog := &nopAudit{}
	svc := NewUserService(newMockUserRepo(target), auditLog, zap.NewNop())
	super := access.NewContext("super-1", access.RoleSuperAdmin)

	require.NoError(t, svc.ChangeRole(context.Background(), super, target.ID.Hex(), access.RoleMentor))
	assert.Equal(t, access.RoleMentor, target.Role)
	assert.Equal(t, []common_models.AuditAction{common_models.AuditActionUpdate}, auditLog.entries)

	err := svc.ChangeRole(context.Background(), super, target.ID.Hex(), access.Role("owner"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	self := access.NewContext(target.ID.Hex(), access.RoleSuperAdmin)
	assert.ErrorIs(t, svc.ChangeRole(context.Background(), self, target.ID.Hex(), access.RoleAdmin), apperrors.ErrForbidden)
}

func TestSetActiveWritesAudit(t *testing.T) {
	target := newUser(access.RoleMentor)
	auditLog := &nopAudit{}
	svc := NewUserService(newMockUserRepo(target), auditLog, zap.NewNop())

	require.NoError(t, svc.SetActive(context.Background(), target.ID.Hex(), false))

	assert.False(t, target.IsActive)
	assert.Equal(t, []common_models.AuditAction{common_models.AuditActionStatus}, auditLog.entries)
}

func TestUpdateOwnProfile(t *testing.T) {
	student := newUser(access.RoleStudent)
	svc := NewUserService(newMockUserRepo(student), &nopAudit{}, zap.NewNop())

	got, err := svc.UpdateOwnProfile(context.Background(), access.NewContext(student.ID.Hex(), access.RoleStudent),
		UpdateProfileRequest{Interests: []string{"Math"}, Languages: []string{"English"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Math"}, got.Interests)

	_, err = svc.UpdateOwnProfile(context.Background(), access.NewContext(student.ID.Hex(), access.Role("ghost")), UpdateProfileRequest{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

type fakeHistory struct {
	subjects []string
	err      error
}

func (f fakeHistory) BookedSubjects(context.Context, string) ([]string, error) {
	return f.subjects, f.err
}

func TestStudentProfileSource(t *testing.T) {
	student := newUser(access.RoleStudent)
	student.Interests = []string{"Physics"}
	student.Languages = []string{"Spanish"}
	repo := newMockUserRepo(student)

	profile, err := NewStudentProfileSource(repo, fakeHistory{subjects: []string{"Math"}}).GetStudentProfile(context.Background(), student.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{"Physics"}, profile.Interests)
	assert.Equal(t, []string{"Spanish"}, profile.Languages)
	assert.Equal(t, []string{"Math"}, profile.BookedSubjects)

	_, err = NewStudentProfileSource(repo, fakeHistory{err: errors.New("down")}).GetStudentProfile(context.Background(), student.ID.Hex())
	assert.Error(t, err)
}
