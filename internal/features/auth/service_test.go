package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/user"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	touched []string
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return user.ErrEmailTaken
	}
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeUsers) FindByIDs(context.Context, []string) ([]user.User, error) { return nil, nil }
func (f *fakeUsers) List(context.Context, user.ListFilter, int64, int64) ([]user.User, int64, error) {
	return nil, 0, nil
}
func (f *fakeUsers) UpdateRole(context.Context, string, access.Role) error { return nil }
func (f *fakeUsers) SetActive(_ context.Context, id string, active bool) error {
	u, err := f.FindByID(context.Background(), id)
	if err != nil {
		return err
	}
	u.IsActive = active
	return nil
}
func (f *fakeUsers) UpdateProfile(context.Context, string, user.UpdateProfileRequest) error {
	return nil
}
func (f *fakeUsers) TouchLogin(_ context.Context, id string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched = append(f.touched, id)
	return nil
}
func (f *fakeUsers) EnsureIndexes(context.Context) error { return nil }

type recordingAudit struct {
	mu      sync.Mutex
	actions []common_models.AuditAction
}

func (r *recordingAudit) LogChange(_ context.Context, action common_models.AuditAction, _ string, _ string, _ map[string]common_models.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return nil
}

func (r *recordingAudit) ListLogs(context.Context, audit.Filter, int64, int64) ([]common_models.AuditLog, int64, error) {
	return nil, 0, nil
}

type mailerSpy struct {
	sent chan string
}

func (m *mailerSpy) SendWelcome(_ context.Context, to, _ string, _ access.Role) error {
	m.sent <- to
	return nil
}

func newTestService(t *testing.T) (*AuthServiceImpl, *fakeUsers, *recordingAudit, *mailerSpy) {
	t.Helper()
	utils.SetSecret("test-secret")
	utils.SetExpiration(time.Hour)

	repo := &fakeUsers{byEmail: map[string]*user.User{}}
	rec := &recordingAudit{}
	mailer := &mailerSpy{sent: make(chan string, 1)}
	logger := zap.NewNop()
	svc := NewAuthService(repo, user.NewUserService(repo, rec, logger), rec, mailer, logger).(*AuthServiceImpl)
	return svc, repo, rec, mailer
}

func validRegistration() RegisterRequest {
	return RegisterRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "correct-horse", Role: "student"}
}

func TestRegisterHashesPasswordAndSendsWelcome(t *testing.T) {
	svc, repo, rec, mailer := newTestService(t)

	created, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, access.RoleStudent, created.Role)
	assert.True(t, created.IsActive)
	assert.NotEqual(t, "correct-horse", repo.byEmail["ada@example.com"].Password)
	assert.Contains(t, rec.actions, common_models.AuditActionCreate)

	select {
	case to := <-mailer.sent:
		assert.Equal(t, "ada@example.com", to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}
}

func TestRegisterRejectsStaffRolesAndDuplicates(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	req := validRegistration()
	req.Role = "admin"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), validRegistration())
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginIssuesTokenForValidCredentials(t *testing.T) {
	svc, repo, rec, _ := newTestService(t)
	created, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	session, err := svc.Login(context.Background(), " ADA@example.com", "correct-horse")
	require.NoError(t, err)

	claims, err := utils.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID.Hex(), claims.UserID)
	assert.Equal(t, string(access.RoleStudent), claims.Role)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	assert.NotNil(t, session.User.LastLogin)
	assert.Equal(t, []string{created.ID.Hex()}, repo.touched)
	assert.Contains(t, rec.actions, common_models.AuditActionLogin)
}

func TestLoginFailures(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	created, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, repo.SetActive(context.Background(), created.ID.Hex(), false))
	_, err = svc.Login(context.Background(), "ada@example.com", "correct-horse")
	assert.ErrorIs(t, err, apperrors.ErrInactiveAccount)
}
