package audit

import (
	"context"
	"errors"
	"testing"

	common_models "eduvibe/internal/common/models"
	"eduvibe/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryRepo struct {
	logs    []common_models.AuditLog
	failing bool
}

func (m *memoryRepo) Create(_ context.Context, log common_models.AuditLog) error {
	if m.failing {
		return errors.New("insert failed")
	}
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryRepo) List(_ context.Context, _ Filter, limit, offset int64) ([]common_models.AuditLog, int64, error) {
	end := min(int64(len(m.logs)), offset+limit)
	if offset > end {
		return nil, int64(len(m.logs)), nil
	}
	out := append([]common_models.AuditLog(nil), m.logs[offset:end]...)
	return out, int64(len(m.logs)), nil
}

func (m *memoryRepo) EnsureIndexes(context.Context) error { return nil }

type staticNames map[string]string

func (s staticNames) NamesByIDs(context.Context, []string) (map[string]string, error) {
	return s, nil
}

func TestLogChangeUsesActorFromClaims(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewAuditService(repo, nil, zap.NewNop())

	ctx := utils.WithClaims(context.Background(), &utils.UserClaims{UserID: "admin-1", Role: "admin"})
	require.NoError(t, svc.LogChange(ctx, common_models.AuditActionApproval, "mentor_profiles", "m-1", nil))
	require.NoError(t, svc.LogChange(context.Background(), common_models.AuditActionCron, "sessions", "s-1", nil))

	require.Len(t, repo.logs, 2)
	assert.Equal(t, "admin-1", repo.logs[0].ActorID)
	assert.Equal(t, "system", repo.logs[1].ActorID)
}

func TestLogChangeReturnsRepositoryError(t *testing.T) {
	svc := NewAuditService(&memoryRepo{failing: true}, nil, zap.NewNop())

	assert.Error(t, svc.LogChange(context.Background(), common_models.AuditActionCreate, "users", "u-1", nil))
}

func TestListLogsResolvesActorNames(t *testing.T) {
	repo := &memoryRepo{logs: []common_models.AuditLog{{ActorID: "u-1"}, {ActorID: "system"}}}
	svc := NewAuditService(repo, staticNames{"u-1": "Ada"}, zap.NewNop())

	logs, total, err := svc.ListLogs(context.Background(), Filter{}, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "Ada", logs[0].ActorName)
	assert.Empty(t, logs[1].ActorName)
}
