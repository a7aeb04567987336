package audit

import (
	"context"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ActorNamer resolves user ids to display names for the audit listing.
type ActorNamer interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter Filter, page, limit int64) ([]common_models.AuditLog, int64, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Names  ActorNamer
	Logger *zap.Logger
}

func NewAuditService(repo AuditRepository, names ActorNamer, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Names:  names,
		Logger: logger,
	}
}

// LogChange records who did what. The actor comes from the request claims, "system" otherwise.
func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := "system"
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		actorID = claims.UserID
	}

	entry := common_models.AuditLog{
		ID:        primitive.NewObjectID(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, entry); err != nil {
		s.Logger.Warn("failed to write audit log",
			zap.String("module", module),
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter Filter, page, limit int64) ([]common_models.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	logs, total, err := s.Repo.List(ctx, filter, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}

	if s.Names == nil || len(logs) == 0 {
		return logs, total, nil
	}

	ids := make([]string, 0, len(logs))
	for _, l := range logs {
		if l.ActorID != "system" {
			ids = append(ids, l.ActorID)
		}
	}
	names, err := s.Names.NamesByIDs(ctx, ids)
	if err != nil {
		s.Logger.Debug("could not resolve audit actor names", zap.Error(err))
		return logs, total, nil
	}
	for i := range logs {
		logs[i].ActorName = names[logs[i].ActorID]
	}
	return logs, total, nil
}
