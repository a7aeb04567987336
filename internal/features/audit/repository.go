package audit

import (
	"context"
	"fmt"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Filter struct {
	Module   string
	RecordID string
	ActorID  string
	Action   common_models.AuditAction
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.Module != "" {
		q["module"] = f.Module
	}
	if f.RecordID != "" {
		q["record_id"] = f.RecordID
	}
	if f.ActorID != "" {
		q["actor_id"] = f.ActorID
	}
	if f.Action != "" {
		q["action"] = f.Action
	}
	return q
}

type AuditRepository interface {
	Create(ctx context.Context, log common_models.AuditLog) error
	List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error)
	EnsureIndexes(ctx context.Context) error
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_logs"),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, log common_models.AuditLog) error {
	_, err := r.Collection.InsertOne(ctx, log)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filter Filter, limit, offset int64) ([]common_models.AuditLog, int64, error) {
	query := filter.query()

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}

	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})
	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find audit logs: %w", err)
	}

	logs := []common_models.AuditLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *AuditRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "module", Value: 1}, {Key: "record_id", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	})
	return err
}
