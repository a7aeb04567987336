package scheduler

import (
	"context"
	"time"

	"eduvibe/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RunRepository interface {
	Create(ctx context.Context, run *JobRun) error
	Finish(ctx context.Context, run *JobRun) error
	List(ctx context.Context, job string, limit int64) ([]JobRun, error)
	EnsureIndexes(ctx context.Context) error
}

type RunRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRunRepository(db *database.MongodbDB) RunRepository {
	return &RunRepositoryImpl{
		Collection: db.DB.Collection("job_runs"),
	}
}

func (r *RunRepositoryImpl) Create(ctx context.Context, run *JobRun) error {
	_, err := r.Collection.InsertOne(ctx, run)
	return err
}

func (r *RunRepositoryImpl) Finish(ctx context.Context, run *JobRun) error {
	_, err := r.Collection.UpdateByID(ctx, run.ID, bson.M{"$set": bson.M{
		"ended_at": run.EndedAt,
		"status":   run.Status,
		"affected": run.Affected,
		"error":    run.Error,
	}})
	return err
}

func (r *RunRepositoryImpl) List(ctx context.Context, job string, limit int64) ([]JobRun, error) {
	filter := bson.M{}
	if job != "" {
		filter["job"] = job
	}
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := []JobRun{}
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// EnsureIndexes keeps 30 days of run history.
func (r *RunRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "job", Value: 1}, {Key: "started_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "started_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32((30 * 24 * time.Hour).Seconds())),
		},
	})
	return err
}
