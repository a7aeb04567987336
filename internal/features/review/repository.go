package review

import (
	"context"
	"fmt"
	"math"

	"eduvibe/internal/database"
	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrAlreadyReviewed = apperrors.WithMessage(apperrors.ErrConflict, "session already reviewed")

type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	ListByMentor(ctx context.Context, mentorID string, includeHidden bool, limit, offset int64) ([]Review, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	SetHidden(ctx context.Context, id primitive.ObjectID, hidden bool) error
	Summary(ctx context.Context, mentorID string) (RatingSummary, error)
	EnsureIndexes(ctx context.Context) error
}

type ReviewRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReviewRepository(mongodb *database.MongodbDB) ReviewRepository {
	return &ReviewRepositoryImpl{
		Collection: mongodb.DB.Collection("reviews"),
	}
}

func (r *ReviewRepositoryImpl) Create(ctx context.Context, review *Review) error {
	if _, err := r.Collection.InsertOne(ctx, review); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *ReviewRepositoryImpl) FindByID(ctx context.Context, id string) (*Review, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var review Review
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&review); err != nil {
		return nil, database.NotFound(err, "review")
	}
	return &review, nil
}

func (r *ReviewRepositoryImpl) ListByMentor(ctx context.Context, mentorID string, includeHidden bool, limit, offset int64) ([]Review, int64, error) {
	query := bson.M{"mentor_id": mentorID}
	if !includeHidden {
		query["hidden"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	reviews := []Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return database.NotFound(mongo.ErrNoDocuments, "review")
	}
	return nil
}

func (r *ReviewRepositoryImpl) SetHidden(ctx context.Context, id primitive.ObjectID, hidden bool) error {
	res, err := r.Collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"hidden": hidden}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return database.NotFound(mongo.ErrNoDocuments, "review")
	}
	return nil
}

// Summary averages the visible ratings of one mentor, rounded to one decimal.
func (r *ReviewRepositoryImpl) Summary(ctx context.Context, mentorID string) (RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"mentor_id": mentorID, "hidden": false}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return RatingSummary{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return RatingSummary{}, err
	}
	if len(rows) == 0 {
		return RatingSummary{}, nil
	}
	return RatingSummary{Average: math.Round(rows[0].Avg*10) / 10, Count: rows[0].Count}, nil
}

func (r *ReviewRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "hidden", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
