package mentor

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eduvibe/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MentorRepository interface {
	Upsert(ctx context.Context, profile *MentorProfile) (*MentorProfile, error)
	FindByID(ctx context.Context, id string) (*MentorProfile, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]MentorProfile, int64, error)
	ListEligible(ctx context.Context) ([]MentorProfile, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	SetActive(ctx context.Context, id string, active bool) error
	IncrementSessions(ctx context.Context, id string) error
	SetRating(ctx context.Context, id string, rating float64, reviews int) error
	EnsureIndexes(ctx context.Context) error
}

type MentorRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewMentorRepository(mongodb *database.MongodbDB) MentorRepository {
	return &MentorRepositoryImpl{
		Collection: mongodb.DB.Collection("mentor_profiles"),
	}
}

var eligible = bson.M{"is_active": true, "is_approved": true}

// Upsert writes the editable fields. Stats and moderation flags are only set on insert.
func (r *MentorRepositoryImpl) Upsert(ctx context.Context, p *MentorProfile) (*MentorProfile, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"name":             p.Name,
			"bio":              p.Bio,
			"subjects":         p.Subjects,
			"hourly_rate":      p.HourlyRate,
			"experience_level": p.ExperienceLevel,
			"response_time":    p.ResponseTime,
			"languages":        p.Languages,
			"location":         p.Location,
			"availability":     p.Availability,
			"updated_at":       now,
		},
		"$setOnInsert": bson.M{
			"rating":         0.0,
			"total_reviews":  0,
			"total_sessions": 0,
			"is_approved":    false,
			"is_active":      true,
			"created_at":     now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var saved MentorProfile
	if err := r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": p.ID}, update, opts).Decode(&saved); err != nil {
		return nil, fmt.Errorf("upsert mentor profile: %w", err)
	}
	return &saved, nil
}

func (r *MentorRepositoryImpl) FindByID(ctx context.Context, id string) (*MentorProfile, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var profile MentorProfile
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&profile); err != nil {
		return nil, database.NotFound(err, "mentor")
	}
	return &profile, nil
}

func (r *MentorRepositoryImpl) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]MentorProfile, int64, error) {
	query := bson.M{}
	if !filter.IncludeHidden {
		for k, v := range eligible {
			query[k] = v
		}
	}
	if s := strings.TrimSpace(filter.Subject); s != "" {
		query["subjects"] = s
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		query["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"bio": pattern}, bson.M{"subjects": pattern}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: 1}})
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

	profiles := []MentorProfile{}
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

func (r *MentorRepositoryImpl) ListEligible(ctx context.Context) ([]MentorProfile, error) {
	cursor, err := r.Collection.Find(ctx, eligible)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []MentorProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *MentorRepositoryImpl) SetApproved(ctx context.Context, id string, approved bool) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"is_approved": approved}})
}

func (r *MentorRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"is_active": active}})
}

func (r *MentorRepositoryImpl) IncrementSessions(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"$inc": bson.M{"total_sessions": 1}})
}

func (r *MentorRepositoryImpl) SetRating(ctx context.Context, id string, rating float64, reviews int) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"rating": rating, "total_reviews": reviews}})
}

func (r *MentorRepositoryImpl) update(ctx context.Context, id string, update bson.M) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
		update["$set"] = set
	}
	set["updated_at"] = time.Now().UTC()

	res, err := r.Collection.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update mentor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.NotFound(mongo.ErrNoDocuments, "mentor")
	}
	return nil
}

func (r *MentorRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "is_approved", Value: 1}, {Key: "rating", Value: -1}}},
		{Keys: bson.D{{Key: "subjects", Value: 1}}},
	})
	return err
}
