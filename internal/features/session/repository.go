package session

import (
	"context"
	"fmt"
	"time"

	"eduvibe/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Session, int64, error)
	HasOverlap(ctx context.Context, mentorID string, start, end time.Time) (bool, error)
	// Transition moves a session from one status to another and reports false when
	// the stored status was no longer from.
	Transition(ctx context.Context, id primitive.ObjectID, from, to Status, reason string, at time.Time) (bool, error)
	SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error
	BookedSubjects(ctx context.Context, studentID string) ([]string, error)
	DueForReminder(ctx context.Context, from, to time.Time) ([]Session, error)
	MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	StalePending(ctx context.Context, before time.Time) ([]Session, error)
	EnsureIndexes(ctx context.Context) error
}

type SessionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewSessionRepository(mongodb *database.MongodbDB) SessionRepository {
	return &SessionRepositoryImpl{
		Collection: mongodb.DB.Collection("sessions"),
	}
}

var openStatuses = bson.A{StatusPending, StatusConfirmed}

func (r *SessionRepositoryImpl) Create(ctx context.Context, session *Session) error {
	if _, err := r.Collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SessionRepositoryImpl) FindByID(ctx context.Context, id string) (*Session, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&s); err != nil {
		return nil, database.NotFound(err, "session")
	}
	return &s, nil
}

func (r *SessionRepositoryImpl) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Session, int64, error) {
	query := buildQuery(filter)

	opts := options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: -1}})
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

	sessions := []Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func buildQuery(filter ListFilter) bson.M {
	query := bson.M{}
	if filter.StudentID != "" {
		query["student_id"] = filter.StudentID
	}
	if filter.MentorID != "" {
		query["mentor_id"] = filter.MentorID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = *filter.From
		}
		if filter.To != nil {
			window["$lt"] = *filter.To
		}
		query["scheduled_at"] = window
	}
	return query
}

func (r *SessionRepositoryImpl) HasOverlap(ctx context.Context, mentorID string, start, end time.Time) (bool, error) {
	n, err := r.Collection.CountDocuments(ctx, bson.M{
		"mentor_id":    mentorID,
		"status":       bson.M{"$in": openStatuses},
		"scheduled_at": bson.M{"$lt": end},
		"ends_at":      bson.M{"$gt": start},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SessionRepositoryImpl) Transition(ctx context.Context, id primitive.ObjectID, from, to Status, reason string, at time.Time) (bool, error) {
	set := bson.M{"status": to, "updated_at": at}
	if reason != "" {
		set["status_reason"] = reason
	}
	if to == StatusCompleted {
		set["completed_at"] = at
	}

	res, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update session %s: %w", id.Hex(), err)
	}
	return res.MatchedCount == 1, nil
}

func (r *SessionRepositoryImpl) SetPaymentStatus(ctx context.Context, id string, status PaymentStatus) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}
	res, err := r.Collection.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"payment_status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return database.NotFound(mongo.ErrNoDocuments, "session")
	}
	return nil
}

// BookedSubjects returns the distinct subjects of sessions the student did not abandon.
func (r *SessionRepositoryImpl) BookedSubjects(ctx context.Context, studentID string) ([]string, error) {
	values, err := r.Collection.Distinct(ctx, "subject", bson.M{
		"student_id": studentID,
		"status":     bson.M{"$in": bson.A{StatusPending, StatusConfirmed, StatusCompleted}},
	})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *SessionRepositoryImpl) DueForReminder(ctx context.Context, from, to time.Time) ([]Session, error) {
	return r.find(ctx, bson.M{
		"status":           StatusConfirmed,
		"reminder_sent_at": bson.M{"$exists": false},
		"scheduled_at":     bson.M{"$gte": from, "$lte": to},
	})
}

func (r *SessionRepositoryImpl) MarkReminded(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "reminder_sent_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"reminder_sent_at": at}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *SessionRepositoryImpl) StalePending(ctx context.Context, before time.Time) ([]Session, error) {
	return r.find(ctx, bson.M{
		"status":       StatusPending,
		"scheduled_at": bson.M{"$lt": before},
	})
}

func (r *SessionRepositoryImpl) find(ctx context.Context, query bson.M) ([]Session, error) {
	cursor, err := r.Collection.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "scheduled_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []Session{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SessionRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "scheduled_at", Value: -1}}},
		{Keys: bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}}},
	})
	return err
}
