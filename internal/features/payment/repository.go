package payment

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

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindBySession(ctx context.Context, sessionID string) (*Payment, error)
	FindByIntent(ctx context.Context, intentID string) (*Payment, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int64) ([]Payment, int64, error)
	// Resolve moves a payment out of any status in from. It reports whether a document changed.
	Resolve(ctx context.Context, id primitive.ObjectID, from []Status, to Status, reason string, at time.Time) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type PaymentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPaymentRepository(mongodb *database.MongodbDB) PaymentRepository {
	return &PaymentRepositoryImpl{
		Collection: mongodb.DB.Collection("payments"),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *Payment) error {
	if _, err := r.Collection.InsertOne(ctx, payment); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id string) (*Payment, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *PaymentRepositoryImpl) FindBySession(ctx context.Context, sessionID string) (*Payment, error) {
	return r.findOne(ctx, bson.M{"session_id": sessionID})
}

func (r *PaymentRepositoryImpl) FindByIntent(ctx context.Context, intentID string) (*Payment, error) {
	return r.findOne(ctx, bson.M{"intent_id": intentID})
}

func (r *PaymentRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*Payment, error) {
	var p Payment
	if err := r.Collection.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, database.NotFound(err, "payment")
	}
	return &p, nil
}

func (r *PaymentRepositoryImpl) ListByStudent(ctx context.Context, studentID string, limit, offset int64) ([]Payment, int64, error) {
	query := bson.M{"student_id": studentID}
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

	payments := []Payment{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, 0, err
	}
	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepositoryImpl) Resolve(ctx context.Context, id primitive.ObjectID, from []Status, to Status, reason string, at time.Time) (bool, error) {
	set := bson.M{"status": to, "failure_reason": reason, "updated_at": at}
	if to == StatusSucceeded {
		set["paid_at"] = at
	}
	res, err := r.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *PaymentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "intent_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}
