package email

import (
	"context"
	"time"

	"eduvibe/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// EmailStore records delivery attempts.
type EmailStore interface {
	Create(ctx context.Context, email *Email) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status EmailStatus, errorMsg string) error
}

type EmailRepository struct {
	col *mongo.Collection
}

func NewEmailRepository(db *database.MongodbDB) *EmailRepository {
	return &EmailRepository{
		col: db.DB.Collection("emails"),
	}
}

func (r *EmailRepository) Create(ctx context.Context, email *Email) error {
	if email.ID.IsZero() {
		email.ID = primitive.NewObjectID()
	}
	email.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, email)
	return err
}

func (r *EmailRepository) UpdateStatus(
	ctx context.Context,
	id primitive.ObjectID,
	status EmailStatus,
	errorMsg string,
) error {
	set := bson.M{
		"status":        status,
		"error_message": errorMsg,
	}
	if status == EmailSent {
		set["sent_at"] = time.Now().UTC()
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}
