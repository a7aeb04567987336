package database

import (
	"errors"
	"fmt"

	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ParseID converts a hex id from a path or body into an ObjectID.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("invalid id %q", id))
	}
	return oid, nil
}

// NotFound maps mongo.ErrNoDocuments to a typed not-found error and passes anything else through.
func NotFound(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperrors.Wrap(err, apperrors.ErrNotFound, what+" not found")
	}
	return err
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
