package file

import (
	"context"
	"fmt"

	"eduvibe/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FileRepository interface {
	Save(ctx context.Context, file *File) error
	Get(ctx context.Context, id string) (*File, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int64) ([]File, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type FileRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewFileRepository(mongodb *database.MongodbDB) FileRepository {
	return &FileRepositoryImpl{
		Collection: mongodb.DB.Collection("files"),
	}
}

func (r *FileRepositoryImpl) Save(ctx context.Context, file *File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	if _, err := r.Collection.InsertOne(ctx, file); err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *FileRepositoryImpl) Get(ctx context.Context, id string) (*File, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var file File
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&file); err != nil {
		return nil, database.NotFound(err, "file")
	}
	return &file, nil
}

func (r *FileRepositoryImpl) ListByOwner(ctx context.Context, ownerID string, limit, offset int64) ([]File, int64, error) {
	filter := bson.M{"owner_id": ownerID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	files := []File{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, 0, err
	}
	total, err := r.Collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return files, total, nil
}

func (r *FileRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *FileRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}
