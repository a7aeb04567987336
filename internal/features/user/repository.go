package user

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eduvibe/internal/database"
	"eduvibe/internal/features/access"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	List(ctx context.Context, filter ListFilter, limit, offset int64) ([]User, int64, error)
	UpdateRole(ctx context.Context, id string, role access.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *User) error {
	user.Email = normalizeEmail(user.Email)
	if _, err := r.Collection.InsertOne(ctx, user); err != nil {
		if database.IsDuplicateKey(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*User, error) {
	oid, err := database.ParseID(id)
	if err != nil {
		return nil, err
	}
	var user User
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, database.NotFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	if err := r.Collection.FindOne(ctx, bson.M{"email": normalizeEmail(email)}).Decode(&user); err != nil {
		return nil, database.NotFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByIDs(ctx context.Context, ids []string) ([]User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []User{}, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	users := []User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]User, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Active != nil {
		query["is_active"] = *filter.Active
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
		query["$or"] = bson.A{bson.M{"name": pattern}, bson.M{"email": pattern}}
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

	users := []User{}
	if err = cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}

	total, err := r.Collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, id string, role access.Role) error {
	return r.set(ctx, id, bson.M{"role": role})
}

func (r *UserRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.set(ctx, id, bson.M{"is_active": active})
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) error {
	fields := bson.M{}
	if req.Name != "" {
		fields["name"] = strings.TrimSpace(req.Name)
	}
	if req.Interests != nil {
		fields["interests"] = req.Interests
	}
	if req.Languages != nil {
		fields["languages"] = req.Languages
	}
	return r.set(ctx, id, fields)
}

func (r *UserRepositoryImpl) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, id, bson.M{"last_login": at})
}

func (r *UserRepositoryImpl) set(ctx context.Context, id string, fields bson.M) error {
	oid, err := database.ParseID(id)
	if err != nil {
		return err
	}
	fields["updated_at"] = time.Now().UTC()

	res, err := r.Collection.UpdateByID(ctx, oid, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update user %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return database.NotFound(mongo.ErrNoDocuments, "user")
	}
	return nil
}

func (r *UserRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}},
	})
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
