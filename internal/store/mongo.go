package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/ayush/user-auth-service/internal/models"
)

// UserStore handles identity CRUD in MongoDB. Uniqueness of username and
// email is enforced by the collection's unique indexes; the pre-insert
// lookups handlers do are a best-effort optimization only.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

// EnsureIndexes builds the unique indexes that arbitrate registration races.
func (s *UserStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

// Ping reports whether the store is reachable right now.
func (s *UserStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.col.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return ErrStoreUnavailable
	}
	return nil
}

// FindByUsernameOrEmail returns an existing identity colliding with either
// field. The username lookup runs first so a username collision is reported
// even when the email also collides with a different record.
func (s *UserStore) FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.M{"password": 0})

	var u models.User
	err := s.col.FindOne(ctx, bson.M{"username": username}, opts).Decode(&u)
	if err == nil {
		return &u, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, classify(err)
	}

	if err := s.col.FindOne(ctx, bson.M{"email": email}, opts).Decode(&u); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// FindByEmail looks up an identity by email. The credential hash is excluded
// unless includeCredential is set (login verification needs it).
func (s *UserStore) FindByEmail(ctx context.Context, email string, includeCredential bool) (*models.User, error) {
	opts := options.FindOne()
	if !includeCredential {
		opts.SetProjection(bson.M{"password": 0})
	}
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"email": email}, opts).Decode(&u); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// FindByID looks up an identity by its hex id, always without the credential.
func (s *UserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	var u models.User
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}, opts).Decode(&u); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// Create inserts a new identity. A duplicate-key error from the unique
// indexes comes back as *ConflictError naming the colliding field.
func (s *UserStore) Create(ctx context.Context, username, email, hashedPassword string) (*models.User, error) {
	u := &models.User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &ConflictError{Field: conflictField(err)}
		}
		return nil, classify(err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	u.Password = ""
	return u, nil
}

// DeleteByEmail removes an identity and returns what was deleted.
func (s *UserStore) DeleteByEmail(ctx context.Context, email string) (*models.User, error) {
	opts := options.FindOneAndDelete().SetProjection(bson.M{"password": 0})
	var u models.User
	if err := s.col.FindOneAndDelete(ctx, bson.M{"email": email}, opts).Decode(&u); err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

// ListAll returns every identity without the credential or email fields.
// The exclusion is part of the contract, not left to callers.
func (s *UserStore) ListAll(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0, "email": 0}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, classify(err)
	}
	return users, nil
}

// classify maps driver errors onto the store taxonomy.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return ErrStoreUnavailable
	default:
		return err
	}
}

// conflictField names the unique index a duplicate-key error came from.
func conflictField(err error) string {
	if strings.Contains(err.Error(), "email") {
		return "email"
	}
	return "username"
}
