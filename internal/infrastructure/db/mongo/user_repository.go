package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/myapp/account-service/internal/core/domain"
	"github.com/myapp/account-service/internal/core/ports"
)

const DefaultUsersCollection = "users"

// UserRepository implements ports.UserRepository on a MongoDB collection.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	if collection == "" {
		collection = DefaultUsersCollection
	}
	return &UserRepository{coll: db.Collection(collection)}
}

type mongoUser struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
	Email    string             `bson:"email"`
	Password string             `bson:"password"`
	PhoneNo  string             `bson:"phoneNo"`
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:       mu.ID.Hex(),
		Username: mu.Username,
		Email:    mu.Email,
		Password: mu.Password,
		PhoneNo:  mu.PhoneNo,
	}
}

// objectID parses a hex id. An id that cannot be an ObjectID can never match a
// document, so it is reported as not found.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrUserNotFound
	}
	return oid, nil
}

// List returns all users projected to _id and username, in natural order.
func (r *UserRepository) List(ctx context.Context) ([]domain.UserSummary, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1, "username": 1})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	users := make([]domain.UserSummary, 0)
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, domain.UserSummary{ID: mu.ID.Hex(), Username: mu.Username})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"username": username},
		bson.M{"email": email},
	}})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// Create inserts the user and returns it with the store-generated id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	doc := mongoUser{
		Username: user.Username,
		Email:    user.Email,
		Password: user.Password,
		PhoneNo:  user.PhoneNo,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

// UpdateProfile sets username, email and phoneNo in one round trip and returns
// the document as it is after the update.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, p ports.UserProfile) (*domain.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"username": p.Username,
		"email":    p.Email,
		"phoneNo":  p.PhoneNo,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// EnsureIndexes creates lookup indexes for username and email. They are not
// unique; uniqueness is only checked before insert.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}},
		{Keys: bson.D{{Key: "email", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
