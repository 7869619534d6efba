package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/shared/provider"
	"github.com/pattarapol/jotter-api/shared/security"
)

// UserRepository defines the interface for user-related database
// operations. Sensitive fields (password, refresh token) are hashed inside
// the write path of this adapter, never stored in plaintext; the method
// names make that step visible at the call site.
type UserRepository interface {
	CreateUserWithPassword(ctx context.Context, user *model.User, password string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByProviderID(ctx context.Context, providerName, providerID string) (*model.User, error)

	// SetPassword hashes and replaces the password, and nulls the stored
	// refresh-token hash in the same update, invalidating outstanding
	// refresh tokens.
	SetPassword(ctx context.Context, id, password string) error

	// SaveRefreshToken hashes and stores the refresh token (rotation).
	SaveRefreshToken(ctx context.Context, id, refreshToken string) error

	// ClearRefreshToken nulls the stored refresh-token hash. The filter
	// requires a non-null hash; matched reports whether the guard held.
	ClearRefreshToken(ctx context.Context, id string) (bool, error)

	MarkVerified(ctx context.Context, id string) error

	// AttachProvider links an external identity. The filter requires the
	// provider field to be absent; matched reports whether the guard held.
	AttachProvider(ctx context.Context, id, providerName string, link model.ProviderLink) (bool, error)

	// DetachProvider unlinks an external identity. The filter requires the
	// provider to be present and another sign-in method to remain, so
	// concurrent unlinks cannot strip the last method; matched reports
	// whether the guard held.
	DetachProvider(ctx context.Context, id, providerName string) (bool, error)

	// SetEmailIdentity hashes the password and sets email+password. The
	// filter requires the email field to be absent.
	SetEmailIdentity(ctx context.Context, id, email, password string) (bool, error)

	// RemoveEmailIdentity unsets email and password and clears the
	// verified flag. The filter requires the email to be present and a
	// provider link to remain; matched reports whether the guard held.
	RemoveEmailIdentity(ctx context.Context, id string) (bool, error)

	DeleteUser(ctx context.Context, id string) (*model.User, error)
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

// NewUserMongoRepository creates a MongoDB repository for users and
// ensures its indexes: unique sparse indexes on email and on each
// provider's external id.
func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "google.provider_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "facebook.provider_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUserWithPassword(
	ctx context.Context,
	user *model.User,
	password string,
) (*model.User, error) {
	// Hash sensitive fields before persist.
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = &passwordHash

	return r.CreateUser(ctx, user)
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByProviderID(
	ctx context.Context,
	providerName, providerID string,
) (*model.User, error) {
	field, err := providerField(providerName)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{field + ".provider_id": providerID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) SetPassword(ctx context.Context, id, password string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	// Hash sensitive fields before persist.
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"password_hash":      passwordHash,
			"refresh_token_hash": nil,
			"updated_at":         time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) SaveRefreshToken(ctx context.Context, id, refreshToken string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	// Hash sensitive fields before persist.
	refreshTokenHash, err := security.HashPassword(refreshToken)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"refresh_token_hash": refreshTokenHash,
			"updated_at":         time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) ClearRefreshToken(ctx context.Context, id string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, mongo.ErrNoDocuments
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, "refresh_token_hash": bson.M{"$ne": nil}},
		bson.M{"$set": bson.M{
			"refresh_token_hash": nil,
			"updated_at":         time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (r *userMongoRepository) MarkVerified(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{
			"is_verify":  true,
			"updated_at": time.Now(),
		}},
	)
	return err
}

func (r *userMongoRepository) AttachProvider(
	ctx context.Context,
	id, providerName string,
	link model.ProviderLink,
) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, mongo.ErrNoDocuments
	}

	field, err := providerField(providerName)
	if err != nil {
		return false, err
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, field: bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			field:        link,
			"updated_at": time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (r *userMongoRepository) DetachProvider(ctx context.Context, id, providerName string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, mongo.ErrNoDocuments
	}

	field, err := providerField(providerName)
	if err != nil {
		return false, err
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{
			"_id": objectID,
			field: bson.M{"$exists": true},
			"$or": remainingMethodFilters(field),
		},
		bson.M{
			"$unset": bson.M{field: ""},
			"$set":   bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (r *userMongoRepository) SetEmailIdentity(ctx context.Context, id, email, password string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, mongo.ErrNoDocuments
	}

	// Hash sensitive fields before persist.
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return false, err
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, "email": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{
			"email":         email,
			"password_hash": passwordHash,
			"is_verify":     false,
			"updated_at":    time.Now(),
		}},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (r *userMongoRepository) RemoveEmailIdentity(ctx context.Context, id string) (bool, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return false, mongo.ErrNoDocuments
	}

	result, err := r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{
			"_id":   objectID,
			"email": bson.M{"$exists": true},
			"$or":   remainingMethodFilters("email"),
		},
		bson.M{
			"$unset": bson.M{"email": "", "password_hash": ""},
			"$set": bson.M{
				"is_verify":  false,
				"updated_at": time.Now(),
			},
		},
	)
	if err != nil {
		return false, err
	}

	return result.MatchedCount > 0, nil
}

func (r *userMongoRepository) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	result := r.db.Collection(userCollection).FindOneAndDelete(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

// remainingMethodFilters builds the $or clauses requiring that at least
// one sign-in method other than detaching survives the detach. Email
// counts only together with a password, mirroring User.AuthMethodCount.
func remainingMethodFilters(detaching string) []bson.M {
	filters := []bson.M{}

	if detaching != "email" {
		filters = append(filters, bson.M{
			"email":         bson.M{"$exists": true},
			"password_hash": bson.M{"$exists": true},
		})
	}
	for _, field := range []string{provider.Google, provider.Facebook} {
		if field != detaching {
			filters = append(filters, bson.M{field: bson.M{"$exists": true}})
		}
	}

	return filters
}

func providerField(providerName string) (string, error) {
	switch providerName {
	case provider.Google, provider.Facebook:
		return providerName, nil
	default:
		return "", fmt.Errorf("unknown provider %q", providerName)
	}
}
