package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pattarapol/jotter-api/internal/model"
)

// OneTimeKeyRepository defines the interface for one-time key operations.
type OneTimeKeyRepository interface {
	// CreateKey stores a new key. A duplicate-key error from the unique
	// (user_id, purpose) index means a live key already exists for that
	// user; callers map it to the duplicate-request outcome.
	CreateKey(ctx context.Context, key *model.OneTimeKey) (*model.OneTimeKey, error)

	// ConsumeKey atomically looks up and deletes a key by its opaque value
	// and purpose, enforcing single use. A missing key and an expired key
	// are indistinguishable: both return mongo.ErrNoDocuments.
	ConsumeKey(ctx context.Context, key, purpose string) (*model.OneTimeKey, error)
}

const oneTimeKeyCollection = "one_time_keys"

type oneTimeKeyMongoRepository struct {
	db *mongo.Database
}

// NewOneTimeKeyMongoRepository creates a MongoDB repository for one-time
// keys and ensures its indexes: a unique index on the key value, a unique
// compound index on (user_id, purpose), and a TTL index on created_at so
// unused keys expire without application code.
func NewOneTimeKeyMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
	ttl time.Duration,
) OneTimeKeyRepository {
	collection := db.Collection(oneTimeKeyCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "purpose", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(ttl.Seconds())), // TTL index
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create one-time key indexes")
	}

	return &oneTimeKeyMongoRepository{db: db}
}

func (r *oneTimeKeyMongoRepository) CreateKey(
	ctx context.Context,
	key *model.OneTimeKey,
) (*model.OneTimeKey, error) {
	key.CreatedAt = time.Now()

	result, err := r.db.Collection(oneTimeKeyCollection).InsertOne(ctx, key)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		key.ID = objectID
	}

	return key, nil
}

func (r *oneTimeKeyMongoRepository) ConsumeKey(
	ctx context.Context,
	key, purpose string,
) (*model.OneTimeKey, error) {
	result := r.db.Collection(oneTimeKeyCollection).FindOneAndDelete(ctx, bson.M{
		"key":     key,
		"purpose": purpose,
	})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var oneTimeKey model.OneTimeKey
	if err := result.Decode(&oneTimeKey); err != nil {
		return nil, err
	}

	return &oneTimeKey, nil
}
