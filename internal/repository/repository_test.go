package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/shared/provider"
)

func TestUpdateNote_NoFields(t *testing.T) {
	r := &noteMongoRepository{}

	_, err := r.UpdateNote(context.Background(), bson.NewObjectID().Hex(), bson.NewObjectID().Hex(), UpdateNoteParams{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}

func TestUpdateTask_NoFields(t *testing.T) {
	r := &taskMongoRepository{}

	_, err := r.UpdateTask(context.Background(), bson.NewObjectID().Hex(), bson.NewObjectID().Hex(), UpdateTaskParams{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}

func TestClampListLimit(t *testing.T) {
	tests := []struct {
		name  string
		limit uint64
		want  int64
	}{
		{"zero falls back to default", 0, defaultListLimit},
		{"in range passes through", 25, 25},
		{"at cap", maxListLimit, maxListLimit},
		{"above cap is clamped", maxListLimit + 1, maxListLimit},
		{"max uint64 is clamped", ^uint64(0), maxListLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clampListLimit(tt.limit))
		})
	}
}

func TestOwnedFilter(t *testing.T) {
	userID := bson.NewObjectID()
	id := bson.NewObjectID()

	filter, err := ownedFilter(userID.Hex(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, bson.M{"_id": id, "user_id": userID}, filter)

	_, err = ownedFilter("not-a-hex-id", id.Hex())
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)

	_, err = ownedFilter(userID.Hex(), "not-a-hex-id")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestRemainingMethodFilters(t *testing.T) {
	t.Run("detaching email requires a provider", func(t *testing.T) {
		filters := remainingMethodFilters("email")
		assert.ElementsMatch(t, []bson.M{
			{provider.Google: bson.M{"$exists": true}},
			{provider.Facebook: bson.M{"$exists": true}},
		}, filters)
	})

	t.Run("detaching a provider allows email or the other provider", func(t *testing.T) {
		filters := remainingMethodFilters(provider.Google)
		assert.ElementsMatch(t, []bson.M{
			{"email": bson.M{"$exists": true}, "password_hash": bson.M{"$exists": true}},
			{provider.Facebook: bson.M{"$exists": true}},
		}, filters)
	})
}
