package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
)

// NoteRepository defines the interface for note-related database
// operations. Every filter includes the owning user id, so one user's
// notes are invisible to another.
type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) (*model.Note, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	ListNotes(ctx context.Context, userID string, params ListParams) ([]*model.Note, error)
	UpdateNote(ctx context.Context, userID, id string, params UpdateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, userID, id string) error
}

// ListParams defines pagination for list queries.
type ListParams struct {
	Limit  uint64
	Offset uint64
}

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// clampListLimit bounds a caller-supplied page size so oversized values
// cannot overflow the int64 conversion or request unbounded pages.
func clampListLimit(limit uint64) int64 {
	switch {
	case limit == 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return int64(limit)
	}
}

// UpdateNoteParams defines the optional parameters for updating a note.
// Only the fields that are not nil will be updated.
type UpdateNoteParams struct {
	Title   *string
	Content *string
	Pinned  *bool
}

const noteCollection = "notes"

type noteMongoRepository struct {
	db *mongo.Database
}

func NewNoteMongoRepository(db *mongo.Database) NoteRepository {
	return &noteMongoRepository{db: db}
}

func (r *noteMongoRepository) CreateNote(ctx context.Context, note *model.Note) (*model.Note, error) {
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	result, err := r.db.Collection(noteCollection).InsertOne(ctx, note)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		note.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return note, nil
}

func (r *noteMongoRepository) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(noteCollection).FindOne(ctx, filter)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) ListNotes(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]*model.Note, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	findOptions := options.Find()
	findOptions.SetLimit(clampListLimit(params.Limit))

	if params.Offset > 0 {
		findOptions.SetSkip(int64(params.Offset))
	}

	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.db.Collection(noteCollection).Find(ctx, bson.M{"user_id": userObjectID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	for cursor.Next(ctx) {
		var note model.Note
		if err := cursor.Decode(&note); err != nil {
			return nil, err
		}
		notes = append(notes, &note)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *noteMongoRepository) UpdateNote(
	ctx context.Context,
	userID, id string,
	params UpdateNoteParams,
) (*model.Note, error) {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return nil, err
	}

	updateMap := bson.M{}
	if params.Title != nil {
		updateMap["title"] = *params.Title
	}
	if params.Content != nil {
		updateMap["content"] = *params.Content
	}
	if params.Pinned != nil {
		updateMap["pinned"] = *params.Pinned
	}

	if len(updateMap) == 0 {
		return nil, apperrors.BadRequest("", "no fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(noteCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var note model.Note
	if err := result.Decode(&note); err != nil {
		return nil, err
	}

	return &note, nil
}

func (r *noteMongoRepository) DeleteNote(ctx context.Context, userID, id string) error {
	filter, err := ownedFilter(userID, id)
	if err != nil {
		return err
	}

	result, err := r.db.Collection(noteCollection).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}

	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func ownedFilter(userID, id string) (bson.M, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	return bson.M{"_id": objectID, "user_id": userObjectID}, nil
}
