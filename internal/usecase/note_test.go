package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
)

type fakeNoteRepository struct {
	mu    sync.Mutex
	notes map[string]*model.Note
}

func newFakeNoteRepository() *fakeNoteRepository {
	return &fakeNoteRepository{notes: make(map[string]*model.Note)}
}

func (r *fakeNoteRepository) CreateNote(_ context.Context, note *model.Note) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	note.ID = bson.NewObjectID()
	note.CreatedAt = now
	note.UpdatedAt = now
	r.notes[note.ID.Hex()] = note

	return note, nil
}

func (r *fakeNoteRepository) GetNote(_ context.Context, userID, id string) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID.Hex() != userID {
		return nil, mongo.ErrNoDocuments
	}

	return note, nil
}

func (r *fakeNoteRepository) ListNotes(_ context.Context, userID string, params repository.ListParams) ([]*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var owned []*model.Note
	for _, note := range r.notes {
		if note.UserID.Hex() == userID {
			owned = append(owned, note)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	limit := params.Limit
	if limit == 0 {
		limit = 10
	}

	if params.Offset >= uint64(len(owned)) {
		return nil, nil
	}
	owned = owned[params.Offset:]
	if uint64(len(owned)) > limit {
		owned = owned[:limit]
	}

	return owned, nil
}

func (r *fakeNoteRepository) UpdateNote(_ context.Context, userID, id string, params repository.UpdateNoteParams) (*model.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if params.Title == nil && params.Content == nil && params.Pinned == nil {
		return nil, apperrors.BadRequest("", "no fields to update")
	}

	note, ok := r.notes[id]
	if !ok || note.UserID.Hex() != userID {
		return nil, mongo.ErrNoDocuments
	}

	if params.Title != nil {
		note.Title = *params.Title
	}
	if params.Content != nil {
		note.Content = *params.Content
	}
	if params.Pinned != nil {
		note.Pinned = *params.Pinned
	}
	note.UpdatedAt = time.Now()

	return note, nil
}

func (r *fakeNoteRepository) DeleteNote(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	note, ok := r.notes[id]
	if !ok || note.UserID.Hex() != userID {
		return mongo.ErrNoDocuments
	}

	delete(r.notes, id)

	return nil
}

var _ repository.NoteRepository = (*fakeNoteRepository)(nil)

func TestNoteUsecase_CRUD(t *testing.T) {
	u := NewNoteUsecase(newFakeNoteRepository())
	userID := bson.NewObjectID().Hex()

	note, err := u.CreateNote(context.Background(), userID, CreateNoteParams{
		Title:   "Groceries",
		Content: "milk, eggs",
		Pinned:  true,
	})
	require.NoError(t, err)
	assert.False(t, note.ID.IsZero())
	assert.Equal(t, "Groceries", note.Title)
	assert.True(t, note.Pinned)

	got, err := u.GetNote(context.Background(), userID, note.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)

	newTitle := "Groceries (updated)"
	pinned := false
	updated, err := u.UpdateNote(context.Background(), userID, note.ID.Hex(), repository.UpdateNoteParams{
		Title:  &newTitle,
		Pinned: &pinned,
	})
	require.NoError(t, err)
	assert.Equal(t, newTitle, updated.Title)
	assert.Equal(t, "milk, eggs", updated.Content)
	assert.False(t, updated.Pinned)

	require.NoError(t, u.DeleteNote(context.Background(), userID, note.ID.Hex()))

	_, err = u.GetNote(context.Background(), userID, note.ID.Hex())
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestNoteUsecase_Update_NoFields(t *testing.T) {
	u := NewNoteUsecase(newFakeNoteRepository())
	userID := bson.NewObjectID().Hex()

	note, err := u.CreateNote(context.Background(), userID, CreateNoteParams{Title: "Groceries"})
	require.NoError(t, err)

	// An update carrying no fields is a client error, not a server one.
	_, err = u.UpdateNote(context.Background(), userID, note.ID.Hex(), repository.UpdateNoteParams{})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
}

func TestNoteUsecase_OwnershipIsolation(t *testing.T) {
	u := NewNoteUsecase(newFakeNoteRepository())
	owner := bson.NewObjectID().Hex()
	stranger := bson.NewObjectID().Hex()

	note, err := u.CreateNote(context.Background(), owner, CreateNoteParams{Title: "Private"})
	require.NoError(t, err)

	// Another user's id never reaches someone else's note.
	_, err = u.GetNote(context.Background(), stranger, note.ID.Hex())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	err = u.DeleteNote(context.Background(), stranger, note.ID.Hex())
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	notes, err := u.ListNotes(context.Background(), stranger, repository.ListParams{})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestNoteUsecase_ListPagination(t *testing.T) {
	u := NewNoteUsecase(newFakeNoteRepository())
	userID := bson.NewObjectID().Hex()

	for i := 0; i < 15; i++ {
		_, err := u.CreateNote(context.Background(), userID, CreateNoteParams{Title: "note"})
		require.NoError(t, err)
	}

	notes, err := u.ListNotes(context.Background(), userID, repository.ListParams{})
	require.NoError(t, err)
	assert.Len(t, notes, 10)

	notes, err = u.ListNotes(context.Background(), userID, repository.ListParams{Limit: 5, Offset: 12})
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}
