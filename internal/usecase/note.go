package usecase

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/pattarapol/jotter-api/internal/apperrors"
	"github.com/pattarapol/jotter-api/internal/model"
	"github.com/pattarapol/jotter-api/internal/repository"
)

// NoteUsecase defines user-scoped note CRUD. Another user's note is
// indistinguishable from a missing one.
type NoteUsecase interface {
	CreateNote(ctx context.Context, userID string, params CreateNoteParams) (*model.Note, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	ListNotes(ctx context.Context, userID string, params repository.ListParams) ([]*model.Note, error)
	UpdateNote(ctx context.Context, userID, id string, params repository.UpdateNoteParams) (*model.Note, error)
	DeleteNote(ctx context.Context, userID, id string) error
}

// CreateNoteParams defines the parameters for creating a note.
type CreateNoteParams struct {
	Title   string
	Content string
	Pinned  bool
}

type noteUsecase struct {
	noteRepo repository.NoteRepository
}

// NewNoteUsecase creates a new instance of NoteUsecase.
func NewNoteUsecase(noteRepo repository.NoteRepository) NoteUsecase {
	return &noteUsecase{noteRepo: noteRepo}
}

func (u *noteUsecase) CreateNote(ctx context.Context, userID string, params CreateNoteParams) (*model.Note, error) {
	userObjectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apperrors.NotFound("user", "user not found")
	}

	return u.noteRepo.CreateNote(ctx, &model.Note{
		UserID:  userObjectID,
		Title:   params.Title,
		Content: params.Content,
		Pinned:  params.Pinned,
	})
}

func (u *noteUsecase) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	note, err := u.noteRepo.GetNote(ctx, userID, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("note", "note not found")
		}

		return nil, err
	}

	return note, nil
}

func (u *noteUsecase) ListNotes(
	ctx context.Context,
	userID string,
	params repository.ListParams,
) ([]*model.Note, error) {
	return u.noteRepo.ListNotes(ctx, userID, params)
}

func (u *noteUsecase) UpdateNote(
	ctx context.Context,
	userID, id string,
	params repository.UpdateNoteParams,
) (*model.Note, error) {
	note, err := u.noteRepo.UpdateNote(ctx, userID, id, params)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("note", "note not found")
		}

		return nil, err
	}

	return note, nil
}

func (u *noteUsecase) DeleteNote(ctx context.Context, userID, id string) error {
	if err := u.noteRepo.DeleteNote(ctx, userID, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperrors.NotFound("note", "note not found")
		}

		return err
	}

	return nil
}
