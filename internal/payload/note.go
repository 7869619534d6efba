package payload

import (
	"time"

	"github.com/pattarapol/jotter-api/internal/model"
)

type CreateNoteRequest struct {
	Title   string `json:"title"   validate:"required,max=200"`
	Content string `json:"content" validate:"max=20000"`
	Pinned  bool   `json:"pinned"`
}

type UpdateNoteRequest struct {
	Title   *string `json:"title"   validate:"omitempty,max=200"`
	Content *string `json:"content" validate:"omitempty,max=20000"`
	Pinned  *bool   `json:"pinned"`
}

type NoteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewNoteResponse(note *model.Note) NoteResponse {
	return NoteResponse{
		ID:        note.ID.Hex(),
		Title:     note.Title,
		Content:   note.Content,
		Pinned:    note.Pinned,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func NewNoteListResponse(notes []*model.Note) []NoteResponse {
	out := make([]NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, NewNoteResponse(note))
	}
	return out
}
