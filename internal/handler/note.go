package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pattarapol/jotter-api/internal/payload"
	"github.com/pattarapol/jotter-api/internal/repository"
	"github.com/pattarapol/jotter-api/internal/usecase"
	"github.com/pattarapol/jotter-api/shared/middleware"
)

// NoteHandler exposes the note CRUD endpoints.
type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
	validate    *validator.Validate
	trans       ut.Translator
	logger      *zerolog.Logger
}

// NewNoteHandler creates a NoteHandler.
func NewNoteHandler(noteUsecase usecase.NoteUsecase, logger *zerolog.Logger) *NoteHandler {
	validate, trans := newValidator()

	return &NoteHandler{
		noteUsecase: noteUsecase,
		validate:    validate,
		trans:       trans,
		logger:      logger,
	}
}

// RegisterRoutes mounts the note routes. All of them require a valid
// access token.
func (h *NoteHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes", h.ListNotes)
		r.Get("/notes/{id}", h.GetNote)
		r.Patch("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)
	})
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	note, err := h.noteUsecase.CreateNote(r.Context(), userID, usecase.CreateNoteParams{
		Title:   req.Title,
		Content: req.Content,
		Pinned:  req.Pinned,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, payload.NewNoteResponse(note))
}

func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	notes, err := h.noteUsecase.ListNotes(r.Context(), userID, listParamsFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewNoteListResponse(notes))
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	note, err := h.noteUsecase.GetNote(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewNoteResponse(note))
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.UpdateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	note, err := h.noteUsecase.UpdateNote(r.Context(), userID, chi.URLParam(r, "id"), repository.UpdateNoteParams{
		Title:   req.Title,
		Content: req.Content,
		Pinned:  req.Pinned,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewNoteResponse(note))
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	if err := h.noteUsecase.DeleteNote(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// listParamsFromQuery reads limit and offset query parameters, ignoring
// values that do not parse.
func listParamsFromQuery(r *http.Request) repository.ListParams {
	var params repository.ListParams

	if limit, err := strconv.ParseUint(r.URL.Query().Get("limit"), 10, 64); err == nil {
		params.Limit = limit
	}
	if offset, err := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64); err == nil {
		params.Offset = offset
	}

	return params
}
