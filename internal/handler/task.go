package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pattarapol/jotter-api/internal/payload"
	"github.com/pattarapol/jotter-api/internal/repository"
	"github.com/pattarapol/jotter-api/internal/usecase"
	"github.com/pattarapol/jotter-api/shared/middleware"
)

// TaskHandler exposes the task CRUD endpoints.
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
	validate    *validator.Validate
	trans       ut.Translator
	logger      *zerolog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(taskUsecase usecase.TaskUsecase, logger *zerolog.Logger) *TaskHandler {
	validate, trans := newValidator()

	return &TaskHandler{
		taskUsecase: taskUsecase,
		validate:    validate,
		trans:       trans,
		logger:      logger,
	}
}

// RegisterRoutes mounts the task routes. All of them require a valid
// access token.
func (h *TaskHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Patch("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)
	})
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	task, err := h.taskUsecase.CreateTask(r.Context(), userID, usecase.CreateTaskParams{
		Title: req.Title,
		DueAt: req.DueAt,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, payload.NewTaskResponse(task))
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	tasks, err := h.taskUsecase.ListTasks(r.Context(), userID, listParamsFromQuery(r))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewTaskListResponse(tasks))
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	task, err := h.taskUsecase.GetTask(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	task, err := h.taskUsecase.UpdateTask(r.Context(), userID, chi.URLParam(r, "id"), repository.UpdateTaskParams{
		Title: req.Title,
		Done:  req.Done,
		DueAt: req.DueAt,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	if err := h.taskUsecase.DeleteTask(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
