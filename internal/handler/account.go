package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pattarapol/jotter-api/internal/payload"
	"github.com/pattarapol/jotter-api/internal/usecase"
	"github.com/pattarapol/jotter-api/shared/middleware"
)

// AccountHandler exposes the account management endpoints.
type AccountHandler struct {
	accountUsecase usecase.AccountUsecase
	validate       *validator.Validate
	trans          ut.Translator
	logger         *zerolog.Logger
}

// NewAccountHandler creates an AccountHandler.
func NewAccountHandler(accountUsecase usecase.AccountUsecase, logger *zerolog.Logger) *AccountHandler {
	validate, trans := newValidator()

	return &AccountHandler{
		accountUsecase: accountUsecase,
		validate:       validate,
		trans:          trans,
		logger:         logger,
	}
}

// RegisterRoutes mounts the account routes. All of them require a valid
// access token.
func (h *AccountHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Get("/account", h.GetAccount)
		r.Put("/account/password", h.UpdatePassword)
		r.Post("/account/connect/{provider}", h.ConnectProvider)
		r.Post("/account/connect/email", h.ConnectEmail)
		r.Delete("/account/link/{method}", h.UnlinkAccount)
		r.Delete("/account", h.DeleteAccount)
	})
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	user, err := h.accountUsecase.GetAccount(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.NewUserResponse(user))
}

func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.UpdatePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	if err := h.accountUsecase.UpdatePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *AccountHandler) ConnectProvider(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.ConnectProviderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	err := h.accountUsecase.ConnectProvider(r.Context(), userID, chi.URLParam(r, "provider"), req.AccessToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *AccountHandler) ConnectEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.ConnectEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	if err := h.accountUsecase.ConnectEmail(r.Context(), userID, req.Email, req.Password); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *AccountHandler) UnlinkAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	if err := h.accountUsecase.UnlinkAccount(r.Context(), userID, chi.URLParam(r, "method")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	var req payload.DeleteAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	if err := h.accountUsecase.DeleteAccount(r.Context(), userID, req.Password); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
