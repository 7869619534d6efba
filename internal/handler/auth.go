package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pattarapol/jotter-api/internal/payload"
	"github.com/pattarapol/jotter-api/internal/usecase"
	"github.com/pattarapol/jotter-api/shared/auth"
	"github.com/pattarapol/jotter-api/shared/middleware"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler exposes the authentication endpoints.
type AuthHandler struct {
	authUsecase          usecase.AuthUsecase
	verificationUsecase  usecase.VerificationUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	issuer               *auth.TokenIssuer
	refreshTokenTTL      time.Duration
	validate             *validator.Validate
	trans                ut.Translator
	logger               *zerolog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	verificationUsecase usecase.VerificationUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	issuer *auth.TokenIssuer,
	refreshTokenTTL time.Duration,
	logger *zerolog.Logger,
) *AuthHandler {
	validate, trans := newValidator()

	return &AuthHandler{
		authUsecase:          authUsecase,
		verificationUsecase:  verificationUsecase,
		passwordResetUsecase: passwordResetUsecase,
		issuer:               issuer,
		refreshTokenTTL:      refreshTokenTTL,
		validate:             validate,
		trans:                trans,
		logger:               logger,
	}
}

// RegisterRoutes mounts the auth routes. authMW guards the routes that
// need a valid access token.
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Post("/auth/signup", h.SignUp)
	r.Post("/auth/signin", h.SignIn)
	r.Post("/auth/refresh", h.Refresh)
	r.Post("/auth/{provider}/signin", h.ProviderSignIn)
	r.Get("/auth/verify-email/{key}", h.ConfirmVerifyEmail)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password/{key}", h.ResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/auth/signout", h.SignOut)
		r.Post("/auth/verify-email", h.RequestVerifyEmail)
	})
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req payload.SignUpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	tokens, err := h.authUsecase.SignUp(r.Context(), usecase.SignUpParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondTokens(w, http.StatusCreated, tokens)
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req payload.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	tokens, err := h.authUsecase.SignIn(r.Context(), usecase.SignInParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondTokens(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := h.refreshTokenFromRequest(r)
	if refreshToken == "" {
		writeUnauthorized(w, "refresh_token", "refresh token is missing")
		return
	}

	claims, err := h.issuer.ParseRefresh(refreshToken)
	if err != nil {
		writeUnauthorized(w, "refresh_token", "refresh token is invalid")
		return
	}

	tokens, err := h.authUsecase.Refresh(r.Context(), claims.UserID, refreshToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondTokens(w, http.StatusOK, tokens)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	if err := h.authUsecase.SignOut(r.Context(), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AuthHandler) ProviderSignIn(w http.ResponseWriter, r *http.Request) {
	var req payload.ProviderSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	tokens, err := h.authUsecase.ProviderSignIn(r.Context(), chi.URLParam(r, "provider"), req.AccessToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.respondTokens(w, http.StatusOK, tokens)
}

func (h *AuthHandler) RequestVerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "access_token", "not authenticated")
		return
	}

	if err := h.verificationUsecase.RequestVerifyEmail(r.Context(), userID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, nil)
}

func (h *AuthHandler) ConfirmVerifyEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.verificationUsecase.ConfirmVerifyEmail(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	if err := h.passwordResetUsecase.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusAccepted, nil)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "", "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeValidationErrors(w, h.trans, err)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), chi.URLParam(r, "key"), req.Password); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

func (h *AuthHandler) respondTokens(w http.ResponseWriter, status int, tokens *auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		Path:     "/auth",
		MaxAge:   int(h.refreshTokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	writeJSON(w, status, payload.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) refreshTokenFromRequest(r *http.Request) string {
	var req payload.RefreshRequest
	if err := decodeJSON(r, &req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}

	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		return cookie.Value
	}

	return ""
}
