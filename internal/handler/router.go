package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pattarapol/jotter-api/shared/auth"
	"github.com/pattarapol/jotter-api/shared/middleware"
)

// NewRouter assembles the chi router with all API routes mounted.
func NewRouter(
	authHandler *AuthHandler,
	accountHandler *AccountHandler,
	noteHandler *NoteHandler,
	taskHandler *TaskHandler,
	issuer *auth.TokenIssuer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authMW := middleware.NewJWTMiddleware(issuer)

	authHandler.RegisterRoutes(r, authMW)
	accountHandler.RegisterRoutes(r, authMW)
	noteHandler.RegisterRoutes(r, authMW)
	taskHandler.RegisterRoutes(r, authMW)

	return r
}
