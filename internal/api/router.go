package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/medequip/internal/api/middleware"
	"github.com/kiranshivaraju/medequip/internal/api/response"
	"github.com/kiranshivaraju/medequip/internal/apikey"
)

// Dependencies holds all handler and middleware dependencies for the router.
// Auth and RateLimit are optional: without Auth the analysis endpoint is open
// and the admin routes are not mounted; without RateLimit nothing is limited.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	AnalyzeHandler   http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/api/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
			r.Use(deps.Auth.RequireScope(apikey.ScopeAnalyze))
		}
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/api/analyze-equipment", orNotImplemented(deps.AnalyzeHandler))
	})

	if deps.Auth != nil {
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)
			r.Use(deps.Auth.RequireScope(apikey.ScopeAdmin))

			r.Post("/api/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	}

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
