// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ayush/personal-library/internal/auth"
	"github.com/ayush/personal-library/internal/books"
	"github.com/ayush/personal-library/internal/httpx"
	"github.com/ayush/personal-library/internal/middleware"
)

// Deps are the collaborators the router mounts. RateLimiter may be nil.
type Deps struct {
	Logger      *slog.Logger
	Auth        *auth.Handler
	Books       *books.Handler
	Tokens      middleware.TokenVerifier
	RateLimiter middleware.Counter
	RateLimit   int
	RateWindow  time.Duration
	CORSOrigins []string
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusNotFound, "Route not found")
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteMessage(w, http.StatusOK, "API is running")
	})

	requireAuth := middleware.RequireAuth(d.Tokens, d.Logger)

	// Auth routes
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.RateLimiter != nil {
				r.Use(middleware.RateLimit(d.RateLimiter, d.RateLimit, d.RateWindow, d.Logger))
			}
			r.Post("/register", d.Auth.Register)
			r.Post("/login", d.Auth.Login)
		})
		r.With(requireAuth).Get("/profile", d.Auth.Profile)
	})

	// Book routes (protected)
	r.Route("/api/books", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", d.Books.List)
		r.Post("/", d.Books.Create)
		r.Get("/{id}", d.Books.Get)
		r.Put("/{id}", d.Books.Update)
		r.Delete("/{id}", d.Books.Delete)
		if d.Books.CoversEnabled() {
			r.Put("/{id}/cover", d.Books.PutCover)
			r.Get("/{id}/cover", d.Books.GetCover)
		}
	})

	return r
}
