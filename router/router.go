package router

import (
	"net/http"
	"studylab-api/config"
	"studylab-api/handler"

	_ "studylab-api/docs"

	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Handlers groups everything the router mounts. RateLimiter may be nil.
type Handlers struct {
	Auth          *handler.AuthHandler
	History       *handler.HistoryHandler
	Authenticator *handler.Authenticator
	RateLimiter   *handler.RateLimiter
}

func NewRouter(h Handlers, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	limited := func(next http.Handler) http.Handler {
		if h.RateLimiter == nil {
			return next
		}
		return h.RateLimiter.Middleware(next)
	}
	protected := h.Authenticator.Required

	mux.HandleFunc("GET /health", handler.HealthCheck)

	// --- Auth Routes ---
	mux.Handle("POST /auth/register", limited(handler.ErrorHandlingMiddleware(h.Auth.Register)))
	mux.Handle("POST /auth/login", limited(handler.ErrorHandlingMiddleware(h.Auth.Login)))
	mux.Handle("POST /auth/refresh", handler.ErrorHandlingMiddleware(h.Auth.Refresh))
	mux.Handle("POST /auth/logout", handler.ErrorHandlingMiddleware(h.Auth.Logout))
	mux.Handle("GET /auth/me", protected(handler.ErrorHandlingMiddleware(h.Auth.Me)))

	// --- History Routes ---
	mux.Handle("POST /history", protected(handler.ErrorHandlingMiddleware(h.History.Create)))
	mux.Handle("GET /history", protected(handler.ErrorHandlingMiddleware(h.History.List)))
	mux.Handle("GET /history/{id}", protected(handler.ErrorHandlingMiddleware(h.History.Get)))
	mux.Handle("DELETE /history/{id}", protected(handler.ErrorHandlingMiddleware(h.History.Delete)))

	if cfg.Server.EnableSwagger {
		mux.Handle("GET /swagger/", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	mux.HandleFunc("/", handler.NotFound)

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	return handler.LoggingMiddleware(corsHandler(mux))
}
