package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/crewchat/internal/api/handler"
	customMiddleware "github.com/Rrens/crewchat/internal/api/middleware"
	"github.com/Rrens/crewchat/internal/config"
	"github.com/Rrens/crewchat/internal/dispatch"
	"github.com/Rrens/crewchat/internal/realtime"
	"github.com/Rrens/crewchat/internal/service"
)

// Dependencies are the components the router serves
type Dependencies struct {
	Store       handler.Pinger
	Chats       *service.ChatService
	Hub         *realtime.Hub
	RateLimiter customMiddleware.Limiter // nil disables rate limiting
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	dispatchHandler := handler.NewDispatchHandler(dispatch.New(deps.Chats))
	streamHandler := handler.NewStreamHandler(deps.Chats, deps.Hub)

	execute := func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(customMiddleware.NewRateLimitMiddleware(deps.RateLimiter).Limit)
		}
		r.Get("/", dispatchHandler.Execute)
		r.Post("/", dispatchHandler.Execute)
	}

	timeout := func(next http.Handler) http.Handler {
		if cfg.Server.MiddlewareTimeout <= 0 {
			return next
		}
		return middleware.Timeout(cfg.Server.MiddlewareTimeout)(next)
	}

	// Function-style path kept for existing widgets
	r.With(timeout).Route("/server/app_function/execute", execute)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(timeout)
			r.Get("/health", handler.HealthCheck)
			r.Get("/ready", handler.ReadyCheck(deps.Store))
			r.Route("/execute", execute)
		})

		// Streams stay open, so no timeout
		r.Get("/chats/{chatID}/stream", streamHandler.Stream)
	})

	return r
}
