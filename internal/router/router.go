package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"vidsum-backend/internal/handlers"
	"vidsum-backend/internal/middleware"
	"vidsum-backend/internal/websocket"
)

func New(
	identity *middleware.Identity,
	summaryHandler *handlers.SummaryHandler,
	jobHandler *handlers.JobHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Summarize rate limiter (10 req/min per IP; the webhook is slow and
	// unmetered)
	summarizeLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(identity.Middleware)

		// ──── Summary store ────
		r.Route("/summaries", func(r chi.Router) {
			r.Post("/", summaryHandler.Save)
			r.Get("/{userEmail}", summaryHandler.List)
		})

		// ──── Summarize lifecycle ────
		r.Group(func(r chi.Router) {
			r.Use(summarizeLimiter.Middleware)
			r.Post("/summarize", summaryHandler.Summarize)
			r.Post("/summarize/async", summaryHandler.SummarizeAsync)
		})

		// ──── Jobs ────
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/{id}", jobHandler.GetJob)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
