package api

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arjunc477/telemetry-hub/internal/engine"
	"github.com/arjunc477/telemetry-hub/internal/stats"
	ws "github.com/arjunc477/telemetry-hub/internal/websocket"
)

// NewRouter creates and configures the HTTP router.
//
// limiter may be nil (no Redis configured) and frontendFS may be nil (no
// built dashboard on disk, serve the embedded fallback page instead).
func NewRouter(
	rec Recorder,
	recent RecentSource,
	statsEngine *stats.Engine,
	limiter *engine.RateLimiter,
	hub *ws.Hub,
	frontendFS fs.FS,
	rateLimit int,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// CORS for dashboard
	r.Use(corsMiddleware)

	// Handlers
	captureHandler := NewCaptureHandler(rec, limiter, rateLimit, logger)
	eventsHandler := NewEventsHandler(recent)
	statsHandler := NewStatsHandler(statsEngine)

	r.Post("/capture/", captureHandler.Capture)
	r.Post("/batch/", captureHandler.Batch)
	r.Get("/health", HealthHandler())
	r.Get("/stats", statsHandler.Get)
	r.Get("/api/events", eventsHandler.List)

	// WebSocket live tail for dashboard clients
	r.Get("/ws", hub.HandleWebSocket)

	// Dashboard: built frontend when present, embedded fallback otherwise
	if frontendFS != nil {
		fileServer := http.FileServer(http.FS(frontendFS))
		r.Handle("/*", fileServer)
	} else {
		r.Get("/", DashboardHandler())
	}

	return r
}

// corsMiddleware adds CORS headers for dashboard development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
