package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
	"github.com/arjunc477/telemetry-hub/internal/engine"
	"github.com/arjunc477/telemetry-hub/internal/ingest"
)

// Recorder is the durability writer as seen by the capture handlers.
type Recorder interface {
	Record(ctx context.Context, ev domain.Event, raw map[string]any) error
}

type CaptureHandler struct {
	recorder  Recorder
	limiter   *engine.RateLimiter // nil when Redis is not configured
	rateLimit int
	logger    *slog.Logger
}

func NewCaptureHandler(rec Recorder, limiter *engine.RateLimiter, rateLimit int, logger *slog.Logger) *CaptureHandler {
	return &CaptureHandler{
		recorder:  rec,
		limiter:   limiter,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

type statusResponse struct {
	Status int `json:"status"`
}

// Capture handles POST /capture/: one event per request, acknowledged once
// the journal append completes. The database insert runs in the background,
// so a success here means "journaled", not "fully durable".
func (h *CaptureHandler) Capture(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ev, raw := ingest.Normalize(payload, time.Now())
	h.logger.Info("telemetry event",
		"event_type", ev.EventType,
		"captured_at", ev.CapturedAt,
	)

	if err := h.recorder.Record(r.Context(), ev, raw); err != nil {
		h.logger.Error("failed to record event", "event_type", ev.EventType, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, statusResponse{Status: 1})
}

// Batch handles POST /batch/: a {"batch":[...]} payload processed element by
// element in order. A missing or malformed batch field means zero events, not
// an error. Recording failures for one element are logged and the remaining
// elements are still attempted; the caller always gets a single {"status":1}
// once every element has been tried.
func (h *CaptureHandler) Batch(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload == nil {
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	batch, _ := payload["batch"].([]any)
	for _, item := range batch {
		obj, ok := item.(map[string]any)
		if !ok {
			h.logger.Warn("skipping non-object batch element")
			continue
		}

		ev, raw := ingest.Normalize(obj, time.Now())
		if err := h.recorder.Record(r.Context(), ev, raw); err != nil {
			h.logger.Error("failed to record batch event", "event_type", ev.EventType, "error", err)
		}
	}

	respondJSON(w, http.StatusOK, statusResponse{Status: 1})
}

func (h *CaptureHandler) allow(r *http.Request) bool {
	if h.limiter == nil || h.rateLimit <= 0 {
		return true
	}
	return h.limiter.Allow(r.Context(), clientIP(r), h.rateLimit)
}

// clientIP extracts the caller's address. middleware.RealIP has already
// rewritten RemoteAddr from forwarding headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
