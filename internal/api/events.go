package api

import (
	"context"
	"net/http"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
)

// recentLimit caps the live-tail feed. The endpoint is scoped to the current
// UTC day on purpose: it backs the dashboard's recent-activity panel, not a
// general history query.
const recentLimit = 20

// RecentSource is the slice of the persistence layer the feed reads from.
type RecentSource interface {
	RecentToday(ctx context.Context, limit int) ([]domain.Event, error)
}

type EventsHandler struct {
	source RecentSource
}

func NewEventsHandler(source RecentSource) *EventsHandler {
	return &EventsHandler{source: source}
}

// eventItem carries both the legacy key spellings ("event", "timestamp") and
// the canonical ones; older dashboard builds read the former.
type eventItem struct {
	ID         int64             `json:"id"`
	Event      string            `json:"event"`
	EventType  string            `json:"event_type"`
	UserID     *string           `json:"user_id"`
	Properties domain.Properties `json:"properties"`
	Timestamp  time.Time         `json:"timestamp"`
	CapturedAt time.Time         `json:"captured_at"`
}

// List handles GET /api/events: today's events, newest first, at most 20.
// An empty day yields an empty array, not an error.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.source.RecentToday(r.Context(), recentLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	items := make([]eventItem, 0, len(events))
	for _, ev := range events {
		items = append(items, eventItem{
			ID:         ev.ID,
			Event:      ev.EventType,
			EventType:  ev.EventType,
			UserID:     ev.UserID,
			Properties: ev.Properties,
			Timestamp:  ev.CapturedAt,
			CapturedAt: ev.CapturedAt,
		})
	}

	respondJSON(w, http.StatusOK, items)
}
