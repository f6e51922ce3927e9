package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
)

type fakeRecent struct {
	events []domain.Event
	err    error
	limit  int
}

func (f *fakeRecent) RecentToday(ctx context.Context, limit int) ([]domain.Event, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func TestEventsList_NewestFirstWithBothKeySpellings(t *testing.T) {
	userID := "u-1"
	src := &fakeRecent{events: []domain.Event{
		{ID: 3, EventType: "task.feedback", UserID: &userID, CapturedAt: time.Now().UTC()},
		{ID: 2, EventType: "task.option_selected", CapturedAt: time.Now().UTC()},
		{ID: 1, EventType: "app.start", CapturedAt: time.Now().UTC()},
	}}
	h := NewEventsHandler(src)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if src.limit != 20 {
		t.Errorf("limit: got %d, want 20", src.limit)
	}

	var items []map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items: got %d, want 3", len(items))
	}

	if items[0]["id"] != float64(3) {
		t.Errorf("first item id: got %v, want 3", items[0]["id"])
	}
	if items[0]["event"] != "task.feedback" || items[0]["event_type"] != "task.feedback" {
		t.Errorf("legacy/canonical keys must match: %v", items[0])
	}
	if items[0]["timestamp"] == nil || items[0]["captured_at"] == nil {
		t.Errorf("both timestamp spellings expected: %v", items[0])
	}
}

func TestEventsList_EmptyDayIsEmptyArray(t *testing.T) {
	h := NewEventsHandler(&fakeRecent{events: []domain.Event{}})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body: got %q, want empty JSON array", body)
	}
}

func TestEventsList_StorageErrorSurfaces(t *testing.T) {
	h := NewEventsHandler(&fakeRecent{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}
}
