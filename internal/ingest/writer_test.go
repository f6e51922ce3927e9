package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
	"github.com/arjunc477/telemetry-hub/internal/journal"
)

type fakeStore struct {
	mu     sync.Mutex
	events []domain.Event
	nextID int64
	err    error
}

func (f *fakeStore) InsertEvent(ctx context.Context, ev domain.Event) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.events = append(f.events, ev)
	return f.nextID, nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeHub struct {
	mu     sync.Mutex
	events []domain.Event
}

func (f *fakeHub) BroadcastEvent(ev domain.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func countJournalLines(t *testing.T, dir string) int {
	t.Helper()
	day := time.Now().UTC().Format("2006-01-02")
	f, err := os.Open(filepath.Join(dir, fmt.Sprintf("telemetry-%s.jsonl", day)))
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("opening journal: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	return lines
}

func TestWriter_DualWrite(t *testing.T) {
	dir := t.TempDir()
	j, err := journal.New(dir)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	st := &fakeStore{}

	w := NewWriter(j, st, testLogger(), WithWorkers(2))
	w.Start(context.Background())

	ev, raw := Normalize(map[string]any{"event": "task.option_selected"}, time.Now())
	if err := w.Record(context.Background(), ev, raw); err != nil {
		t.Fatalf("Record: %v", err)
	}

	w.Stop() // drains the insert queue

	if got := countJournalLines(t, dir); got != 1 {
		t.Errorf("journal lines: got %d, want 1", got)
	}
	if got := st.count(); got != 1 {
		t.Errorf("store inserts: got %d, want 1", got)
	}
}

func TestWriter_StoreFailureIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	j, err := journal.New(dir)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	st := &fakeStore{err: errors.New("connection refused")}

	w := NewWriter(j, st, testLogger())
	w.Start(context.Background())

	// A store outage must not surface to the caller, and the journal leg
	// must complete for every event.
	for i := 0; i < 5; i++ {
		ev, raw := Normalize(map[string]any{"event": "task.feedback"}, time.Now())
		if err := w.Record(context.Background(), ev, raw); err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
	}
	w.Stop()

	if got := countJournalLines(t, dir); got != 5 {
		t.Errorf("journal lines: got %d, want 5", got)
	}
	if got := st.count(); got != 0 {
		t.Errorf("store inserts: got %d, want 0", got)
	}
}

func TestWriter_JournalFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	j, err := journal.New(dir)
	if err != nil {
		t.Fatalf("journal: %v", err)
	}

	// Occupy today's path with a directory so appends fail.
	day := time.Now().UTC().Format("2006-01-02")
	if err := os.Mkdir(filepath.Join(dir, fmt.Sprintf("telemetry-%s.jsonl", day)), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	st := &fakeStore{}
	w := NewWriter(j, st, testLogger())
	w.Start(context.Background())

	ev, raw := Normalize(map[string]any{"event": "task.feedback"}, time.Now())
	if err := w.Record(context.Background(), ev, raw); err == nil {
		t.Error("expected journal failure to propagate")
	}
	w.Stop()

	if got := st.count(); got != 0 {
		t.Errorf("store inserts after journal failure: got %d, want 0", got)
	}
}

func TestWriter_SyncStoreSurfacesError(t *testing.T) {
	j, err := journal.New(t.TempDir())
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	st := &fakeStore{err: errors.New("constraint violation")}

	w := NewWriter(j, st, testLogger(), WithSyncStore())

	ev, raw := Normalize(map[string]any{"event": "task.feedback"}, time.Now())
	if err := w.Record(context.Background(), ev, raw); err == nil {
		t.Error("sync mode should surface store errors")
	}
}

func TestWriter_BroadcastsStoredEvents(t *testing.T) {
	j, err := journal.New(t.TempDir())
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	st := &fakeStore{}
	hub := &fakeHub{}

	// Sync mode so the broadcast has happened by the time Record returns.
	w := NewWriter(j, st, testLogger(), WithSyncStore(), WithHub(hub))

	ev, raw := Normalize(map[string]any{"event": "task.option_selected"}, time.Now())
	if err := w.Record(context.Background(), ev, raw); err != nil {
		t.Fatalf("Record: %v", err)
	}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if len(hub.events) != 1 {
		t.Fatalf("broadcasts: got %d, want 1", len(hub.events))
	}
	if hub.events[0].ID != 1 {
		t.Errorf("broadcast event should carry the assigned id, got %d", hub.events[0].ID)
	}
}
