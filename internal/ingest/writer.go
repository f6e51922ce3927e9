package ingest

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
	"github.com/arjunc477/telemetry-hub/internal/journal"
)

// EventStore is the slice of the persistence layer the writer needs.
type EventStore interface {
	InsertEvent(ctx context.Context, ev domain.Event) (int64, error)
}

// Broadcaster pushes stored events to live dashboard clients.
type Broadcaster interface {
	BroadcastEvent(ev domain.Event)
}

// Writer performs the dual-write for each captured event: a synchronous
// append to the day journal and a database insert handed to a small worker
// pool without awaiting completion. The two legs are independent; when the
// insert fails the journal entry already exists and the trails diverge
// permanently. That asymmetry is deliberate: the local journal is the primary
// durability signal, and a success response to the caller only attests to it.
type Writer struct {
	journal *journal.Journal
	store   EventStore
	hub     Broadcaster
	logger  *slog.Logger

	numWorkers    int
	syncStore     bool
	insertTimeout time.Duration

	jobs chan domain.Event
	wg   sync.WaitGroup
}

type Option func(*Writer)

// WithHub broadcasts every stored event to the given hub.
func WithHub(hub Broadcaster) Option {
	return func(w *Writer) { w.hub = hub }
}

// WithWorkers sets the number of store-insert goroutines.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.numWorkers = n
		}
	}
}

// WithSyncStore makes Record await the database insert and surface its error,
// for callers that need confirmation of full durability.
func WithSyncStore() Option {
	return func(w *Writer) { w.syncStore = true }
}

// NewWriter creates a writer. Call Start before Record and Stop on shutdown.
func NewWriter(j *journal.Journal, store EventStore, logger *slog.Logger, opts ...Option) *Writer {
	w := &Writer{
		journal:       j,
		store:         store,
		logger:        logger,
		numWorkers:    4,
		insertTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.jobs = make(chan domain.Event, w.numWorkers*2)
	return w
}

// Start launches the insert workers. They read from the jobs channel until it
// is closed or the context is cancelled.
func (w *Writer) Start(ctx context.Context) {
	for i := 0; i < w.numWorkers; i++ {
		w.wg.Add(1)
		go w.worker(ctx)
	}
	w.logger.Info("durability writer started", "num_workers", w.numWorkers)
}

// Stop closes the jobs channel and waits for pending inserts to drain.
func (w *Writer) Stop() {
	close(w.jobs)
	w.wg.Wait()
	w.logger.Info("durability writer stopped")
}

// Record writes the event to both trails. The journal append is the blocking
// leg and its failure is returned; the store insert is dispatched to the
// worker pool and its failure is only logged. In sync mode the insert is
// performed inline and its error returned as well.
func (w *Writer) Record(ctx context.Context, ev domain.Event, raw map[string]any) error {
	if err := w.journal.Append(raw); err != nil {
		return err
	}

	if w.syncStore {
		return w.insert(ctx, ev)
	}

	w.jobs <- ev
	return nil
}

func (w *Writer) worker(ctx context.Context) {
	defer w.wg.Done()

	for ev := range w.jobs {
		select {
		case <-ctx.Done():
			return
		default:
			// The request that produced this event has usually been answered
			// already, so the insert gets its own deadline.
			ictx, cancel := context.WithTimeout(context.Background(), w.insertTimeout)
			_ = w.insert(ictx, ev)
			cancel()
		}
	}
}

func (w *Writer) insert(ctx context.Context, ev domain.Event) error {
	id, err := w.store.InsertEvent(ctx, ev)
	if err != nil {
		w.logger.Error("event insert failed",
			"event_type", ev.EventType,
			"error", err,
		)
		return err
	}
	ev.ID = id

	if w.hub != nil {
		w.hub.BroadcastEvent(ev)
	}

	w.logger.Debug("event stored", "id", id, "event_type", ev.EventType)
	return nil
}
