package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Journal is the append-only durability trail: one JSONL file per UTC
// calendar day, one JSON object per line, no compaction. The day is derived
// from the wall clock at write time, never from the event's own timestamp, so
// backfilled events land in the file of the day they arrived.
type Journal struct {
	dir string
}

// New ensures the journal directory exists and returns an appender for it.
func New(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}
	return &Journal{dir: dir}, nil
}

// Append serializes record as one JSON line into today's file, creating the
// file if absent. Unlike the database leg of the dual-write, append failures
// are surfaced: local disk is expected to be reliable, so an error here means
// the deployment is misconfigured.
func (j *Journal) Append(record any) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling journal record: %w", err)
	}

	f, err := os.OpenFile(j.pathForToday(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening journal file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending journal record: %w", err)
	}
	return nil
}

// Dir returns the journal directory.
func (j *Journal) Dir() string {
	return j.dir
}

func (j *Journal) pathForToday() string {
	day := time.Now().UTC().Format("2006-01-02")
	return filepath.Join(j.dir, fmt.Sprintf("telemetry-%s.jsonl", day))
}
