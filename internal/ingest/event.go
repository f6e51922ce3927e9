package ingest

import (
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
)

// timestampKey is the wire field carrying the capture time on inbound
// payloads and in the journal.
const timestampKey = "timestamp"

// Normalize turns a decoded capture payload into an event plus the raw map
// destined for the journal.
//
// The payload is an open JSON object: a missing event type is tolerated (the
// event is stored with an empty type), and a client-supplied timestamp is
// trusted verbatim so agents can backfill events captured while offline. Only
// when the payload carries no usable timestamp is the capture time stamped
// with now.
func Normalize(payload map[string]any, now time.Time) (domain.Event, map[string]any) {
	now = now.UTC()

	raw := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		raw[k] = v
	}

	capturedAt := now
	if s, ok := raw[timestampKey].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			capturedAt = t.UTC()
		}
	}
	raw[timestampKey] = capturedAt.Format(time.RFC3339Nano)

	ev := domain.Event{
		EventType:  eventType(payload),
		CapturedAt: capturedAt,
	}
	if s, ok := payload["user_id"].(string); ok {
		ev.UserID = &s
	}
	if m, ok := payload["properties"].(map[string]any); ok {
		ev.Properties = domain.Properties(m)
	}
	return ev, raw
}

// eventType reads the category from the legacy "event" key, falling back to
// the canonical "event_type" spelling.
func eventType(payload map[string]any) string {
	if s, ok := payload["event"].(string); ok {
		return s
	}
	s, _ := payload["event_type"].(string)
	return s
}
