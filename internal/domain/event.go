package domain

import (
	"time"
)

// Event is a single telemetry record. Events are immutable once stored; the
// ID is assigned by the database at insert time and is zero before that.
type Event struct {
	ID         int64      `json:"id,omitempty"`
	EventType  string     `json:"event_type"`
	UserID     *string    `json:"user_id,omitempty"`
	Properties Properties `json:"properties,omitempty"`
	CapturedAt time.Time  `json:"captured_at"`
}

// Properties is the open property bag attached to an event. The schema is not
// fixed; values can be any JSON shape. Accessors below cover the optional
// fields consumers are known to probe.
type Properties map[string]any

// String returns the value under key if it is a string.
func (p Properties) String(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	s, ok := p[key].(string)
	return s, ok
}

// Float returns the value under key if it is numeric. JSON numbers decode to
// float64, which is the only numeric type checked.
func (p Properties) Float(key string) (float64, bool) {
	if p == nil {
		return 0, false
	}
	f, ok := p[key].(float64)
	return f, ok
}

func (p Properties) Model() (string, bool) {
	return p.String("model")
}

func (p Properties) TotalCost() (float64, bool) {
	return p.Float("totalCost")
}

func (p Properties) Tool() (string, bool) {
	return p.String("tool")
}

func (p Properties) Source() (string, bool) {
	return p.String("source")
}

func (p Properties) TaskID() (string, bool) {
	return p.String("taskId")
}

// FeedbackType returns the feedback verdict of a task.feedback event.
// Clients have shipped both key spellings, so both are accepted.
func (p Properties) FeedbackType() (string, bool) {
	if s, ok := p.String("feedbackType"); ok {
		return s, true
	}
	return p.String("feedback_type")
}
