package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/arjunc477/telemetry-hub/internal/domain"
)

// Event types with fixed meaning for the acceptance metrics.
const (
	EventOptionSelected = "task.option_selected"
	EventOptionsIgnored = "task.options_ignored"
	EventFeedback       = "task.feedback"

	FeedbackThumbsUp   = "thumbs_up"
	FeedbackThumbsDown = "thumbs_down"
)

// DefaultWindowDays is the trailing window used by the stats endpoint.
const DefaultWindowDays = 30

// EventSource is the slice of the persistence layer the engine reads from.
type EventSource interface {
	EventsSince(ctx context.Context, since time.Time) ([]domain.Event, error)
}

// Report holds aggregated counts over the trailing window.
//
// The acceptance rate is deliberately not part of the report: the dashboard
// derives it as accepted/(accepted+rejected), showing 0% when both are zero.
type Report struct {
	Totals   map[string]int `json:"totals"`
	Accepted Accepted       `json:"accepted"`
	Rejected Rejected       `json:"rejected"`
}

type Accepted struct {
	OptionSelected int `json:"option_selected"`
	ThumbsUp       int `json:"thumbs_up"`
}

type Rejected struct {
	OptionsIgnored int `json:"options_ignored"`
	ThumbsDown     int `json:"thumbs_down"`
}

// Engine computes rolling statistics over stored events.
type Engine struct {
	source EventSource
}

func NewEngine(source EventSource) *Engine {
	return &Engine{source: source}
}

// Compute aggregates events captured in the last windowDays days. Non-positive
// windows fall back to the default.
func (e *Engine) Compute(ctx context.Context, windowDays int) (*Report, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	events, err := e.source.EventsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("loading events for stats: %w", err)
	}

	report := &Report{Totals: map[string]int{}}
	for _, ev := range events {
		report.Totals[ev.EventType]++

		switch ev.EventType {
		case EventOptionSelected:
			report.Accepted.OptionSelected++
		case EventOptionsIgnored:
			report.Rejected.OptionsIgnored++
		case EventFeedback:
			// Events without a recognizable verdict count in neither bucket.
			fb, ok := ev.Properties.FeedbackType()
			if !ok {
				continue
			}
			switch fb {
			case FeedbackThumbsUp:
				report.Accepted.ThumbsUp++
			case FeedbackThumbsDown:
				report.Rejected.ThumbsDown++
			}
		}
	}

	return report, nil
}
