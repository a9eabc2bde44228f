package upgrade

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// Observer receives progress from an upgrade run.
type Observer interface {
	// Printf logs a free-form line.
	Printf(format string, v ...any)
	// Event emits a structured event.
	Event(event Event)
	// WithFields returns an Observer that adds fields to every event.
	WithFields(fields map[string]string) Observer
}

// Event is a structured upgrade event.
type Event struct {
	Type      EventType
	State     State
	Message   string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies events.
type EventType string

const (
	// EventStateChanged is emitted on every state machine transition.
	EventStateChanged EventType = "state.changed"
	// EventPoll is emitted after every status poll.
	EventPoll EventType = "poll"
	// EventOutcome is emitted once, when the run ends.
	EventOutcome EventType = "outcome"
	// EventWarning reports a problem that does not change the outcome.
	EventWarning EventType = "warning"
)

// ConsoleObserver writes events with the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a console observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{contextFields: make(map[string]string)}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...any) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Fields = mergeFields(o.contextFields, event.Fields)
	log.Print(formatEvent(event))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	return &ConsoleObserver{contextFields: mergeFields(o.contextFields, fields)}
}

func formatEvent(event Event) string {
	parts := []string{string(event.Type)}
	if event.State != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.State))
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}
	if len(event.Fields) > 0 {
		var fieldParts []string
		for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}
	return strings.Join(parts, " ")
}

// mergeFields returns base overlaid with extra. Neither input is modified.
func mergeFields(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	maps.Copy(out, base)
	maps.Copy(out, extra)
	return out
}

// LogrObserver forwards events to a logr.Logger as structured key/value
// pairs.
type LogrObserver struct {
	log logr.Logger
}

// NewLogrObserver wraps l.
func NewLogrObserver(l logr.Logger) *LogrObserver {
	return &LogrObserver{log: l}
}

// Printf implements Observer.
func (o *LogrObserver) Printf(format string, v ...any) {
	o.log.Info(fmt.Sprintf(format, v...))
}

// Event implements Observer.
func (o *LogrObserver) Event(event Event) {
	kv := []any{"event", string(event.Type)}
	if event.State != "" {
		kv = append(kv, "state", string(event.State))
	}
	for _, k := range slices.Sorted(maps.Keys(event.Fields)) {
		kv = append(kv, k, event.Fields[k])
	}
	if event.Type == EventWarning {
		o.log.Info("warning: "+event.Message, kv...)
		return
	}
	o.log.Info(event.Message, kv...)
}

// WithFields implements Observer.
func (o *LogrObserver) WithFields(fields map[string]string) Observer {
	kv := make([]any, 0, 2*len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		kv = append(kv, k, fields[k])
	}
	return &LogrObserver{log: o.log.WithValues(kv...)}
}
