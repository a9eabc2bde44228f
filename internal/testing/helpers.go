package testing

import (
	"fmt"
	"sync"

	"github.com/imamik/ranchup/internal/upgrade"
)

// RecordingObserver is an upgrade.Observer that keeps all events.
type RecordingObserver struct {
	mu       sync.Mutex
	events   []upgrade.Event
	messages []string
}

// NewRecordingObserver creates an empty recorder.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{}
}

// Printf implements upgrade.Observer.
func (o *RecordingObserver) Printf(format string, v ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, fmt.Sprintf(format, v...))
}

// Messages returns the printed lines.
func (o *RecordingObserver) Messages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.messages...)
}

// Event implements upgrade.Observer.
func (o *RecordingObserver) Event(event upgrade.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

// WithFields implements upgrade.Observer. Fields are dropped; the
// returned observer records into the same slices.
func (o *RecordingObserver) WithFields(map[string]string) upgrade.Observer {
	return o
}

// Events returns the recorded events of the given type, or all events when
// no type is given.
func (o *RecordingObserver) Events(types ...upgrade.EventType) []upgrade.Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []upgrade.Event
	for _, e := range o.events {
		if len(types) == 0 {
			out = append(out, e)
			continue
		}
		for _, typ := range types {
			if e.Type == typ {
				out = append(out, e)
			}
		}
	}
	return out
}

// States returns the sequence of states entered.
func (o *RecordingObserver) States() []upgrade.State {
	var out []upgrade.State
	for _, e := range o.Events(upgrade.EventStateChanged) {
		out = append(out, e.State)
	}
	return out
}
