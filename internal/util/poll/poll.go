package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultInterval is the delay between probes when none is configured.
const DefaultInterval = time.Second

// ErrUnexpectedState is wrapped by the error returned when a probe observes
// a state that is neither the success state nor in progress.
var ErrUnexpectedState = errors.New("unexpected state")

// StateError carries the state that stopped the wait.
type StateError struct {
	State    string
	Attempts int
}

func (e *StateError) Error() string {
	return fmt.Sprintf("unexpected state %q after %d polls", e.State, e.Attempts)
}

func (e *StateError) Unwrap() error {
	return ErrUnexpectedState
}

// Probe fetches the current value of the thing being waited on.
type Probe[T any] func(ctx context.Context) (T, error)

// Options controls [AwaitState].
type Options[T any] struct {
	// Interval between probes. The first probe also waits one interval.
	Interval time.Duration
	// Succeeded reports whether v is the target state.
	Succeeded func(v T) bool
	// InProgress reports whether v is still transitioning. Any value that
	// is neither succeeded nor in progress ends the wait with a *StateError.
	InProgress func(v T) bool
	// Describe renders v for the *StateError. Defaults to fmt.Sprint.
	Describe func(v T) string
	// OnPoll is called after every successful probe.
	OnPoll func(attempt int, v T)
}

// AwaitState calls probe every opts.Interval until it reports success,
// an error, or a state outside of opts.InProgress.
//
// Exactly one probe is in flight at a time; the interval is measured from
// the end of the previous probe. A probe error is returned at once, wrapped
// with the attempt number. An unexpected state is returned together with
// the value that carried it. Cancelling ctx stops the wait and returns the
// context error.
func AwaitState[T any](ctx context.Context, probe Probe[T], opts Options[T]) (T, error) {
	var zero T

	if probe == nil || opts.Succeeded == nil || opts.InProgress == nil {
		return zero, errors.New("poll: probe, Succeeded and InProgress are required")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	describe := opts.Describe
	if describe == nil {
		describe = func(v T) string { return fmt.Sprint(v) }
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("stopped waiting after %d polls: %w", attempt-1, context.Cause(ctx))
		case <-timer.C:
		}

		v, err := probe(ctx)
		if err != nil {
			return zero, fmt.Errorf("poll attempt %d failed: %w", attempt, err)
		}

		if opts.OnPoll != nil {
			opts.OnPoll(attempt, v)
		}

		switch {
		case opts.Succeeded(v):
			return v, nil
		case opts.InProgress(v):
			timer.Reset(interval)
		default:
			return v, &StateError{State: describe(v), Attempts: attempt}
		}
	}
}
