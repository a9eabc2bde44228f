package poll

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

func sequence(states ...string) (Probe[string], *atomic.Int32) {
	var calls atomic.Int32
	return func(_ context.Context) (string, error) {
		n := int(calls.Add(1))
		if n > len(states) {
			return states[len(states)-1], nil
		}
		return states[n-1], nil
	}, &calls
}

func stateOptions() Options[string] {
	return Options[string]{
		Interval:   testInterval,
		Succeeded:  func(s string) bool { return s == "upgraded" },
		InProgress: func(s string) bool { return s == "upgrading" },
	}
}

func TestAwaitState_Success(t *testing.T) {
	t.Parallel()

	probe, calls := sequence("upgrading", "upgrading", "upgraded")

	start := time.Now()
	got, err := AwaitState(t.Context(), probe, stateOptions())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "upgraded", got)
	assert.Equal(t, int32(3), calls.Load())
	assert.GreaterOrEqual(t, elapsed, 3*testInterval)
}

func TestAwaitState_UnexpectedState(t *testing.T) {
	t.Parallel()

	probe, calls := sequence("upgrading", "canceled")

	got, err := AwaitState(t.Context(), probe, stateOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedState)
	assert.Contains(t, err.Error(), "canceled")
	assert.Equal(t, "canceled", got)
	assert.Equal(t, int32(2), calls.Load())

	var stateErr *StateError
	require.True(t, errors.As(err, &stateErr))
	assert.Equal(t, "canceled", stateErr.State)
	assert.Equal(t, 2, stateErr.Attempts)
}

func TestAwaitState_ProbeErrorStopsImmediately(t *testing.T) {
	t.Parallel()

	probeErr := errors.New("connection refused")
	var calls atomic.Int32
	probe := func(_ context.Context) (string, error) {
		calls.Add(1)
		return "", probeErr
	}

	_, err := AwaitState(t.Context(), probe, stateOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, probeErr)
	assert.NotErrorIs(t, err, ErrUnexpectedState)
	assert.Contains(t, err.Error(), "poll attempt 1")

	// no further probes after the failure
	time.Sleep(4 * testInterval)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAwaitState_ContextCancelled(t *testing.T) {
	t.Parallel()

	probe, calls := sequence("upgrading")

	ctx, cancel := context.WithTimeout(t.Context(), 12*testInterval)
	defer cancel()

	_, err := AwaitState(ctx, probe, stateOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, calls.Load())
}

func TestAwaitState_NoOverlappingProbes(t *testing.T) {
	t.Parallel()

	var inFlight, maxInFlight, calls atomic.Int32
	probe := func(_ context.Context) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxInFlight.Load() {
			maxInFlight.Store(n)
		}
		// slower than the interval
		time.Sleep(3 * testInterval)
		if calls.Add(1) == 4 {
			return "upgraded", nil
		}
		return "upgrading", nil
	}

	_, err := AwaitState(t.Context(), probe, stateOptions())
	require.NoError(t, err)
	assert.Equal(t, int32(1), maxInFlight.Load())
	assert.Equal(t, int32(4), calls.Load())
}

func TestAwaitState_OnPollAndDescribe(t *testing.T) {
	t.Parallel()

	type record struct{ state string }
	values := []record{{"upgrading"}, {"error"}}
	var i int
	probe := func(_ context.Context) (record, error) {
		v := values[i]
		i++
		return v, nil
	}

	var seen []int
	_, err := AwaitState(t.Context(), probe, Options[record]{
		Interval:   testInterval,
		Succeeded:  func(r record) bool { return r.state == "upgraded" },
		InProgress: func(r record) bool { return r.state == "upgrading" },
		Describe:   func(r record) string { return r.state },
		OnPoll:     func(attempt int, _ record) { seen = append(seen, attempt) },
	})

	require.Error(t, err)
	assert.Equal(t, `unexpected state "error" after 2 polls`, err.Error())
	assert.Equal(t, []int{1, 2}, seen)
}

func TestAwaitState_DefaultInterval(t *testing.T) {
	t.Parallel()

	probe, calls := sequence("upgraded")
	opts := stateOptions()
	opts.Interval = 0

	ctx, cancel := context.WithTimeout(t.Context(), DefaultInterval/2)
	defer cancel()

	_, err := AwaitState(ctx, probe, opts)
	require.Error(t, err, "first probe should wait a full default interval")
	assert.Equal(t, int32(0), calls.Load())
}

func TestAwaitState_MissingCallbacks(t *testing.T) {
	t.Parallel()

	probe, _ := sequence("upgraded")
	_, err := AwaitState(t.Context(), probe, Options[string]{})
	require.Error(t, err)
}
