package upgrade_test

import (
	"bytes"
	"encoding/json"
	"log"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ranchup/internal/upgrade"
)

func TestConsoleObserver_Event(t *testing.T) {
	var buf bytes.Buffer
	out, flags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(out)
		log.SetFlags(flags)
	})

	obs := upgrade.NewConsoleObserver().WithFields(map[string]string{"service": "prod/web"})
	obs.Event(upgrade.Event{
		Type:    upgrade.EventPoll,
		State:   upgrade.StateAwaitingConfirmation,
		Message: "service status: upgrading",
		Fields:  map[string]string{"attempt": "2"},
	})

	assert.Equal(t, "poll [awaiting-confirmation] service status: upgrading (attempt=2, service=prod/web)\n", buf.String())
}

func TestLogrObserver_Event(t *testing.T) {
	t.Parallel()

	var lines []map[string]any
	logger := funcr.NewJSON(func(obj string) {
		var m map[string]any
		if err := json.Unmarshal([]byte(obj), &m); err == nil {
			lines = append(lines, m)
		}
	}, funcr.Options{})

	obs := upgrade.NewLogrObserver(logger).WithFields(map[string]string{"service": "prod/web"})
	obs.Event(upgrade.Event{
		Type:    upgrade.EventStateChanged,
		State:   upgrade.StateUpgrading,
		Message: "validating -> upgrading",
	})
	obs.Event(upgrade.Event{Type: upgrade.EventWarning, Message: "could not deliver notification"})
	obs.Printf("plain %s", "line")

	require.Len(t, lines, 3)
	assert.Equal(t, "validating -> upgrading", lines[0]["msg"])
	assert.Equal(t, "state.changed", lines[0]["event"])
	assert.Equal(t, "upgrading", lines[0]["state"])
	assert.Equal(t, "prod/web", lines[0]["service"])
	assert.Equal(t, "warning: could not deliver notification", lines[1]["msg"])
	assert.Equal(t, "plain line", lines[2]["msg"])
}
