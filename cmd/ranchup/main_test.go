package main

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ranchup/internal/platform/rancher"
	testutil "github.com/imamik/ranchup/internal/testing"
)

// runMainEnv makes the test binary behave as the ranchup binary, so the
// signal handling in main can be exercised in a child process.
const runMainEnv = "RANCHUP_TEST_RUN_MAIN"

func TestMain(m *testing.M) {
	if os.Getenv(runMainEnv) == "1" {
		os.Exit(run())
	}
	os.Exit(m.Run())
}

func TestInterruptRollsBackUpgrade(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt signals cannot be sent to child processes on windows")
	}

	fake := testutil.NewFakeRancher(t, testutil.NewServiceBuilder().Build())
	fake.SetStates(rancher.StateUpgrading)

	cmd := exec.Command(os.Args[0],
		"deploy",
		"--service", "prod/web",
		"--image", "1.4.0",
		"--poll-interval", "20ms",
	)
	cmd.Env = []string{
		runMainEnv + "=1",
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + t.TempDir(),
		"RANCHER_URL=" + fake.Server.URL,
		"RANCHER_KEY=key",
		"RANCHER_SECRET=secret",
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	require.Eventually(t, func() bool { return fake.Polls() >= 2 }, 10*time.Second, 10*time.Millisecond)
	require.NoError(t, cmd.Process.Signal(os.Interrupt))

	err := cmd.Wait()
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "expected a non-zero exit, got %v\n%s", err, out.String())
	assert.Equal(t, 1, exitErr.ExitCode(), "process must exit normally, not die on the signal\n%s", out.String())

	assert.Equal(t, 1, fake.Count("POST /v1/services/1s1/?rollback"))
	assert.Zero(t, fake.Count("POST /v1/services/1s1/?finishupgrade"))
	assert.Contains(t, out.String(), "rolled back")
}
