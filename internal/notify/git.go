package notify

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// History describes the source tree a deploy was built from.
type History interface {
	// Branch returns the checked out branch name.
	Branch(ctx context.Context) (string, error)
	// RecentLog returns a one-line-per-commit log of recent work.
	RecentLog(ctx context.Context) (string, error)
}

// GitHistory reads History from the git CLI.
type GitHistory struct {
	// Dir is the working tree. Empty means the process working directory.
	Dir string
	// Since limits the log, in git's --since syntax. Defaults to "1.week".
	Since string
}

var _ History = GitHistory{}

// Branch implements History.
func (g GitHistory) Branch(ctx context.Context) (string, error) {
	out, err := g.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RecentLog implements History.
func (g GitHistory) RecentLog(ctx context.Context) (string, error) {
	since := g.Since
	if since == "" {
		since = "1.week"
	}
	return g.git(ctx, "log", "--pretty=format:%h - %an, %ar : %s", "--graph", "--since="+since)
}

func (g GitHistory) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w (stderr: %s)", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
