package ci

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/imamik/ranchup/internal/upgrade"
)

// Mode selects the output format.
type Mode int

const (
	// ModePlain writes unadorned status lines.
	ModePlain Mode = iota
	// ModeStyled writes colored status lines for terminals.
	ModeStyled
	// ModeTeamCity writes TeamCity service messages.
	ModeTeamCity
)

// DetectMode picks TeamCity messages when running on TeamCity, styled
// output when f is a terminal and plain output otherwise.
func DetectMode(teamCity bool, f *os.File) Mode {
	switch {
	case teamCity:
		return ModeTeamCity
	case f != nil && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())):
		return ModeStyled
	default:
		return ModePlain
	}
}

// Reporter writes progress and the final result for the CI system.
type Reporter struct {
	mu   sync.Mutex
	w    io.Writer
	mode Mode
}

var _ upgrade.Notifier = (*Reporter)(nil)

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, mode Mode) *Reporter {
	return &Reporter{w: w, mode: mode}
}

// Progress reports an intermediate step.
func (r *Reporter) Progress(msg string) {
	switch r.mode {
	case ModeTeamCity:
		r.println(ServiceMessage("progressMessage", msg))
	case ModeStyled:
		r.println(progressStyle.Render(spinner + " " + msg))
	default:
		r.println(spinner + " " + msg)
	}
}

// Problem marks the build as failed with description.
func (r *Reporter) Problem(description string) {
	switch r.mode {
	case ModeTeamCity:
		r.println(ServiceMessageAttrs("buildProblem", map[string]string{"description": description}))
	case ModeStyled:
		r.println(failureStyle.Render(crossMark + " " + description))
	default:
		r.println(crossMark + " " + description)
	}
}

// Done reports a successful result.
func (r *Reporter) Done(msg string) {
	switch r.mode {
	case ModeTeamCity:
		r.println(ServiceMessage("progressMessage", msg))
	case ModeStyled:
		r.println(successStyle.Render(checkMark + " " + msg))
	default:
		r.println(checkMark + " " + msg)
	}
}

// Notify implements upgrade.Notifier by reporting the outcome.
func (r *Reporter) Notify(_ context.Context, outcome upgrade.Outcome) error {
	if outcome.Succeeded() {
		r.Done(outcome.Message())
	} else {
		r.Problem(outcome.Message())
	}
	return nil
}

// Observe returns an observer that forwards everything to next and
// reports each state change as progress.
func (r *Reporter) Observe(next upgrade.Observer) upgrade.Observer {
	return &observer{next: next, r: r}
}

func (r *Reporter) println(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, line)
}

type observer struct {
	next upgrade.Observer
	r    *Reporter
}

func (o *observer) Printf(format string, v ...any) {
	o.next.Printf(format, v...)
}

func (o *observer) Event(event upgrade.Event) {
	o.next.Event(event)
	if event.Type == upgrade.EventStateChanged && !event.State.Terminal() {
		o.r.Progress("Upgrade: " + string(event.State))
	}
}

func (o *observer) WithFields(fields map[string]string) upgrade.Observer {
	return &observer{next: o.next.WithFields(fields), r: o.r}
}
