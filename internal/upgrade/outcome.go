package upgrade

import (
	"errors"
	"fmt"
	"time"

	"github.com/imamik/ranchup/internal/platform/rancher"
)

// Kind is the terminal result of a run.
type Kind int

const (
	// Succeeded means the upgrade was finished (or, without confirmation,
	// accepted by the platform).
	Succeeded Kind = iota
	// RolledBack means the upgrade failed and was reverted.
	RolledBack
	// Failed means the run stopped without a successful rollback.
	Failed
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case RolledBack:
		return "rolled-back"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the single terminal value produced by a run.
type Outcome struct {
	Kind    Kind
	Service string
	Image   string
	// Phase is the state the run was in when it ended.
	Phase State
	// Reason is the failure that ended the run. Nil on success.
	Reason error
	// RollbackErr is set when the rollback itself failed.
	RollbackErr error
	// Note carries extra detail for successful runs, e.g. a dry run.
	Note string
	// Plan is the upgrade request that was built, if the run got that far.
	Plan     *rancher.ServiceUpgrade
	Started  time.Time
	Duration time.Duration
}

// Succeeded reports whether the run ended successfully.
func (o Outcome) Succeeded() bool {
	return o.Kind == Succeeded
}

// Err returns nil for a successful run, and otherwise the failure joined
// with any rollback failure.
func (o Outcome) Err() error {
	if o.Kind == Succeeded {
		return nil
	}
	reason := o.Reason
	if reason == nil {
		reason = errors.New("upgrade failed")
	}
	if o.Kind == RolledBack {
		reason = fmt.Errorf("upgrade rolled back: %w", reason)
	}
	if o.RollbackErr != nil {
		return errors.Join(reason, fmt.Errorf("rollback failed: %w", o.RollbackErr))
	}
	return reason
}

// Message is a one-line, human readable summary of the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case Succeeded:
		msg := fmt.Sprintf("Upgraded %s to %s", o.Service, o.Image)
		if o.Note != "" {
			msg += " (" + o.Note + ")"
		}
		return msg
	case RolledBack:
		return fmt.Sprintf("Upgrade of %s to %s rolled back: %v", o.Service, o.Image, o.Reason)
	default:
		msg := fmt.Sprintf("Upgrade of %s to %s failed while %s: %v", o.Service, o.Image, o.Phase, o.Reason)
		if o.RollbackErr != nil {
			msg += fmt.Sprintf(" (rollback failed: %v)", o.RollbackErr)
		}
		return msg
	}
}
