package notify

import (
	"context"
	"errors"

	"github.com/imamik/ranchup/internal/upgrade"
)

// Multi delivers an outcome to every notifier, in order, and joins their
// errors. One failing notifier does not stop the others.
type Multi []upgrade.Notifier

var _ upgrade.Notifier = Multi(nil)

// Notify implements upgrade.Notifier.
func (m Multi) Notify(ctx context.Context, outcome upgrade.Outcome) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, outcome); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Func adapts a function to upgrade.Notifier.
type Func func(ctx context.Context, outcome upgrade.Outcome) error

// Notify implements upgrade.Notifier.
func (f Func) Notify(ctx context.Context, outcome upgrade.Outcome) error {
	return f(ctx, outcome)
}
