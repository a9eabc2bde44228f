package upgrade

// State is a step of the upgrade state machine.
type State string

// States of a run, in happy-path order, followed by the failure-only ones.
const (
	StateIdle                 State = "idle"
	StateFetching             State = "fetching"
	StateValidating           State = "validating"
	StateUpgrading            State = "upgrading"
	StateAwaitingConfirmation State = "awaiting-confirmation"
	StateFinishing            State = "finishing"
	StateSucceeded            State = "succeeded"
	StateRollingBack          State = "rolling-back"
	StateRolledBack           State = "rolled-back"
	StateFailed               State = "failed"
)

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateRolledBack || s == StateFailed
}
