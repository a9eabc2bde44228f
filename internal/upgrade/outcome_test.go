package upgrade_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ranchup/internal/upgrade"
)

func TestOutcome_Err(t *testing.T) {
	t.Parallel()

	cause := errors.New("state was error")
	rbErr := errors.New("rollback refused")

	t.Run("succeeded", func(t *testing.T) {
		t.Parallel()
		o := upgrade.Outcome{Kind: upgrade.Succeeded}
		assert.NoError(t, o.Err())
		assert.True(t, o.Succeeded())
	})

	t.Run("rolled back", func(t *testing.T) {
		t.Parallel()
		o := upgrade.Outcome{Kind: upgrade.RolledBack, Reason: cause}
		err := o.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "upgrade rolled back: state was error", err.Error())
		assert.False(t, o.Succeeded())
	})

	t.Run("failed with rollback failure", func(t *testing.T) {
		t.Parallel()
		o := upgrade.Outcome{Kind: upgrade.Failed, Reason: cause, RollbackErr: rbErr}
		err := o.Err()
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, rbErr)
		assert.Contains(t, err.Error(), "rollback failed: rollback refused")
	})

	t.Run("failed without reason", func(t *testing.T) {
		t.Parallel()
		o := upgrade.Outcome{Kind: upgrade.Failed}
		assert.EqualError(t, o.Err(), "upgrade failed")
	})
}

func TestOutcome_Message(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome upgrade.Outcome
		want    string
	}{
		{
			name:    "succeeded",
			outcome: upgrade.Outcome{Kind: upgrade.Succeeded, Service: "prod/web", Image: "docker:web:2"},
			want:    "Upgraded prod/web to docker:web:2",
		},
		{
			name:    "succeeded with note",
			outcome: upgrade.Outcome{Kind: upgrade.Succeeded, Service: "prod/web", Image: "docker:web:2", Note: "dry run, no changes made"},
			want:    "Upgraded prod/web to docker:web:2 (dry run, no changes made)",
		},
		{
			name: "rolled back",
			outcome: upgrade.Outcome{
				Kind: upgrade.RolledBack, Service: "prod/web", Image: "docker:web:2",
				Reason: errors.New("unexpected state \"error\""),
			},
			want: `Upgrade of prod/web to docker:web:2 rolled back: unexpected state "error"`,
		},
		{
			name: "failed",
			outcome: upgrade.Outcome{
				Kind: upgrade.Failed, Service: "prod/web", Image: "docker:web:2",
				Phase: upgrade.StateRollingBack, Reason: errors.New("boom"), RollbackErr: errors.New("refused"),
			},
			want: "Upgrade of prod/web to docker:web:2 failed while rolling-back: boom (rollback failed: refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.outcome.Message())
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "succeeded", upgrade.Succeeded.String())
	assert.Equal(t, "rolled-back", upgrade.RolledBack.String())
	assert.Equal(t, "failed", upgrade.Failed.String())
	assert.Equal(t, "Kind(7)", upgrade.Kind(7).String())
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	for _, s := range []upgrade.State{upgrade.StateSucceeded, upgrade.StateRolledBack, upgrade.StateFailed} {
		assert.True(t, s.Terminal(), s)
	}
	for _, s := range []upgrade.State{upgrade.StateIdle, upgrade.StateUpgrading, upgrade.StateRollingBack} {
		assert.False(t, s.Terminal(), s)
	}
}
