package upgrade_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/ranchup/internal/platform/rancher"
	testutil "github.com/imamik/ranchup/internal/testing"
	"github.com/imamik/ranchup/internal/upgrade"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	base := testutil.NewServiceBuilder()

	tests := []struct {
		name      string
		svc       *rancher.Service
		wantField string
		wantMsg   string
	}{
		{name: "active service", svc: base.Build()},
		{
			name:      "inactive",
			svc:       base.WithState(rancher.StateInactive).Build(),
			wantField: "state",
			wantMsg:   "unexpected service state: expected 'active' but was 'inactive'",
		},
		{
			name:      "already upgrading",
			svc:       base.WithState(rancher.StateUpgrading).Build(),
			wantField: "state",
		},
		{
			name:      "upgraded but not finished",
			svc:       base.WithState(rancher.StateUpgraded).Build(),
			wantField: "state",
		},
		{
			name:      "load balancer",
			svc:       base.WithType("loadBalancerService").Build(),
			wantField: "type",
			wantMsg:   "unexpected service type: expected 'service' but was 'loadBalancerService'",
		},
		{
			name:      "state checked before type",
			svc:       base.WithState(rancher.StateInactive).WithType("dnsService").Build(),
			wantField: "state",
		},
		{
			name:      "no upgrade action",
			svc:       base.WithAction(rancher.ActionUpgrade, "").Build(),
			wantField: "upgrade action",
		},
		{
			name:      "no self link",
			svc:       base.WithLink(rancher.LinkSelf, "").Build(),
			wantField: "self link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := upgrade.Validate(tt.svc)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, upgrade.ErrValidation)

			var verr *upgrade.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}
