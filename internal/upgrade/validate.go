package upgrade

import (
	"github.com/imamik/ranchup/internal/platform/rancher"
)

// Validate checks that svc can be upgraded: it must be an active plain
// service that offers the upgrade action and a self link to poll.
// The returned error is a *ValidationError.
func Validate(svc *rancher.Service) error {
	if svc.State != rancher.StateActive {
		return &ValidationError{Field: "state", Expected: rancher.StateActive, Actual: svc.State}
	}
	if svc.Type != rancher.TypeService {
		return &ValidationError{Field: "type", Expected: rancher.TypeService, Actual: svc.Type}
	}
	if svc.Action(rancher.ActionUpgrade) == "" {
		return &ValidationError{Field: "upgrade action", Expected: "present", Actual: "missing"}
	}
	if svc.Link(rancher.LinkSelf) == "" {
		return &ValidationError{Field: "self link", Expected: "present", Actual: "missing"}
	}
	return nil
}
