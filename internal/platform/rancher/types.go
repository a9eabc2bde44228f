package rancher

import "maps"

// Service states reported by the platform that the upgrade flow cares about.
const (
	StateActive    = "active"
	StateUpgrading = "upgrading"
	StateUpgraded  = "upgraded"
	StateInactive  = "inactive"
)

// TypeService is the resource type of a plain (non load balancer) service.
const TypeService = "service"

// Action names exposed in a service's actions map.
const (
	ActionUpgrade       = "upgrade"
	ActionFinishUpgrade = "finishupgrade"
	ActionRollback      = "rollback"
)

// LinkSelf is the relation name of a resource's own URL.
const LinkSelf = "self"

// Credentials is the API key pair used for basic auth.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// LaunchConfig is kept as a generic JSON object so fields this client
// does not model survive the fetch/upgrade round trip.
type LaunchConfig map[string]any

// ImageKey is the launch config field holding the image reference.
const ImageKey = "imageUuid"

// Image returns the launch config's image reference, or "" if unset.
func (lc LaunchConfig) Image() string {
	s, _ := lc[ImageKey].(string)
	return s
}

// Clone returns a deep copy of the launch config.
func (lc LaunchConfig) Clone() LaunchConfig {
	if lc == nil {
		return nil
	}
	return deepCopyMap(lc)
}

// Service is a service record as returned by the services API.
type Service struct {
	ID                     string            `json:"id"`
	Name                   string            `json:"name"`
	StackID                string            `json:"stackId,omitempty"`
	State                  string            `json:"state"`
	Type                   string            `json:"type"`
	LaunchConfig           LaunchConfig      `json:"launchConfig"`
	SecondaryLaunchConfigs []LaunchConfig    `json:"secondaryLaunchConfigs"`
	Upgrade                *ServiceUpgrade   `json:"upgrade,omitempty"`
	Actions                map[string]string `json:"actions"`
	Links                  map[string]string `json:"links"`
}

// Action returns the URL of the named action, or "" if the platform does
// not currently offer it.
func (s *Service) Action(name string) string {
	return s.Actions[name]
}

// Link returns the URL of the named link, or "" if absent.
func (s *Service) Link(name string) string {
	return s.Links[name]
}

// ServiceUpgrade is the body of the upgrade action.
type ServiceUpgrade struct {
	LaunchConfig           LaunchConfig              `json:"launchConfig,omitempty"`
	SecondaryLaunchConfigs []LaunchConfig            `json:"secondaryLaunchConfigs,omitempty"`
	InServiceStrategy      *InServiceUpgradeStrategy `json:"inServiceStrategy,omitempty"`
	ToServiceStrategy      *ToServiceUpgradeStrategy `json:"toServiceStrategy"`
}

// InServiceUpgradeStrategy replaces the containers of the service in place.
type InServiceUpgradeStrategy struct {
	LaunchConfig           LaunchConfig   `json:"launchConfig,omitempty"`
	SecondaryLaunchConfigs []LaunchConfig `json:"secondaryLaunchConfigs,omitempty"`
	BatchSize              int64          `json:"batchSize,omitempty"`
	IntervalMillis         int64          `json:"intervalMillis,omitempty"`
	StartFirst             bool           `json:"startFirst,omitempty"`
}

// ToServiceUpgradeStrategy is sent empty, which tells the platform to keep
// its existing rollout strategy.
type ToServiceUpgradeStrategy struct{}

// Stack is the subset of a stack record needed to scope service lookups.
type Stack struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// ActionResult is the platform's reply to an action POST. On success it is
// the updated resource; on rejection Type is "error" and Code is set.
type ActionResult struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	State   string `json:"state"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Status  int    `json:"status,omitempty"`
}

type collection[T any] struct {
	Data []T `json:"data"`
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case LaunchConfig:
		return LaunchConfig(deepCopyMap(t))
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}
