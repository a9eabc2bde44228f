package upgrade

import (
	"fmt"
	"slices"
	"strings"

	"github.com/imamik/ranchup/internal/platform/rancher"
)

// ImageScheme is the registry scheme prefix Rancher expects on imageUuid.
const ImageScheme = "docker:"

// NormalizeImage prefixes ref with ImageScheme unless it already carries it.
func NormalizeImage(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, ImageScheme) {
		return ref
	}
	return ImageScheme + ref
}

// Strategy holds optional in-service rollout settings. Zero values keep
// whatever the service currently has.
type Strategy struct {
	BatchSize      int64
	IntervalMillis int64
	StartFirst     bool
}

// ServiceName is a stack qualified service name.
type ServiceName struct {
	Stack   string
	Service string
}

// ParseServiceName splits "stack/service". A bare "service" is accepted
// and resolves across all stacks.
func ParseServiceName(s string) (ServiceName, error) {
	s = strings.TrimSpace(s)
	stack, svc, found := strings.Cut(s, "/")
	if !found {
		stack, svc = "", stack
	}
	if svc == "" || (found && stack == "") || strings.Contains(svc, "/") {
		return ServiceName{}, fmt.Errorf("invalid service name %q: expected stack/service", s)
	}
	return ServiceName{Stack: stack, Service: svc}, nil
}

func (n ServiceName) String() string {
	if n.Stack == "" {
		return n.Service
	}
	return n.Stack + "/" + n.Service
}

// BuildPlan returns the upgrade request that moves svc to image.
//
// The plan is built from copies: svc is left untouched. The image is set on
// the top-level launch config and on the in-service strategy's launch
// config, and the to-service strategy is sent empty so the platform keeps
// its existing rollout strategy.
func BuildPlan(svc *rancher.Service, image string, strategy Strategy) *rancher.ServiceUpgrade {
	image = NormalizeImage(image)

	launchConfig := svc.LaunchConfig.Clone()
	if launchConfig == nil {
		launchConfig = rancher.LaunchConfig{}
	}
	launchConfig[rancher.ImageKey] = image

	in := &rancher.InServiceUpgradeStrategy{}
	if svc.Upgrade != nil && svc.Upgrade.InServiceStrategy != nil {
		prev := svc.Upgrade.InServiceStrategy
		in.BatchSize = prev.BatchSize
		in.IntervalMillis = prev.IntervalMillis
		in.StartFirst = prev.StartFirst
	}
	if strategy.BatchSize > 0 {
		in.BatchSize = strategy.BatchSize
	}
	if strategy.IntervalMillis > 0 {
		in.IntervalMillis = strategy.IntervalMillis
	}
	if strategy.StartFirst {
		in.StartFirst = true
	}
	in.LaunchConfig = launchConfig.Clone()
	in.SecondaryLaunchConfigs = cloneConfigs(svc.SecondaryLaunchConfigs)

	return &rancher.ServiceUpgrade{
		LaunchConfig:           launchConfig,
		SecondaryLaunchConfigs: cloneConfigs(svc.SecondaryLaunchConfigs),
		InServiceStrategy:      in,
		ToServiceStrategy:      &rancher.ToServiceUpgradeStrategy{},
	}
}

func cloneConfigs(in []rancher.LaunchConfig) []rancher.LaunchConfig {
	if in == nil {
		return nil
	}
	out := slices.Clone(in)
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out
}
