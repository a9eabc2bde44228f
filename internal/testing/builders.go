package testing

import (
	"maps"

	"github.com/imamik/ranchup/internal/platform/rancher"
)

// ServiceBuilder provides a fluent interface for constructing service
// records. Each method returns a new builder.
type ServiceBuilder struct {
	svc rancher.Service
}

// NewServiceBuilder creates a builder for an active, upgradeable service
// named "web" running docker:web:1.0.0.
func NewServiceBuilder() *ServiceBuilder {
	return &ServiceBuilder{
		svc: rancher.Service{
			ID:    "1s1",
			Name:  "web",
			State: rancher.StateActive,
			Type:  rancher.TypeService,
			LaunchConfig: rancher.LaunchConfig{
				rancher.ImageKey: "docker:web:1.0.0",
				"labels":         map[string]any{"io.rancher.container.pull_image": "always"},
			},
			Actions: map[string]string{
				rancher.ActionUpgrade: "http://rancher.local/v1/services/1s1/?action=upgrade",
			},
			Links: map[string]string{
				rancher.LinkSelf: "http://rancher.local/v1/services/1s1",
			},
		},
	}
}

// WithState sets the service state.
func (b *ServiceBuilder) WithState(state string) *ServiceBuilder {
	nb := b.clone()
	nb.svc.State = state
	return nb
}

// WithType sets the service type.
func (b *ServiceBuilder) WithType(typ string) *ServiceBuilder {
	nb := b.clone()
	nb.svc.Type = typ
	return nb
}

// WithImage sets the launch config image.
func (b *ServiceBuilder) WithImage(image string) *ServiceBuilder {
	nb := b.clone()
	nb.svc.LaunchConfig[rancher.ImageKey] = image
	return nb
}

// WithSecondary adds a sidekick launch config.
func (b *ServiceBuilder) WithSecondary(lc rancher.LaunchConfig) *ServiceBuilder {
	nb := b.clone()
	nb.svc.SecondaryLaunchConfigs = append(nb.svc.SecondaryLaunchConfigs, lc.Clone())
	return nb
}

// WithAction sets an action URL. An empty URL removes the action.
func (b *ServiceBuilder) WithAction(name, url string) *ServiceBuilder {
	nb := b.clone()
	if url == "" {
		delete(nb.svc.Actions, name)
	} else {
		nb.svc.Actions[name] = url
	}
	return nb
}

// WithLink sets a link URL. An empty URL removes the link.
func (b *ServiceBuilder) WithLink(name, url string) *ServiceBuilder {
	nb := b.clone()
	if url == "" {
		delete(nb.svc.Links, name)
	} else {
		nb.svc.Links[name] = url
	}
	return nb
}

// WithPreviousStrategy sets the strategy of the last upgrade.
func (b *ServiceBuilder) WithPreviousStrategy(s rancher.InServiceUpgradeStrategy) *ServiceBuilder {
	nb := b.clone()
	nb.svc.Upgrade = &rancher.ServiceUpgrade{InServiceStrategy: &s}
	return nb
}

// Build returns a copy of the service record.
func (b *ServiceBuilder) Build() *rancher.Service {
	return b.clone().svcPtr()
}

func (b *ServiceBuilder) svcPtr() *rancher.Service {
	s := b.svc
	return &s
}

func (b *ServiceBuilder) clone() *ServiceBuilder {
	svc := b.svc
	svc.LaunchConfig = b.svc.LaunchConfig.Clone()
	svc.Actions = maps.Clone(b.svc.Actions)
	svc.Links = maps.Clone(b.svc.Links)
	if b.svc.SecondaryLaunchConfigs != nil {
		svc.SecondaryLaunchConfigs = make([]rancher.LaunchConfig, len(b.svc.SecondaryLaunchConfigs))
		for i, lc := range b.svc.SecondaryLaunchConfigs {
			svc.SecondaryLaunchConfigs[i] = lc.Clone()
		}
	}
	return &ServiceBuilder{svc: svc}
}
