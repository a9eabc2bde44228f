package upgrade

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/imamik/ranchup/internal/platform/rancher"
	"github.com/imamik/ranchup/internal/util/poll"
)

// ClusterClient is the part of the Rancher API an upgrade needs.
type ClusterClient interface {
	FindStack(ctx context.Context, name string) (*rancher.Stack, error)
	FindService(ctx context.Context, name, stackID string) (*rancher.Service, error)
	GetService(ctx context.Context, selfURL string) (*rancher.Service, error)
	StartUpgrade(ctx context.Context, actionURL string, upgrade *rancher.ServiceUpgrade) (*rancher.ActionResult, error)
	FinishUpgrade(ctx context.Context, actionURL string) (*rancher.ActionResult, error)
	Rollback(ctx context.Context, actionURL string) (*rancher.ActionResult, error)
}

// Notifier receives the outcome of every run exactly once.
type Notifier interface {
	Notify(ctx context.Context, outcome Outcome) error
}

// Options configures an Orchestrator.
type Options struct {
	// PollInterval is the delay between status polls. Defaults to one second.
	PollInterval time.Duration
	// Timeout bounds the wait for the platform to report the upgrade as
	// done. Zero waits indefinitely. Hitting it triggers a rollback.
	Timeout time.Duration
	// Observer receives progress events. Defaults to a ConsoleObserver.
	Observer Observer
	// Notifier is told about the outcome. Optional.
	Notifier Notifier
}

// Request describes one upgrade.
type Request struct {
	// Service is the stack qualified name, "stack/service".
	Service string
	// Image is the target image reference, with or without the docker: scheme.
	Image    string
	Strategy Strategy
	// DryRun stops after building the plan. Nothing is changed and nobody
	// is notified.
	DryRun bool
	// NoConfirm returns as soon as the platform accepts the upgrade,
	// without waiting for it or finishing it.
	NoConfirm bool
}

// Orchestrator runs upgrades against one cluster. It holds no per-run
// state and runs one upgrade per Run call.
type Orchestrator struct {
	client ClusterClient
	opts   Options
}

// NewOrchestrator creates an orchestrator using client for all API calls.
func NewOrchestrator(client ClusterClient, opts Options) *Orchestrator {
	if opts.Observer == nil {
		opts.Observer = NewConsoleObserver()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = poll.DefaultInterval
	}
	return &Orchestrator{client: client, opts: opts}
}

// Run performs the upgrade described by req and returns its outcome.
// It never returns early without an outcome, and the notifier is called
// exactly once per run unless req.DryRun is set.
func (o *Orchestrator) Run(ctx context.Context, req Request) Outcome {
	r := &run{
		client: o.client,
		opts:   o.opts,
		req:    req,
		image:  NormalizeImage(req.Image),
		state:  StateIdle,
		obs:    o.opts.Observer.WithFields(map[string]string{"service": req.Service}),
	}

	started := time.Now()
	outcome := r.execute(ctx)
	outcome.Service = req.Service
	outcome.Image = r.image
	outcome.Started = started
	outcome.Duration = time.Since(started)

	o.report(ctx, r.obs, req, outcome)
	return outcome
}

func (o *Orchestrator) report(ctx context.Context, obs Observer, req Request, outcome Outcome) {
	obs.Event(Event{
		Type:    EventOutcome,
		State:   outcome.Phase,
		Message: outcome.Message(),
		Fields: map[string]string{
			"result":   outcome.Kind.String(),
			"duration": outcome.Duration.Round(time.Millisecond).String(),
		},
	})

	if req.DryRun || o.opts.Notifier == nil {
		return
	}
	if err := o.opts.Notifier.Notify(context.WithoutCancel(ctx), outcome); err != nil {
		obs.Event(Event{Type: EventWarning, Message: fmt.Sprintf("could not deliver notification: %v", err)})
	}
}

// run is the state of a single Run call.
type run struct {
	client ClusterClient
	opts   Options
	req    Request
	image  string
	obs    Observer

	state State
	svc   *rancher.Service
	// latest is the most recent record seen while polling.
	latest *rancher.Service
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.obs.Event(Event{
		Type:    EventStateChanged,
		State:   to,
		Message: fmt.Sprintf("%s -> %s", from, to),
	})
}

func (r *run) execute(ctx context.Context) Outcome {
	name, err := ParseServiceName(r.req.Service)
	if err != nil {
		return r.fail(wrapKind(ErrValidation, err, "invalid request"))
	}
	if r.req.Image == "" || r.image == ImageScheme {
		return r.fail(wrapKind(ErrValidation, errors.New("image reference is empty"), "invalid request"))
	}

	r.transition(StateFetching)
	svc, err := r.fetch(ctx, name)
	if err != nil {
		return r.fail(classify(err, "failed to fetch service %s", name))
	}
	r.svc = svc

	r.transition(StateValidating)
	if err := Validate(svc); err != nil {
		return r.fail(err)
	}

	plan := BuildPlan(svc, r.image, r.req.Strategy)
	r.obs.Printf("[%s] %s: %s -> %s", StateValidating, name, svc.LaunchConfig.Image(), plan.LaunchConfig.Image())
	if r.req.DryRun {
		return r.succeed("dry run, no changes made", plan)
	}

	r.transition(StateUpgrading)
	if _, err := r.client.StartUpgrade(ctx, svc.Action(rancher.ActionUpgrade), plan); err != nil {
		return r.fail(classify(err, "could not start upgrade"))
	}
	if r.req.NoConfirm {
		return r.succeed("upgrade started, not confirmed", plan)
	}

	r.transition(StateAwaitingConfirmation)
	upgraded, err := r.await(ctx)
	if err != nil {
		return r.rollback(ctx, err)
	}

	r.transition(StateFinishing)
	if _, err := r.client.FinishUpgrade(ctx, r.actionURL(ctx, upgraded, rancher.ActionFinishUpgrade)); err != nil {
		return r.fail(wrapKind(ErrIrrecoverable, err, "could not finish upgrade"))
	}

	return r.succeed("", plan)
}

func (r *run) fetch(ctx context.Context, name ServiceName) (*rancher.Service, error) {
	var stackID string
	if name.Stack != "" {
		stack, err := r.client.FindStack(ctx, name.Stack)
		if err != nil {
			return nil, err
		}
		stackID = stack.ID
	}
	return r.client.FindService(ctx, name.Service, stackID)
}

// await polls the self link until the platform reports the service as
// upgraded.
func (r *run) await(ctx context.Context) (*rancher.Service, error) {
	waitCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	self := r.svc.Link(rancher.LinkSelf)
	svc, err := poll.AwaitState(waitCtx,
		func(ctx context.Context) (*rancher.Service, error) {
			return r.client.GetService(ctx, self)
		},
		poll.Options[*rancher.Service]{
			Interval:   r.opts.PollInterval,
			Succeeded:  func(s *rancher.Service) bool { return s.State == rancher.StateUpgraded },
			InProgress: func(s *rancher.Service) bool { return s.State == rancher.StateUpgrading },
			Describe:   func(s *rancher.Service) string { return s.State },
			OnPoll: func(attempt int, s *rancher.Service) {
				r.latest = s
				r.obs.Event(Event{
					Type:    EventPoll,
					State:   r.state,
					Message: fmt.Sprintf("service status: %s", s.State),
					Fields:  map[string]string{"attempt": fmt.Sprint(attempt), "status": s.State},
				})
			},
		})

	switch {
	case err == nil:
		return svc, nil
	case errors.Is(err, poll.ErrUnexpectedState):
		return nil, wrapKind(ErrUnexpectedState, err, "failed to complete upgrade")
	case ctx.Err() != nil:
		return nil, wrapKind(ErrUnexpectedState, err, "interrupted while waiting for upgrade")
	case errors.Is(err, context.DeadlineExceeded):
		return nil, wrapKind(ErrUnexpectedState, err, "timed out after %s waiting for upgrade", r.opts.Timeout)
	default:
		return nil, classify(err, "failed to poll service status")
	}
}

func (r *run) rollback(ctx context.Context, cause error) Outcome {
	failedIn := r.state
	r.transition(StateRollingBack)

	// The rollback must go out even if the caller gave up on the run.
	rbCtx := context.WithoutCancel(ctx)
	if _, err := r.client.Rollback(rbCtx, r.actionURL(rbCtx, r.latest, rancher.ActionRollback)); err != nil {
		r.transition(StateFailed)
		return Outcome{
			Kind:        Failed,
			Phase:       StateRollingBack,
			Reason:      cause,
			RollbackErr: wrapKind(ErrIrrecoverable, err, "could not roll back"),
		}
	}

	r.transition(StateRolledBack)
	return Outcome{Kind: RolledBack, Phase: failedIn, Reason: cause}
}

// actionURL finds the URL of the named action, preferring the freshest
// record. Rancher only lists upgrade actions while they are applicable, so
// the record fetched before the upgrade usually lacks them.
func (r *run) actionURL(ctx context.Context, latest *rancher.Service, action string) string {
	if latest != nil {
		if u := latest.Action(action); u != "" {
			return u
		}
	}

	self := r.svc.Link(rancher.LinkSelf)
	fresh, err := r.client.GetService(ctx, self)
	if err == nil {
		if u := fresh.Action(action); u != "" {
			return u
		}
	} else {
		r.obs.Event(Event{Type: EventWarning, State: r.state, Message: fmt.Sprintf("could not refresh service: %v", err)})
	}

	return actionFromSelf(self, action)
}

// actionFromSelf builds "<self>?action=<name>", the URL scheme Rancher
// uses for resource actions.
func actionFromSelf(self, action string) string {
	u, err := url.Parse(self)
	if err != nil {
		return self + "?action=" + url.QueryEscape(action)
	}
	q := u.Query()
	q.Set("action", action)
	u.RawQuery = q.Encode()
	return u.String()
}

func (r *run) fail(err error) Outcome {
	failedIn := r.state
	r.transition(StateFailed)
	return Outcome{Kind: Failed, Phase: failedIn, Reason: err}
}

func (r *run) succeed(note string, plan *rancher.ServiceUpgrade) Outcome {
	r.transition(StateSucceeded)
	return Outcome{Kind: Succeeded, Phase: StateSucceeded, Note: note, Plan: plan}
}

// classify attaches the error kind matching a client error.
func classify(err error, format string, args ...any) error {
	switch {
	case rancher.IsPlatformError(err):
		return wrapKind(ErrPlatformRejection, err, format, args...)
	case errors.Is(err, rancher.ErrServiceNotFound), errors.Is(err, rancher.ErrStackNotFound):
		return wrapKind(ErrValidation, err, format, args...)
	default:
		return wrapKind(ErrTransport, err, format, args...)
	}
}
