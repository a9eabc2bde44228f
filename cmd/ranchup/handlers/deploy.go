// Package handlers implements the execution of CLI commands.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr/funcr"

	"github.com/imamik/ranchup/internal/ci"
	"github.com/imamik/ranchup/internal/config"
	"github.com/imamik/ranchup/internal/metrics"
	"github.com/imamik/ranchup/internal/notify"
	"github.com/imamik/ranchup/internal/platform/rancher"
	"github.com/imamik/ranchup/internal/platform/s3"
	"github.com/imamik/ranchup/internal/report"
	"github.com/imamik/ranchup/internal/upgrade"
)

// DeployOptions contains the flag values of the deploy command. Zero
// values leave the configured value alone.
type DeployOptions struct {
	ConfigPath     string
	Service        string
	Image          string
	DryRun         bool
	NoConfirm      bool
	Timeout        time.Duration
	PollInterval   time.Duration
	BatchSize      int64
	IntervalMillis int64
	StartFirst     bool
	LogFormat      string
}

// Dependencies, replaceable in tests.
var (
	lookupEnv = os.LookupEnv

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	newClusterClient = func(baseURL string, creds rancher.Credentials) upgrade.ClusterClient {
		return rancher.NewClient(baseURL, creds)
	}

	newReportStore = func(ctx context.Context, opts s3.Options) (report.Store, error) {
		return s3.NewClient(ctx, opts)
	}

	newHistory = func(dir string) notify.History {
		return notify.GitHistory{Dir: dir}
	}

	detectMode = func(teamCity bool) ci.Mode {
		return ci.DetectMode(teamCity, os.Stdout)
	}
)

// Deploy handles the deploy command.
//
// It resolves the configuration, runs one upgrade and reports the outcome
// to the CI system, Teams, the metrics Pushgateway and the report bucket,
// whichever are configured. The returned error is the outcome's error, so
// the process exits non-zero unless the upgrade succeeded.
func Deploy(ctx context.Context, opts DeployOptions) error {
	cfg, err := config.LoadFile(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	opts.applyTo(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	reporter := ci.NewReporter(stdout, detectMode(cfg.TeamCity))
	recorder := metrics.NewRecorder()
	obs := recorder.Observe(reporter.Observe(newObserver(cfg.LogFormat)))

	notifiers := notify.Multi{recorder}
	if n := teamsNotifier(cfg, obs, recorder); n != nil {
		notifiers = append(notifiers, n)
	}
	if a := archiver(ctx, cfg, obs); a != nil {
		notifiers = append(notifiers, a)
	}
	notifiers = append(notifiers, reporter)

	orch := upgrade.NewOrchestrator(
		newClusterClient(cfg.Rancher.URL, rancher.Credentials{
			AccessKey: cfg.Rancher.AccessKey,
			SecretKey: cfg.Rancher.SecretKey,
		}),
		upgrade.Options{
			PollInterval: cfg.Rancher.PollInterval,
			Timeout:      cfg.Rancher.Timeout,
			Observer:     obs,
			Notifier:     notifiers,
		},
	)

	obs.Printf("[deploy] Upgrading %s to %s", cfg.Rancher.Service, upgrade.NormalizeImage(cfg.Rancher.Image))
	outcome := orch.Run(ctx, upgrade.Request{
		Service: cfg.Rancher.Service,
		Image:   cfg.Rancher.Image,
		Strategy: upgrade.Strategy{
			BatchSize:      cfg.Rancher.Strategy.BatchSize,
			IntervalMillis: cfg.Rancher.Strategy.IntervalMillis,
			StartFirst:     cfg.Rancher.Strategy.StartFirst,
		},
		DryRun:    cfg.Rancher.DryRun,
		NoConfirm: cfg.Rancher.NoConfirm,
	})

	// Notifiers are skipped on a dry run, so the reporter is told here.
	switch {
	case cfg.Rancher.DryRun && outcome.Plan != nil:
		printPlan(outcome.Plan)
		reporter.Done(outcome.Message())
	case cfg.Rancher.DryRun:
		reporter.Problem(outcome.Message())
	}

	if url := cfg.Metrics.PushgatewayURL; url != "" && !cfg.Rancher.DryRun {
		if err := recorder.Push(context.WithoutCancel(ctx), url); err != nil {
			obs.Printf("[deploy] WARNING: %v", err)
		}
	}

	return outcome.Err()
}

// applyTo overlays the flags that were given on cfg.
func (o DeployOptions) applyTo(cfg *config.Config) {
	if o.Service != "" {
		cfg.Rancher.Service = o.Service
	}
	if o.Image != "" {
		cfg.Rancher.Image = o.Image
	}
	if o.DryRun {
		cfg.Rancher.DryRun = true
	}
	if o.NoConfirm {
		cfg.Rancher.NoConfirm = true
	}
	if o.Timeout > 0 {
		cfg.Rancher.Timeout = o.Timeout
	}
	if o.PollInterval > 0 {
		cfg.Rancher.PollInterval = o.PollInterval
	}
	if o.BatchSize > 0 {
		cfg.Rancher.Strategy.BatchSize = o.BatchSize
	}
	if o.IntervalMillis > 0 {
		cfg.Rancher.Strategy.IntervalMillis = o.IntervalMillis
	}
	if o.StartFirst {
		cfg.Rancher.Strategy.StartFirst = true
	}
	if o.LogFormat != "" {
		cfg.LogFormat = o.LogFormat
	}
}

func newObserver(format string) upgrade.Observer {
	if format == "json" {
		logger := funcr.NewJSON(func(obj string) {
			fmt.Fprintln(stderr, obj)
		}, funcr.Options{LogTimestamp: true})
		return upgrade.NewLogrObserver(logger.WithName("ranchup"))
	}
	return upgrade.NewConsoleObserver()
}

func teamsNotifier(cfg *config.Config, obs upgrade.Observer, recorder *metrics.Recorder) upgrade.Notifier {
	if cfg.Notify.TeamsWebhook == "" {
		obs.Printf("[deploy] If you set MSTEAMS_DEPLOY_CHANNEL we will notify when the upgrade is complete.")
		return nil
	}
	teams := notify.NewTeams(notify.TeamsConfig{
		WebhookURL: cfg.Notify.TeamsWebhook,
		JiraURL:    cfg.Notify.JiraURL,
		Project:    cfg.Notify.Project,
		Version:    cfg.Notify.Version,
	},
		notify.WithHistory(newHistory(cfg.Notify.GitDir)),
		notify.WithObserver(obs),
	)
	return notify.Func(func(ctx context.Context, outcome upgrade.Outcome) error {
		err := teams.Notify(ctx, outcome)
		if err != nil {
			recorder.NotificationFailed()
		}
		return err
	})
}

func archiver(ctx context.Context, cfg *config.Config, obs upgrade.Observer) upgrade.Notifier {
	if cfg.Report.Bucket == "" {
		return nil
	}
	store, err := newReportStore(ctx, s3.Options{
		Endpoint:  cfg.Report.Endpoint,
		Region:    cfg.Report.Region,
		AccessKey: cfg.Report.AccessKey,
		SecretKey: cfg.Report.SecretKey,
		PathStyle: cfg.Report.PathStyle,
	})
	if err != nil {
		obs.Printf("[deploy] WARNING: reports will not be archived: %v", err)
		return nil
	}
	a := report.NewArchiver(store, cfg.Report.Bucket, cfg.Notify.Version)
	if err := a.Check(ctx); err != nil {
		obs.Printf("[deploy] WARNING: report bucket unavailable: %v", err)
	}
	return a
}
