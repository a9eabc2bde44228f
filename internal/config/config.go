package config

import (
	"time"
)

// Config is the complete configuration of one run.
type Config struct {
	Rancher RancherConfig `yaml:"rancher"`
	Notify  NotifyConfig  `yaml:"notify"`
	Metrics MetricsConfig `yaml:"metrics"`
	Report  ReportConfig  `yaml:"report"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`
	// TeamCity is set when running inside a TeamCity build.
	TeamCity bool `yaml:"teamcity"`
}

// RancherConfig selects the cluster, the service and the target image.
type RancherConfig struct {
	URL       string `yaml:"url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// Service is "stack/service" or a bare service name.
	Service string `yaml:"service"`
	Image   string `yaml:"image"`
	// Timeout bounds the wait for the upgrade. Zero waits indefinitely.
	Timeout      time.Duration  `yaml:"timeout"`
	PollInterval time.Duration  `yaml:"poll_interval"`
	Strategy     StrategyConfig `yaml:"strategy"`
	DryRun       bool           `yaml:"dry_run"`
	NoConfirm    bool           `yaml:"no_confirm"`
}

// StrategyConfig tunes the in-service upgrade. Zero values keep what the
// service already uses.
type StrategyConfig struct {
	BatchSize      int64 `yaml:"batch_size"`
	IntervalMillis int64 `yaml:"interval_millis"`
	StartFirst     bool  `yaml:"start_first"`
}

// NotifyConfig configures the deploy notification.
type NotifyConfig struct {
	// TeamsWebhook is the incoming webhook of the deploy channel. Empty
	// disables the Teams notification.
	TeamsWebhook string `yaml:"teams_webhook"`
	JiraURL      string `yaml:"jira_url"`
	Project      string `yaml:"project"`
	Version      string `yaml:"version"`
	// GitDir is the working tree the commit log is read from.
	GitDir string `yaml:"git_dir"`
}

// MetricsConfig configures metric pushing.
type MetricsConfig struct {
	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string `yaml:"pushgateway_url"`
}

// ReportConfig configures report archiving.
type ReportConfig struct {
	// Bucket enables report archiving when set.
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// Defaults.
const (
	DefaultPollInterval = time.Second
	DefaultLogFormat    = "text"
)

// Default returns a config holding only defaults.
func Default() *Config {
	return &Config{
		Rancher:   RancherConfig{PollInterval: DefaultPollInterval},
		LogFormat: DefaultLogFormat,
	}
}
