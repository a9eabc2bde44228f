package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	r := c.Rancher
	if r.URL == "" {
		return fmt.Errorf("rancher url is required (RANCHER_URL)")
	}
	if err := validateURL("rancher url", r.URL); err != nil {
		return err
	}
	if r.AccessKey == "" {
		return fmt.Errorf("rancher access key is required (RANCHER_KEY)")
	}
	if r.SecretKey == "" {
		return fmt.Errorf("rancher secret key is required (RANCHER_SECRET)")
	}
	if r.Service == "" {
		return fmt.Errorf("service is required (RANCHER_SERVICE or --service)")
	}
	if strings.TrimSpace(r.Image) == "" {
		return fmt.Errorf("image is required (RANCHER_IMAGE or --image)")
	}
	if r.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if r.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if r.Strategy.BatchSize < 0 || r.Strategy.IntervalMillis < 0 {
		return fmt.Errorf("strategy batch size and interval must not be negative")
	}

	if c.Notify.TeamsWebhook != "" {
		if err := validateURL("teams webhook", c.Notify.TeamsWebhook); err != nil {
			return err
		}
	}
	if c.Metrics.PushgatewayURL != "" {
		if err := validateURL("pushgateway url", c.Metrics.PushgatewayURL); err != nil {
			return err
		}
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid %s %q: missing host", name, raw)
	}
	return nil
}
