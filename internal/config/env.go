package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LookupFunc looks up an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables on c. Unset variables leave the
// current value alone; set but malformed ones are an error.
//
// Environment Variables:
//   - RANCHER_URL, RANCHER_KEY, RANCHER_SECRET
//   - RANCHER_SERVICE ("stack/service"), RANCHER_IMAGE
//   - RANCHER_TIMEOUT (seconds or a duration such as 10m)
//   - RANCHER_POLL_INTERVAL (seconds or a duration, default: 1s)
//   - RANCHER_BATCH_SIZE, RANCHER_INTERVAL_MILLIS, RANCHER_START_FIRST
//   - MSTEAMS_DEPLOY_CHANNEL, JIRA_URL, RANCHUP_GIT_DIR
//   - TEAMCITY_PROJECT_NAME, MAJOR_VERSION, MINOR_VERSION, TEAMCITY_VERSION
//   - PUSHGATEWAY_URL
//   - REPORT_BUCKET, REPORT_S3_ENDPOINT, REPORT_S3_REGION,
//     REPORT_S3_ACCESS_KEY, REPORT_S3_SECRET_KEY, REPORT_S3_PATH_STYLE
//   - RANCHUP_LOG_FORMAT
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("RANCHER_URL", &c.Rancher.URL)
	e.str("RANCHER_KEY", &c.Rancher.AccessKey)
	e.str("RANCHER_SECRET", &c.Rancher.SecretKey)
	e.str("RANCHER_SERVICE", &c.Rancher.Service)
	e.str("RANCHER_IMAGE", &c.Rancher.Image)
	e.seconds("RANCHER_TIMEOUT", &c.Rancher.Timeout)
	e.seconds("RANCHER_POLL_INTERVAL", &c.Rancher.PollInterval)
	e.int64("RANCHER_BATCH_SIZE", &c.Rancher.Strategy.BatchSize)
	e.int64("RANCHER_INTERVAL_MILLIS", &c.Rancher.Strategy.IntervalMillis)
	e.bool("RANCHER_START_FIRST", &c.Rancher.Strategy.StartFirst)

	e.str("MSTEAMS_DEPLOY_CHANNEL", &c.Notify.TeamsWebhook)
	e.str("JIRA_URL", &c.Notify.JiraURL)
	e.str("RANCHUP_GIT_DIR", &c.Notify.GitDir)
	e.str("TEAMCITY_PROJECT_NAME", &c.Notify.Project)
	if v := version(lookup); v != "" {
		c.Notify.Version = v
	}
	if _, ok := lookup("TEAMCITY_VERSION"); ok {
		c.TeamCity = true
	}

	e.str("PUSHGATEWAY_URL", &c.Metrics.PushgatewayURL)

	e.str("REPORT_BUCKET", &c.Report.Bucket)
	e.str("REPORT_S3_ENDPOINT", &c.Report.Endpoint)
	e.str("REPORT_S3_REGION", &c.Report.Region)
	e.str("REPORT_S3_ACCESS_KEY", &c.Report.AccessKey)
	e.str("REPORT_S3_SECRET_KEY", &c.Report.SecretKey)
	e.bool("REPORT_S3_PATH_STYLE", &c.Report.PathStyle)

	e.str("RANCHUP_LOG_FORMAT", &c.LogFormat)

	return errors.Join(e.errs...)
}

// version joins MAJOR_VERSION and MINOR_VERSION the way the build
// pipeline numbers releases.
func version(lookup LookupFunc) string {
	major, hasMajor := lookup("MAJOR_VERSION")
	minor, hasMinor := lookup("MINOR_VERSION")
	switch {
	case hasMajor && hasMinor:
		return major + "." + minor
	case hasMajor:
		return major
	default:
		return ""
	}
}

type envReader struct {
	lookup LookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) seconds(key string, dst *time.Duration) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	d, err := ParseSeconds(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s '%s': %w", key, v, err))
		return
	}
	*dst = d
}

func (e *envReader) int64(key string, dst *int64) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s '%s': %w", key, v, err))
		return
	}
	*dst = i
}

func (e *envReader) bool(key string, dst *bool) {
	v, ok := e.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s '%s': %w", key, v, err))
		return
	}
	*dst = b
}

// ParseSeconds parses a plain number of seconds or a Go duration string.
func ParseSeconds(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("must not be negative")
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}
