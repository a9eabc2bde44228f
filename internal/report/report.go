// Package report archives a JSON record of every deploy in object storage.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/imamik/ranchup/internal/platform/rancher"
	"github.com/imamik/ranchup/internal/upgrade"
)

// Report is the archived record of one run.
type Report struct {
	Service         string                  `json:"service"`
	Image           string                  `json:"image"`
	Result          string                  `json:"result"`
	Phase           string                  `json:"phase,omitempty"`
	Message         string                  `json:"message"`
	Error           string                  `json:"error,omitempty"`
	RollbackError   string                  `json:"rollbackError,omitempty"`
	Note            string                  `json:"note,omitempty"`
	Started         time.Time               `json:"started"`
	DurationSeconds float64                 `json:"durationSeconds"`
	Version         string                  `json:"version,omitempty"`
	Plan            *rancher.ServiceUpgrade `json:"plan,omitempty"`
}

// FromOutcome builds the report of outcome.
func FromOutcome(outcome upgrade.Outcome, version string) Report {
	r := Report{
		Service:         outcome.Service,
		Image:           outcome.Image,
		Result:          outcome.Kind.String(),
		Phase:           string(outcome.Phase),
		Message:         outcome.Message(),
		Note:            outcome.Note,
		Started:         outcome.Started.UTC(),
		DurationSeconds: outcome.Duration.Seconds(),
		Version:         version,
		Plan:            outcome.Plan,
	}
	if outcome.Reason != nil {
		r.Error = outcome.Reason.Error()
	}
	if outcome.RollbackErr != nil {
		r.RollbackError = outcome.RollbackErr.Error()
	}
	return r
}

// Key returns the object key of a report: deploys/<service>/<timestamp>.json.
func Key(service string, started time.Time) string {
	svc := strings.Trim(service, "/")
	if svc == "" {
		svc = "unknown"
	}
	return path.Join("deploys", svc, started.UTC().Format("20060102T150405Z")+".json")
}

// Store is the object storage used for reports.
type Store interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) error
}

// Archiver uploads reports to a bucket.
type Archiver struct {
	store   Store
	bucket  string
	version string
}

var _ upgrade.Notifier = (*Archiver)(nil)

// NewArchiver creates an archiver writing to bucket. version is recorded
// in every report.
func NewArchiver(store Store, bucket, version string) *Archiver {
	return &Archiver{store: store, bucket: bucket, version: version}
}

// Check verifies that the bucket is reachable.
func (a *Archiver) Check(ctx context.Context) error {
	ok, err := a.store.BucketExists(ctx, a.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("report bucket %s does not exist", a.bucket)
	}
	return nil
}

// Notify implements upgrade.Notifier by uploading the outcome's report.
func (a *Archiver) Notify(ctx context.Context, outcome upgrade.Outcome) error {
	data, err := json.MarshalIndent(FromOutcome(outcome, a.version), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	key := Key(outcome.Service, outcome.Started)
	if err := a.store.PutObject(ctx, a.bucket, key, "application/json", data); err != nil {
		return fmt.Errorf("failed to archive report: %w", err)
	}
	return nil
}
