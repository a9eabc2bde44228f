package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imamik/ranchup/internal/upgrade"
	"github.com/imamik/ranchup/internal/util/retry"
)

// Card colors.
const (
	ColorSuccess = "48A555"
	ColorFailure = "FF0000"
)

// Card is the MessageCard body accepted by Teams incoming webhooks.
type Card struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	ThemeColor string `json:"themeColor"`
}

// TeamsConfig configures a Teams notifier.
type TeamsConfig struct {
	// WebhookURL is the incoming webhook of the deploy channel.
	WebhookURL string
	// JiraURL turns issue keys in the commit log into links. Optional.
	JiraURL string
	// Project names the deployed application. Defaults to the service name.
	Project string
	// Version is the deployed version, e.g. "3.14".
	Version string
}

// TeamsOption configures a Teams notifier.
type TeamsOption func(*Teams)

// Teams posts deploy outcomes to a Microsoft Teams channel.
type Teams struct {
	cfg     TeamsConfig
	client  *http.Client
	history History
	obs     upgrade.Observer
	retry   []retry.Option
}

var _ upgrade.Notifier = (*Teams)(nil)

// NewTeams creates a Teams notifier.
func NewTeams(cfg TeamsConfig, opts ...TeamsOption) *Teams {
	t := &Teams{
		cfg:     cfg,
		client:  &http.Client{Timeout: 10 * time.Second},
		history: GitHistory{},
		obs:     upgrade.NewConsoleObserver(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithHTTPClient sets the HTTP client used for the webhook.
func WithHTTPClient(c *http.Client) TeamsOption {
	return func(t *Teams) {
		t.client = c
	}
}

// WithHistory sets where branch and commit information come from.
func WithHistory(h History) TeamsOption {
	return func(t *Teams) {
		t.history = h
	}
}

// WithObserver sets where delivery progress is reported.
func WithObserver(o upgrade.Observer) TeamsOption {
	return func(t *Teams) {
		t.obs = o
	}
}

// WithRetry sets the delivery retry options.
func WithRetry(opts ...retry.Option) TeamsOption {
	return func(t *Teams) {
		t.retry = opts
	}
}

// Notify implements upgrade.Notifier.
func (t *Teams) Notify(ctx context.Context, outcome upgrade.Outcome) error {
	card := t.Card(ctx, outcome)
	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("teams: marshal: %w", err)
	}

	opts := append([]retry.Option{
		retry.WithOnRetry(func(attempt int, err error, next time.Duration) {
			t.obs.Printf("[notify] Teams delivery attempt %d failed: %v (retrying in %s)", attempt, err, next)
		}),
	}, t.retry...)

	if err := retry.Do(ctx, func(ctx context.Context) error {
		return t.post(ctx, body)
	}, opts...); err != nil {
		return fmt.Errorf("teams: %w", err)
	}

	t.obs.Printf("[notify] Notified MS Teams: %s", card.Title)
	return nil
}

// Card builds the message for outcome.
func (t *Teams) Card(ctx context.Context, outcome upgrade.Outcome) Card {
	branch, err := t.history.Branch(ctx)
	if err != nil {
		t.obs.Printf("[notify] could not determine branch: %v", err)
	}

	name := t.cfg.Project
	if name == "" {
		name = outcome.Service
	}
	env := Environment(branch)

	if !outcome.Succeeded() {
		return Card{
			Title:      fmt.Sprintf("FAILED to deploy %s (Version: %s) to %s", name, t.cfg.Version, env),
			Text:       "<div>ERROR: " + html.EscapeString(outcome.Message()) + "</div>",
			ThemeColor: ColorFailure,
		}
	}

	log, err := t.history.RecentLog(ctx)
	if err != nil {
		t.obs.Printf("[notify] could not collect commit log: %v", err)
	}

	target := name
	if branch != "" {
		target += "@" + branch
	}
	text := issueLinks(t.cfg.JiraURL, IssueKeys(log)) +
		"<div><p>Commits on this branch in the past 7 days:</p><pre>" + html.EscapeString(log) + "</pre></div>"

	return Card{
		Title:      fmt.Sprintf("Deployed %s (Version: %s) to %s", target, t.cfg.Version, env),
		Text:       text,
		ThemeColor: ColorSuccess,
	}
}

func (t *Teams) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return retry.Fatal(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return fmt.Errorf("non-2xx response: %d", resp.StatusCode)
	default:
		return retry.Fatal(fmt.Errorf("non-2xx response: %d", resp.StatusCode))
	}
}

// Environment names the deploy target for a branch: master and main go
// to Production, everything else to Test.
func Environment(branch string) string {
	switch strings.TrimSpace(branch) {
	case "master", "main":
		return "Production"
	default:
		return "Test"
	}
}
