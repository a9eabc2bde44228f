package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/imamik/ranchup/internal/platform/rancher"
)

// FakeRancher serves the slice of the Rancher v1 API used by an upgrade:
// service and stack lookup, the service self link, and the upgrade,
// finishupgrade and rollback actions. Every request is recorded.
type FakeRancher struct {
	Server *httptest.Server

	mu          sync.Mutex
	service     *rancher.Service
	states      []string
	polls       int
	requests    []string
	upgradeBody []byte
	// overrides maps an action name to a canned status and body.
	overrides map[string]cannedResponse
	selfStatus int
}

type cannedResponse struct {
	status int
	body   any
}

// NewFakeRancher starts a server holding svc. The service's self link and
// upgrade action are rewritten to point at the server.
func NewFakeRancher(t *testing.T, svc *rancher.Service) *FakeRancher {
	t.Helper()
	f := &FakeRancher{overrides: map[string]cannedResponse{}}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)

	if svc.Actions == nil {
		svc.Actions = map[string]string{}
	}
	if svc.Links == nil {
		svc.Links = map[string]string{}
	}
	if svc.Actions[rancher.ActionUpgrade] != "" {
		svc.Actions[rancher.ActionUpgrade] = f.ActionURL(rancher.ActionUpgrade)
	}
	if svc.Links[rancher.LinkSelf] != "" {
		svc.Links[rancher.LinkSelf] = f.SelfURL()
	}
	f.service = svc
	return f
}

// Client returns a rancher client pointed at the fake.
func (f *FakeRancher) Client() *rancher.Client {
	return rancher.NewClient(f.Server.URL, rancher.Credentials{AccessKey: "key", SecretKey: "secret"})
}

// SelfURL is the service's self link.
func (f *FakeRancher) SelfURL() string {
	return f.Server.URL + "/v1/services/1s1"
}

// ActionURL is the URL of the named service action.
func (f *FakeRancher) ActionURL(action string) string {
	return f.Server.URL + "/v1/services/1s1/?action=" + action
}

// SetStates sets the states returned by successive self link polls. The
// last state repeats.
func (f *FakeRancher) SetStates(states ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = states
}

// RespondToAction makes the named action answer with status and body.
func (f *FakeRancher) RespondToAction(action string, status int, body any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[action] = cannedResponse{status: status, body: body}
}

// FailSelf makes the self link answer with status.
func (f *FakeRancher) FailSelf(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selfStatus = status
}

// Requests returns "METHOD path?action" entries for every request served.
func (f *FakeRancher) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// Count returns how many requests matched the given entry.
func (f *FakeRancher) Count(entry string) int {
	n := 0
	for _, r := range f.Requests() {
		if r == entry {
			n++
		}
	}
	return n
}

// Polls returns how many times the self link was read.
func (f *FakeRancher) Polls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

// UpgradeBody returns the decoded body of the last upgrade POST.
func (f *FakeRancher) UpgradeBody() *rancher.ServiceUpgrade {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upgradeBody == nil {
		return nil
	}
	var u rancher.ServiceUpgrade
	if err := json.Unmarshal(f.upgradeBody, &u); err != nil {
		return nil
	}
	return &u
}

func (f *FakeRancher) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	action := r.URL.Query().Get("action")
	entry := r.Method + " " + r.URL.Path
	if action != "" {
		entry += "?" + action
	}
	f.requests = append(f.requests, entry)

	if user, pass, ok := r.BasicAuth(); !ok || user != "key" || pass != "secret" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"type": "error", "status": 401, "code": "Unauthorized"})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v1/stacks":
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]string{
			{"id": "1st1", "name": r.URL.Query().Get("name")},
		}})

	case r.Method == http.MethodGet && r.URL.Path == "/v1/services":
		var data []*rancher.Service
		if r.URL.Query().Get("name") == f.service.Name {
			data = append(data, f.service)
		}
		writeJSON(w, http.StatusOK, map[string]any{"type": "collection", "data": data})

	case r.Method == http.MethodGet && r.URL.Path == "/v1/services/1s1":
		if f.selfStatus != 0 {
			w.WriteHeader(f.selfStatus)
			return
		}
		f.polls++
		writeJSON(w, http.StatusOK, f.snapshot(f.stateAt(f.polls)))

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/v1/services/1s1") && action != "":
		if canned, ok := f.overrides[action]; ok {
			writeJSON(w, canned.status, canned.body)
			return
		}
		if action == rancher.ActionUpgrade {
			f.upgradeBody, _ = io.ReadAll(r.Body)
		}
		writeJSON(w, http.StatusAccepted, f.snapshot(rancher.StateUpgrading))

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"type": "error", "status": 404, "code": "NotFound"})
	}
}

func (f *FakeRancher) stateAt(poll int) string {
	if len(f.states) == 0 {
		return rancher.StateUpgraded
	}
	if poll > len(f.states) {
		return f.states[len(f.states)-1]
	}
	return f.states[poll-1]
}

// snapshot returns the service as the platform would show it in state,
// with the actions Rancher offers in that state.
func (f *FakeRancher) snapshot(state string) *rancher.Service {
	s := *f.service
	s.State = state
	s.Actions = map[string]string{}
	switch state {
	case rancher.StateActive:
		s.Actions[rancher.ActionUpgrade] = f.ActionURL(rancher.ActionUpgrade)
	case rancher.StateInactive:
	case rancher.StateUpgraded:
		s.Actions[rancher.ActionFinishUpgrade] = f.ActionURL(rancher.ActionFinishUpgrade)
		s.Actions[rancher.ActionRollback] = f.ActionURL(rancher.ActionRollback)
	default:
		s.Actions[rancher.ActionRollback] = f.ActionURL(rancher.ActionRollback)
	}
	return &s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
