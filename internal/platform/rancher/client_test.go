package rancher

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/", Credentials{AccessKey: "key", SecretKey: "secret"}), server
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestFindService(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/v1/services", r.URL.Path)
		assert.Equal(t, "web", r.URL.Query().Get("name"))
		assert.Empty(t, r.URL.Query().Get("stackId"))

		writeJSON(w, http.StatusOK, map[string]any{
			"type": "collection",
			"data": []map[string]any{
				{
					"id": "1s1", "name": "web", "state": "active", "type": "service",
					"launchConfig": map[string]any{"imageUuid": "docker:web:1.0", "labels": map[string]any{"a": "b"}},
					"actions":      map[string]string{"upgrade": "http://x/upgrade"},
					"links":        map[string]string{"self": "http://x/self"},
				},
				{"id": "1s2", "name": "web", "state": "inactive", "type": "service"},
			},
		})
	})

	svc, err := client.FindService(t.Context(), "web", "")
	require.NoError(t, err)
	assert.Equal(t, "1s1", svc.ID)
	assert.Equal(t, StateActive, svc.State)
	assert.Equal(t, "docker:web:1.0", svc.LaunchConfig.Image())
	assert.Equal(t, "http://x/upgrade", svc.Action(ActionUpgrade))
	assert.Equal(t, "http://x/self", svc.Link(LinkSelf))
}

func TestFindService_StackScoped(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1st5", r.URL.Query().Get("stackId"))
		writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "1s9"}}})
	})

	svc, err := client.FindService(t.Context(), "web", "1st5")
	require.NoError(t, err)
	assert.Equal(t, "1s9", svc.ID)
}

func TestFindService_NoMatch(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	_, err := client.FindService(t.Context(), "web", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestFindService_InvalidJSON(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := client.FindService(t.Context(), "web", "")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestFindService_Unauthorized(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"type": "error", "status": 401, "code": "Unauthorized", "message": "Unauthorized",
		})
	})

	_, err := client.FindService(t.Context(), "web", "")
	require.Error(t, err)

	var pe *PlatformError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 401, pe.Status)
	assert.Equal(t, "Unauthorized", pe.Code)
}

func TestFindService_ServerError(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	})

	_, err := client.FindService(t.Context(), "web", "")
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Contains(t, err.Error(), "bad gateway")
}

func TestFindService_ConnectionRefused(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := NewClient(server.URL, Credentials{})

	_, err := client.FindService(t.Context(), "web", "")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestFindStack(t *testing.T) {
	t.Parallel()

	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stacks", r.URL.Path)
		if r.URL.Query().Get("name") == "prod" {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "1st5", "name": "prod"}}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})

	stack, err := client.FindStack(t.Context(), "prod")
	require.NoError(t, err)
	assert.Equal(t, "1st5", stack.ID)

	_, err = client.FindStack(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrStackNotFound)
}

func TestStartUpgrade(t *testing.T) {
	t.Parallel()

	var received ServiceUpgrade
	var rawBody map[string]any
	client, server := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		assert.NoError(t, json.Unmarshal(body, &rawBody))
		writeJSON(w, http.StatusAccepted, map[string]any{"id": "1s1", "type": "service", "state": "upgrading"})
	})

	upgrade := &ServiceUpgrade{
		LaunchConfig: LaunchConfig{ImageKey: "docker:web:2.0"},
		InServiceStrategy: &InServiceUpgradeStrategy{
			LaunchConfig: LaunchConfig{ImageKey: "docker:web:2.0"},
		},
		ToServiceStrategy: &ToServiceUpgradeStrategy{},
	}

	result, err := client.StartUpgrade(t.Context(), server.URL+"/v1/services/1s1/?action=upgrade", upgrade)
	require.NoError(t, err)
	assert.Equal(t, StateUpgrading, result.State)
	assert.Equal(t, "docker:web:2.0", received.InServiceStrategy.LaunchConfig.Image())
	assert.Equal(t, map[string]any{}, rawBody["toServiceStrategy"])
}

func TestStartUpgrade_Rejected(t *testing.T) {
	t.Parallel()

	client, server := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"type": "error", "code": "InvalidState", "message": "Service is not active",
		})
	})

	_, err := client.StartUpgrade(t.Context(), server.URL+"/upgrade", &ServiceUpgrade{})
	require.Error(t, err)
	assert.True(t, IsPlatformError(err))
	assert.Equal(t, "InvalidState", ErrorCode(err))
	assert.Contains(t, err.Error(), "Service is not active")
}

func TestStartUpgrade_ErrorDocumentWithOKStatus(t *testing.T) {
	t.Parallel()

	client, server := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"type": "error", "code": "ActionNotAvailable"})
	})

	_, err := client.StartUpgrade(t.Context(), server.URL+"/upgrade", &ServiceUpgrade{})
	require.Error(t, err)
	assert.Equal(t, "ActionNotAvailable", ErrorCode(err))
}

func TestFinishUpgradeAndRollback(t *testing.T) {
	t.Parallel()

	var paths []string
	client, server := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Query().Get("action"))
		w.WriteHeader(http.StatusAccepted)
	})

	_, err := client.FinishUpgrade(t.Context(), server.URL+"/s?action=finishupgrade")
	require.NoError(t, err)
	_, err = client.Rollback(t.Context(), server.URL+"/s?action=rollback")
	require.NoError(t, err)

	assert.Equal(t, []string{"finishupgrade", "rollback"}, paths)
}

func TestAction_EmptyURL(t *testing.T) {
	t.Parallel()

	client := NewClient("http://unused", Credentials{})
	_, err := client.Rollback(t.Context(), "")
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestGetService(t *testing.T) {
	t.Parallel()

	client, server := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/services/1s1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"id": "1s1", "state": "upgraded"})
	})

	svc, err := client.GetService(t.Context(), server.URL+"/v1/services/1s1")
	require.NoError(t, err)
	assert.Equal(t, StateUpgraded, svc.State)
}

func TestLaunchConfigClone(t *testing.T) {
	t.Parallel()

	orig := LaunchConfig{
		ImageKey: "docker:a",
		"labels": map[string]any{"x": "1"},
		"ports":  []any{"80:80"},
	}
	clone := orig.Clone()
	clone[ImageKey] = "docker:b"
	clone["labels"].(map[string]any)["x"] = "2"
	clone["ports"].([]any)[0] = "81:81"

	assert.Equal(t, "docker:a", orig.Image())
	assert.Equal(t, "1", orig["labels"].(map[string]any)["x"])
	assert.Equal(t, "80:80", orig["ports"].([]any)[0])

	var nilConfig LaunchConfig
	assert.Nil(t, nilConfig.Clone())
}
