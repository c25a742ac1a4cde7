package jira

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Email:      "bot@example.com",
		APIToken:   "token",
		ProjectKey: "FT",
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{Email: "bot@example.com"}, zap.NewNop())

	var cfg *core.ConfigError
	require.ErrorAs(t, err, &cfg)
	assert.Equal(t, []string{"jira.base_url", "jira.api_token", "jira.project_key"}, cfg.Missing)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(testConfig("https://jira.example.com/"), zap.NewNop())
	require.NoError(t, err)

	types := client.IssueTypes()
	assert.Equal(t, "Bug", types.Bug)
	assert.Equal(t, "Task", types.Task)
	// Trailing slash is trimmed so browse URLs stay clean.
	assert.Equal(t, "https://jira.example.com/browse/FT-1", client.BrowseURL("FT-1"))
}

func TestCreateIssue(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "10001", "key": "FT-42"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	ref, err := client.CreateIssue(context.Background(), "Bug", "[BUG] crash", "details", []string{"feedback-triage"})
	require.NoError(t, err)

	assert.Equal(t, "FT-42", ref.Key)
	assert.Equal(t, server.URL+"/browse/FT-42", ref.URL)
	assert.Equal(t, "/rest/api/2/issue", gotPath)
	assert.Equal(t, "bot@example.com", gotUser)
	assert.Equal(t, "token", gotPass)

	fields, ok := gotPayload["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"key": "FT"}, fields["project"])
	assert.Equal(t, map[string]any{"name": "Bug"}, fields["issuetype"])
	assert.Equal(t, "[BUG] crash", fields["summary"])
	assert.Equal(t, []any{"feedback-triage"}, fields["labels"])
}

func TestCreateIssueDefaultsIssueTypeAndLabels(t *testing.T) {
	var gotPayload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotPayload)
		_, _ = w.Write([]byte(`{"key": "FT-43"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "", "s", "d", nil)
	require.NoError(t, err)

	fields := gotPayload["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"name": "Task"}, fields["issuetype"])
	// Jira rejects a null labels field.
	assert.Equal(t, []any{}, fields["labels"])
}

func TestCreateIssueErrorStatusIsRedacted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorMessages": ["bad credentials for Basic dXNlcjpwYXNzd29yZA=="]}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "Bug", "s", "d", nil)

	var transport *core.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Equal(t, http.StatusUnauthorized, transport.Status)
	assert.Contains(t, transport.Snippet, "Basic [REDACTED]")
	assert.NotContains(t, transport.Snippet, "dXNlcjpwYXNzd29yZA")
}

func TestCreateIssueMissingKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "10001"}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "Bug", "s", "d", nil)

	var format *core.FormatError
	require.ErrorAs(t, err, &format)
}

func TestCreateIssueUnparseableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>proxy error</html>`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "Bug", "s", "d", nil)

	var format *core.FormatError
	require.ErrorAs(t, err, &format)
}

func TestCreateIssueConnectionError(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Timeout = time.Second
	client, err := NewClient(cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = client.CreateIssue(context.Background(), "Bug", "s", "d", nil)

	var transport *core.TransportError
	require.ErrorAs(t, err, &transport)
	assert.Zero(t, transport.Status)
}
