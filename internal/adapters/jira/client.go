package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

const (
	createIssuePath  = "/rest/api/2/issue"
	responseBodyCap  = 64 << 10
	errorSnippetSize = 500
)

// Config holds everything needed to file issues.
type Config struct {
	BaseURL       string
	Email         string
	APIToken      string
	ProjectKey    string
	IssueTypeBug  string
	IssueTypeTask string
	Timeout       time.Duration
}

// Client implements core.IssueTracker against the Jira REST v2 API with
// basic auth.
type Client struct {
	http   *http.Client
	cfg    Config
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	var missing []string
	if cfg.BaseURL == "" {
		missing = append(missing, "jira.base_url")
	}
	if cfg.Email == "" {
		missing = append(missing, "jira.email")
	}
	if cfg.APIToken == "" {
		missing = append(missing, "jira.api_token")
	}
	if cfg.ProjectKey == "" {
		missing = append(missing, "jira.project_key")
	}
	if len(missing) > 0 {
		return nil, &core.ConfigError{Missing: missing}
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.IssueTypeBug == "" {
		cfg.IssueTypeBug = "Bug"
	}
	if cfg.IssueTypeTask == "" {
		cfg.IssueTypeTask = "Task"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}, nil
}

// IssueTypes returns the configured classification-to-issue-type mapping.
func (c *Client) IssueTypes() core.IssueTypes {
	return core.IssueTypes{Bug: c.cfg.IssueTypeBug, Task: c.cfg.IssueTypeTask}
}

// BrowseURL returns the human-facing URL of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.cfg.BaseURL + "/browse/" + key
}

// CreateIssue files one issue and returns its key and browse URL. Response
// bodies in error paths are redacted before they reach an error string.
func (c *Client) CreateIssue(ctx context.Context, issueType, summary, description string, labels []string) (core.IssueRef, error) {
	if issueType == "" {
		issueType = c.cfg.IssueTypeTask
	}
	if labels == nil {
		labels = []string{}
	}

	payload := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": c.cfg.ProjectKey},
			"issuetype":   map[string]string{"name": issueType},
			"summary":     summary,
			"description": description,
			"labels":      labels,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return core.IssueRef{}, fmt.Errorf("encoding issue payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+createIssuePath, bytes.NewReader(body))
	if err != nil {
		return core.IssueRef{}, fmt.Errorf("building issue request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.IssueRef{}, &core.TransportError{
			Snippet: core.RedactSecrets(core.Snippet(err.Error(), errorSnippetSize)),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyCap))
	if resp.StatusCode >= 400 {
		return core.IssueRef{}, &core.TransportError{
			Status:  resp.StatusCode,
			Snippet: core.RedactSecrets(core.Snippet(string(respBody), errorSnippetSize)),
		}
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return core.IssueRef{}, &core.FormatError{Msg: "unparseable create-issue response: " + err.Error()}
	}
	if created.Key == "" {
		return core.IssueRef{}, &core.FormatError{Msg: "create-issue response has no key"}
	}

	c.logger.Info("Created Jira issue",
		zap.String("key", created.Key),
		zap.String("issue_type", issueType))
	return core.IssueRef{Key: created.Key, URL: c.BrowseURL(created.Key)}, nil
}
