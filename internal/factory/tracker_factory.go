package factory

import (
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/adapters/jira"
	"github.com/supportops/feedback-triage/internal/config"
)

// TrackerFactory creates issue tracker clients
type TrackerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTrackerFactory creates a new tracker factory
func NewTrackerFactory(cfg *config.Config, logger *zap.Logger) *TrackerFactory {
	return &TrackerFactory{cfg: cfg, logger: logger}
}

// CreateTracker creates the Jira client from the configuration
func (f *TrackerFactory) CreateTracker() (*jira.Client, error) {
	c := f.cfg.GetJira()
	return jira.NewClient(jira.Config{
		BaseURL:       c.BaseURL,
		Email:         c.Email,
		APIToken:      c.APIToken,
		ProjectKey:    c.ProjectKey,
		IssueTypeBug:  c.IssueTypeBug,
		IssueTypeTask: c.IssueTypeTask,
		Timeout:       c.Timeout,
	}, f.logger)
}
