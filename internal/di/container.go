package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/adapters/jira"
	"github.com/supportops/feedback-triage/internal/adapters/mailbox"
	"github.com/supportops/feedback-triage/internal/config"
	"github.com/supportops/feedback-triage/internal/core"
	"github.com/supportops/feedback-triage/internal/factory"
	"github.com/supportops/feedback-triage/internal/jobs"
	"github.com/supportops/feedback-triage/internal/logging"
)

// BuildContainer creates and configures the dependency injection container
// for the daemon
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailboxFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTrackerFactory); err != nil {
		return nil, err
	}

	// Register document store
	if err := container.Provide(func(f *factory.StoreFactory) (core.DocumentStore, error) {
		return f.CreateDocumentStore()
	}); err != nil {
		return nil, err
	}

	// Register AI triager
	if err := container.Provide(func(f *factory.LLMFactory) (core.Triager, error) {
		return f.CreateTriager()
	}); err != nil {
		return nil, err
	}

	// Register issue tracker
	if err := container.Provide(func(f *factory.TrackerFactory) (*jira.Client, error) {
		return f.CreateTracker()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *jira.Client) core.IssueTracker {
		return client
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *jira.Client) core.IssueTypes {
		return client.IssueTypes()
	}); err != nil {
		return nil, err
	}

	// Register mailbox
	if err := container.Provide(func(f *factory.MailboxFactory) (core.Mailbox, error) {
		return f.CreateMailbox()
	}); err != nil {
		return nil, err
	}

	// Register SMTP ingest listener
	if err := container.Provide(func(f *factory.MailboxFactory, store core.DocumentStore) *mailbox.SMTPIngest {
		return f.CreateIngestListener(store)
	}); err != nil {
		return nil, err
	}

	// Register core services
	if err := container.Provide(core.NewStateMachine); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewBuilder); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewPicker); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewSubmitter); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDraftService); err != nil {
		return nil, err
	}

	// Register jobs
	if err := container.Provide(func() jobs.Store {
		return jobs.NewMemoryStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(jobs.NewRunner); err != nil {
		return nil, err
	}
	if err := container.Provide(func(runner *jobs.Runner, cfg *config.Config, logger *zap.Logger) *jobs.Scheduler {
		jobsConfig := cfg.GetJobs()
		mailboxConfig := cfg.GetMailbox()
		return jobs.NewScheduler(runner, jobsConfig.FetchInterval, mailboxConfig.Query, jobsConfig.FetchLimit, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
