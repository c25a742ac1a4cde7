package factory

import (
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/adapters/mailbox"
	"github.com/supportops/feedback-triage/internal/config"
	"github.com/supportops/feedback-triage/internal/core"
)

// MailboxFactory creates mailbox adapters
type MailboxFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewMailboxFactory creates a new mailbox factory
func NewMailboxFactory(cfg *config.Config, logger *zap.Logger) *MailboxFactory {
	return &MailboxFactory{cfg: cfg, logger: logger}
}

// CreateMailbox creates the IMAP mailbox from the configuration
func (f *MailboxFactory) CreateMailbox() (core.Mailbox, error) {
	c := f.cfg.GetMailbox()
	return mailbox.NewIMAPMailbox(mailbox.IMAPConfig{
		Host:           c.Host,
		Port:           c.Port,
		Username:       c.Username,
		Password:       c.Password,
		TLS:            c.TLS,
		Folder:         c.Folder,
		SinceDays:      c.SinceDays,
		AttachmentsDir: f.cfg.GetStorage().AttachmentsDir,
	}, f.logger)
}

// CreateIngestListener creates the SMTP ingest listener writing into the
// given document store
func (f *MailboxFactory) CreateIngestListener(store core.DocumentStore) *mailbox.SMTPIngest {
	c := f.cfg.GetIngest()
	return mailbox.NewSMTPIngest(mailbox.IngestConfig{
		ListenAddr:      c.ListenAddress,
		Domain:          c.Domain,
		MaxMessageBytes: c.MaxMessageBytes,
		AttachmentsDir:  f.cfg.GetStorage().AttachmentsDir,
	}, store, f.logger)
}
