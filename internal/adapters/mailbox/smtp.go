package mailbox

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

// IngestConfig holds the settings of the inbound SMTP listener.
type IngestConfig struct {
	ListenAddr      string
	Domain          string
	MaxMessageBytes int64
	AttachmentsDir  string
}

// SMTPIngest accepts pushed mail (an MX or a postfix transport pointing at
// us) and saves each accepted message as an email document, so mail reaches
// the pipeline without a fetch job.
type SMTPIngest struct {
	cfg    IngestConfig
	store  core.DocumentStore
	logger *zap.Logger
	server *smtp.Server
}

func NewSMTPIngest(cfg IngestConfig, store core.DocumentStore, logger *zap.Logger) *SMTPIngest {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":2525"
	}
	if cfg.Domain == "" {
		cfg.Domain = "localhost"
	}
	if cfg.MaxMessageBytes <= 0 {
		cfg.MaxMessageBytes = 30 * 1024 * 1024
	}
	return &SMTPIngest{cfg: cfg, store: store, logger: logger}
}

// Start begins listening. The server runs in its own goroutine until Stop.
func (i *SMTPIngest) Start() error {
	i.server = smtp.NewServer(&ingestBackend{ingest: i})
	i.server.Addr = i.cfg.ListenAddr
	i.server.Domain = i.cfg.Domain
	i.server.ReadTimeout = 30 * time.Second
	i.server.WriteTimeout = 30 * time.Second
	i.server.MaxMessageBytes = i.cfg.MaxMessageBytes
	i.server.MaxRecipients = 50
	i.server.AllowInsecureAuth = true

	i.logger.Info("SMTP ingest starting", zap.String("address", i.cfg.ListenAddr))

	go func() {
		if err := i.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				i.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Stop shuts the listener down.
func (i *SMTPIngest) Stop() error {
	if i.server != nil {
		return i.server.Close()
	}
	return nil
}

// accept parses and stores one pushed message.
func (i *SMTPIngest) accept(r io.Reader) error {
	key := uuid.NewString()
	rec, err := ParseMessage(r, i.cfg.AttachmentsDir, key)
	if err != nil {
		i.logger.Error("Failed to parse pushed message", zap.Error(err))
		return err
	}
	if rec.ID == "" {
		rec.ID = key
	}

	doc, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := i.store.Save(ctx, core.CollectionEmails, rec.ID, doc); err != nil {
		i.logger.Error("Failed to save pushed message",
			zap.String("email_id", rec.ID),
			zap.Error(err))
		return err
	}

	i.logger.Info("Ingested pushed message",
		zap.String("email_id", rec.ID),
		zap.String("subject", rec.Subject))
	return nil
}

type ingestBackend struct {
	ingest *SMTPIngest
}

func (b *ingestBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &ingestSession{ingest: b.ingest}, nil
}

type ingestSession struct {
	ingest *SMTPIngest
	sender string
}

func (s *ingestSession) Reset() {
	s.sender = ""
}

func (s *ingestSession) Logout() error {
	return nil
}

func (s *ingestSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

func (s *ingestSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *ingestSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	return nil
}

func (s *ingestSession) Data(r io.Reader) error {
	return s.ingest.accept(r)
}
