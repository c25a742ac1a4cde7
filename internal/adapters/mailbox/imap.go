package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

// IMAPConfig holds the connection settings for the upstream mailbox.
type IMAPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	TLS            bool
	Folder         string
	SinceDays      int
	AttachmentsDir string
}

// IMAPMailbox implements core.Mailbox over IMAP. Messages are keyed by UID
// within the configured folder. Connections are per-call; the fetch jobs are
// periodic, not latency sensitive.
type IMAPMailbox struct {
	cfg    IMAPConfig
	logger *zap.Logger
}

func NewIMAPMailbox(cfg IMAPConfig, logger *zap.Logger) (*IMAPMailbox, error) {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "mailbox.host")
	}
	if cfg.Username == "" {
		missing = append(missing, "mailbox.username")
	}
	if cfg.Password == "" {
		missing = append(missing, "mailbox.password")
	}
	if len(missing) > 0 {
		return nil, &core.ConfigError{Missing: missing}
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	return &IMAPMailbox{cfg: cfg, logger: logger}, nil
}

func (m *IMAPMailbox) connect() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var client *imapclient.Client
	var err error
	if m.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	if err := client.Login(m.cfg.Username, m.cfg.Password).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("logging in as %s: %w", m.cfg.Username, err)
	}
	if _, err := client.Select(m.cfg.Folder, nil).Wait(); err != nil {
		client.Close()
		return nil, fmt.Errorf("selecting folder %s: %w", m.cfg.Folder, err)
	}
	return client, nil
}

// List searches the folder and returns message UIDs newest-first, capped at
// limit when positive.
func (m *IMAPMailbox) List(ctx context.Context, query string, limit int) ([]string, error) {
	client, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	criteria := &imap.SearchCriteria{}
	if m.cfg.SinceDays > 0 {
		criteria.Since = time.Now().AddDate(0, 0, -m.cfg.SinceDays)
	}
	if query != "" {
		criteria.Text = []string{query}
	}

	data, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching folder %s: %w", m.cfg.Folder, err)
	}

	uids := data.AllUIDs()
	// UIDs ascend with arrival; reverse for newest-first.
	ids := make([]string, 0, len(uids))
	for i := len(uids) - 1; i >= 0; i-- {
		ids = append(ids, strconv.FormatUint(uint64(uids[i]), 10))
		if limit > 0 && len(ids) >= limit {
			break
		}
	}

	m.logger.Debug("Listed mailbox messages",
		zap.String("folder", m.cfg.Folder),
		zap.Int("count", len(ids)))
	return ids, nil
}

// Get fetches and parses one message by UID.
func (m *IMAPMailbox) Get(ctx context.Context, id string) (*core.MessageRecord, error) {
	uid, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid message uid %q: %w", id, err)
	}

	client, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer client.Close()

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := client.Fetch(imap.UIDSetNum(imap.UID(uid)), &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	})
	messages, err := fetchCmd.Collect()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}
	if len(messages) == 0 {
		return nil, core.ErrNotFound
	}

	buf := messages[0]
	raw := buf.FindBodySection(bodySection)
	if raw == nil {
		return nil, fmt.Errorf("message %s has no body section", id)
	}

	rec, err := ParseMessage(bytes.NewReader(raw), m.cfg.AttachmentsDir, id)
	if err != nil {
		return nil, fmt.Errorf("parsing message %s: %w", id, err)
	}

	// The UID is our storage key regardless of the Message-Id header.
	rec.ID = id
	if buf.Envelope != nil {
		if rec.Subject == "" {
			rec.Subject = buf.Envelope.Subject
		}
		if rec.Date == "" && !buf.Envelope.Date.IsZero() {
			rec.Date = buf.Envelope.Date.Format(time.RFC1123Z)
		}
		if rec.From == "" && len(buf.Envelope.From) > 0 {
			rec.From = buf.Envelope.From[0].Addr()
		}
	}
	return rec, nil
}
