package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxBodyPreview = 4000

// Builder produces and persists triage artifacts for fetched messages.
type Builder struct {
	store  DocumentStore
	logger *zap.Logger
}

func NewBuilder(store DocumentStore, logger *zap.Logger) *Builder {
	return &Builder{store: store, logger: logger}
}

// summaryPrefix maps a classification onto its ticket summary tag.
func summaryPrefix(c Classification) string {
	switch c {
	case ClassBug:
		return "[BUG]"
	case ClassFeatureRequest:
		return "[FEAT]"
	case ClassQuestion:
		return "[Q]"
	case ClassAccountSupport:
		return "[ACCOUNT]"
	default:
		return "[OTHER]"
	}
}

// TicketSummary renders the bracket-prefixed summary line for a message.
func TicketSummary(c Classification, subject string) string {
	subj := strings.TrimSpace(subject)
	if subj == "" {
		subj = "(no subject)"
	}
	return summaryPrefix(c) + " " + subj
}

// TicketDescription renders the header/snippet/body description block. The
// body is truncated at maxBodyPreview characters, not bytes, so multibyte
// text is never cut mid-rune.
func TicketDescription(from, date, subject, snippet, body string) string {
	preview := strings.TrimSpace(body)
	if runes := []rune(preview); len(runes) > maxBodyPreview {
		preview = string(runes[:maxBodyPreview]) + "\n\n...[truncated]..."
	}

	if from == "" {
		from = "(unknown)"
	}
	if date == "" {
		date = time.Now().UTC().Format(time.RFC3339)
	}
	if subject == "" {
		subject = "(no subject)"
	}
	if snippet == "" {
		snippet = "(none)"
	}
	if preview == "" {
		preview = "(none)"
	}

	parts := []string{
		"From: " + from,
		"Date: " + date,
		"Subject: " + subject,
		"",
		"Snippet:",
		snippet,
		"",
		"Body:",
		preview,
	}
	return strings.Join(parts, "\n")
}

// BuildArtifact runs the heuristic classifier over a message and assembles
// the full triage artifact. Pure: never fails, malformed input degrades to
// other/P3.
func BuildArtifact(msg *MessageRecord) *TriageArtifact {
	text := NormalizeText(msg.Subject, msg.Snippet, msg.BodyText)
	c := Classify(text)
	p := Prioritize(text)

	return &TriageArtifact{
		EmailID:        msg.ID,
		ThreadID:       msg.ThreadID,
		Classification: c,
		Priority:       p,
		Ticket: TicketFields{
			Summary:       TicketSummary(c, msg.Subject),
			Description:   TicketDescription(msg.From, msg.Date, msg.Subject, msg.Snippet, msg.BodyText),
			Labels:        []string{"feedback-triage", string(c), string(p)},
			ReporterEmail: msg.From,
			Subject:       msg.Subject,
			ReceivedAt:    msg.Date,
			Snippet:       msg.Snippet,
		},
		Attachments: msg.Attachments,
	}
}

// LoadMessage reads an email document by id. Missing documents surface as
// ErrNotFound; a document that exists but does not parse is an error, not an
// absence.
func (b *Builder) LoadMessage(ctx context.Context, id string) (*MessageRecord, error) {
	raw, err := b.store.Load(ctx, CollectionEmails, id)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding email document %s: %w", id, err)
	}
	msg := DecodeMessage(doc)
	if msg.ID == "" {
		msg.ID = id
	}
	return msg, nil
}

// LoadArtifact reads the triage artifact for a message. Corrupt artifacts
// read as absent so a bad write never blocks re-triage.
func (b *Builder) LoadArtifact(ctx context.Context, id string) (*TriageArtifact, error) {
	raw, err := b.store.Load(ctx, CollectionTriage, id)
	if err != nil {
		return nil, err
	}
	var artifact TriageArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		b.logger.Warn("Discarding corrupt triage artifact",
			zap.String("email_id", id),
			zap.Error(err))
		return nil, ErrNotFound
	}
	return &artifact, nil
}

// Triage loads a message, builds its artifact and persists it.
func (b *Builder) Triage(ctx context.Context, id string) (*TriageArtifact, error) {
	msg, err := b.LoadMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	artifact := BuildArtifact(msg)
	if err := b.saveArtifact(ctx, id, artifact); err != nil {
		return nil, err
	}
	b.logger.Info("Triaged message",
		zap.String("email_id", id),
		zap.String("classification", string(artifact.Classification)),
		zap.String("priority", string(artifact.Priority)))
	return artifact, nil
}

// Upsert replaces the classification, priority and ticket core fields on an
// existing artifact, preserving everything else (attachments survive manual
// edits). A missing or corrupt artifact is created fresh.
func (b *Builder) Upsert(ctx context.Context, id string, c Classification, p Priority, summary, description string, labels []string) (*TriageArtifact, error) {
	artifact, err := b.LoadArtifact(ctx, id)
	if err != nil {
		artifact = &TriageArtifact{}
	}
	if artifact.EmailID == "" {
		artifact.EmailID = id
	}
	artifact.Classification = c
	artifact.Priority = p
	artifact.Ticket.Summary = summary
	artifact.Ticket.Description = description
	artifact.Ticket.Labels = labels

	if err := b.saveArtifact(ctx, id, artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

func (b *Builder) saveArtifact(ctx context.Context, id string, artifact *TriageArtifact) error {
	doc, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding triage artifact %s: %w", id, err)
	}
	if err := b.store.Save(ctx, CollectionTriage, id, doc); err != nil {
		return fmt.Errorf("saving triage artifact %s: %w", id, err)
	}
	return nil
}
