package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// StateMachine owns the per-message processing lifecycle. Every operation is
// load-whole-document, mutate, save; there is no partial update and the last
// writer wins.
type StateMachine struct {
	store  DocumentStore
	logger *zap.Logger
	clock  func() time.Time
}

func NewStateMachine(store DocumentStore, logger *zap.Logger) *StateMachine {
	return &StateMachine{store: store, logger: logger, clock: time.Now}
}

func (m *StateMachine) timestamp() string {
	return m.clock().UTC().Format(time.RFC3339)
}

// Load returns the state for a message. Missing and corrupt documents both
// load as a fresh default-pending state; nothing is persisted until the next
// write.
func (m *StateMachine) Load(ctx context.Context, id string) *ProcessingState {
	raw, err := m.store.Load(ctx, CollectionState, id)
	if err != nil {
		return &ProcessingState{EmailID: id, Status: string(StatusPending)}
	}
	var state ProcessingState
	if err := json.Unmarshal(raw, &state); err != nil {
		m.logger.Warn("Discarding corrupt processing state",
			zap.String("email_id", id),
			zap.Error(err))
		return &ProcessingState{EmailID: id, Status: string(StatusPending)}
	}
	if state.EmailID == "" {
		state.EmailID = id
	}
	return &state
}

// ProcessingStatus returns the canonical status for a message, pending when
// no state exists.
func (m *StateMachine) ProcessingStatus(ctx context.Context, id string) Status {
	return m.Load(ctx, id).ProcessingStatus()
}

func (m *StateMachine) save(ctx context.Context, id string, state *ProcessingState) error {
	state.UpdatedAt = m.timestamp()
	doc, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding processing state %s: %w", id, err)
	}
	if err := m.store.Save(ctx, CollectionState, id, doc); err != nil {
		return fmt.Errorf("saving processing state %s: %w", id, err)
	}
	return nil
}

// SetStatus normalizes and stores a status. processed_at is stamped the
// first time the message reaches processed and never overwritten. An empty
// reason leaves any existing reason in place.
func (m *StateMachine) SetStatus(ctx context.Context, id, rawStatus, reason string) (*ProcessingState, error) {
	state := m.Load(ctx, id)
	status := NormalizeStatus(rawStatus)
	state.Status = string(status)
	if status == StatusProcessed && state.ProcessedAt == "" {
		state.ProcessedAt = m.timestamp()
	}
	if reason != "" {
		state.Reason = reason
	}
	if err := m.save(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}

// MarkProcessed moves a message to processed.
func (m *StateMachine) MarkProcessed(ctx context.Context, id, reason string) (*ProcessingState, error) {
	return m.SetStatus(ctx, id, string(StatusProcessed), reason)
}

// MarkIgnore moves a message to ignore.
func (m *StateMachine) MarkIgnore(ctx context.Context, id, reason string) (*ProcessingState, error) {
	return m.SetStatus(ctx, id, string(StatusIgnore), reason)
}

// IngestAIResult stores the AI verdict sub-record and applies its decision.
// A processed message keeps its status: AI output never undoes an operator
// or submission outcome.
func (m *StateMachine) IngestAIResult(ctx context.Context, id string, decision Status, reason string, raw map[string]any) (*ProcessingState, error) {
	state := m.Load(ctx, id)
	state.AI = &AIResult{
		Decision: decision,
		Reason:   reason,
		Raw:      raw,
		ParsedAt: m.timestamp(),
	}
	if state.ProcessingStatus() != StatusProcessed {
		if decision == StatusIgnore {
			state.Status = string(StatusIgnore)
		} else {
			state.Status = string(StatusPending)
		}
	}
	if err := m.save(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}

// AttachTicket records the created tracker issue and forces the message to
// processed. processed_at is stamped only if not already set.
func (m *StateMachine) AttachTicket(ctx context.Context, id, key, url string) (*ProcessingState, error) {
	state := m.Load(ctx, id)
	state.Ticket = &TicketLink{
		Key:       key,
		URL:       url,
		CreatedAt: m.timestamp(),
	}
	state.Status = string(StatusProcessed)
	if state.ProcessedAt == "" {
		state.ProcessedAt = m.timestamp()
	}
	if err := m.save(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SaveTicketDraft stores a ticket draft without touching the status.
func (m *StateMachine) SaveTicketDraft(ctx context.Context, id, issueType, summary, description string, labels []string) (*ProcessingState, error) {
	state := m.Load(ctx, id)
	state.TicketDraft = &TicketDraft{
		IssueType:   issueType,
		Summary:     summary,
		Description: description,
		Labels:      labels,
		GeneratedAt: m.timestamp(),
	}
	if err := m.save(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SaveReplyDraft stores a reply draft without touching the status.
func (m *StateMachine) SaveReplyDraft(ctx context.Context, id, language, reply, replyZH string) (*ProcessingState, error) {
	state := m.Load(ctx, id)
	state.ReplyDraft = &ReplyDraft{
		Language:    language,
		Reply:       reply,
		ReplyZH:     replyZH,
		GeneratedAt: m.timestamp(),
	}
	if err := m.save(ctx, id, state); err != nil {
		return nil, err
	}
	return state, nil
}
