package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTriager struct {
	verdict   *AIVerdict
	ticket    *TicketProposal
	reply     *ReplyProposal
	ticketErr error
	replyErr  error
}

func (f *fakeTriager) ClassifyMessage(ctx context.Context, msg *MessageRecord) (*AIVerdict, error) {
	return f.verdict, nil
}

func (f *fakeTriager) DraftTicket(ctx context.Context, msg *MessageRecord) (*TicketProposal, error) {
	return f.ticket, f.ticketErr
}

func (f *fakeTriager) DraftReply(ctx context.Context, msg *MessageRecord) (*ReplyProposal, error) {
	return f.reply, f.replyErr
}

func draftFixture(store *memStore, triager Triager) *DraftService {
	logger := zap.NewNop()
	builder := NewBuilder(store, logger)
	states := NewStateMachine(store, logger)
	return NewDraftService(triager, builder, states, IssueTypes{Bug: "Bug", Task: "Task"}, logger)
}

func seedMessage(store *memStore) {
	store.put(CollectionEmails, "m1", []byte(`{
		"id": "m1",
		"subject": "App crashes on send",
		"from": "user@example.com",
		"date": "Mon, 02 Mar 2026 10:00:00 +0000",
		"snippet": "crash report",
		"body_text": "It crashes every time."
	}`))
}

func TestGenerateTicketDraftFromAI(t *testing.T) {
	store := newMemStore()
	seedMessage(store)
	svc := draftFixture(store, &fakeTriager{
		ticket: &TicketProposal{Summary: "Crash on send", Description: "Repro steps...", Labels: []string{"crash"}},
	})

	state, usedFallback, err := svc.GenerateTicketDraft(context.Background(), "m1")
	require.NoError(t, err)
	assert.False(t, usedFallback)
	require.NotNil(t, state.TicketDraft)
	assert.Equal(t, "Crash on send", state.TicketDraft.Summary)
	assert.Equal(t, []string{"crash"}, state.TicketDraft.Labels)
	// No triage artifact, so the issue type defaults to the task type.
	assert.Equal(t, "Task", state.TicketDraft.IssueType)
}

func TestGenerateTicketDraftUsesArtifactClassification(t *testing.T) {
	store := newMemStore()
	seedMessage(store)
	svc := draftFixture(store, &fakeTriager{ticket: &TicketProposal{Summary: "s", Description: "d"}})

	_, err := svc.builder.Triage(context.Background(), "m1")
	require.NoError(t, err)

	state, _, err := svc.GenerateTicketDraft(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "Bug", state.TicketDraft.IssueType)
}

func TestGenerateTicketDraftFallsBackOnAIFailure(t *testing.T) {
	store := newMemStore()
	seedMessage(store)
	svc := draftFixture(store, &fakeTriager{
		ticketErr: &TransportError{Status: 503, Snippet: "unavailable"},
	})

	// Seed an AI verdict so the fallback can cite it.
	_, err := svc.states.IngestAIResult(context.Background(), "m1", StatusPending, "looks actionable",
		map[string]any{"signals": []any{"crash", "repeat reports"}})
	require.NoError(t, err)

	state, usedFallback, err := svc.GenerateTicketDraft(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, usedFallback)
	require.NotNil(t, state.TicketDraft)
	assert.Equal(t, "App crashes on send", state.TicketDraft.Summary)
	assert.Contains(t, state.TicketDraft.Description, "From: user@example.com")
	assert.Contains(t, state.TicketDraft.Description, "decision: pending")
	assert.Contains(t, state.TicketDraft.Description, "- crash")
}

func TestGenerateTicketDraftMissingMessage(t *testing.T) {
	svc := draftFixture(newMemStore(), &fakeTriager{})

	_, _, err := svc.GenerateTicketDraft(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFallbackTicketDraftWithoutState(t *testing.T) {
	proposal := FallbackTicketDraft(&MessageRecord{From: "a@b.c"}, nil)

	assert.Equal(t, "(no subject)", proposal.Summary)
	assert.Contains(t, proposal.Description, "From: a@b.c")
	assert.Contains(t, proposal.Description, "decision: -")
	assert.Contains(t, proposal.Description, "signals: []")
}

func TestGenerateReplyDraftPersists(t *testing.T) {
	store := newMemStore()
	seedMessage(store)
	svc := draftFixture(store, &fakeTriager{
		reply: &ReplyProposal{Language: "en", Reply: "Thanks, we are on it.", ReplyZH: "感谢反馈。"},
	})

	state, err := svc.GenerateReplyDraft(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, state.ReplyDraft)
	assert.Equal(t, "en", state.ReplyDraft.Language)
	assert.Equal(t, "Thanks, we are on it.", state.ReplyDraft.Reply)
	assert.Equal(t, "感谢反馈。", state.ReplyDraft.ReplyZH)
}

func TestGenerateReplyDraftErrorsPropagate(t *testing.T) {
	store := newMemStore()
	seedMessage(store)
	svc := draftFixture(store, &fakeTriager{replyErr: ErrEmptyReply})

	_, err := svc.GenerateReplyDraft(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrEmptyReply)

	// Nothing was persisted.
	state := svc.states.Load(context.Background(), "m1")
	assert.Nil(t, state.ReplyDraft)
}
