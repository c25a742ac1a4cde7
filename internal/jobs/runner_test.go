package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

// docStore is an in-memory core.DocumentStore. Insertion order is kept and
// listing returns newest-first, matching the real stores.
type docStore struct {
	mu    sync.Mutex
	docs  map[string][]byte
	order []string
}

func newDocStore() *docStore {
	return &docStore{docs: make(map[string][]byte)}
}

func (s *docStore) key(collection, id string) string { return collection + "/" + id }

func (s *docStore) Load(ctx context.Context, collection, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[s.key(collection, id)]
	if !ok {
		return nil, core.ErrNotFound
	}
	return doc, nil
}

func (s *docStore) Save(ctx context.Context, collection, id string, doc []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(collection, id)
	if _, ok := s.docs[key]; !ok && collection == core.CollectionEmails {
		s.order = append([]string{id}, s.order...)
	}
	s.docs[key] = doc
	return nil
}

func (s *docStore) List(ctx context.Context, collection string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if collection != core.CollectionEmails {
		return nil, nil
	}
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids, nil
}

type fakeMailbox struct {
	ids     []string
	listErr error
	getErr  map[string]error
}

func (m *fakeMailbox) List(ctx context.Context, query string, limit int) ([]string, error) {
	return m.ids, m.listErr
}

func (m *fakeMailbox) Get(ctx context.Context, id string) (*core.MessageRecord, error) {
	if err, ok := m.getErr[id]; ok {
		return nil, err
	}
	return &core.MessageRecord{
		ID:      id,
		Subject: "error when saving draft",
		From:    "user@example.com",
	}, nil
}

type stubTriager struct {
	mu      sync.Mutex
	calls   []string
	verdict *core.AIVerdict
	err     error
}

func (s *stubTriager) ClassifyMessage(ctx context.Context, msg *core.MessageRecord) (*core.AIVerdict, error) {
	s.mu.Lock()
	s.calls = append(s.calls, msg.ID)
	s.mu.Unlock()
	return s.verdict, s.err
}

func (s *stubTriager) DraftTicket(ctx context.Context, msg *core.MessageRecord) (*core.TicketProposal, error) {
	return nil, errors.New("not used")
}

func (s *stubTriager) DraftReply(ctx context.Context, msg *core.MessageRecord) (*core.ReplyProposal, error) {
	return nil, errors.New("not used")
}

func runnerFixture(store *docStore, mailbox core.Mailbox, triager core.Triager) (*Runner, *core.StateMachine) {
	logger := zap.NewNop()
	states := core.NewStateMachine(store, logger)
	builder := core.NewBuilder(store, logger)
	return NewRunner(store, NewMemoryStore(), mailbox, triager, builder, states, logger), states
}

func waitJob(t *testing.T, job *Job) Snapshot {
	t.Helper()
	select {
	case <-job.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("job did not finish")
	}
	return job.Snapshot()
}

func TestStartFetchStoresMessages(t *testing.T) {
	store := newDocStore()
	runner, _ := runnerFixture(store, &fakeMailbox{ids: []string{"101", "102"}}, &stubTriager{})

	snap := waitJob(t, runner.StartFetch(context.Background(), "newer_than:7d", 0))

	assert.True(t, snap.Finished)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 2, snap.Done)

	doc, err := store.Load(context.Background(), core.CollectionEmails, "101")
	require.NoError(t, err)
	var msg core.MessageRecord
	require.NoError(t, json.Unmarshal(doc, &msg))
	assert.Equal(t, "error when saving draft", msg.Subject)
}

func TestStartFetchRecordsPerItemErrors(t *testing.T) {
	store := newDocStore()
	mailbox := &fakeMailbox{
		ids:    []string{"101", "102", "103"},
		getErr: map[string]error{"102": errors.New("message expunged")},
	}
	runner, _ := runnerFixture(store, mailbox, &stubTriager{})

	snap := waitJob(t, runner.StartFetch(context.Background(), "", 0))

	assert.True(t, snap.Finished)
	assert.Empty(t, snap.Error)
	assert.Equal(t, 3, snap.Done)

	var failed []ItemResult
	for _, res := range snap.Results {
		if !res.OK {
			failed = append(failed, res)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, "102", failed[0].EmailID)
	assert.Contains(t, failed[0].Error, "expunged")

	// The failed message was not stored, the others were.
	_, err := store.Load(context.Background(), core.CollectionEmails, "102")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = store.Load(context.Background(), core.CollectionEmails, "103")
	assert.NoError(t, err)
}

func TestStartFetchListFailureIsJobError(t *testing.T) {
	runner, _ := runnerFixture(newDocStore(), &fakeMailbox{listErr: errors.New("imap: connection reset")}, &stubTriager{})

	snap := waitJob(t, runner.StartFetch(context.Background(), "", 0))

	assert.True(t, snap.Finished)
	assert.Contains(t, snap.Error, "connection reset")
}

func TestStartFetchAndClassifyIngestsVerdicts(t *testing.T) {
	store := newDocStore()
	triager := &stubTriager{
		verdict: &core.AIVerdict{Decision: core.StatusIgnore, Reason: "newsletter"},
	}
	runner, states := runnerFixture(store, &fakeMailbox{ids: []string{"201"}}, triager)

	snap := waitJob(t, runner.StartFetchAndClassify(context.Background(), "", 0))

	assert.True(t, snap.Finished)
	assert.Equal(t, []string{"201"}, triager.calls)

	state := states.Load(context.Background(), "201")
	assert.Equal(t, core.StatusIgnore, state.ProcessingStatus())
	require.NotNil(t, state.AI)
	assert.Equal(t, "newsletter", state.AI.Reason)
}

func TestStartFetchAndClassifyCountsBothPhases(t *testing.T) {
	store := newDocStore()
	triager := &stubTriager{
		verdict: &core.AIVerdict{Decision: core.StatusPending, Reason: "actionable"},
	}
	runner, _ := runnerFixture(store, &fakeMailbox{ids: []string{"301", "302"}}, triager)

	snap := waitJob(t, runner.StartFetchAndClassify(context.Background(), "", 0))

	// One item per fetched message plus one per classification, so a poller
	// never reads done==total while classification is still running.
	assert.Equal(t, 4, snap.Total)
	assert.Equal(t, 4, snap.Done)
	assert.Len(t, snap.Results, 4)
	for _, res := range snap.Results {
		assert.True(t, res.OK)
	}
}

func TestStartFetchAndClassifyAIFailureKeepsPending(t *testing.T) {
	store := newDocStore()
	triager := &stubTriager{err: &core.TransportError{Status: 503, Snippet: "overloaded"}}
	runner, states := runnerFixture(store, &fakeMailbox{ids: []string{"202"}}, triager)

	snap := waitJob(t, runner.StartFetchAndClassify(context.Background(), "", 0))

	assert.True(t, snap.Finished)
	assert.Empty(t, snap.Error)

	state := states.Load(context.Background(), "202")
	assert.Equal(t, core.StatusPending, state.ProcessingStatus())
	require.NotNil(t, state.AI)
	assert.Contains(t, state.AI.Reason, "ai classification failed")

	// The classify item records the failure inline.
	require.Len(t, snap.Results, 2)
	assert.True(t, snap.Results[0].OK)
	assert.False(t, snap.Results[1].OK)
	assert.Contains(t, snap.Results[1].Error, "overloaded")
}

func TestStartTriageBuildsArtifacts(t *testing.T) {
	store := newDocStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, core.CollectionEmails, "m1",
		[]byte(`{"id": "m1", "subject": "crash on startup", "body_text": "it crashes, data loss"}`)))
	require.NoError(t, store.Save(ctx, core.CollectionEmails, "bad",
		[]byte(`not json`)))

	runner, _ := runnerFixture(store, &fakeMailbox{}, &stubTriager{})
	snap := waitJob(t, runner.StartTriage(ctx, 0))

	assert.True(t, snap.Finished)
	assert.Equal(t, 2, snap.Total)

	ok := 0
	for _, res := range snap.Results {
		if res.OK {
			ok++
		}
	}
	assert.Equal(t, 1, ok)

	doc, err := store.Load(ctx, core.CollectionTriage, "m1")
	require.NoError(t, err)
	var artifact core.TriageArtifact
	require.NoError(t, json.Unmarshal(doc, &artifact))
	assert.Equal(t, core.ClassBug, artifact.Classification)
	assert.Equal(t, core.PriorityP0, artifact.Priority)
}

func TestStartTriageHonorsLimit(t *testing.T) {
	store := newDocStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, core.CollectionEmails, "older", []byte(`{}`)))
	require.NoError(t, store.Save(ctx, core.CollectionEmails, "newer", []byte(`{}`)))

	runner, _ := runnerFixture(store, &fakeMailbox{}, &stubTriager{})
	snap := waitJob(t, runner.StartTriage(ctx, 1))

	assert.Equal(t, 1, snap.Total)
	require.Len(t, snap.Results, 1)
	assert.Equal(t, "newer", snap.Results[0].EmailID)
}
