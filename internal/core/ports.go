package core

import "context"

// Collections of the document store. Each holds one JSON document per
// message id.
const (
	CollectionEmails = "emails"
	CollectionTriage = "triage"
	CollectionState  = "triage_state"
)

// DocumentStore persists whole JSON documents keyed by collection and id.
// List returns ids newest-first. Load returns ErrNotFound for missing
// documents.
type DocumentStore interface {
	Load(ctx context.Context, collection, id string) ([]byte, error)
	Save(ctx context.Context, collection, id string, doc []byte) error
	List(ctx context.Context, collection string) ([]string, error)
}

// TextCompleter is a generative text provider: one system directive, one
// user payload, one completion back.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Triager is the AI side of the pipeline.
type Triager interface {
	ClassifyMessage(ctx context.Context, msg *MessageRecord) (*AIVerdict, error)
	DraftTicket(ctx context.Context, msg *MessageRecord) (*TicketProposal, error)
	DraftReply(ctx context.Context, msg *MessageRecord) (*ReplyProposal, error)
}

// IssueRef identifies a created tracker issue.
type IssueRef struct {
	Key string
	URL string
}

// IssueTracker files issues in the external tracker.
type IssueTracker interface {
	CreateIssue(ctx context.Context, issueType, summary, description string, labels []string) (IssueRef, error)
}

// Mailbox lists and fetches messages from the upstream mail source.
type Mailbox interface {
	List(ctx context.Context, query string, limit int) ([]string, error)
	Get(ctx context.Context, id string) (*MessageRecord, error)
}
