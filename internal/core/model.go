package core

import "strings"

// Classification buckets for inbound feedback mail.
type Classification string

const (
	ClassBug            Classification = "bug"
	ClassFeatureRequest Classification = "feature_request"
	ClassQuestion       Classification = "question"
	ClassAccountSupport Classification = "account_support"
	ClassOther          Classification = "other"
)

// Priority levels assigned by the heuristic classifier. P3 is the default.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Status is the canonical processing status of a message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusIgnore    Status = "ignore"
	StatusProcessed Status = "processed"
)

// NormalizeStatus maps raw stored values, including legacy aliases written by
// earlier versions of the pipeline, onto the canonical status set. Unknown
// values normalize to pending so a bad write never wedges a message.
func NormalizeStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending", "todo":
		return StatusPending
	case "ignore", "skip":
		return StatusIgnore
	case "processed", "done", "jira":
		return StatusProcessed
	default:
		return StatusPending
	}
}

// Attachment describes one attachment of a fetched message. SavedTo is the
// local path the mailbox adapter stored the content under, empty when the
// content was not downloaded. Error carries a per-attachment fetch failure.
type Attachment struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType,omitempty"`
	SavedTo  string `json:"saved_to,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// MessageRecord is one fetched email, stored as a JSON document in the
// emails collection keyed by ID. It is written once by a mailbox adapter and
// treated as immutable afterwards.
type MessageRecord struct {
	ID          string       `json:"id"`
	ThreadID    string       `json:"threadId,omitempty"`
	LabelIDs    []string     `json:"labelIds,omitempty"`
	Subject     string       `json:"subject"`
	From        string       `json:"from"`
	Date        string       `json:"date"`
	Snippet     string       `json:"snippet"`
	BodyText    string       `json:"body_text"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// TicketFields is the ticket block of a triage artifact: everything needed to
// file a tracker issue for the message.
type TicketFields struct {
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	Labels        []string `json:"labels"`
	ReporterEmail string   `json:"reporter_email,omitempty"`
	Subject       string   `json:"subject,omitempty"`
	ReceivedAt    string   `json:"received_at,omitempty"`
	Snippet       string   `json:"snippet,omitempty"`
}

// TriageArtifact is the heuristic triage result for one message, stored in
// the triage collection keyed by the message id.
type TriageArtifact struct {
	EmailID        string         `json:"email_id"`
	ThreadID       string         `json:"threadId,omitempty"`
	Classification Classification `json:"classification"`
	Priority       Priority       `json:"priority"`
	Ticket         TicketFields   `json:"ticket"`
	Attachments    []Attachment   `json:"attachments,omitempty"`
}

// AIResult is the stored outcome of one AI classification pass.
type AIResult struct {
	Decision Status         `json:"decision"`
	Reason   string         `json:"reason,omitempty"`
	Raw      map[string]any `json:"raw,omitempty"`
	ParsedAt string         `json:"parsed_at"`
}

// TicketDraft is an AI- or template-generated ticket proposal saved on the
// processing state. Saving a draft never changes the status.
type TicketDraft struct {
	IssueType   string   `json:"issue_type"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Labels      []string `json:"labels,omitempty"`
	GeneratedAt string   `json:"generated_at"`
}

// TicketLink records the tracker issue created for a message.
type TicketLink struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// ReplyDraft is an AI-generated reply proposal. ReplyZH holds the
// target-locale rendering and stays empty when the reply is already in the
// target locale.
type ReplyDraft struct {
	Language    string `json:"language"`
	Reply       string `json:"reply"`
	ReplyZH     string `json:"reply_zh,omitempty"`
	GeneratedAt string `json:"generated_at"`
}

// ProcessingState is the per-message lifecycle document in the triage_state
// collection. Status holds the raw stored value, which may be a legacy alias;
// read it through ProcessingStatus.
type ProcessingState struct {
	EmailID     string       `json:"email_id"`
	Status      string       `json:"status"`
	Reason      string       `json:"reason,omitempty"`
	ProcessedAt string       `json:"processed_at,omitempty"`
	AI          *AIResult    `json:"ai,omitempty"`
	TicketDraft *TicketDraft `json:"jira_draft,omitempty"`
	Ticket      *TicketLink  `json:"jira,omitempty"`
	ReplyDraft  *ReplyDraft  `json:"reply_draft,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
}

// ProcessingStatus returns the canonical status, defaulting a nil or blank
// state to pending.
func (s *ProcessingState) ProcessingStatus() Status {
	if s == nil {
		return StatusPending
	}
	return NormalizeStatus(s.Status)
}

// AIVerdict is the parsed result of an AI classification call.
type AIVerdict struct {
	Decision   Status
	Confidence string
	Reason     string
	Signals    []string
	Raw        map[string]any
}

// TicketProposal is the parsed result of an AI ticket-draft call.
type TicketProposal struct {
	Summary     string
	Description string
	Labels      []string
}

// ReplyProposal is the parsed result of an AI reply-draft call.
type ReplyProposal struct {
	Language string
	Reply    string
	ReplyZH  string
}

// IssueTypes maps classifications onto the tracker's issue type names.
type IssueTypes struct {
	Bug  string
	Task string
}

// For returns the tracker issue type for a classification: bugs file as the
// bug type, everything else as the task type.
func (t IssueTypes) For(c Classification) string {
	if c == ClassBug {
		return t.Bug
	}
	return t.Task
}
