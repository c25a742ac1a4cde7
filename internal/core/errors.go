package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a missing document. Stores also return it for corrupt
// documents so callers see one "absent" case.
var ErrNotFound = errors.New("document not found")

// ErrEmptyReply reports an AI reply draft that came back blank after
// trimming.
var ErrEmptyReply = errors.New("reply draft is empty")

// ConfigError lists required settings that are missing.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return "missing required settings: " + strings.Join(e.Missing, ", ")
}

// TransportError reports a failed collaborator call: network error, timeout
// or an HTTP status >= 400. Snippet is a redacted excerpt of the response
// body or error text, safe to log.
type TransportError struct {
	Status  int
	Snippet string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transport failure (status %d): %s", e.Status, e.Snippet)
	}
	return fmt.Sprintf("transport failure: %s", e.Snippet)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError reports a collaborator response that arrived but could not be
// understood: no JSON object, unparseable JSON, or required fields missing.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string {
	return "malformed response: " + e.Msg
}

// InvalidTransitionError reports an operation attempted on a message whose
// status does not permit it.
type InvalidTransitionError struct {
	EmailID string
	Status  Status
	Op      string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s for message %s: status is %q", e.Op, e.EmailID, e.Status)
}

// TicketSubmissionError wraps a failed tracker submission.
type TicketSubmissionError struct {
	Err error
}

func (e *TicketSubmissionError) Error() string {
	return "ticket submission failed: " + e.Err.Error()
}

func (e *TicketSubmissionError) Unwrap() error { return e.Err }
