package core

import (
	"context"

	"go.uber.org/zap"
)

// Submitter files tracker tickets for pending messages and records the
// outcome on the processing state.
type Submitter struct {
	tracker    IssueTracker
	states     *StateMachine
	issueTypes IssueTypes
	logger     *zap.Logger
}

func NewSubmitter(tracker IssueTracker, states *StateMachine, issueTypes IssueTypes, logger *zap.Logger) *Submitter {
	return &Submitter{tracker: tracker, states: states, issueTypes: issueTypes, logger: logger}
}

// IssueTypeFor returns the tracker issue type for a classification.
func (s *Submitter) IssueTypeFor(c Classification) string {
	return s.issueTypes.For(c)
}

// Submit creates a tracker issue for a message and attaches the result. The
// message must be pending: the status gate runs before any external call so
// an ignored or already-processed message never reaches the tracker. A
// tracker failure leaves the status untouched.
func (s *Submitter) Submit(ctx context.Context, id, issueType, summary, description string, labels []string) (*ProcessingState, error) {
	if current := s.states.ProcessingStatus(ctx, id); current != StatusPending {
		return nil, &InvalidTransitionError{EmailID: id, Status: current, Op: "create ticket"}
	}

	ref, err := s.tracker.CreateIssue(ctx, issueType, summary, description, labels)
	if err != nil {
		return nil, &TicketSubmissionError{Err: err}
	}
	if ref.Key == "" {
		return nil, &TicketSubmissionError{Err: &FormatError{Msg: "tracker returned no issue key"}}
	}

	s.logger.Info("Created tracker issue",
		zap.String("email_id", id),
		zap.String("issue_key", ref.Key))
	return s.states.AttachTicket(ctx, id, ref.Key, ref.URL)
}
