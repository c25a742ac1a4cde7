package core

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// DraftService generates ticket and reply drafts via the AI port and
// persists them on the processing state.
type DraftService struct {
	ai         Triager
	builder    *Builder
	states     *StateMachine
	issueTypes IssueTypes
	logger     *zap.Logger
}

func NewDraftService(ai Triager, builder *Builder, states *StateMachine, issueTypes IssueTypes, logger *zap.Logger) *DraftService {
	return &DraftService{ai: ai, builder: builder, states: states, issueTypes: issueTypes, logger: logger}
}

// FallbackTicketDraft renders the deterministic ticket proposal used when
// the AI is unavailable: subject as summary, a header/snippet/body block
// plus the last stored AI verdict as description.
func FallbackTicketDraft(msg *MessageRecord, state *ProcessingState) *TicketProposal {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "(no subject)"
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = "(unknown)"
	}
	date := strings.TrimSpace(msg.Date)
	if date == "" {
		date = "-"
	}

	decision := "-"
	reason := ""
	signals := "signals: []"
	if state != nil && state.AI != nil {
		if state.AI.Decision != "" {
			decision = string(state.AI.Decision)
		}
		reason = state.AI.Reason
		if raw, ok := state.AI.Raw["signals"].([]any); ok {
			var lines []string
			for _, s := range raw {
				if str := safeString(s); str != "" {
					lines = append(lines, "- "+str)
				}
			}
			if len(lines) > 0 {
				signals = "signals:\n" + strings.Join(lines, "\n")
			}
		}
	}

	description := strings.TrimSpace(strings.Join([]string{
		"From: " + from,
		"Date: " + date,
		"",
		"Snippet:",
		strings.TrimSpace(msg.Snippet),
		"",
		"Body:",
		strings.TrimSpace(msg.BodyText),
		"",
		"AI:",
		"decision: " + decision,
		reason,
		signals,
	}, "\n"))

	return &TicketProposal{Summary: subject, Description: description}
}

// GenerateTicketDraft asks the AI for a ticket proposal, falling back to the
// deterministic template on any AI failure, and persists the draft. The
// returned bool reports whether the fallback was used.
func (d *DraftService) GenerateTicketDraft(ctx context.Context, id string) (*ProcessingState, bool, error) {
	msg, err := d.builder.LoadMessage(ctx, id)
	if err != nil {
		return nil, false, err
	}

	usedFallback := false
	proposal, aiErr := d.ai.DraftTicket(ctx, msg)
	if aiErr != nil {
		d.logger.Warn("AI ticket draft failed, using template",
			zap.String("email_id", id),
			zap.Error(aiErr))
		proposal = FallbackTicketDraft(msg, d.states.Load(ctx, id))
		usedFallback = true
	}

	classification := ClassOther
	if artifact, err := d.builder.LoadArtifact(ctx, id); err == nil {
		classification = artifact.Classification
	}
	issueType := d.issueTypes.For(classification)

	state, err := d.states.SaveTicketDraft(ctx, id, issueType, proposal.Summary, proposal.Description, proposal.Labels)
	if err != nil {
		return nil, usedFallback, err
	}
	return state, usedFallback, nil
}

// GenerateReplyDraft asks the AI for a reply proposal and persists it. Reply
// drafting is advisory so there is no fallback: errors propagate.
func (d *DraftService) GenerateReplyDraft(ctx context.Context, id string) (*ProcessingState, error) {
	msg, err := d.builder.LoadMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	proposal, err := d.ai.DraftReply(ctx, msg)
	if err != nil {
		return nil, err
	}
	return d.states.SaveReplyDraft(ctx, id, proposal.Language, proposal.Reply, proposal.ReplyZH)
}
