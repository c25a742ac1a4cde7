package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/supportops/feedback-triage/internal/core"
)

const (
	errorSnippetLimit  = 500
	defaultMaxBodySize = 4096
)

const classifySystemPrompt = `You are a support-mail triage assistant.
Decide whether the email needs human action.
Respond with a single JSON object and nothing else. No prose, no markdown.
The object must contain exactly these fields:
  "result": "needs action" or "no action needed"
  "confidence": "high", "medium" or "low"
  "reason": one short sentence
  "signals": array of short strings naming the evidence`

const ticketSystemPrompt = `You are a support-mail triage assistant.
Draft a tracker ticket for the email.
Respond with a single JSON object and nothing else. No prose, no markdown.
The object must contain exactly these fields:
  "summary": one-line ticket summary
  "description": ticket description, plain text
  "labels": array of short lowercase labels`

const replySystemPrompt = `You are a support-mail triage assistant.
Draft a reply to the email, written in the sender's language.
Respond with a single JSON object and nothing else. No prose, no markdown.
The object must contain exactly these fields:
  "language": BCP 47 tag of the reply language
  "reply": the reply text
  "reply_zh": the reply rendered in %s, or "" when the reply is already in it`

// Adapter implements core.Triager on top of any text completion provider.
// One call per operation, no internal retry; the caller decides what a
// failure means.
type Adapter struct {
	completer   core.TextCompleter
	logger      *zap.Logger
	maxBodySize int
	timeout     time.Duration
	replyLocale language.Tag
	matcher     language.Matcher
}

func New(completer core.TextCompleter, logger *zap.Logger, maxBodySize int, timeout time.Duration, replyLocale string) (*Adapter, error) {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}
	if replyLocale == "" {
		replyLocale = "zh"
	}
	tag, err := language.Parse(replyLocale)
	if err != nil {
		return nil, &core.ConfigError{Missing: []string{"ai.reply_locale"}}
	}
	return &Adapter{
		completer:   completer,
		logger:      logger,
		maxBodySize: maxBodySize,
		timeout:     timeout,
		replyLocale: tag,
		matcher:     language.NewMatcher([]language.Tag{tag}),
	}, nil
}

// payload serializes the message fields the model needs, with the body
// truncated to keep prompts bounded. The cut backs up to a rune boundary so
// multibyte text never reaches the encoder as invalid UTF-8.
func (a *Adapter) payload(msg *core.MessageRecord) string {
	body := msg.BodyText
	if len(body) > a.maxBodySize {
		cut := a.maxBodySize
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + "\n[truncated]"
	}
	doc, err := json.Marshal(map[string]string{
		"subject":   msg.Subject,
		"from":      msg.From,
		"date":      msg.Date,
		"snippet":   msg.Snippet,
		"body_text": body,
	})
	if err != nil {
		return msg.Subject
	}
	return string(doc)
}

// completeJSON runs one completion and extracts the JSON object span. A
// provider that hangs is cut off by the configured timeout and surfaces as
// the same TransportError as any other provider failure.
func (a *Adapter) completeJSON(ctx context.Context, system string, msg *core.MessageRecord) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	text, err := a.completer.Complete(ctx, system, a.payload(msg))
	if err != nil {
		return "", &core.TransportError{
			Snippet: core.RedactSecrets(core.Snippet(err.Error(), errorSnippetLimit)),
			Err:     err,
		}
	}
	span, ok := ExtractJSONObject(text)
	if !ok {
		return "", &core.FormatError{
			Msg: "no JSON object in completion: " + core.RedactSecrets(core.Snippet(text, errorSnippetLimit)),
		}
	}
	return span, nil
}

// ClassifyMessage asks the model whether the message needs action and maps
// the answer onto a pending/ignore decision.
func (a *Adapter) ClassifyMessage(ctx context.Context, msg *core.MessageRecord) (*core.AIVerdict, error) {
	span, err := a.completeJSON(ctx, classifySystemPrompt, msg)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Result     string   `json:"result"`
		Confidence string   `json:"confidence"`
		Reason     string   `json:"reason"`
		Signals    []string `json:"signals"`
	}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, &core.FormatError{Msg: "unparseable classification JSON: " + err.Error()}
	}
	if strings.TrimSpace(parsed.Result) == "" {
		return nil, &core.FormatError{Msg: "classification is missing the result field"}
	}

	decision := core.StatusPending
	if strings.EqualFold(strings.TrimSpace(parsed.Result), "no action needed") {
		decision = core.StatusIgnore
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(span), &raw); err != nil {
		raw = nil
	}

	a.logger.Debug("Classified message",
		zap.String("email_id", msg.ID),
		zap.String("decision", string(decision)),
		zap.String("confidence", parsed.Confidence))
	return &core.AIVerdict{
		Decision:   decision,
		Confidence: parsed.Confidence,
		Reason:     parsed.Reason,
		Signals:    parsed.Signals,
		Raw:        raw,
	}, nil
}

// DraftTicket asks the model for a ticket proposal. Labels are trimmed and
// deduplicated preserving order; an empty summary falls back to the subject.
func (a *Adapter) DraftTicket(ctx context.Context, msg *core.MessageRecord) (*core.TicketProposal, error) {
	span, err := a.completeJSON(ctx, ticketSystemPrompt, msg)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Summary     string   `json:"summary"`
		Description string   `json:"description"`
		Labels      []string `json:"labels"`
	}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, &core.FormatError{Msg: "unparseable ticket JSON: " + err.Error()}
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		summary = strings.TrimSpace(msg.Subject)
	}
	if summary == "" {
		summary = "(no subject)"
	}

	seen := make(map[string]bool)
	var labels []string
	for _, l := range parsed.Labels {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		labels = append(labels, l)
	}

	return &core.TicketProposal{
		Summary:     summary,
		Description: strings.TrimSpace(parsed.Description),
		Labels:      labels,
	}, nil
}

// DraftReply asks the model for a reply proposal. A blank reply is an error;
// the target-locale rendering is dropped when the reply already is in the
// target locale.
func (a *Adapter) DraftReply(ctx context.Context, msg *core.MessageRecord) (*core.ReplyProposal, error) {
	system := strings.Replace(replySystemPrompt, "%s", a.replyLocale.String(), 1)
	span, err := a.completeJSON(ctx, system, msg)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Language string `json:"language"`
		Reply    string `json:"reply"`
		ReplyZH  string `json:"reply_zh"`
	}
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		return nil, &core.FormatError{Msg: "unparseable reply JSON: " + err.Error()}
	}

	reply := strings.TrimSpace(parsed.Reply)
	if reply == "" {
		return nil, core.ErrEmptyReply
	}

	replyZH := strings.TrimSpace(parsed.ReplyZH)
	if a.isTargetLocale(parsed.Language) {
		replyZH = ""
	}

	return &core.ReplyProposal{
		Language: strings.TrimSpace(parsed.Language),
		Reply:    reply,
		ReplyZH:  replyZH,
	}, nil
}

func (a *Adapter) isTargetLocale(lang string) bool {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		return false
	}
	_, _, confidence := a.matcher.Match(tag)
	return confidence >= language.High
}
