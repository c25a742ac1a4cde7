package core

import "context"

// Scope selects which pending messages PickNext considers.
type Scope string

const (
	// ScopeCandidate prefers triaged messages whose classification is
	// actionable, falling back to any pending message.
	ScopeCandidate Scope = "candidate"
	// ScopePending takes the newest pending message regardless of triage.
	ScopePending Scope = "pending"
)

// IsCandidate reports whether a triage artifact is worth a tracker ticket:
// bugs, feature requests and account issues. Questions and noise are not
// candidates, and neither is an untriaged message.
func IsCandidate(artifact *TriageArtifact) bool {
	if artifact == nil {
		return false
	}
	switch artifact.Classification {
	case ClassBug, ClassFeatureRequest, ClassAccountSupport:
		return true
	default:
		return false
	}
}

// Picker chooses the next message to work on.
type Picker struct {
	store   DocumentStore
	states  *StateMachine
	builder *Builder
}

func NewPicker(store DocumentStore, states *StateMachine, builder *Builder) *Picker {
	return &Picker{store: store, states: states, builder: builder}
}

// PickNext scans email documents newest-first and returns the id of the
// first pending message matching the scope, or "" when nothing qualifies.
// Candidacy is evaluated fresh on every call; nothing is cached.
func (p *Picker) PickNext(ctx context.Context, scope Scope) (string, error) {
	ids, err := p.store.List(ctx, CollectionEmails)
	if err != nil {
		return "", err
	}

	firstPending := ""
	for _, id := range ids {
		if p.states.ProcessingStatus(ctx, id) != StatusPending {
			continue
		}
		if scope == ScopePending {
			return id, nil
		}
		if firstPending == "" {
			firstPending = id
		}
		artifact, err := p.builder.LoadArtifact(ctx, id)
		if err != nil {
			continue
		}
		if IsCandidate(artifact) {
			return id, nil
		}
	}
	// No triaged candidate: fall back to the newest pending message so the
	// queue never stalls on untriaged mail.
	return firstPending, nil
}
