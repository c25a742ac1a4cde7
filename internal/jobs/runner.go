package jobs

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/core"
)

// Runner executes the background flows. Each job is a single sequential
// loop; per-item failures are recorded inline and never abort the run.
type Runner struct {
	store   core.DocumentStore
	jobs    Store
	mailbox core.Mailbox
	triager core.Triager
	builder *core.Builder
	states  *core.StateMachine
	logger  *zap.Logger
}

func NewRunner(
	store core.DocumentStore,
	jobs Store,
	mailbox core.Mailbox,
	triager core.Triager,
	builder *core.Builder,
	states *core.StateMachine,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		store:   store,
		jobs:    jobs,
		mailbox: mailbox,
		triager: triager,
		builder: builder,
		states:  states,
		logger:  logger,
	}
}

// StartFetch launches a fetch job: list matching messages, download and
// store each as an email document.
func (r *Runner) StartFetch(ctx context.Context, query string, limit int) *Job {
	job := newJob(KindFetch)
	r.jobs.Put(job)
	go func() {
		_, err := r.runFetch(ctx, job, query, limit)
		job.Finish(err)
	}()
	return job
}

// StartFetchAndClassify launches a fetch job that also runs AI
// classification over every message it downloaded. Both phases count toward
// the job's total: one item per fetched message, one per classification.
func (r *Runner) StartFetchAndClassify(ctx context.Context, query string, limit int) *Job {
	job := newJob(KindClassify)
	r.jobs.Put(job)
	go func() {
		fetched, err := r.runFetch(ctx, job, query, limit)
		if err != nil {
			job.Finish(err)
			return
		}
		job.AddTotal(len(fetched))
		for _, id := range fetched {
			if err := r.classifyOne(ctx, id); err != nil {
				job.Advance(ItemResult{EmailID: id, Error: err.Error()})
				continue
			}
			job.Advance(ItemResult{EmailID: id, OK: true})
		}
		job.Finish(nil)
	}()
	return job
}

// StartTriage launches a heuristic triage job over stored email documents,
// newest-first, capped at limit when positive.
func (r *Runner) StartTriage(ctx context.Context, limit int) *Job {
	job := newJob(KindTriage)
	r.jobs.Put(job)
	go func() {
		job.Finish(r.runTriage(ctx, job, limit))
	}()
	return job
}

// runFetch downloads messages and returns the ids that were stored.
func (r *Runner) runFetch(ctx context.Context, job *Job, query string, limit int) ([]string, error) {
	ids, err := r.mailbox.List(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	job.SetTotal(len(ids))

	var fetched []string
	for _, id := range ids {
		msg, err := r.mailbox.Get(ctx, id)
		if err != nil {
			r.logger.Warn("Failed to fetch message",
				zap.String("email_id", id),
				zap.Error(err))
			job.Advance(ItemResult{EmailID: id, Error: err.Error()})
			continue
		}
		doc, err := json.MarshalIndent(msg, "", "  ")
		if err != nil {
			job.Advance(ItemResult{EmailID: id, Error: err.Error()})
			continue
		}
		if err := r.store.Save(ctx, core.CollectionEmails, msg.ID, doc); err != nil {
			job.Advance(ItemResult{EmailID: id, Error: err.Error()})
			continue
		}
		fetched = append(fetched, msg.ID)
		job.Advance(ItemResult{EmailID: msg.ID, OK: true})
	}
	return fetched, nil
}

// classifyOne runs AI classification for one stored message and ingests the
// verdict. An AI failure records a pending decision with the failure reason,
// so the message stays in the queue; the error is still returned so the job
// item carries it.
func (r *Runner) classifyOne(ctx context.Context, id string) error {
	msg, err := r.builder.LoadMessage(ctx, id)
	if err != nil {
		r.logger.Warn("Skipping classification, message unreadable",
			zap.String("email_id", id),
			zap.Error(err))
		return err
	}

	verdict, err := r.triager.ClassifyMessage(ctx, msg)
	if err != nil {
		r.logger.Warn("AI classification failed",
			zap.String("email_id", id),
			zap.Error(err))
		if _, ingestErr := r.states.IngestAIResult(ctx, id, core.StatusPending,
			"ai classification failed: "+err.Error(),
			map[string]any{"error": err.Error()},
		); ingestErr != nil {
			r.logger.Error("Failed to record classification failure",
				zap.String("email_id", id),
				zap.Error(ingestErr))
		}
		return err
	}

	if _, err := r.states.IngestAIResult(ctx, id, verdict.Decision, verdict.Reason, verdict.Raw); err != nil {
		r.logger.Error("Failed to ingest AI result",
			zap.String("email_id", id),
			zap.Error(err))
		return err
	}
	return nil
}

func (r *Runner) runTriage(ctx context.Context, job *Job, limit int) error {
	ids, err := r.store.List(ctx, core.CollectionEmails)
	if err != nil {
		return err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	job.SetTotal(len(ids))

	for _, id := range ids {
		if _, err := r.builder.Triage(ctx, id); err != nil {
			job.Advance(ItemResult{EmailID: id, Error: err.Error()})
			continue
		}
		job.Advance(ItemResult{EmailID: id, OK: true})
	}
	return nil
}
