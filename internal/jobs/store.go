package jobs

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind names a job type.
type Kind string

const (
	KindFetch    Kind = "fetch"
	KindClassify Kind = "classify"
	KindTriage   Kind = "triage"
)

// ItemResult is the outcome of one message within a job. Failures are
// recorded inline and the job keeps going.
type ItemResult struct {
	EmailID string `json:"email_id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// Job tracks the progress of one background run. Callers poll Snapshot;
// the running goroutine owns the mutations.
type Job struct {
	ID   string
	Kind Kind

	mu         sync.Mutex
	total      int
	done       int
	err        string
	results    []ItemResult
	startedAt  time.Time
	finishedAt time.Time
	doneCh     chan struct{}
}

// Snapshot is a point-in-time copy of a job's progress.
type Snapshot struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"kind"`
	Total      int          `json:"total"`
	Done       int          `json:"done"`
	Finished   bool         `json:"finished"`
	Error      string       `json:"error,omitempty"`
	Results    []ItemResult `json:"results,omitempty"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at,omitempty"`
}

func newJob(kind Kind) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		startedAt: time.Now(),
		doneCh:    make(chan struct{}),
	}
}

// SetTotal records how many items the job will process.
func (j *Job) SetTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.total = n
}

// AddTotal extends the item count when a later phase adds work, so done
// never reads as total while a phase is still running.
func (j *Job) AddTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.total += n
}

// Advance records the outcome of one item.
func (j *Job) Advance(res ItemResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done++
	j.results = append(j.results, res)
}

// Finish marks the job complete, with err as the job-level failure if any.
func (j *Job) Finish(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.finishedAt.IsZero() {
		return
	}
	if err != nil {
		j.err = err.Error()
	}
	j.finishedAt = time.Now()
	close(j.doneCh)
}

// Done returns a channel closed when the job finishes.
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}

// Snapshot copies the current progress.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	results := make([]ItemResult, len(j.results))
	copy(results, j.results)
	return Snapshot{
		ID:         j.ID,
		Kind:       j.Kind,
		Total:      j.total,
		Done:       j.done,
		Finished:   !j.finishedAt.IsZero(),
		Error:      j.err,
		Results:    results,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
	}
}

// Store keeps jobs addressable by id for progress polling.
type Store interface {
	Put(job *Job)
	Get(id string) (*Job, bool)
}

// MemoryStore is the in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

func (s *MemoryStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *MemoryStore) Get(id string) (*Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	return job, ok
}
