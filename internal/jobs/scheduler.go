package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs a fetch-and-classify job on a fixed interval. One run at a
// time: a tick that fires while the previous job is still going waits for it.
type Scheduler struct {
	runner   *Runner
	interval time.Duration
	query    string
	limit    int
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(runner *Runner, interval time.Duration, query string, limit int, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		query:    query,
		limit:    limit,
		logger:   logger,
	}
}

// Start launches the periodic loop.
func (s *Scheduler) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.Info("Fetch scheduler starting",
		zap.Duration("interval", s.interval),
		zap.Int("limit", s.limit))

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job := s.runner.StartFetchAndClassify(ctx, s.query, s.limit)
				select {
				case <-job.Done():
					snap := job.Snapshot()
					s.logger.Info("Scheduled fetch finished",
						zap.String("job_id", snap.ID),
						zap.Int("done", snap.Done),
						zap.Int("total", snap.Total),
						zap.String("error", snap.Error))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return nil
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() error {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
	return nil
}
