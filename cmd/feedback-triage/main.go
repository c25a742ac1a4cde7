package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/supportops/feedback-triage/internal/adapters/mailbox"
	"github.com/supportops/feedback-triage/internal/config"
	"github.com/supportops/feedback-triage/internal/di"
	"github.com/supportops/feedback-triage/internal/jobs"
)

func main() {
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Failed to run application: %v\n", err)
		os.Exit(1)
	}
}

func run(
	cfg *config.Config,
	logger *zap.Logger,
	ingest *mailbox.SMTPIngest,
	scheduler *jobs.Scheduler,
) error {
	defer logger.Sync()

	logger.Info("Feedback triage service starting")

	ingestEnabled := cfg.GetIngest().Enabled
	if ingestEnabled {
		if err := ingest.Start(); err != nil {
			return fmt.Errorf("starting SMTP ingest: %w", err)
		}
	}

	fetchEnabled := cfg.GetJobs().FetchEnabled
	if fetchEnabled {
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("starting fetch scheduler: %w", err)
		}
	}

	if !ingestEnabled && !fetchEnabled {
		logger.Warn("Neither SMTP ingest nor the fetch scheduler is enabled; nothing to do")
	}

	// Wait for termination signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))

	if fetchEnabled {
		if err := scheduler.Stop(); err != nil {
			logger.Error("Failed to stop fetch scheduler", zap.Error(err))
		}
	}
	if ingestEnabled {
		if err := ingest.Stop(); err != nil {
			logger.Error("Failed to stop SMTP ingest", zap.Error(err))
		}
	}

	logger.Info("Feedback triage service stopped")
	return nil
}
