package jobs

import (
	"fmt"
	"log/slog"

	"pharmacy/internal/core/ports"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	refillSweepJob *RefillSweepJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	patients ports.PatientGateway,
	history ports.HistoryGateway,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		refillSweepJob: NewRefillSweepJob(patients, history, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.refillSweepJob.Start(); err != nil {
		return fmt.Errorf("failed to start refill sweep job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.refillSweepJob.Stop()
}
