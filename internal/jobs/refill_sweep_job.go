package jobs

import (
	"context"
	"log/slog"
	"time"

	"pharmacy/internal/core/domain/services"
	"pharmacy/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// RefillSweepJob periodically recomputes refill predictions across all
// patients and logs the resulting alerts. It is the proactive counterpart
// of the on-demand refill endpoints: the sweep surfaces due refills without
// waiting for a patient to ask.
type RefillSweepJob struct {
	patients  ports.PatientGateway
	history   ports.HistoryGateway
	predictor services.RefillPredictor
	cron      *cron.Cron
	logger    *slog.Logger
}

// NewRefillSweepJob creates the hourly refill sweep.
func NewRefillSweepJob(
	patients ports.PatientGateway,
	history ports.HistoryGateway,
	logger *slog.Logger,
) *RefillSweepJob {
	return &RefillSweepJob{
		patients:  patients,
		history:   history,
		predictor: services.NewRefillPredictor(),
		cron:      cron.New(),
		logger:    logger.With("component", "refill_sweep_job"),
	}
}

// Start schedules the sweep to run hourly.
func (j *RefillSweepJob) Start() error {
	_, err := j.cron.AddFunc("@hourly", j.sweep)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Refill sweep job started (running hourly)")
	return nil
}

// Stop stops the refill sweep job.
func (j *RefillSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Refill sweep job stopped")
}

// sweep runs one batch prediction pass over every patient.
func (j *RefillSweepJob) sweep() {
	ctx := context.Background()
	now := time.Now()

	patients, err := j.patients.ListAll(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Refill sweep failed to list patients", "error", err)
		return
	}

	var all []services.RefillPrediction
	for _, p := range patients {
		candidates, err := j.history.RefillCandidates(ctx, p.ID(), now)
		if err != nil {
			j.logger.ErrorContext(ctx, "Refill sweep failed to load history",
				"patient_id", p.ID(), "error", err)
			continue
		}
		all = append(all, j.predictor.Predict(p.ID(), p.Name(), candidates)...)
	}
	services.SortByUrgency(all)

	for _, prediction := range all {
		level := slog.LevelInfo
		if prediction.Urgency == services.UrgencyCritical {
			level = slog.LevelWarn
		}
		j.logger.Log(ctx, level, "Refill alert",
			"patient_id", prediction.PatientID,
			"medicine", prediction.Medicine,
			"days_remaining", prediction.DaysRemaining,
			"action", prediction.Action,
			"urgency", prediction.Urgency)
	}

	j.logger.InfoContext(ctx, "Refill sweep completed",
		"patients", len(patients), "alerts", len(all))
}
