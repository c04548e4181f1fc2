// Package jobs provides scheduled background tasks for the pharmacy system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required by the service.
//
// # Available Jobs
//
// 1. RefillSweepJob - Runs hourly to recompute refill predictions across all
// patients and log the resulting alerts, most urgent first
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required gateways
//	jobManager := jobs.NewJobManager(patientStore, historyStore, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// The sweep logs per-patient history failures and keeps going; a failure to
// list patients aborts that run only. Failed job starts return an error to
// the caller so startup can abort cleanly.
package jobs
