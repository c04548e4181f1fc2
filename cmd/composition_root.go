package cmd

import (
	"log/slog"
	"os"
	"time"

	adapterhttp "pharmacy/internal/adapters/in/http"
	"pharmacy/internal/adapters/out/llm"
	"pharmacy/internal/adapters/out/memstore"
	"pharmacy/internal/adapters/out/notify"
	"pharmacy/internal/core/application/fulfillment"
	"pharmacy/internal/core/application/orchestrator"
	"pharmacy/internal/jobs"
)

// CompositionRoot wires the whole object graph: seeded in-memory stores,
// outbound adapters, application services, jobs and the HTTP server.
type CompositionRoot struct {
	catalog  *memstore.CatalogStore
	patients *memstore.PatientStore
	history  *memstore.HistoryStore

	orders       *fulfillment.Manager
	orchestrator *orchestrator.Orchestrator

	server     *adapterhttp.Server
	jobManager *jobs.JobManager
}

func NewCompositionRoot(configs Config) CompositionRoot {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	catalog := memstore.NewCatalogStore(memstore.SeedMedicines())
	patients := memstore.NewPatientStore(memstore.SeedPatients())
	history := memstore.NewHistoryStore(memstore.SeedPurchases(time.Now()))

	classifier := llm.NewClient(
		configs.LLMBaseURL, configs.LLMAPIKey,
		configs.IntentModel, configs.ExtractionModel,
		logger)
	notifier := notify.NewWebhookNotifier(configs.WarehouseWebhookURL)

	orders := fulfillment.NewManager(notifier, logger)
	orch := orchestrator.NewOrchestrator(
		patients, history, catalog,
		classifier, classifier,
		orders, logger)

	return CompositionRoot{
		catalog:      catalog,
		patients:     patients,
		history:      history,
		orders:       orders,
		orchestrator: orch,
		server:       adapterhttp.NewServer(orch, orders, patients, history, catalog),
		jobManager:   jobs.NewJobManager(patients, history, logger),
	}
}

// Server returns the HTTP server with all handlers wired.
func (c *CompositionRoot) Server() *adapterhttp.Server {
	return c.server
}

// JobManager returns the scheduled-job manager.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	return c.jobManager
}
