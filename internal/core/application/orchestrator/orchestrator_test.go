package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"pharmacy/internal/core/application/fulfillment"
	"pharmacy/internal/core/application/orchestrator"
	"pharmacy/internal/core/domain/model/conversation"
	"pharmacy/internal/core/domain/model/history"
	"pharmacy/internal/core/domain/model/medicine"
	"pharmacy/internal/core/domain/model/order"
	"pharmacy/internal/core/domain/model/patient"
	"pharmacy/internal/core/ports"
	"pharmacy/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classifierFunc scripts intent classification per message.
type classifierFunc func(message string) (conversation.IntentResult, error)

func (f classifierFunc) ClassifyIntent(
	_ context.Context, message string, _ conversation.PatientContext, _ []conversation.Message,
) (conversation.IntentResult, error) {
	return f(message)
}

// keywordClassifier routes on simple keywords the way the scripted
// conversations in these tests phrase their turns.
func keywordClassifier() classifierFunc {
	return func(message string) (conversation.IntentResult, error) {
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "confirm"):
			return conversation.IntentResult{Intent: conversation.IntentConfirmOrder, Confidence: 0.95}, nil
		case strings.Contains(lower, "cancel"):
			return conversation.IntentResult{Intent: conversation.IntentCancelOrder, Confidence: 0.95}, nil
		case strings.Contains(lower, "refill"):
			return conversation.IntentResult{Intent: conversation.IntentRefillCheck, Confidence: 0.9}, nil
		case strings.Contains(lower, "status"):
			return conversation.IntentResult{Intent: conversation.IntentStatusCheck, Confidence: 0.9}, nil
		case strings.Contains(lower, "order") || strings.Contains(lower, "need"):
			return conversation.IntentResult{Intent: conversation.IntentOrder, Confidence: 0.9}, nil
		default:
			return conversation.IntentResult{
				Intent:        conversation.IntentGeneralInquiry,
				Confidence:    0.8,
				ResponseDraft: "Hello John Smith! How can I help you today?",
			}, nil
		}
	}
}

// extractorStub returns a fixed extraction for every call.
type extractorStub struct {
	result conversation.ExtractionResult
	err    error
}

func (s *extractorStub) ExtractEntities(
	_ context.Context, _ string, _ conversation.PatientContext, _ []conversation.Message,
) (conversation.ExtractionResult, error) {
	return s.result, s.err
}

type fakePatients struct {
	patients map[string]patient.Patient
}

func (f *fakePatients) GetByID(_ context.Context, id string) (patient.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return patient.Patient{}, errs.NewObjectNotFoundError("patientId", id)
	}
	return p, nil
}

func (f *fakePatients) ListAll(_ context.Context) ([]patient.Patient, error) {
	all := make([]patient.Patient, 0, len(f.patients))
	for _, p := range f.patients {
		all = append(all, p)
	}
	return all, nil
}

type fakeHistory struct {
	mu         sync.Mutex
	candidates []history.RefillCandidate
	appended   []history.PurchaseRecord
}

func (f *fakeHistory) RefillCandidates(_ context.Context, _ string, _ time.Time) ([]history.RefillCandidate, error) {
	return f.candidates, nil
}

func (f *fakeHistory) RecentOrderCount(_ context.Context, _ string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.appended), nil
}

func (f *fakeHistory) AppendPurchase(_ context.Context, record history.PurchaseRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, record)
	return nil
}

func (f *fakeHistory) appendedRecords() []history.PurchaseRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]history.PurchaseRecord, len(f.appended))
	copy(out, f.appended)
	return out
}

type fakeCatalog struct {
	mu   sync.Mutex
	meds []medicine.Medicine
}

func (f *fakeCatalog) SearchByName(_ context.Context, query string) ([]medicine.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	needle := strings.ToLower(query)
	var matches []medicine.Medicine
	for _, m := range f.meds {
		if strings.Contains(strings.ToLower(m.Name()), needle) {
			matches = append(matches, m)
		}
	}
	return matches, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id string) (medicine.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, m := range f.meds {
		if m.ID() == id {
			return m, nil
		}
	}
	return medicine.Medicine{}, errs.NewObjectNotFoundError("medicineId", id)
}

func (f *fakeCatalog) DecrementStock(_ context.Context, id string, quantity int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, m := range f.meds {
		if m.ID() != id {
			continue
		}
		if m.StockLevel() < quantity {
			return false, nil
		}
		f.meds[i] = m.WithStockLevel(m.StockLevel() - quantity)
		return true, nil
	}
	return false, errs.NewObjectNotFoundError("medicineId", id)
}

func (f *fakeCatalog) ListAll(_ context.Context) ([]medicine.Medicine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]medicine.Medicine, len(f.meds))
	copy(out, f.meds)
	return out, nil
}

func (f *fakeCatalog) Stats(_ context.Context) (ports.InventoryStats, error) {
	return ports.InventoryStats{}, nil
}

func (f *fakeCatalog) stockOf(t *testing.T, id string) int {
	t.Helper()
	m, err := f.GetByID(context.Background(), id)
	require.NoError(t, err)
	return m.StockLevel()
}

type noopNotifier struct{}

func (noopNotifier) NotifyFulfillment(_ context.Context, _ ports.FulfillmentRequest) error {
	return nil
}

type fixture struct {
	orchestrator *orchestrator.Orchestrator
	orders       *fulfillment.Manager
	catalog      *fakeCatalog
	history      *fakeHistory
	extractor    *extractorStub
}

func newFixture(t *testing.T, classifier ports.IntentClassifier, extraction conversation.ExtractionResult) *fixture {
	t.Helper()

	paracetamol, err := medicine.NewMedicine("MED001", "Paracetamol", "500mg", "Tablet",
		500, false, "Pain Relief", false, 100, false)
	require.NoError(t, err)
	metformin500, err := medicine.NewMedicine("MED002", "Metformin", "500mg", "Tablet",
		300, true, "Diabetes", false, 90, false)
	require.NoError(t, err)
	metformin850, err := medicine.NewMedicine("MED013", "Metformin", "850mg", "Tablet",
		200, true, "Diabetes", false, 90, false)
	require.NoError(t, err)
	ranitidine, err := medicine.NewMedicine("MED012", "Ranitidine", "150mg", "Tablet",
		50, false, "Gastro", true, 60, false)
	require.NoError(t, err)

	p, err := patient.NewPatient("P001", "John Smith", "john@example.com", "+1-555-0101")
	require.NoError(t, err)

	catalog := &fakeCatalog{meds: []medicine.Medicine{paracetamol, metformin500, metformin850, ranitidine}}
	hist := &fakeHistory{}
	extractor := &extractorStub{result: extraction}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orders := fulfillment.NewManager(noopNotifier{}, logger)

	return &fixture{
		orchestrator: orchestrator.NewOrchestrator(
			&fakePatients{patients: map[string]patient.Patient{"P001": p}},
			hist, catalog, classifier, extractor, orders, logger),
		orders:    orders,
		catalog:   catalog,
		history:   hist,
		extractor: extractor,
	}
}

// waitForDispatch blocks until the detached post-confirmation dispatch has
// appended its final timeline event, so assertions on the order afterwards
// never overlap with the background goroutine.
func (f *fixture) waitForDispatch(t *testing.T, orderID string) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, event := range f.orders.Timeline(orderID) {
			if event.Action == "Notifications Sent" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func singleEntity(name, dosage string, quantity int) conversation.ExtractionResult {
	return conversation.ExtractionResult{
		Entities: []conversation.ExtractedEntity{
			{Medicine: name, Dosage: dosage, Quantity: quantity, Confidence: 0.95},
		},
	}
}

func TestHandlePatientResolution(t *testing.T) {
	t.Run("should reply with a clarification for an unknown patient", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(context.Background(), orchestrator.Request{
			PatientID: "P999", Message: "hello",
		})

		assert.Contains(t, reply.Message, "couldn't find your patient record")
	})
}

func TestHandleIntentRouting(t *testing.T) {
	t.Run("should pass the response draft through for general inquiries", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(context.Background(), orchestrator.Request{
			PatientID: "P001", Message: "hello there",
		})

		assert.Equal(t, conversation.IntentGeneralInquiry, reply.Intent)
		assert.Contains(t, reply.Message, "John Smith")
	})

	t.Run("should degrade to a general inquiry when classification fails", func(t *testing.T) {
		failing := classifierFunc(func(string) (conversation.IntentResult, error) {
			return conversation.IntentResult{}, errs.NewUpstreamUnavailableErrorWithCause("llm", errors.New("timeout"))
		})
		f := newFixture(t, failing, conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(context.Background(), orchestrator.Request{
			PatientID: "P001", Message: "I need paracetamol",
		})

		assert.Equal(t, conversation.IntentGeneralInquiry, reply.Intent)
		assert.Contains(t, reply.Message, "apologize")
	})
}

func TestHandleOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("should build a preview with the default quantity", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 0))

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need some paracetamol",
		})

		assert.True(t, reply.RequiresConfirmation)
		require.NotNil(t, reply.Preview)
		require.Len(t, reply.Preview.Items(), 1)
		assert.Equal(t, 30, reply.Preview.Items()[0].Quantity)
		assert.InDelta(t, 4.50, reply.Preview.TotalAmount(), 0.001)
		assert.Contains(t, reply.Message, "Paracetamol 500mg x30")
		assert.Contains(t, reply.Message, "confirm")
	})

	t.Run("should prefer the catalog entry matching the requested dosage", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Metformin", "850mg", 60))

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need metformin 850mg",
		})

		require.NotNil(t, reply.Preview)
		assert.Equal(t, "MED013", reply.Preview.Items()[0].MedicineID)
	})

	t.Run("should take the first search result when no dosage matches", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Metformin", "9000mg", 60))

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need metformin",
		})

		require.NotNil(t, reply.Preview)
		assert.Equal(t, "MED002", reply.Preview.Items()[0].MedicineID)
	})

	t.Run("should relay a clarification request from the extractor", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{
			NeedsClarification:   true,
			ClarificationMessage: "Which strength of Metformin do you need?",
		})

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need metformin",
		})

		assert.Equal(t, "Which strength of Metformin do you need?", reply.Message)
		assert.Nil(t, reply.Preview)
	})

	t.Run("should ask for a medicine when extraction finds none", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need something",
		})

		assert.Contains(t, reply.Message, "couldn't identify any medications")
	})

	t.Run("should name the requested medicine when nothing matches the catalog", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Unobtainium", "", 10))

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need unobtainium",
		})

		assert.Contains(t, reply.Message, "'Unobtainium'")
		assert.Nil(t, reply.Preview)
	})

	t.Run("should refuse a rejected order without creating a preview", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Ranitidine", "", 10))

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need ranitidine",
		})

		assert.Contains(t, reply.Message, "cannot process this order")
		assert.Contains(t, reply.Message, "discontinued")
		assert.Nil(t, reply.Preview)

		confirm := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})
		assert.Contains(t, confirm.Message, "don't see any pending order")
	})

	t.Run("should replace a prior pending preview", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 10))

		first := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need paracetamol",
		})
		require.NotNil(t, first.Preview)

		f.extractor.result = singleEntity("Metformin", "500mg", 20)
		second := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "actually I need metformin",
		})
		require.NotNil(t, second.Preview)
		assert.NotEqual(t, first.Preview.ID(), second.Preview.ID())
		assert.Equal(t, "MED002", second.Preview.Items()[0].MedicineID)
	})
}

func TestHandleConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("should reply nothing-to-confirm without a pending preview", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})

		assert.Contains(t, reply.Message, "don't see any pending order")
	})

	t.Run("should drive the full confirmation pipeline", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 20))

		f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need paracetamol",
		})
		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})

		require.NotNil(t, reply.Order)
		f.waitForDispatch(t, reply.Order.ID())
		assert.Equal(t, order.StatusProcessing, reply.Order.Status())
		assert.Contains(t, reply.Message, "Order Confirmed!")
		assert.Contains(t, reply.Message, reply.Order.ID())
		assert.Contains(t, reply.Message, "Receipt #: RCP-")
		// 3.00 subtotal, 0.15 tax, 2.00 delivery
		assert.Contains(t, reply.Message, "Total: $5.15")

		assert.Equal(t, 480, f.catalog.stockOf(t, "MED001"))

		records := f.history.appendedRecords()
		require.Len(t, records, 1)
		assert.Equal(t, reply.Order.ID(), records[0].OrderID)
		assert.Equal(t, 30, records[0].SupplyDays)

		events := f.orders.Timeline(reply.Order.ID())
		actions := make([]string, len(events))
		for i, event := range events {
			actions[i] = event.Action
		}
		assert.Contains(t, actions, "AI Safety Validation")
		assert.Contains(t, actions, "AI Order Confirmed")
		assert.Contains(t, actions, "Inventory Updated")
		assert.Contains(t, actions, "Fulfillment Initiated")

		again := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})
		assert.Contains(t, again.Message, "don't see any pending order")
	})

	t.Run("should block the order when stock ran out while pending", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 20))

		f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need paracetamol",
		})

		// Another confirmation consumed the stock in the meantime.
		drained, err := f.catalog.DecrementStock(ctx, "MED001", 490)
		require.NoError(t, err)
		require.True(t, drained)

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})

		assert.Contains(t, reply.Message, "went out of stock")
		require.NotNil(t, reply.Order)
		assert.Equal(t, order.StatusBlocked, reply.Order.Status())
		assert.Equal(t, 10, f.catalog.stockOf(t, "MED001"))

		again := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})
		assert.Contains(t, again.Message, "don't see any pending order")
	})
}

func TestHandleCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("should clear the pending preview", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 20))

		f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "I need paracetamol",
		})
		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "cancel",
		})
		assert.Contains(t, reply.Message, "has been cancelled")

		confirm := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "confirm",
		})
		assert.Contains(t, confirm.Message, "don't see any pending order")
	})

	t.Run("should be idempotent without a pending preview", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "cancel",
		})

		assert.Contains(t, reply.Message, "has been cancelled")
	})
}

func TestHandleRefillCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("should reassure when nothing is due", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "any refills due?",
		})

		assert.Contains(t, reply.Message, "don't have any refills due")
		assert.Empty(t, reply.RefillSuggestions)
	})

	t.Run("should render one annotated line per prediction", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})
		f.history.candidates = []history.RefillCandidate{
			{MedicineID: "MED001", MedicineName: "Paracetamol", DaysRemaining: 2,
				LastPurchaseDate: time.Now().AddDate(0, 0, -28), SupplyDays: 30},
			{MedicineID: "MED002", MedicineName: "Metformin", DaysRemaining: 6,
				LastPurchaseDate: time.Now().AddDate(0, 0, -24), SupplyDays: 30},
		}

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "check my refills please",
		})

		assert.Contains(t, reply.Message, "Paracetamol: 2 days remaining (refill soon)")
		assert.Contains(t, reply.Message, "Metformin: 6 days remaining (auto-refill eligible)")
		assert.Contains(t, reply.Message, "prepare a refill order")
		assert.Len(t, reply.RefillSuggestions, 2)
	})

	t.Run("should omit the follow-up offer without remind actions", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})
		f.history.candidates = []history.RefillCandidate{
			{MedicineID: "MED002", MedicineName: "Metformin", DaysRemaining: 6,
				LastPurchaseDate: time.Now().AddDate(0, 0, -24), SupplyDays: 30},
		}

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "check my refills please",
		})

		assert.NotContains(t, reply.Message, "prepare a refill order")
	})
}

func TestHandleStatusCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("should reply no-orders when the patient has none", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), conversation.ExtractionResult{})

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "what's my order status?",
		})

		assert.Contains(t, reply.Message, "don't have any recent orders")
	})

	t.Run("should report the most recent order", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 20))

		f.orchestrator.Handle(ctx, orchestrator.Request{PatientID: "P001", Message: "I need paracetamol"})
		confirmed := f.orchestrator.Handle(ctx, orchestrator.Request{PatientID: "P001", Message: "confirm"})
		require.NotNil(t, confirmed.Order)
		f.waitForDispatch(t, confirmed.Order.ID())

		reply := f.orchestrator.Handle(ctx, orchestrator.Request{
			PatientID: "P001", Message: "what's my order status?",
		})

		require.NotNil(t, reply.Order)
		assert.Equal(t, confirmed.Order.ID(), reply.Order.ID())
		assert.Contains(t, reply.Message, confirmed.Order.ID())
		assert.Contains(t, reply.Message, "PROCESSING")
	})
}

func TestSessionIsolation(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep pending previews independent per session", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 10))

		f.orchestrator.Handle(ctx, orchestrator.Request{
			SessionID: "S1", PatientID: "P001", Message: "I need paracetamol",
		})

		otherSession := f.orchestrator.Handle(ctx, orchestrator.Request{
			SessionID: "S2", PatientID: "P001", Message: "confirm",
		})
		assert.Contains(t, otherSession.Message, "don't see any pending order")

		sameSession := f.orchestrator.Handle(ctx, orchestrator.Request{
			SessionID: "S1", PatientID: "P001", Message: "confirm",
		})
		assert.Contains(t, sameSession.Message, "Order Confirmed!")
	})

	t.Run("should serve many sessions concurrently", func(t *testing.T) {
		f := newFixture(t, keywordClassifier(), singleEntity("Paracetamol", "", 1))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			i := i
			wg.Add(1)
			go func() {
				defer wg.Done()
				sessionID := string(rune('A' + i))
				first := f.orchestrator.Handle(ctx, orchestrator.Request{
					SessionID: sessionID, PatientID: "P001", Message: "I need paracetamol",
				})
				assert.True(t, first.RequiresConfirmation)
				second := f.orchestrator.Handle(ctx, orchestrator.Request{
					SessionID: sessionID, PatientID: "P001", Message: "confirm",
				})
				assert.Contains(t, second.Message, "Order Confirmed!")
			}()
		}
		wg.Wait()

		assert.Len(t, f.orders.ListOrders(ctx), 20)
		assert.Equal(t, 480, f.catalog.stockOf(t, "MED001"))
	})
}
