package memstore

import (
	"context"
	"sync"
	"time"

	"pharmacy/internal/core/domain/model/history"
)

// refillDueWindowDays is the supply horizon a medication must fall within
// to count as due for refill.
const refillDueWindowDays = 14

// HistoryStore is the in-memory purchase-history gateway. It holds one row
// per purchased order line and derives refill candidates from the most
// recent purchase of each medication.
type HistoryStore struct {
	mu      sync.RWMutex
	records []history.PurchaseRecord
}

// NewHistoryStore creates a history store seeded with the given purchase
// records.
func NewHistoryStore(records []history.PurchaseRecord) *HistoryStore {
	s := &HistoryStore{records: make([]history.PurchaseRecord, len(records))}
	copy(s.records, records)
	return s
}

// RefillCandidates returns one supply snapshot per medication of the
// patient, limited to medications with at most 14 days of supply remaining
// as of the given date. Days remaining is supply days minus the days
// elapsed since the last purchase and may be negative.
func (s *HistoryStore) RefillCandidates(
	_ context.Context, patientID string, asOf time.Time,
) ([]history.RefillCandidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[string]history.PurchaseRecord)
	var medicineOrder []string
	for _, rec := range s.records {
		if rec.PatientID != patientID {
			continue
		}
		prev, seen := latest[rec.MedicineID]
		if !seen {
			medicineOrder = append(medicineOrder, rec.MedicineID)
		}
		if !seen || rec.PurchaseDate.After(prev.PurchaseDate) {
			latest[rec.MedicineID] = rec
		}
	}

	var candidates []history.RefillCandidate
	for _, medicineID := range medicineOrder {
		rec := latest[medicineID]
		elapsed := int(asOf.Sub(rec.PurchaseDate).Hours() / 24)
		daysRemaining := rec.SupplyDays - elapsed
		if daysRemaining > refillDueWindowDays {
			continue
		}
		candidates = append(candidates, history.RefillCandidate{
			MedicineID:       rec.MedicineID,
			MedicineName:     rec.MedicineName,
			Dosage:           rec.Dosage,
			LastQuantity:     rec.Quantity,
			LastPurchaseDate: rec.PurchaseDate,
			SupplyDays:       rec.SupplyDays,
			DaysRemaining:    daysRemaining,
		})
	}
	return candidates, nil
}

// RecentOrderCount returns how many history rows the patient has. The
// orchestrator forwards the count in the patient context block sent
// upstream.
func (s *HistoryStore) RecentOrderCount(_ context.Context, patientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, rec := range s.records {
		if rec.PatientID == patientID {
			count++
		}
	}
	return count, nil
}

// AppendPurchase records a confirmed order line so later refill queries see
// the new supply.
func (s *HistoryStore) AppendPurchase(_ context.Context, record history.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return nil
}
