package memstore_test

import (
	"context"
	"testing"
	"time"

	"pharmacy/internal/adapters/out/memstore"
	"pharmacy/internal/core/domain/model/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func purchase(patientID, medicineID, name string, purchased time.Time, supplyDays int) history.PurchaseRecord {
	return history.PurchaseRecord{
		OrderID:      "ORD-20260101-ABC123",
		PatientID:    patientID,
		MedicineID:   medicineID,
		MedicineName: name,
		Quantity:     30,
		PurchaseDate: purchased,
		SupplyDays:   supplyDays,
	}
}

func TestHistoryStoreRefillCandidates(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should derive days remaining from the last purchase", func(t *testing.T) {
		store := memstore.NewHistoryStore([]history.PurchaseRecord{
			purchase("P001", "MED001", "Paracetamol", asOf.AddDate(0, 0, -25), 30),
		})

		candidates, err := store.RefillCandidates(ctx, "P001", asOf)

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, 5, candidates[0].DaysRemaining)
	})

	t.Run("should exclude medications with more than fourteen days of supply", func(t *testing.T) {
		store := memstore.NewHistoryStore([]history.PurchaseRecord{
			purchase("P001", "MED001", "Paracetamol", asOf.AddDate(0, 0, -5), 30),
		})

		candidates, err := store.RefillCandidates(ctx, "P001", asOf)

		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("should use only the most recent purchase per medication", func(t *testing.T) {
		store := memstore.NewHistoryStore([]history.PurchaseRecord{
			purchase("P001", "MED001", "Paracetamol", asOf.AddDate(0, 0, -60), 30),
			purchase("P001", "MED001", "Paracetamol", asOf.AddDate(0, 0, -20), 30),
		})

		candidates, err := store.RefillCandidates(ctx, "P001", asOf)

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, 10, candidates[0].DaysRemaining)
	})

	t.Run("should allow negative days remaining for exhausted supplies", func(t *testing.T) {
		store := memstore.NewHistoryStore([]history.PurchaseRecord{
			purchase("P001", "MED002", "Metformin", asOf.AddDate(0, 0, -40), 30),
		})

		candidates, err := store.RefillCandidates(ctx, "P001", asOf)

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, -10, candidates[0].DaysRemaining)
	})

	t.Run("should only consider the requested patient", func(t *testing.T) {
		store := memstore.NewHistoryStore([]history.PurchaseRecord{
			purchase("P002", "MED001", "Paracetamol", asOf.AddDate(0, 0, -25), 30),
		})

		candidates, err := store.RefillCandidates(ctx, "P001", asOf)

		require.NoError(t, err)
		assert.Empty(t, candidates)
	})
}

func TestHistoryStoreAppendPurchase(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should make new purchases visible to refill queries", func(t *testing.T) {
		store := memstore.NewHistoryStore(nil)

		err := store.AppendPurchase(ctx, purchase("P001", "MED001", "Paracetamol", asOf, 30))
		require.NoError(t, err)

		candidates, err := store.RefillCandidates(ctx, "P001", asOf.AddDate(0, 0, 28))
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, 2, candidates[0].DaysRemaining)
	})

	t.Run("should count rows per patient", func(t *testing.T) {
		store := memstore.NewHistoryStore([]history.PurchaseRecord{
			purchase("P001", "MED001", "Paracetamol", asOf, 30),
			purchase("P001", "MED002", "Metformin", asOf, 30),
			purchase("P002", "MED001", "Paracetamol", asOf, 30),
		})

		count, err := store.RecentOrderCount(ctx, "P001")
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
