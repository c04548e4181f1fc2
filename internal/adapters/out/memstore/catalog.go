package memstore

import (
	"context"
	"strings"
	"sync"

	"pharmacy/internal/core/domain/model/medicine"
	"pharmacy/internal/core/ports"
	"pharmacy/internal/pkg/errs"
)

// CatalogStore is the in-memory catalog gateway. Items are kept in insertion
// order so searches return deterministic results. All stock mutation goes
// through DecrementStock under the store lock, which makes the
// read-modify-write atomic per call and rules out lost updates between
// concurrent confirmations.
type CatalogStore struct {
	mu    sync.RWMutex
	items map[string]medicine.Medicine
	order []string
}

// NewCatalogStore creates a catalog store seeded with the given medicines.
func NewCatalogStore(items []medicine.Medicine) *CatalogStore {
	s := &CatalogStore{
		items: make(map[string]medicine.Medicine, len(items)),
		order: make([]string, 0, len(items)),
	}
	for _, item := range items {
		if _, exists := s.items[item.ID()]; !exists {
			s.order = append(s.order, item.ID())
		}
		s.items[item.ID()] = item
	}
	return s
}

// SearchByName returns all medicines whose name contains the query,
// case-insensitive, in catalog order.
func (s *CatalogStore) SearchByName(_ context.Context, query string) ([]medicine.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	var matches []medicine.Medicine
	for _, id := range s.order {
		item := s.items[id]
		if strings.Contains(strings.ToLower(item.Name()), needle) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}

// GetByID returns the medicine with the given id.
func (s *CatalogStore) GetByID(_ context.Context, id string) (medicine.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return medicine.Medicine{}, errs.NewObjectNotFoundError("medicineId", id)
	}
	return item, nil
}

// DecrementStock atomically reduces stock for a medicine. The decrement is
// all-or-nothing: when fewer than quantity units remain the stock is left
// untouched and false is returned.
func (s *CatalogStore) DecrementStock(_ context.Context, id string, quantity int) (bool, error) {
	if quantity <= 0 {
		return false, errs.NewValueIsInvalidError("quantity")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return false, errs.NewObjectNotFoundError("medicineId", id)
	}
	if item.StockLevel() < quantity {
		return false, nil
	}

	s.items[id] = item.WithStockLevel(item.StockLevel() - quantity)
	return true, nil
}

// ListAll returns every catalog entry in catalog order.
func (s *CatalogStore) ListAll(_ context.Context) ([]medicine.Medicine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]medicine.Medicine, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.items[id])
	}
	return all, nil
}

// Stats summarizes the catalog for the dashboard endpoint.
func (s *CatalogStore) Stats(_ context.Context) (ports.InventoryStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := ports.InventoryStats{TotalMedicines: len(s.items)}
	for _, item := range s.items {
		if item.StockLevel() == 0 {
			stats.OutOfStock++
		}
		if item.Discontinued() {
			stats.Discontinued++
		}
		if item.ControlledSubstance() {
			stats.ControlledSubstances++
		}
	}
	return stats, nil
}
