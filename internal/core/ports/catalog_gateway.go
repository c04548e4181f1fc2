package ports

import (
	"context"

	"pharmacy/internal/core/domain/model/medicine"
)

// InventoryStats summarizes the catalog for the admin dashboard.
type InventoryStats struct {
	TotalMedicines       int `json:"total_medicines"`
	OutOfStock           int `json:"out_of_stock"`
	Discontinued         int `json:"discontinued"`
	ControlledSubstances int `json:"controlled_substances"`
}

// CatalogGateway resolves medicines by name or id and owns stock mutation.
// DecrementStock must be atomic per medicine id: the decrement applies in
// full only when enough stock remains, otherwise it applies nothing and
// returns false, so concurrent confirmations never produce lost updates.
type CatalogGateway interface {
	SearchByName(ctx context.Context, query string) ([]medicine.Medicine, error)
	GetByID(ctx context.Context, id string) (medicine.Medicine, error)
	DecrementStock(ctx context.Context, id string, quantity int) (bool, error)
	ListAll(ctx context.Context) ([]medicine.Medicine, error)
	Stats(ctx context.Context) (InventoryStats, error)
}
