package medicine

import (
	"errors"
	"fmt"

	"pharmacy/internal/pkg/errs"
	"pharmacy/internal/pkg/guard"
)

var (
	// ErrMedicineIsNotConstructed is returned when a Medicine instance was
	// not created through the NewMedicine factory method.
	ErrMedicineIsNotConstructed = errors.New("Medicine must be created via NewMedicine constructor")
)

// Medicine is a catalog entry for a single stocked product. It carries the
// attributes the safety policy evaluates: stock level, prescription and
// controlled-substance flags, discontinuation state and the per-order
// quantity ceiling.
//
// Medicine is an immutable value object; stock mutation happens in the
// catalog store, which replaces the stored value under its own lock.
type Medicine struct {
	id                  string
	name                string
	strength            string
	form                string
	stockLevel          int
	prescriptionRequired bool
	category            string
	discontinued        bool
	maxQuantityPerOrder int
	controlledSubstance bool

	guard guard.ConstructorGuard
}

// NewMedicine creates a validated catalog entry.
//
// Validation rules:
//   - id and name are required
//   - stockLevel must not be negative
//   - maxQuantityPerOrder must be positive
func NewMedicine(
	id, name, strength, form string,
	stockLevel int,
	prescriptionRequired bool,
	category string,
	discontinued bool,
	maxQuantityPerOrder int,
	controlledSubstance bool,
) (Medicine, error) {
	if id == "" {
		return Medicine{}, errs.NewValueIsRequiredError("medicine id")
	}
	if name == "" {
		return Medicine{}, errs.NewValueIsRequiredError("medicine name")
	}
	if stockLevel < 0 {
		return Medicine{}, errs.NewValueIsInvalidErrorWithCause("stock level",
			fmt.Errorf("%d is negative", stockLevel))
	}
	if maxQuantityPerOrder <= 0 {
		return Medicine{}, errs.NewValueIsInvalidErrorWithCause("max quantity per order",
			fmt.Errorf("%d is not greater than 0", maxQuantityPerOrder))
	}

	return Medicine{
		id:                  id,
		name:                name,
		strength:            strength,
		form:                form,
		stockLevel:          stockLevel,
		prescriptionRequired: prescriptionRequired,
		category:            category,
		discontinued:        discontinued,
		maxQuantityPerOrder: maxQuantityPerOrder,
		controlledSubstance: controlledSubstance,
		guard:               guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Medicine was created through NewMedicine.
func (m Medicine) Validate() error {
	return m.guard.Validate(ErrMedicineIsNotConstructed)
}

// ID returns the catalog identifier.
func (m Medicine) ID() string {
	return m.id
}

// Name returns the medicine name.
func (m Medicine) Name() string {
	return m.name
}

// Strength returns the dosage strength, e.g. "500mg".
func (m Medicine) Strength() string {
	return m.strength
}

// Form returns the dispensing form, e.g. "Tablet".
func (m Medicine) Form() string {
	return m.form
}

// StockLevel returns the units currently in stock.
func (m Medicine) StockLevel() int {
	return m.stockLevel
}

// PrescriptionRequired reports whether a prescription is needed.
func (m Medicine) PrescriptionRequired() bool {
	return m.prescriptionRequired
}

// Category returns the therapeutic category.
func (m Medicine) Category() string {
	return m.category
}

// Discontinued reports whether the product was pulled from sale.
func (m Medicine) Discontinued() bool {
	return m.discontinued
}

// MaxQuantityPerOrder returns the per-order quantity ceiling.
func (m Medicine) MaxQuantityPerOrder() int {
	return m.maxQuantityPerOrder
}

// ControlledSubstance reports whether special handling applies.
func (m Medicine) ControlledSubstance() bool {
	return m.controlledSubstance
}

// WithStockLevel returns a copy carrying the new stock level. Used by the
// catalog store when applying a decrement.
func (m Medicine) WithStockLevel(level int) Medicine {
	m.stockLevel = level
	return m
}
