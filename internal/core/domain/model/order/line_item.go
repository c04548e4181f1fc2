package order

import (
	"fmt"

	"pharmacy/internal/pkg/errs"
)

// LineItem is one priced medicine line on a preview or order.
type LineItem struct {
	MedicineID           string  `json:"medicine_id"`
	MedicineName         string  `json:"medicine_name"`
	Strength             string  `json:"strength"`
	Quantity             int     `json:"quantity"`
	UnitPrice            float64 `json:"unit_price"`
	PrescriptionRequired bool    `json:"prescription_required"`
}

// NewLineItem creates a validated line item. Quantity must already be
// resolved (defaulted and capped) by the caller; zero or negative counts are
// rejected. A zero unit price is resolved from the price table.
func NewLineItem(
	medicineID, medicineName, strength string,
	quantity int,
	unitPrice float64,
	prescriptionRequired bool,
) (LineItem, error) {
	if medicineID == "" {
		return LineItem{}, errs.NewValueIsRequiredError("medicine id")
	}
	if quantity <= 0 {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause("quantity",
			fmt.Errorf("%d is not greater than 0", quantity))
	}
	if unitPrice == 0 {
		unitPrice = UnitPriceFor(medicineName)
	}

	return LineItem{
		MedicineID:           medicineID,
		MedicineName:         medicineName,
		Strength:             strength,
		Quantity:             quantity,
		UnitPrice:            unitPrice,
		PrescriptionRequired: prescriptionRequired,
	}, nil
}

// Total returns the rounded line total.
func (i LineItem) Total() float64 {
	return Round2(i.UnitPrice * float64(i.Quantity))
}

// Summary renders the line the way conversational replies show it,
// e.g. "Metformin 500mg x60".
func (i LineItem) Summary() string {
	if i.Strength == "" {
		return fmt.Sprintf("%s x%d", i.MedicineName, i.Quantity)
	}
	return fmt.Sprintf("%s %s x%d", i.MedicineName, i.Strength, i.Quantity)
}
