// Package history models the purchase-history rows behind refill
// predictions. The rows live in an external data set; this package only
// describes their shape at the gateway boundary.
package history

import "time"

// PurchaseRecord is one historical line of a fulfilled order. SupplyDays is
// how long the purchased quantity lasts at the prescribed frequency.
type PurchaseRecord struct {
	OrderID              string
	PatientID            string
	PatientName          string
	PatientEmail         string
	PatientPhone         string
	MedicineID           string
	MedicineName         string
	Dosage               string
	Quantity             int
	PurchaseDate         time.Time
	SupplyDays           int
	PrescriptionID       string
	OrderStatus          string
}

// RefillCandidate is a per-medication supply snapshot produced by the
// history gateway for a single patient. DaysRemaining is derived from the
// last purchase date and supply days as of the query date and may be
// negative when the supply is already exhausted.
type RefillCandidate struct {
	MedicineID           string
	MedicineName         string
	Dosage               string
	LastQuantity         int
	LastPurchaseDate     time.Time
	SupplyDays           int
	DaysRemaining        int
	PrescriptionRequired bool
	Discontinued         bool
	StockAvailable       int
}
