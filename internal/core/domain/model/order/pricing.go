package order

import "math"

// DefaultUnitPrice is charged for medicines absent from the price table.
const DefaultUnitPrice = 0.50

const (
	// TaxRate is applied to the order subtotal on the receipt.
	TaxRate = 0.05

	// DeliveryFee is the flat home-delivery charge on the receipt.
	DeliveryFee = 2.00
)

// getPriceTable returns per-unit prices for the common stocked medicines.
func getPriceTable() map[string]float64 {
	return map[string]float64{
		"Paracetamol":  0.15,
		"Metformin":    0.20,
		"Atorvastatin": 0.85,
		"Lisinopril":   0.55,
		"Amlodipine":   0.65,
		"Omeprazole":   0.40,
		"Amoxicillin":  0.35,
		"Ibuprofen":    0.20,
		"Aspirin":      0.10,
	}
}

// UnitPriceFor resolves the per-unit price for a medicine name, falling back
// to DefaultUnitPrice for unlisted medicines.
func UnitPriceFor(medicineName string) float64 {
	if price, ok := getPriceTable()[medicineName]; ok {
		return price
	}
	return DefaultUnitPrice
}

// Round2 rounds a monetary amount to two decimals. Receipt components are
// each rounded independently before summation so the user-visible figures
// always add up.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
