package order

import (
	"fmt"
	"time"
)

// ReceiptItem is one priced line on a receipt.
type ReceiptItem struct {
	Medicine  string  `json:"medicine"`
	Strength  string  `json:"strength"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// Receipt is the itemized billing document generated for a confirmed order.
// Subtotal, tax, delivery fee and grand total are each rounded to two
// decimals independently before summation so no float drift is visible to
// the user.
type Receipt struct {
	ReceiptNumber     string        `json:"receipt_number"`
	OrderID           string        `json:"order_id"`
	OrderDate         string        `json:"order_date"`
	PatientName       string        `json:"patient_name"`
	PatientID         string        `json:"patient_id"`
	PatientEmail      string        `json:"patient_email"`
	PatientPhone      string        `json:"patient_phone"`
	Items             []ReceiptItem `json:"items"`
	Subtotal          float64       `json:"subtotal"`
	Tax               float64       `json:"tax"`
	DeliveryFee       float64       `json:"delivery_fee"`
	GrandTotal        float64       `json:"grand_total"`
	PaymentStatus     string        `json:"payment_status"`
	DeliveryStatus    string        `json:"delivery_status"`
	EstimatedDelivery string        `json:"estimated_delivery"`
	IssuedAt          time.Time     `json:"issued_at"`
	ThankYouMessage   string        `json:"thank_you_message"`
}

// NewReceipt derives a receipt from an order. The receipt number reuses the
// last six characters of the order id; tax is TaxRate of the subtotal and
// delivery is the flat DeliveryFee.
func NewReceipt(o *Order, issuedAt time.Time) (Receipt, error) {
	if err := o.Validate(); err != nil {
		return Receipt{}, err
	}

	items := make([]ReceiptItem, len(o.items))
	for i, item := range o.items {
		items[i] = ReceiptItem{
			Medicine:  item.MedicineName,
			Strength:  item.Strength,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total(),
		}
	}

	subtotal := Round2(o.totalAmount)
	tax := Round2(subtotal * TaxRate)
	delivery := Round2(DeliveryFee)
	grandTotal := Round2(subtotal + tax + delivery)

	return Receipt{
		ReceiptNumber:     "RCP-" + o.id[len(o.id)-6:],
		OrderID:           o.id,
		OrderDate:         o.createdAt.Format("2006-01-02 15:04"),
		PatientName:       o.patientName,
		PatientID:         o.patientID,
		PatientEmail:      o.patientEmail,
		PatientPhone:      o.patientPhone,
		Items:             items,
		Subtotal:          subtotal,
		Tax:               tax,
		DeliveryFee:       delivery,
		GrandTotal:        grandTotal,
		PaymentStatus:     "Paid",
		DeliveryStatus:    "Preparing",
		EstimatedDelivery: "1-2 business days",
		IssuedAt:          issuedAt,
		ThankYouMessage: fmt.Sprintf(
			"Thank you, %s! Your order is being prepared. You'll receive updates via email.",
			o.patientName),
	}, nil
}
