package ports

import "context"

// FulfillmentItem is one order line in the outbound warehouse payload.
type FulfillmentItem struct {
	MedicineID   string  `json:"medicine_id"`
	MedicineName string  `json:"medicine_name"`
	Strength     string  `json:"strength"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
}

// FulfillmentRequest is the payload posted to the warehouse webhook when an
// order enters fulfillment.
type FulfillmentRequest struct {
	OrderID        string            `json:"order_id"`
	Items          []FulfillmentItem `json:"items"`
	DeliveryType   string            `json:"delivery_type"`
	PatientName    string            `json:"patient_name"`
	PatientEmail   string            `json:"patient_email"`
	PatientPhone   string            `json:"patient_phone"`
	PatientAddress string            `json:"patient_address"`
	Priority       string            `json:"priority"`
}

// FulfillmentNotifier posts fulfillment requests to the configured warehouse
// endpoint. A single attempt with a bounded timeout; any non-2xx response or
// network failure is reported as an error for the caller to log and swallow,
// never to surface to the user.
type FulfillmentNotifier interface {
	NotifyFulfillment(ctx context.Context, request FulfillmentRequest) error
}
