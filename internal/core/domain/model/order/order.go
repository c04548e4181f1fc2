package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pharmacy/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not
	// created through the NewOrder factory method.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
)

// Order is a durable (process-lifetime) record created only from a confirmed
// preview. It is the aggregate root for the fulfillment lifecycle: the
// current status advances through the Status state machine and is never
// mutated outside the lifecycle manager.
//
// Invariants:
//   - Created only via NewOrder, with at least one line item
//   - Total is the rounded sum of the line totals
//   - Status transitions go through TransitionTo and are never reverted
type Order struct {
	id             string
	patientID      string
	patientName    string
	patientEmail   string
	patientPhone   string
	items          []LineItem
	totalAmount    float64
	status         Status
	createdAt      time.Time
	updatedAt      time.Time
	prescriptionID string
	traceRef       string

	isConstructed bool
}

// NewID generates an order identifier of the form ORD-<yyyymmdd>-<RAND6>,
// where RAND6 is the uppercased first six hex characters of a random UUID.
func NewID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

// NewOrder creates an order in StatusPending. Line items with a zero unit
// price are re-priced from the price table so zero prices never slip through
// to the total. The total is the rounded sum of line totals.
func NewOrder(
	id string,
	patientID, patientName, patientEmail, patientPhone string,
	items []LineItem,
	now time.Time,
) (*Order, error) {
	if id == "" {
		return nil, errs.NewValueIsRequiredError("order id")
	}
	if patientID == "" {
		return nil, errs.NewValueIsRequiredError("patient id")
	}
	if len(items) == 0 {
		return nil, errs.NewValueIsRequiredError("order items")
	}

	priced := make([]LineItem, len(items))
	total := 0.0
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, errs.NewValueIsInvalidErrorWithCause("quantity",
				fmt.Errorf("%d is not greater than 0", item.Quantity))
		}
		if item.UnitPrice == 0 {
			item.UnitPrice = UnitPriceFor(item.MedicineName)
		}
		priced[i] = item
		total += item.UnitPrice * float64(item.Quantity)
	}

	return &Order{
		id:            id,
		patientID:     patientID,
		patientName:   patientName,
		patientEmail:  patientEmail,
		patientPhone:  patientPhone,
		items:         priced,
		totalAmount:   Round2(total),
		status:        StatusPending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

// Validate ensures the Order instance was properly constructed through
// NewOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID returns the order identifier.
func (o *Order) ID() string {
	return o.id
}

// PatientID returns the owning patient's identifier.
func (o *Order) PatientID() string {
	return o.patientID
}

// PatientName returns the owning patient's name.
func (o *Order) PatientName() string {
	return o.patientName
}

// PatientEmail returns the patient contact email.
func (o *Order) PatientEmail() string {
	return o.patientEmail
}

// PatientPhone returns the patient contact phone.
func (o *Order) PatientPhone() string {
	return o.patientPhone
}

// Items returns a copy of the order's line items.
func (o *Order) Items() []LineItem {
	items := make([]LineItem, len(o.items))
	copy(items, o.items)
	return items
}

// TotalAmount returns the rounded order subtotal.
func (o *Order) TotalAmount() float64 {
	return o.totalAmount
}

// Status returns the current lifecycle status.
func (o *Order) Status() Status {
	return o.status
}

// CreatedAt returns the creation timestamp.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// UpdatedAt returns the last transition timestamp.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// PrescriptionID returns the attached prescription id, if any.
func (o *Order) PrescriptionID() string {
	return o.prescriptionID
}

// SetPrescriptionID attaches a prescription reference to the order.
func (o *Order) SetPrescriptionID(id string) {
	o.prescriptionID = id
}

// TraceRef returns the external trace reference, if any.
func (o *Order) TraceRef() string {
	return o.traceRef
}

// SetTraceRef attaches an external trace reference to the order.
func (o *Order) SetTraceRef(ref string) {
	o.traceRef = ref
}

// TransitionTo advances the order to the next status through the state
// machine. Invalid transitions leave the order untouched and return an
// InvalidStateError.
func (o *Order) TransitionTo(next Status, now time.Time) error {
	newStatus, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}

	o.status = newStatus
	o.updatedAt = now
	return nil
}

// ItemSummary renders all line items as a single comma-separated summary
// for conversational replies.
func (o *Order) ItemSummary() string {
	parts := make([]string, len(o.items))
	for i, item := range o.items {
		parts[i] = item.Summary()
	}
	return strings.Join(parts, ", ")
}
