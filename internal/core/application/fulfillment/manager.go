// Package fulfillment owns the order table, status history and audit
// timeline. It is the only component that mutates orders; every pipeline
// step against an order leaves an append-only timeline event behind.
package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pharmacy/internal/core/domain/model/order"
	"pharmacy/internal/core/domain/model/patient"
	"pharmacy/internal/core/domain/model/safety"
	"pharmacy/internal/core/ports"
	"pharmacy/internal/pkg/errs"
)

// Agent names recorded on timeline events. The labels identify which part
// of the pipeline acted, matching what the order timeline UI displays.
const (
	actorOrdering  = "Conversational Ordering Agent"
	actorSafety    = "Safety & Policy Agent"
	actorInventory = "Inventory & Fulfillment Agent"
	actorSystem    = "System"
)

// defaultDeliveryAddress stands in for a patient address book, which the
// demo data set does not carry.
const defaultDeliveryAddress = "123 Main St, City, State 12345"

// OrderView is an order joined with its audit timeline, the shape returned
// by the read projections.
type OrderView struct {
	Order    *order.Order
	Timeline []order.TimelineEvent
}

// Manager owns all order records for the process lifetime. A single
// read-write lock guards the three maps; appends and transitions are short
// critical sections and the outbound webhook is posted outside the lock.
type Manager struct {
	mu            sync.RWMutex
	orders        map[string]*order.Order
	statusHistory map[string][]order.StatusUpdate
	events        map[string][]order.TimelineEvent
	creationOrder []string

	notifier ports.FulfillmentNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewManager creates an empty lifecycle manager.
func NewManager(notifier ports.FulfillmentNotifier, logger *slog.Logger) *Manager {
	return &Manager{
		orders:        make(map[string]*order.Order),
		statusHistory: make(map[string][]order.StatusUpdate),
		events:        make(map[string][]order.TimelineEvent),
		notifier:      notifier,
		logger:        logger.With("component", "fulfillment_manager"),
		now:           time.Now,
	}
}

// CreateOrder assigns a fresh order id, prices the line items, creates the
// order in PENDING and seeds the first status-history entry and timeline
// event. Id generation retries on the unlikely collision so concurrent
// creations never share an id.
func (m *Manager) CreateOrder(
	_ context.Context,
	p patient.Patient,
	items []order.LineItem,
	prescriptionID string,
) (*order.Order, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	id := order.NewID(now)
	for _, taken := m.orders[id]; taken; _, taken = m.orders[id] {
		id = order.NewID(now)
	}

	o, err := order.NewOrder(id, p.ID(), p.Name(), p.Email(), p.Phone(), items, now)
	if err != nil {
		return nil, err
	}
	if prescriptionID != "" {
		o.SetPrescriptionID(prescriptionID)
	}

	m.orders[id] = o
	m.creationOrder = append(m.creationOrder, id)
	m.statusHistory[id] = []order.StatusUpdate{{
		OrderID:   id,
		Status:    order.StatusPending,
		Message:   fmt.Sprintf("Order created for %s", p.Name()),
		Timestamp: now,
	}}
	m.events[id] = []order.TimelineEvent{{
		AgentName:   actorOrdering,
		Action:      "Order Requested",
		Description: "Order initiated via conversation",
		Status:      order.EventCompleted,
		Timestamp:   now,
	}}

	return o, nil
}

// UpdateStatus transitions an order through the state machine and appends a
// status-history entry. Unknown order ids return ObjectNotFound; transitions
// the state machine refuses return InvalidState and leave the order
// untouched.
func (m *Manager) UpdateStatus(_ context.Context, orderID string, newStatus order.Status, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[orderID]
	if !ok {
		return errs.NewObjectNotFoundError("orderId", orderID)
	}

	now := m.now()
	if err := o.TransitionTo(newStatus, now); err != nil {
		return err
	}

	m.statusHistory[orderID] = append(m.statusHistory[orderID], order.StatusUpdate{
		OrderID:   orderID,
		Status:    newStatus,
		Message:   message,
		Timestamp: now,
	})
	return nil
}

// addEvent appends a timeline event under the lock. Timeline entries are
// never edited or removed.
func (m *Manager) addEvent(orderID, agentName, action, description string, status order.EventStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events[orderID] = append(m.events[orderID], order.TimelineEvent{
		AgentName:   agentName,
		Action:      action,
		Description: description,
		Status:      status,
		Timestamp:   m.now(),
	})
}

// RecordSafetyValidation appends the safety-validation audit event. The
// wording follows the decision; a rejection is recorded as blocked.
func (m *Manager) RecordSafetyValidation(orderID string, decision safety.Decision, reasons []string) {
	firstReason := func(fallback string) string {
		if len(reasons) > 0 {
			return reasons[0]
		}
		return fallback
	}

	switch decision {
	case safety.DecisionApprove:
		m.addEvent(orderID, actorSafety, "AI Safety Validation",
			"Prescription verified and approved", order.EventCompleted)
	case safety.DecisionConditional:
		m.addEvent(orderID, actorSafety, "AI Safety Validation",
			"Conditional approval: "+firstReason("Conditions apply"), order.EventCompleted)
	default:
		m.addEvent(orderID, actorSafety, "Blocked by AI",
			"Blocked: "+firstReason("Safety check failed"), order.EventBlocked)
	}
}

// RecordOrderConfirmed appends the confirmation audit event.
func (m *Manager) RecordOrderConfirmed(orderID string) {
	m.addEvent(orderID, actorSafety, "AI Order Confirmed",
		"AI validated and confirmed order", order.EventCompleted)
}

// RecordInventoryUpdated appends the stock-decrement audit event.
func (m *Manager) RecordInventoryUpdated(orderID string, quantity int) {
	m.addEvent(orderID, actorInventory, "Inventory Updated",
		fmt.Sprintf("Stock reduced by %d units", quantity), order.EventCompleted)
}

// RecordInventoryShortage appends the audit event for a confirmation that
// found the stock already consumed.
func (m *Manager) RecordInventoryShortage(orderID, medicineName string) {
	m.addEvent(orderID, actorInventory, "Inventory Shortage",
		fmt.Sprintf("Insufficient stock for %s at confirmation time", medicineName), order.EventBlocked)
}

// RecordFulfillmentInitiated appends the warehouse-handoff audit event.
func (m *Manager) RecordFulfillmentInitiated(orderID string) {
	m.addEvent(orderID, actorInventory, "Fulfillment Initiated",
		"Warehouse notified for fulfillment", order.EventCompleted)
}

// RecordNotificationsSent appends the receipt-notification audit event.
func (m *Manager) RecordNotificationsSent(orderID, email, phone string) {
	m.addEvent(orderID, actorSystem, "Notifications Sent",
		fmt.Sprintf("Receipt sent to %s and %s", email, phone), order.EventCompleted)
}

// GetOrder returns the order with the given id.
func (m *Manager) GetOrder(_ context.Context, orderID string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderId", orderID)
	}
	return o, nil
}

// ListOrders returns all orders in creation order.
func (m *Manager) ListOrders(_ context.Context) []*order.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*order.Order, 0, len(m.creationOrder))
	for _, id := range m.creationOrder {
		all = append(all, m.orders[id])
	}
	return all
}

// LatestOrderForPatient returns the most recently created order for the
// patient, or ObjectNotFound when the patient has none.
func (m *Manager) LatestOrderForPatient(_ context.Context, patientID string) (*order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.creationOrder) - 1; i >= 0; i-- {
		o := m.orders[m.creationOrder[i]]
		if o.PatientID() == patientID {
			return o, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("patientId", patientID)
}

// Timeline returns a copy of the order's audit timeline.
func (m *Manager) Timeline(orderID string) []order.TimelineEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]order.TimelineEvent, len(m.events[orderID]))
	copy(events, m.events[orderID])
	return events
}

// StatusHistory returns a copy of the order's status history.
func (m *Manager) StatusHistory(orderID string) []order.StatusUpdate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	updates := make([]order.StatusUpdate, len(m.statusHistory[orderID]))
	copy(updates, m.statusHistory[orderID])
	return updates
}

// GetOrderWithTimeline returns an order joined with its audit timeline.
func (m *Manager) GetOrderWithTimeline(ctx context.Context, orderID string) (OrderView, error) {
	o, err := m.GetOrder(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}
	return OrderView{Order: o, Timeline: m.Timeline(orderID)}, nil
}

// ListOrdersWithTimeline returns all orders joined with their timelines,
// in creation order.
func (m *Manager) ListOrdersWithTimeline(ctx context.Context) []OrderView {
	orders := m.ListOrders(ctx)
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderView{Order: o, Timeline: m.Timeline(o.ID())})
	}
	return views
}

// GenerateReceipt derives the itemized receipt for an order.
func (m *Manager) GenerateReceipt(ctx context.Context, orderID string) (order.Receipt, error) {
	o, err := m.GetOrder(ctx, orderID)
	if err != nil {
		return order.Receipt{}, err
	}
	return order.NewReceipt(o, m.now())
}

// TriggerFulfillmentNotification posts the fulfillment payload to the
// warehouse. One attempt, bounded by the notifier's timeout; a failure is
// logged and swallowed so the confirmation flow is never blocked. On
// success the order advances to PROCESSING and a dispatch event is
// appended.
func (m *Manager) TriggerFulfillmentNotification(ctx context.Context, orderID string) {
	o, err := m.GetOrder(ctx, orderID)
	if err != nil {
		m.logger.ErrorContext(ctx, "Fulfillment notification skipped", "order_id", orderID, "error", err)
		return
	}

	items := make([]ports.FulfillmentItem, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ports.FulfillmentItem{
			MedicineID:   item.MedicineID,
			MedicineName: item.MedicineName,
			Strength:     item.Strength,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}

	err = m.notifier.NotifyFulfillment(ctx, ports.FulfillmentRequest{
		OrderID:        o.ID(),
		Items:          items,
		DeliveryType:   "HOME_DELIVERY",
		PatientName:    o.PatientName(),
		PatientEmail:   o.PatientEmail(),
		PatientPhone:   o.PatientPhone(),
		PatientAddress: defaultDeliveryAddress,
		Priority:       "NORMAL",
	})
	if err != nil {
		m.logger.WarnContext(ctx, "Warehouse webhook failed", "order_id", orderID, "error", err)
		return
	}

	if err = m.UpdateStatus(ctx, orderID, order.StatusProcessing,
		"Order sent to warehouse for fulfillment"); err != nil {
		m.logger.WarnContext(ctx, "Post-dispatch status update refused", "order_id", orderID, "error", err)
	}
	m.addEvent(orderID, actorSystem, "Dispatched",
		"Package dispatched from warehouse", order.EventCompleted)
}

// NotifyReceipt simulates the email and messaging sends for a receipt and
// records the audit event. Real delivery channels are out of scope; the
// log lines stand in for them.
func (m *Manager) NotifyReceipt(ctx context.Context, receipt order.Receipt) {
	m.logger.InfoContext(ctx, "Receipt emailed",
		"receipt_number", receipt.ReceiptNumber,
		"order_id", receipt.OrderID,
		"email", receipt.PatientEmail,
		"grand_total", receipt.GrandTotal)
	m.logger.InfoContext(ctx, "Receipt messaged",
		"receipt_number", receipt.ReceiptNumber,
		"order_id", receipt.OrderID,
		"phone", receipt.PatientPhone)

	m.RecordNotificationsSent(receipt.OrderID, receipt.PatientEmail, receipt.PatientPhone)
}
