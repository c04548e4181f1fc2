// Package orchestrator coordinates one conversational turn: it resolves the
// patient, classifies the inbound message's intent and dispatches to the
// per-intent handler, owning the pending-preview protocol along the way.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pharmacy/internal/core/application/fulfillment"
	"pharmacy/internal/core/domain/model/conversation"
	"pharmacy/internal/core/domain/model/history"
	"pharmacy/internal/core/domain/model/medicine"
	"pharmacy/internal/core/domain/model/order"
	"pharmacy/internal/core/domain/model/patient"
	"pharmacy/internal/core/domain/model/safety"
	"pharmacy/internal/core/domain/services"
	"pharmacy/internal/core/ports"
)

const (
	// intentHistoryWindow is how many transcript entries accompany the
	// intent classification call.
	intentHistoryWindow = 10

	// defaultSupplyDays is recorded on purchase-history rows appended at
	// confirmation so refill predictions can derive days remaining.
	defaultSupplyDays = 30

	// dispatchTimeout bounds the whole background dispatch (warehouse
	// webhook plus receipt notifications) after a confirmation.
	dispatchTimeout = 30 * time.Second
)

// Request is one inbound conversational turn. SessionID may be empty, in
// which case the patient id keys the session.
type Request struct {
	SessionID string
	PatientID string
	Message   string
	History   []conversation.Message
}

// Reply is the full result of one turn. Message is always set; the other
// fields are populated by the handler that produced the reply.
type Reply struct {
	Message              string
	Intent               conversation.Intent
	Extraction           *conversation.ExtractionResult
	SafetyResult         *safety.Result
	Preview              *order.Preview
	Order                *order.Order
	RefillSuggestions    []services.RefillPrediction
	RequiresConfirmation bool
}

// Orchestrator routes conversational turns through the ordering pipeline.
// Handlers for different sessions run concurrently; turns within one
// session are serialized on the session lock.
type Orchestrator struct {
	patients   ports.PatientGateway
	history    ports.HistoryGateway
	catalog    ports.CatalogGateway
	classifier ports.IntentClassifier
	extractor  ports.EntityExtractor
	orders     *fulfillment.Manager

	safety   services.SafetyEvaluator
	refills  services.RefillPredictor
	sessions *sessionStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrchestrator wires the conversational pipeline.
func NewOrchestrator(
	patients ports.PatientGateway,
	historyGateway ports.HistoryGateway,
	catalog ports.CatalogGateway,
	classifier ports.IntentClassifier,
	extractor ports.EntityExtractor,
	orders *fulfillment.Manager,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		patients:   patients,
		history:    historyGateway,
		catalog:    catalog,
		classifier: classifier,
		extractor:  extractor,
		orders:     orders,
		safety:     services.NewSafetyEvaluator(),
		refills:    services.NewRefillPredictor(),
		sessions:   newSessionStore(),
		logger:     logger.With("component", "orchestrator"),
		now:        time.Now,
	}
}

// Handle processes one conversational turn end to end. It never returns an
// error: upstream failures degrade to coherent replies, and an unknown
// patient produces a clarification reply rather than a failure.
func (o *Orchestrator) Handle(ctx context.Context, req Request) Reply {
	key := req.SessionID
	if key == "" {
		key = req.PatientID
	}
	sess := o.sessions.get(key)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	p, err := o.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		o.logger.WarnContext(ctx, "Patient lookup failed", "patient_id", req.PatientID, "error", err)
		return Reply{
			Intent:  conversation.IntentGeneralInquiry,
			Message: "I couldn't find your patient record. Please select a valid patient.",
		}
	}

	recentOrders, err := o.history.RecentOrderCount(ctx, p.ID())
	if err != nil {
		recentOrders = 0
	}
	patientCtx := conversation.PatientContext{
		PatientID:        p.ID(),
		PatientName:      p.Name(),
		RecentOrderCount: recentOrders,
	}

	// Clients that track their own transcript send it with the request;
	// otherwise the server-side session transcript provides the context.
	historyWindow := req.History
	if len(historyWindow) == 0 {
		historyWindow = sess.window(intentHistoryWindow)
	}

	sess.append(conversation.RoleUser, req.Message)

	intentResult, err := o.classifier.ClassifyIntent(ctx, req.Message, patientCtx, historyWindow)
	if err != nil {
		o.logger.WarnContext(ctx, "Intent classification failed", "error", err)
		intentResult = conversation.IntentResult{
			Intent:        conversation.IntentGeneralInquiry,
			Confidence:    0.5,
			ResponseDraft: "I apologize, I ran into a problem understanding that. How can I help you with your pharmacy needs today?",
		}
	}

	var reply Reply
	switch intentResult.Intent {
	case conversation.IntentOrder:
		reply = o.handleOrder(ctx, sess, p, patientCtx, historyWindow, req.Message)
	case conversation.IntentConfirmOrder:
		reply = o.handleConfirm(ctx, sess, p)
	case conversation.IntentCancelOrder:
		reply = o.handleCancel(sess)
	case conversation.IntentRefillCheck:
		reply = o.handleRefillCheck(ctx, p)
	case conversation.IntentStatusCheck:
		reply = o.handleStatusCheck(ctx, p)
	default:
		message := intentResult.ResponseDraft
		if message == "" {
			message = "How can I help you with your pharmacy needs today?"
		}
		reply = Reply{Message: message}
	}

	reply.Intent = intentResult.Intent
	sess.append(conversation.RoleAssistant, reply.Message)
	return reply
}

// matchedLine pairs an extracted entity with the catalog entry it resolved
// to. Entities that matched nothing are skipped before this pairing, so the
// evaluator only ever sees resolved items.
type matchedLine struct {
	entity conversation.ExtractedEntity
	med    medicine.Medicine
}

func (o *Orchestrator) handleOrder(
	ctx context.Context,
	sess *session,
	p patient.Patient,
	patientCtx conversation.PatientContext,
	historyWindow []conversation.Message,
	message string,
) Reply {
	extraction, err := o.extractor.ExtractEntities(ctx, message, patientCtx, historyWindow)
	if err != nil {
		o.logger.WarnContext(ctx, "Entity extraction failed", "error", err)
		return Reply{Message: "Could you tell me a bit more? Which medication would you like to order, and at what strength?"}
	}

	if extraction.NeedsClarification {
		clarification := extraction.ClarificationMessage
		if clarification == "" {
			clarification = "Could you clarify which medication you need?"
		}
		return Reply{Message: clarification, Extraction: &extraction}
	}
	if len(extraction.Entities) == 0 {
		return Reply{
			Message:    "I couldn't identify any medications in your request. Could you please specify which medicine you need?",
			Extraction: &extraction,
		}
	}

	matched := o.resolveEntities(ctx, extraction.Entities)
	if len(matched) == 0 {
		return Reply{
			Message: fmt.Sprintf(
				"I couldn't find '%s' in our inventory. Please check the spelling or try a different medication.",
				extraction.Entities[0].Medicine),
			Extraction: &extraction,
		}
	}

	review := make([]services.ReviewItem, len(matched))
	for i, m := range matched {
		review[i] = services.ReviewItem{Medicine: m.med, RequestedQuantity: m.entity.Quantity}
	}
	safetyResult := o.safety.Evaluate(review, false)

	if safetyResult.Decision == safety.DecisionReject {
		return Reply{
			Message:      "I'm sorry, but I cannot process this order. " + strings.Join(safetyResult.Reasons, " "),
			Extraction:   &extraction,
			SafetyResult: &safetyResult,
		}
	}

	items := make([]order.LineItem, 0, len(matched))
	for _, m := range matched {
		quantity := m.entity.Quantity
		if quantity <= 0 {
			quantity = services.DefaultRequestedQuantity
		}
		if safetyResult.AllowedQuantity != nil && quantity > *safetyResult.AllowedQuantity {
			quantity = *safetyResult.AllowedQuantity
		}

		item, err := order.NewLineItem(
			m.med.ID(), m.med.Name(), m.med.Strength(),
			quantity, 0, m.med.PrescriptionRequired())
		if err != nil {
			o.logger.WarnContext(ctx, "Dropping unbuildable line item",
				"medicine_id", m.med.ID(), "error", err)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return Reply{
			Message:      "I wasn't able to prepare that order. Could you try rephrasing your request?",
			Extraction:   &extraction,
			SafetyResult: &safetyResult,
		}
	}

	preview, err := order.NewPreview(order.NewPreviewID(), p.ID(), p.Name(), items, safetyResult, o.now())
	if err != nil {
		o.logger.ErrorContext(ctx, "Preview construction failed", "error", err)
		return Reply{Message: "I wasn't able to prepare that order. Please try again."}
	}

	sess.preview = preview

	summary := preview.ItemSummary()
	var replyText string
	if safetyResult.Decision == safety.DecisionConditional {
		replyText = fmt.Sprintf(
			"I can prepare your order for %s. However: %s\n\nWould you like to proceed? Reply 'confirm' to place the order or 'cancel' to cancel.",
			summary, strings.Join(safetyResult.Reasons, " "))
	} else {
		replyText = fmt.Sprintf(
			"Great! I've prepared your order for %s.\n\nEstimated total: $%.2f\n\nPlease reply 'confirm' to place the order or 'cancel' to cancel.",
			summary, preview.TotalAmount())
	}

	return Reply{
		Message:              replyText,
		Extraction:           &extraction,
		SafetyResult:         &safetyResult,
		Preview:              preview,
		RequiresConfirmation: true,
	}
}

// resolveEntities maps each extracted entity to its best catalog match:
// the first result whose strength contains the requested dosage
// (case-insensitive), else the first result. Entities that match nothing
// are skipped.
func (o *Orchestrator) resolveEntities(
	ctx context.Context,
	entities []conversation.ExtractedEntity,
) []matchedLine {
	var matched []matchedLine
	for _, entity := range entities {
		results, err := o.catalog.SearchByName(ctx, entity.Medicine)
		if err != nil || len(results) == 0 {
			continue
		}

		best := results[0]
		if entity.Dosage != "" {
			wanted := strings.ToLower(entity.Dosage)
			for _, candidate := range results {
				if strings.Contains(strings.ToLower(candidate.Strength()), wanted) {
					best = candidate
					break
				}
			}
		}
		matched = append(matched, matchedLine{entity: entity, med: best})
	}
	return matched
}

func (o *Orchestrator) handleConfirm(ctx context.Context, sess *session, p patient.Patient) Reply {
	if sess.preview == nil {
		return Reply{Message: "I don't see any pending order to confirm. Would you like to place a new order?"}
	}
	preview := sess.preview

	ord, err := o.orders.CreateOrder(ctx, p, preview.Items(), "")
	if err != nil {
		o.logger.ErrorContext(ctx, "Order creation failed", "preview_id", preview.ID(), "error", err)
		return Reply{Message: "I wasn't able to place your order just now. Please try again."}
	}

	o.orders.RecordSafetyValidation(ord.ID(), preview.SafetyDecision(), preview.SafetyReasons())
	if err = o.orders.UpdateStatus(ctx, ord.ID(), order.StatusValidated, "Safety validation completed"); err != nil {
		o.logger.WarnContext(ctx, "Status update refused", "order_id", ord.ID(), "error", err)
	}

	// Stock is committed before the order is confirmed so a shortage found
	// here can still block the order. Each decrement is all-or-nothing per
	// medicine; lines already decremented stay decremented.
	totalQuantity := 0
	for _, item := range ord.Items() {
		applied, err := o.catalog.DecrementStock(ctx, item.MedicineID, item.Quantity)
		if err != nil || !applied {
			o.orders.RecordInventoryShortage(ord.ID(), item.MedicineName)
			if err = o.orders.UpdateStatus(ctx, ord.ID(), order.StatusBlocked,
				fmt.Sprintf("Insufficient stock for %s", item.MedicineName)); err != nil {
				o.logger.WarnContext(ctx, "Status update refused", "order_id", ord.ID(), "error", err)
			}
			sess.preview = nil
			return Reply{
				Message: fmt.Sprintf(
					"I'm sorry, %s went out of stock while your order was pending. Please place a new order.",
					item.MedicineName),
				Order: ord,
			}
		}
		totalQuantity += item.Quantity
	}

	o.orders.RecordOrderConfirmed(ord.ID())
	if err = o.orders.UpdateStatus(ctx, ord.ID(), order.StatusConfirmed, "Order confirmed by patient"); err != nil {
		o.logger.WarnContext(ctx, "Status update refused", "order_id", ord.ID(), "error", err)
	}
	o.orders.RecordInventoryUpdated(ord.ID(), totalQuantity)
	o.orders.RecordFulfillmentInitiated(ord.ID())
	if err = o.orders.UpdateStatus(ctx, ord.ID(), order.StatusProcessing, "Order is being processed for delivery"); err != nil {
		o.logger.WarnContext(ctx, "Status update refused", "order_id", ord.ID(), "error", err)
	}

	now := o.now()
	for _, item := range ord.Items() {
		if err = o.history.AppendPurchase(ctx, history.PurchaseRecord{
			OrderID:        ord.ID(),
			PatientID:      p.ID(),
			PatientName:    p.Name(),
			PatientEmail:   p.Email(),
			PatientPhone:   p.Phone(),
			MedicineID:     item.MedicineID,
			MedicineName:   item.MedicineName,
			Dosage:         item.Strength,
			Quantity:       item.Quantity,
			PurchaseDate:   now,
			SupplyDays:     defaultSupplyDays,
			PrescriptionID: ord.PrescriptionID(),
			OrderStatus:    order.StatusProcessing.String(),
		}); err != nil {
			o.logger.WarnContext(ctx, "History append failed", "order_id", ord.ID(), "error", err)
		}
	}

	receipt, err := o.orders.GenerateReceipt(ctx, ord.ID())
	if err != nil {
		o.logger.ErrorContext(ctx, "Receipt generation failed", "order_id", ord.ID(), "error", err)
		sess.preview = nil
		return Reply{
			Message: fmt.Sprintf("Your order %s is confirmed and being prepared for delivery.", ord.ID()),
			Order:   ord,
		}
	}

	// The warehouse handoff and receipt notifications run detached from
	// the request so the reply is never blocked on the outbound calls.
	go func(orderID string, rcpt order.Receipt) {
		dispatchCtx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		o.orders.TriggerFulfillmentNotification(dispatchCtx, orderID)
		o.orders.NotifyReceipt(dispatchCtx, rcpt)
	}(ord.ID(), receipt)

	sess.preview = nil

	replyText := fmt.Sprintf(`Order Confirmed!

Order ID: %s
Items: %s
Subtotal: $%.2f
Tax (5%%): $%.2f
Delivery: $%.2f
Total: $%.2f

Receipt #: %s

%s

Your order is now being prepared for delivery.`,
		ord.ID(), ord.ItemSummary(),
		receipt.Subtotal, receipt.Tax, receipt.DeliveryFee, receipt.GrandTotal,
		receipt.ReceiptNumber, receipt.ThankYouMessage)

	return Reply{Message: replyText, Order: ord}
}

func (o *Orchestrator) handleCancel(sess *session) Reply {
	sess.preview = nil
	return Reply{Message: "Your order has been cancelled. Is there anything else I can help you with?"}
}

func (o *Orchestrator) handleRefillCheck(ctx context.Context, p patient.Patient) Reply {
	candidates, err := o.history.RefillCandidates(ctx, p.ID(), o.now())
	if err != nil {
		o.logger.WarnContext(ctx, "Refill candidate lookup failed", "patient_id", p.ID(), "error", err)
		return Reply{Message: fmt.Sprintf(
			"Hi %s! I couldn't check your medication history just now. Please try again shortly.", p.Name())}
	}
	if len(candidates) == 0 {
		return Reply{Message: fmt.Sprintf(
			"Hi %s! I checked your medication history, and you don't have any refills due at the moment. All your medications should be well-stocked.",
			p.Name())}
	}

	predictions := o.refills.Predict(p.ID(), p.Name(), candidates)
	if len(predictions) == 0 {
		return Reply{Message: fmt.Sprintf(
			"Hi %s! Your medications are all looking good - no urgent refills needed right now.", p.Name())}
	}

	lines := make([]string, len(predictions))
	offerFollowUp := false
	for i, prediction := range predictions {
		line := fmt.Sprintf("%s: %d days remaining", prediction.Medicine, prediction.DaysRemaining)
		switch prediction.Action {
		case services.ActionRemind:
			line += " (refill soon)"
			offerFollowUp = true
		case services.ActionAutoRefill:
			line += " (auto-refill eligible)"
		case services.ActionBlock:
			line += " (action required)"
		}
		lines[i] = line
	}

	replyText := fmt.Sprintf("Hi %s! Here's your medication refill status:\n\n%s",
		p.Name(), strings.Join(lines, "\n"))
	if offerFollowUp {
		replyText += "\n\nWould you like me to prepare a refill order for any of these?"
	}

	return Reply{Message: replyText, RefillSuggestions: predictions}
}

func (o *Orchestrator) handleStatusCheck(ctx context.Context, p patient.Patient) Reply {
	latest, err := o.orders.LatestOrderForPatient(ctx, p.ID())
	if err != nil {
		return Reply{Message: "You don't have any recent orders. Would you like to place a new order?"}
	}

	replyText := fmt.Sprintf(
		"Order Status: %s\n\nStatus: %s\nItems: %s\nTotal: $%.2f\nOrdered: %s",
		latest.ID(), latest.Status(), latest.ItemSummary(), latest.TotalAmount(),
		latest.CreatedAt().Format("2006-01-02 15:04"))

	return Reply{Message: replyText, Order: latest}
}
