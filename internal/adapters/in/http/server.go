// Package http exposes the service over a JSON API. Handlers stay thin:
// they bind requests, call into the application layer and map domain errors
// to status codes (404 for unknown objects, 400 for refused transitions and
// invalid input, 500 otherwise).
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pharmacy/internal/core/application/fulfillment"
	"pharmacy/internal/core/application/orchestrator"
	"pharmacy/internal/core/domain/model/order"
	"pharmacy/internal/core/domain/services"
	"pharmacy/internal/core/ports"
	"pharmacy/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and the application layer.
type Server struct {
	orchestrator *orchestrator.Orchestrator
	orders       *fulfillment.Manager
	patients     ports.PatientGateway
	history      ports.HistoryGateway
	catalog      ports.CatalogGateway
	refills      services.RefillPredictor
}

// NewServer creates the HTTP server over the application services.
func NewServer(
	orch *orchestrator.Orchestrator,
	orders *fulfillment.Manager,
	patients ports.PatientGateway,
	history ports.HistoryGateway,
	catalog ports.CatalogGateway,
) *Server {
	return &Server{
		orchestrator: orch,
		orders:       orders,
		patients:     patients,
		history:      history,
		catalog:      catalog,
		refills:      services.NewRefillPredictor(),
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	e.POST("/api/chat", s.Chat)

	e.GET("/api/patients", s.GetPatients)
	e.GET("/api/patients/:patientId", s.GetPatient)

	e.GET("/api/orders", s.GetOrders)
	e.GET("/api/orders/:orderId", s.GetOrder)
	e.POST("/api/orders/:orderId/confirm", s.ConfirmOrder)
	e.POST("/api/orders/:orderId/cancel", s.CancelOrder)

	e.GET("/api/inventory", s.GetInventory)
	e.GET("/api/inventory/stats", s.GetInventoryStats)
	e.GET("/api/inventory/search", s.SearchInventory)
	e.GET("/api/inventory/:medicineId", s.GetMedicine)

	e.GET("/api/refills", s.GetRefills)
	e.GET("/api/refills/:patientId", s.GetPatientRefills)

	e.POST("/api/webhook/warehouse", s.WarehouseWebhook)
}

// writeError maps domain errors to HTTP status codes.
func writeError(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		code = http.StatusBadRequest
	}
	return ctx.JSON(code, apiError{Code: code, Message: err.Error()})
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// Chat handles POST /api/chat - one conversational turn through the
// ordering pipeline.
func (s *Server) Chat(ctx echo.Context) error {
	var req chatRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if req.PatientID == "" || req.Message == "" {
		return ctx.JSON(http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "patient_id and message are required",
		})
	}

	reply := s.orchestrator.Handle(ctx.Request().Context(), orchestrator.Request{
		SessionID: req.SessionID,
		PatientID: req.PatientID,
		Message:   req.Message,
		History:   req.History,
	})

	return ctx.JSON(http.StatusOK, chatResponse{
		Message:              reply.Message,
		Intent:               reply.Intent,
		ExtractedEntities:    reply.Extraction,
		SafetyResult:         reply.SafetyResult,
		OrderPreview:         toPreviewDTO(reply.Preview),
		Order:                toOrderDTO(reply.Order),
		RefillSuggestions:    reply.RefillSuggestions,
		RequiresConfirmation: reply.RequiresConfirmation,
	})
}

// GetPatients handles GET /api/patients.
func (s *Server) GetPatients(ctx echo.Context) error {
	patients, err := s.patients.ListAll(ctx.Request().Context())
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]patientDTO, len(patients))
	for i, p := range patients {
		response[i] = toPatientDTO(p)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetPatient handles GET /api/patients/:patientId.
func (s *Server) GetPatient(ctx echo.Context) error {
	p, err := s.patients.GetByID(ctx.Request().Context(), ctx.Param("patientId"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toPatientDTO(p))
}

// GetOrders handles GET /api/orders - all orders with their timelines,
// optionally filtered by patient.
func (s *Server) GetOrders(ctx echo.Context) error {
	patientID := ctx.QueryParam("patient_id")

	views := s.orders.ListOrdersWithTimeline(ctx.Request().Context())
	response := make([]*orderDTO, 0, len(views))
	for _, view := range views {
		if patientID != "" && view.Order.PatientID() != patientID {
			continue
		}
		response = append(response, toOrderViewDTO(view))
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/orders/:orderId.
func (s *Server) GetOrder(ctx echo.Context) error {
	view, err := s.orders.GetOrderWithTimeline(ctx.Request().Context(), ctx.Param("orderId"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toOrderViewDTO(view))
}

// ConfirmOrder handles POST /api/orders/:orderId/confirm. Only PENDING
// orders can be confirmed here; the order advances to CONFIRMED, stock is
// decremented, the warehouse is notified in the background and the order
// moves on to PREPARING.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	requestCtx := ctx.Request().Context()
	orderID := ctx.Param("orderId")

	o, err := s.orders.GetOrder(requestCtx, orderID)
	if err != nil {
		return writeError(ctx, err)
	}
	if o.Status() != order.StatusPending {
		return ctx.JSON(http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Order is not pending. Current status: %s", o.Status()),
		})
	}

	if err = s.orders.UpdateStatus(requestCtx, orderID, order.StatusConfirmed, "Order confirmed"); err != nil {
		return writeError(ctx, err)
	}

	totalQuantity := 0
	for _, item := range o.Items() {
		applied, decErr := s.catalog.DecrementStock(requestCtx, item.MedicineID, item.Quantity)
		if decErr != nil || !applied {
			s.orders.RecordInventoryShortage(orderID, item.MedicineName)
			continue
		}
		totalQuantity += item.Quantity
	}
	if totalQuantity > 0 {
		s.orders.RecordInventoryUpdated(orderID, totalQuantity)
	}

	if err = s.orders.UpdateStatus(requestCtx, orderID, order.StatusPreparing, "Preparing order"); err != nil {
		return writeError(ctx, err)
	}

	// Detached from the request context so the warehouse call survives the
	// response being written.
	go func() {
		dispatchCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.orders.TriggerFulfillmentNotification(dispatchCtx, orderID)
	}()

	return ctx.JSON(http.StatusOK, map[string]string{
		"status":   "confirmed",
		"order_id": orderID,
	})
}

// CancelOrder handles POST /api/orders/:orderId/cancel. Orders in a
// terminal state cannot be cancelled.
func (s *Server) CancelOrder(ctx echo.Context) error {
	requestCtx := ctx.Request().Context()
	orderID := ctx.Param("orderId")

	o, err := s.orders.GetOrder(requestCtx, orderID)
	if err != nil {
		return writeError(ctx, err)
	}
	if o.Status().IsTerminal() {
		return ctx.JSON(http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Cannot cancel order. Current status: %s", o.Status()),
		})
	}

	if err = s.orders.UpdateStatus(requestCtx, orderID, order.StatusCancelled, "Order cancelled by user"); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"status":   "cancelled",
		"order_id": orderID,
	})
}

// GetInventory handles GET /api/inventory.
func (s *Server) GetInventory(ctx echo.Context) error {
	meds, err := s.catalog.ListAll(ctx.Request().Context())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toMedicineDTOs(meds))
}

// GetInventoryStats handles GET /api/inventory/stats.
func (s *Server) GetInventoryStats(ctx echo.Context) error {
	stats, err := s.catalog.Stats(ctx.Request().Context())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, stats)
}

// SearchInventory handles GET /api/inventory/search?q=.
func (s *Server) SearchInventory(ctx echo.Context) error {
	query := ctx.QueryParam("q")
	if query == "" {
		return ctx.JSON(http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "q query parameter is required",
		})
	}

	meds, err := s.catalog.SearchByName(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toMedicineDTOs(meds))
}

// GetMedicine handles GET /api/inventory/:medicineId.
func (s *Server) GetMedicine(ctx echo.Context) error {
	med, err := s.catalog.GetByID(ctx.Request().Context(), ctx.Param("medicineId"))
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, toMedicineDTO(med))
}

// GetRefills handles GET /api/refills - refill predictions across all
// patients, most urgent first.
func (s *Server) GetRefills(ctx echo.Context) error {
	requestCtx := ctx.Request().Context()

	patients, err := s.patients.ListAll(requestCtx)
	if err != nil {
		return writeError(ctx, err)
	}

	now := time.Now()
	all := []services.RefillPrediction{}
	for _, p := range patients {
		candidates, histErr := s.history.RefillCandidates(requestCtx, p.ID(), now)
		if histErr != nil {
			continue
		}
		all = append(all, s.refills.Predict(p.ID(), p.Name(), candidates)...)
	}
	services.SortByUrgency(all)

	return ctx.JSON(http.StatusOK, all)
}

// GetPatientRefills handles GET /api/refills/:patientId.
func (s *Server) GetPatientRefills(ctx echo.Context) error {
	requestCtx := ctx.Request().Context()

	p, err := s.patients.GetByID(requestCtx, ctx.Param("patientId"))
	if err != nil {
		return writeError(ctx, err)
	}

	candidates, err := s.history.RefillCandidates(requestCtx, p.ID(), time.Now())
	if err != nil {
		return writeError(ctx, err)
	}

	predictions := s.refills.Predict(p.ID(), p.Name(), candidates)
	if predictions == nil {
		predictions = []services.RefillPrediction{}
	}
	return ctx.JSON(http.StatusOK, predictions)
}

// WarehouseWebhook handles POST /api/webhook/warehouse - the mock warehouse
// acknowledgement. A known order advances to PROCESSING; the acknowledgement
// is returned either way so the warehouse never sees a failure for an order
// it no longer tracks.
func (s *Server) WarehouseWebhook(ctx echo.Context) error {
	var payload warehousePayload
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, apiError{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	if _, err := s.orders.GetOrder(ctx.Request().Context(), payload.OrderID); err == nil {
		_ = s.orders.UpdateStatus(ctx.Request().Context(), payload.OrderID, order.StatusProcessing,
			"Order received by warehouse, processing for shipment")
	}

	trackingSuffix := payload.OrderID
	if len(trackingSuffix) > 8 {
		trackingSuffix = trackingSuffix[len(trackingSuffix)-8:]
	}

	return ctx.JSON(http.StatusOK, warehouseAck{
		Status:            "received",
		OrderID:           payload.OrderID,
		WarehouseID:       "WH-CENTRAL-001",
		EstimatedShipDate: time.Now().Format(time.DateOnly),
		TrackingNumber:    "TRK-" + trackingSuffix,
	})
}
