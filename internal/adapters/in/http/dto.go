package http

import (
	"pharmacy/internal/core/application/fulfillment"
	"pharmacy/internal/core/domain/model/conversation"
	"pharmacy/internal/core/domain/model/medicine"
	"pharmacy/internal/core/domain/model/order"
	"pharmacy/internal/core/domain/model/patient"
	"pharmacy/internal/core/domain/model/safety"
	"pharmacy/internal/core/domain/services"
)

// apiError is the JSON error body returned by every endpoint.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type chatRequest struct {
	PatientID string                 `json:"patient_id"`
	Message   string                 `json:"message"`
	SessionID string                 `json:"session_id"`
	History   []conversation.Message `json:"conversation_history"`
}

type chatResponse struct {
	Message              string                         `json:"message"`
	Intent               conversation.Intent            `json:"intent,omitempty"`
	ExtractedEntities    *conversation.ExtractionResult `json:"extracted_entities,omitempty"`
	SafetyResult         *safety.Result                 `json:"safety_result,omitempty"`
	OrderPreview         *previewDTO                    `json:"order_preview,omitempty"`
	Order                *orderDTO                      `json:"order,omitempty"`
	RefillSuggestions    []services.RefillPrediction    `json:"refill_suggestions,omitempty"`
	RequiresConfirmation bool                           `json:"requires_confirmation"`
}

type patientDTO struct {
	PatientID    string `json:"patient_id"`
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	PatientPhone string `json:"patient_phone"`
}

func toPatientDTO(p patient.Patient) patientDTO {
	return patientDTO{
		PatientID:    p.ID(),
		PatientName:  p.Name(),
		PatientEmail: p.Email(),
		PatientPhone: p.Phone(),
	}
}

type medicineDTO struct {
	MedicineID           string `json:"medicine_id"`
	MedicineName         string `json:"medicine_name"`
	Strength             string `json:"strength"`
	Form                 string `json:"form"`
	StockLevel           int    `json:"stock_level"`
	PrescriptionRequired bool   `json:"prescription_required"`
	Category             string `json:"category"`
	Discontinued         bool   `json:"discontinued"`
	MaxQuantityPerOrder  int    `json:"max_quantity_per_order"`
	ControlledSubstance  bool   `json:"controlled_substance"`
}

func toMedicineDTO(m medicine.Medicine) medicineDTO {
	return medicineDTO{
		MedicineID:           m.ID(),
		MedicineName:         m.Name(),
		Strength:             m.Strength(),
		Form:                 m.Form(),
		StockLevel:           m.StockLevel(),
		PrescriptionRequired: m.PrescriptionRequired(),
		Category:             m.Category(),
		Discontinued:         m.Discontinued(),
		MaxQuantityPerOrder:  m.MaxQuantityPerOrder(),
		ControlledSubstance:  m.ControlledSubstance(),
	}
}

func toMedicineDTOs(meds []medicine.Medicine) []medicineDTO {
	out := make([]medicineDTO, len(meds))
	for i, m := range meds {
		out[i] = toMedicineDTO(m)
	}
	return out
}

type previewDTO struct {
	PreviewID            string           `json:"preview_id"`
	PatientID            string           `json:"patient_id"`
	PatientName          string           `json:"patient_name"`
	Items                []order.LineItem `json:"items"`
	TotalAmount          float64          `json:"total_amount"`
	SafetyDecision       safety.Decision  `json:"safety_decision"`
	SafetyReasons        []string         `json:"safety_reasons"`
	RequiresPrescription bool             `json:"requires_prescription"`
	CreatedAt            string           `json:"created_at"`
}

func toPreviewDTO(p *order.Preview) *previewDTO {
	if p == nil {
		return nil
	}
	return &previewDTO{
		PreviewID:            p.ID(),
		PatientID:            p.PatientID(),
		PatientName:          p.PatientName(),
		Items:                p.Items(),
		TotalAmount:          p.TotalAmount(),
		SafetyDecision:       p.SafetyDecision(),
		SafetyReasons:        p.SafetyReasons(),
		RequiresPrescription: p.RequiresPrescription(),
		CreatedAt:            p.CreatedAt().Format("2006-01-02 15:04:05"),
	}
}

type orderDTO struct {
	OrderID        string                `json:"order_id"`
	PatientID      string                `json:"patient_id"`
	PatientName    string                `json:"patient_name"`
	PatientEmail   string                `json:"patient_email"`
	PatientPhone   string                `json:"patient_phone"`
	Items          []order.LineItem      `json:"items"`
	TotalAmount    float64               `json:"total_amount"`
	Status         order.Status          `json:"status"`
	CreatedAt      string                `json:"created_at"`
	UpdatedAt      string                `json:"updated_at"`
	PrescriptionID string                `json:"prescription_id,omitempty"`
	TraceRef       string                `json:"trace_ref,omitempty"`
	Events         []order.TimelineEvent `json:"events,omitempty"`
}

func toOrderDTO(o *order.Order) *orderDTO {
	if o == nil {
		return nil
	}
	return &orderDTO{
		OrderID:        o.ID(),
		PatientID:      o.PatientID(),
		PatientName:    o.PatientName(),
		PatientEmail:   o.PatientEmail(),
		PatientPhone:   o.PatientPhone(),
		Items:          o.Items(),
		TotalAmount:    o.TotalAmount(),
		Status:         o.Status(),
		CreatedAt:      o.CreatedAt().Format("2006-01-02 15:04:05"),
		UpdatedAt:      o.UpdatedAt().Format("2006-01-02 15:04:05"),
		PrescriptionID: o.PrescriptionID(),
		TraceRef:       o.TraceRef(),
	}
}

func toOrderViewDTO(view fulfillment.OrderView) *orderDTO {
	dto := toOrderDTO(view.Order)
	dto.Events = view.Timeline
	return dto
}

type warehousePayload struct {
	OrderID      string            `json:"order_id"`
	Items        []order.LineItem  `json:"items"`
	DeliveryType string            `json:"delivery_type"`
	PatientName  string            `json:"patient_name"`
	Priority     string            `json:"priority"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type warehouseAck struct {
	Status            string `json:"status"`
	OrderID           string `json:"order_id"`
	WarehouseID       string `json:"warehouse_id"`
	EstimatedShipDate string `json:"estimated_ship_date"`
	TrackingNumber    string `json:"tracking_number"`
}
