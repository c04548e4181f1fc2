package order

import (
	"errors"
	"strings"
	"time"

	"pharmacy/internal/core/domain/model/safety"
	"pharmacy/internal/pkg/errs"
	"pharmacy/internal/pkg/guard"

	"github.com/google/uuid"
)

var (
	// ErrPreviewIsNotConstructed is returned when a Preview instance was
	// not created through the NewPreview factory method.
	ErrPreviewIsNotConstructed = errors.New("Preview must be created via NewPreview constructor")
)

// Preview is a priced, not-yet-committed order awaiting user confirmation.
// It is owned exclusively by the session that created it until consumed by
// a confirmation or discarded by a cancellation; a session holds at most
// one live preview at a time.
type Preview struct {
	previewID            string
	patientID            string
	patientName          string
	items                []LineItem
	totalAmount          float64
	safetyDecision       safety.Decision
	safetyReasons        []string
	requiresPrescription bool
	createdAt            time.Time

	guard guard.ConstructorGuard
}

// NewPreviewID generates an opaque preview token of the form PRV-<8 hex upper>.
func NewPreviewID() string {
	return "PRV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// NewPreview creates a preview over already-priced line items. The total is
// the rounded sum of line totals.
func NewPreview(
	previewID, patientID, patientName string,
	items []LineItem,
	safetyResult safety.Result,
	now time.Time,
) (*Preview, error) {
	if previewID == "" {
		return nil, errs.NewValueIsRequiredError("preview id")
	}
	if patientID == "" {
		return nil, errs.NewValueIsRequiredError("patient id")
	}
	if len(items) == 0 {
		return nil, errs.NewValueIsRequiredError("preview items")
	}

	total := 0.0
	for _, item := range items {
		total += item.UnitPrice * float64(item.Quantity)
	}

	return &Preview{
		previewID:            previewID,
		patientID:            patientID,
		patientName:          patientName,
		items:                items,
		totalAmount:          Round2(total),
		safetyDecision:       safetyResult.Decision,
		safetyReasons:        safetyResult.Reasons,
		requiresPrescription: safetyResult.RequiresPrescription,
		createdAt:            now,
		guard:                guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Preview was created through NewPreview.
func (p *Preview) Validate() error {
	if p == nil {
		return ErrPreviewIsNotConstructed
	}
	return p.guard.Validate(ErrPreviewIsNotConstructed)
}

// ID returns the opaque preview token.
func (p *Preview) ID() string {
	return p.previewID
}

// PatientID returns the owning patient's identifier.
func (p *Preview) PatientID() string {
	return p.patientID
}

// PatientName returns the owning patient's name.
func (p *Preview) PatientName() string {
	return p.patientName
}

// Items returns a copy of the previewed line items.
func (p *Preview) Items() []LineItem {
	items := make([]LineItem, len(p.items))
	copy(items, p.items)
	return items
}

// TotalAmount returns the rounded preview subtotal.
func (p *Preview) TotalAmount() float64 {
	return p.totalAmount
}

// SafetyDecision returns the policy decision recorded at preview time.
func (p *Preview) SafetyDecision() safety.Decision {
	return p.safetyDecision
}

// SafetyReasons returns the policy reasons recorded at preview time.
func (p *Preview) SafetyReasons() []string {
	return p.safetyReasons
}

// RequiresPrescription reports whether any previewed item needs a
// prescription.
func (p *Preview) RequiresPrescription() bool {
	return p.requiresPrescription
}

// CreatedAt returns the preview creation timestamp.
func (p *Preview) CreatedAt() time.Time {
	return p.createdAt
}

// ItemSummary renders all previewed items as a single comma-separated
// summary for conversational replies.
func (p *Preview) ItemSummary() string {
	parts := make([]string, len(p.items))
	for i, item := range p.items {
		parts[i] = item.Summary()
	}
	return strings.Join(parts, ", ")
}
