// Package safety holds the policy-decision value types shared by the
// evaluator, previews and the audit timeline.
package safety

// Decision is the outcome of policy evaluation over requested items.
type Decision string

const (
	// DecisionApprove means all checks passed and the order may proceed.
	DecisionApprove Decision = "APPROVE"

	// DecisionConditional means the order may proceed with conditions,
	// such as a pending prescription or a reduced quantity.
	DecisionConditional Decision = "CONDITIONAL"

	// DecisionReject means the order cannot be fulfilled at all.
	DecisionReject Decision = "REJECT"
)

// Result carries a decision plus the reasons behind it.
//
// AllowedQuantity is a cap forced by stock or per-order limits; it is nil
// when no cap applies. Once set by an item during an evaluation pass it is
// not overwritten by later items.
type Result struct {
	Decision             Decision `json:"decision"`
	Reasons              []string `json:"reasons"`
	AllowedQuantity      *int     `json:"allowed_quantity,omitempty"`
	RequiresFollowup     bool     `json:"requires_followup"`
	RequiresPrescription bool     `json:"requires_prescription"`
	BlockedItems         []string `json:"blocked_items"`
}
