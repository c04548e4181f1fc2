package services

import (
	"fmt"

	"pharmacy/internal/core/domain/model/medicine"
	"pharmacy/internal/core/domain/model/safety"
)

// DefaultRequestedQuantity is assumed when a review item carries no
// requested quantity.
const DefaultRequestedQuantity = 30

// ReviewItem pairs a matched catalog entry with the quantity the user asked
// for. Callers build the pair list once, with a defined policy for entities
// that matched nothing (skip and record a reason); the evaluator never
// indexes across parallel slices. RequestedQuantity 0 means unspecified and
// defaults to DefaultRequestedQuantity.
type ReviewItem struct {
	Medicine          medicine.Medicine
	RequestedQuantity int
}

// SafetyEvaluator applies the ordered policy rules over matched items.
// It is a pure function of its inputs and makes no external calls.
type SafetyEvaluator struct{}

// NewSafetyEvaluator creates the policy evaluator.
func NewSafetyEvaluator() SafetyEvaluator {
	return SafetyEvaluator{}
}

// Evaluate runs the policy rules over each item in order:
//
//  1. Discontinued medicines are blocked outright.
//  2. Prescription-required medicines set the prescription flag and, absent
//     a prescription on file, add a reason without blocking.
//  3. Controlled substances add a reason and require follow-up.
//  4. Zero stock blocks the item.
//  5. Stock below the requested quantity caps the allowed quantity at
//     min(stock, per-order max).
//  6. A request above the per-order max caps at the max.
//
// The decision is REJECT iff every item is blocked, CONDITIONAL when any
// item is blocked, a prescription is missing, a cap applies or follow-up is
// required, and APPROVE otherwise.
//
// The allowed-quantity cap is a single scalar for the whole pass: the first
// item to set it wins and later items never overwrite it, even across
// unrelated medicines.
func (SafetyEvaluator) Evaluate(items []ReviewItem, hasPrescription bool) safety.Result {
	var (
		reasons              []string
		blockedItems         []string
		allowedQuantity      *int
		requiresPrescription bool
		requiresFollowup     bool
	)

	for _, item := range items {
		med := item.Medicine
		requestedQty := item.RequestedQuantity
		if requestedQty <= 0 {
			requestedQty = DefaultRequestedQuantity
		}

		if med.Discontinued() {
			blockedItems = append(blockedItems, med.Name())
			reasons = append(reasons,
				fmt.Sprintf("%s has been discontinued and is no longer available.", med.Name()))
			continue
		}

		if med.PrescriptionRequired() {
			requiresPrescription = true
			if !hasPrescription {
				reasons = append(reasons,
					fmt.Sprintf("%s requires a valid prescription.", med.Name()))
			}
		}

		if med.ControlledSubstance() {
			reasons = append(reasons,
				fmt.Sprintf("%s is a controlled substance. Special handling required.", med.Name()))
			requiresFollowup = true
		}

		if med.StockLevel() == 0 {
			blockedItems = append(blockedItems, med.Name())
			reasons = append(reasons,
				fmt.Sprintf("%s is currently out of stock.", med.Name()))
			continue
		}

		if med.StockLevel() < requestedQty && allowedQuantity == nil {
			capped := min(med.StockLevel(), med.MaxQuantityPerOrder())
			allowedQuantity = &capped
			reasons = append(reasons,
				fmt.Sprintf("Limited stock available for %s. Maximum quantity: %d", med.Name(), capped))
		}

		if requestedQty > med.MaxQuantityPerOrder() {
			if allowedQuantity == nil {
				capped := med.MaxQuantityPerOrder()
				allowedQuantity = &capped
			}
			reasons = append(reasons,
				fmt.Sprintf("Maximum quantity per order for %s is %d", med.Name(), med.MaxQuantityPerOrder()))
		}
	}

	decision := safety.DecisionApprove
	switch {
	case len(blockedItems) > 0 && len(blockedItems) == len(items):
		decision = safety.DecisionReject
	case len(blockedItems) > 0 || (requiresPrescription && !hasPrescription):
		decision = safety.DecisionConditional
	case requiresFollowup || allowedQuantity != nil:
		decision = safety.DecisionConditional
	default:
		if len(reasons) == 0 {
			reasons = append(reasons, "All safety checks passed.")
		}
	}

	return safety.Result{
		Decision:             decision,
		Reasons:              reasons,
		AllowedQuantity:      allowedQuantity,
		RequiresFollowup:     requiresFollowup,
		RequiresPrescription: requiresPrescription,
		BlockedItems:         blockedItems,
	}
}
