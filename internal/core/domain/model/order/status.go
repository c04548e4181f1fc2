package order

import (
	"pharmacy/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
// It implements a state machine with defined transitions so orders always
// follow a monotonic forward progression and no transition is ever reverted.
//
// The confirmation pipeline drives
//
//	PENDING -> VALIDATED -> CONFIRMED -> PROCESSING
//
// with the warehouse and delivery flow continuing through PREPARING,
// PROCESSING, SHIPPED, DELIVERED and COMPLETED. CANCELLED and FAILED are
// reachable from any non-terminal state; BLOCKED marks orders stopped by a
// safety or stock problem before fulfillment.
type Status string

const (
	// StatusPending is the initial status assigned at creation.
	StatusPending Status = "PENDING"

	// StatusValidated means the safety validation step has been recorded.
	StatusValidated Status = "VALIDATED"

	// StatusConfirmed means the patient confirmed the order.
	StatusConfirmed Status = "CONFIRMED"

	// StatusPreparing means the order is being picked and packed.
	StatusPreparing Status = "PREPARING"

	// StatusProcessing means the order was handed to the warehouse for
	// fulfillment. Re-entry is allowed: warehouse acknowledgements may
	// arrive after the confirmation pipeline already advanced the order.
	StatusProcessing Status = "PROCESSING"

	// StatusShipped means the package left the warehouse.
	StatusShipped Status = "SHIPPED"

	// StatusDelivered means the package reached the patient.
	StatusDelivered Status = "DELIVERED"

	// StatusCompleted is the successful terminal state.
	StatusCompleted Status = "COMPLETED"

	// StatusCancelled is the terminal state for cancelled orders.
	StatusCancelled Status = "CANCELLED"

	// StatusBlocked marks orders stopped before fulfillment, e.g. stock
	// consumed by a concurrent confirmation. Blocked orders can only be
	// cancelled.
	StatusBlocked Status = "BLOCKED"

	// StatusFailed is the terminal state for unrecoverable failures.
	StatusFailed Status = "FAILED"
)

// getValidStatuses returns the set of all valid Status values.
func getValidStatuses() map[Status]struct{} {
	return map[Status]struct{}{
		StatusPending:    {},
		StatusValidated:  {},
		StatusConfirmed:  {},
		StatusPreparing:  {},
		StatusProcessing: {},
		StatusShipped:    {},
		StatusDelivered:  {},
		StatusCompleted:  {},
		StatusCancelled:  {},
		StatusBlocked:    {},
		StatusFailed:     {},
	}
}

// getAllowedPredecessors returns, per target status, the set of states a
// transition may originate from. CANCELLED and FAILED are handled separately
// because they are reachable from any non-terminal state.
func getAllowedPredecessors() map[Status][]Status {
	return map[Status][]Status{
		StatusValidated:  {StatusPending},
		StatusConfirmed:  {StatusPending, StatusValidated},
		StatusPreparing:  {StatusConfirmed},
		StatusProcessing: {StatusConfirmed, StatusPreparing, StatusProcessing},
		StatusShipped:    {StatusProcessing},
		StatusDelivered:  {StatusShipped},
		StatusCompleted:  {StatusDelivered},
		StatusBlocked:    {StatusPending, StatusValidated},
	}
}

// Validate checks if the Status value is one of the defined states.
//
// Returns:
//   - nil if the status is valid
//   - ValueIsInvalidError if the status is unknown
func (s Status) Validate() error {
	if _, ok := getValidStatuses()[s]; !ok {
		return errs.NewValueIsInvalidError("status " + string(s))
	}
	return nil
}

// String returns the wire representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are allowed from s.
// COMPLETED, CANCELLED and FAILED are terminal.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusFailed
}

// CanTransitionTo reports whether the state machine allows moving from s to
// next. Terminal states allow nothing. CANCELLED and FAILED accept any
// non-terminal predecessor; every other target consults the predecessor
// table.
func (s Status) CanTransitionTo(next Status) bool {
	if s.Validate() != nil || next.Validate() != nil {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == StatusCancelled || next == StatusFailed {
		return true
	}

	for _, from := range getAllowedPredecessors()[next] {
		if from == s {
			return true
		}
	}
	return false
}

// TransitionTo performs a validated transition.
//
// Returns:
//   - (next, nil) when the transition is allowed
//   - ("", InvalidStateError) when it is not
func (s Status) TransitionTo(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return "", errs.NewInvalidStateError("order", s.String(), next.String())
	}
	return next, nil
}
