package order

import "time"

// EventStatus tags a timeline event with its pipeline progress.
type EventStatus string

const (
	EventCompleted EventStatus = "completed"
	EventCurrent   EventStatus = "current"
	EventPending   EventStatus = "pending"
	EventBlocked   EventStatus = "blocked"
)

// TimelineEvent is one append-only audit record of a pipeline step against
// an order. Events are never edited or removed; together they form the
// audit trail returned alongside the order.
type TimelineEvent struct {
	AgentName   string      `json:"agent_name"`
	Action      string      `json:"action"`
	Description string      `json:"description"`
	Status      EventStatus `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
}

// StatusUpdate is one entry in an order's status history.
type StatusUpdate struct {
	OrderID   string    `json:"order_id"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
