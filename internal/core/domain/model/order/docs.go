// Package order contains the order aggregate and its satellites: the status
// state machine, line items, previews, receipts, the price table and the
// append-only timeline records.
//
// An order is created only from a confirmed preview and then advances
// through the Status state machine; the timeline and status history record
// every step for the audit trail.
package order
