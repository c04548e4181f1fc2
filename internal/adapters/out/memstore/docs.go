// Package memstore provides the in-memory implementations of the catalog,
// patient and purchase-history gateways. Persistence is deliberately
// process-lifetime only; each store owns its lock and all cross-session
// mutation (stock decrements, history appends) happens under it.
package memstore
