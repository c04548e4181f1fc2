// Package services contains stateless domain services: the safety policy
// evaluator and the refill predictor. Both are pure functions of their
// inputs and make no external calls, which keeps the highest-stakes logic
// trivially testable.
package services
