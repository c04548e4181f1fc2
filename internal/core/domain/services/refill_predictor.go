package services

import (
	"fmt"
	"sort"
	"time"

	"pharmacy/internal/core/domain/model/history"
)

// RefillAction is the recommended handling for a medication running low.
type RefillAction string

const (
	// ActionRemind sends a reminder to the patient.
	ActionRemind RefillAction = "REMIND"

	// ActionAutoRefill schedules an automatic refill.
	ActionAutoRefill RefillAction = "AUTO_REFILL"

	// ActionBlock means the refill needs intervention before it can proceed.
	ActionBlock RefillAction = "BLOCK"
)

// Urgency is the refill priority derived solely from days of supply
// remaining.
type Urgency string

const (
	UrgencyCritical Urgency = "CRITICAL"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyLow      Urgency = "LOW"
)

// getUrgencyRank orders urgencies for sorting, most urgent first.
func getUrgencyRank() map[Urgency]int {
	return map[Urgency]int{
		UrgencyCritical: 0,
		UrgencyHigh:     1,
		UrgencyMedium:   2,
		UrgencyLow:      3,
	}
}

// RefillPrediction is the urgency-classified recommendation for one
// medication of one patient. Predictions are ephemeral and recomputed on
// each query.
type RefillPrediction struct {
	PatientID        string       `json:"patient_id"`
	PatientName      string       `json:"patient_name"`
	Medicine         string       `json:"medicine"`
	MedicineID       string       `json:"medicine_id"`
	DaysRemaining    int          `json:"days_remaining"`
	LastPurchaseDate string       `json:"last_purchase_date"`
	Action           RefillAction `json:"action"`
	Justification    string       `json:"justification"`
	Urgency          Urgency      `json:"urgency"`
}

// RefillPredictor classifies per-medication supply records into refill
// recommendations. Classification is a pure function of days remaining:
//
//	<= 0   BLOCK       CRITICAL
//	 1-3   REMIND      HIGH
//	 4-7   AUTO_REFILL MEDIUM
//	 8-14  REMIND      LOW
//	 > 14  excluded
type RefillPredictor struct{}

// NewRefillPredictor creates the predictor.
func NewRefillPredictor() RefillPredictor {
	return RefillPredictor{}
}

// Predict returns one prediction per candidate with at most 14 days of
// supply remaining. Candidates with more supply are silently excluded.
func (RefillPredictor) Predict(
	patientID, patientName string,
	candidates []history.RefillCandidate,
) []RefillPrediction {
	var predictions []RefillPrediction

	for _, med := range candidates {
		var (
			action        RefillAction
			urgency       Urgency
			justification string
		)

		switch {
		case med.DaysRemaining <= 0:
			action = ActionBlock
			urgency = UrgencyCritical
			justification = fmt.Sprintf(
				"Medication supply exhausted. %s's prescription may need renewal before refill.",
				patientName)
		case med.DaysRemaining <= 3:
			action = ActionRemind
			urgency = UrgencyHigh
			justification = fmt.Sprintf(
				"Only %d days of supply remaining for %s. Recommend immediate refill.",
				med.DaysRemaining, patientName)
		case med.DaysRemaining <= 7:
			action = ActionAutoRefill
			urgency = UrgencyMedium
			justification = fmt.Sprintf(
				"Running low on supply (%d days). Auto-refill scheduled for %s.",
				med.DaysRemaining, patientName)
		case med.DaysRemaining <= 14:
			action = ActionRemind
			urgency = UrgencyLow
			justification = fmt.Sprintf(
				"Supply adequate for %d days. Reminder sent to %s for planning.",
				med.DaysRemaining, patientName)
		default:
			continue
		}

		predictions = append(predictions, RefillPrediction{
			PatientID:        patientID,
			PatientName:      patientName,
			Medicine:         med.MedicineName,
			MedicineID:       med.MedicineID,
			DaysRemaining:    med.DaysRemaining,
			LastPurchaseDate: med.LastPurchaseDate.Format(time.DateOnly),
			Action:           action,
			Justification:    justification,
			Urgency:          urgency,
		})
	}

	return predictions
}

// SortByUrgency orders predictions most urgent first. The sort is stable so
// ties preserve the relative input order; batch callers rely on this when
// concatenating per-patient predictions.
func SortByUrgency(predictions []RefillPrediction) {
	rank := getUrgencyRank()
	sort.SliceStable(predictions, func(i, j int) bool {
		return rank[predictions[i].Urgency] < rank[predictions[j].Urgency]
	})
}
