package ports

import (
	"context"
	"time"

	"pharmacy/internal/core/domain/model/history"
	"pharmacy/internal/core/domain/model/patient"
)

// PatientGateway resolves patient identities from the historical data set.
type PatientGateway interface {
	GetByID(ctx context.Context, id string) (patient.Patient, error)
	ListAll(ctx context.Context) ([]patient.Patient, error)
}

// HistoryGateway serves a patient's purchase history. RefillCandidates
// returns one supply snapshot per medication that is due for a refill
// (at most 14 days of supply remaining) as of the given date.
// AppendPurchase records confirmed order lines so future refill queries
// see them.
type HistoryGateway interface {
	RefillCandidates(ctx context.Context, patientID string, asOf time.Time) ([]history.RefillCandidate, error)
	RecentOrderCount(ctx context.Context, patientID string) (int, error)
	AppendPurchase(ctx context.Context, record history.PurchaseRecord) error
}
