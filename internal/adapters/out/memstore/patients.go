package memstore

import (
	"context"
	"sync"

	"pharmacy/internal/core/domain/model/patient"
	"pharmacy/internal/pkg/errs"
)

// PatientStore is the in-memory patient gateway. The patient set comes from
// the seeded history data and is read-only at runtime.
type PatientStore struct {
	mu       sync.RWMutex
	patients map[string]patient.Patient
	order    []string
}

// NewPatientStore creates a patient store seeded with the given patients.
func NewPatientStore(patients []patient.Patient) *PatientStore {
	s := &PatientStore{
		patients: make(map[string]patient.Patient, len(patients)),
		order:    make([]string, 0, len(patients)),
	}
	for _, p := range patients {
		if _, exists := s.patients[p.ID()]; !exists {
			s.order = append(s.order, p.ID())
		}
		s.patients[p.ID()] = p
	}
	return s
}

// GetByID returns the patient with the given id.
func (s *PatientStore) GetByID(_ context.Context, id string) (patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.patients[id]
	if !ok {
		return patient.Patient{}, errs.NewObjectNotFoundError("patientId", id)
	}
	return p, nil
}

// ListAll returns every patient in seed order.
func (s *PatientStore) ListAll(_ context.Context) ([]patient.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]patient.Patient, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.patients[id])
	}
	return all, nil
}
