// Package patient holds the patient identity value object. Patient records
// originate in the history data set; the service never creates or mutates
// them beyond lookup.
package patient

import (
	"errors"

	"pharmacy/internal/pkg/errs"
	"pharmacy/internal/pkg/guard"
)

var (
	// ErrPatientIsNotConstructed is returned when a Patient instance was
	// not created through the NewPatient factory method.
	ErrPatientIsNotConstructed = errors.New("Patient must be created via NewPatient constructor")
)

// Patient identifies the person holding a conversation and receiving orders.
type Patient struct {
	id    string
	name  string
	email string
	phone string

	guard guard.ConstructorGuard
}

// NewPatient creates a validated patient record. ID and name are required;
// email and phone are contact fields forwarded to the fulfillment webhook.
func NewPatient(id, name, email, phone string) (Patient, error) {
	if id == "" {
		return Patient{}, errs.NewValueIsRequiredError("patient id")
	}
	if name == "" {
		return Patient{}, errs.NewValueIsRequiredError("patient name")
	}

	return Patient{
		id:    id,
		name:  name,
		email: email,
		phone: phone,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the Patient was created through NewPatient.
func (p Patient) Validate() error {
	return p.guard.Validate(ErrPatientIsNotConstructed)
}

// ID returns the patient identifier.
func (p Patient) ID() string {
	return p.id
}

// Name returns the patient's display name.
func (p Patient) Name() string {
	return p.name
}

// Email returns the contact email address.
func (p Patient) Email() string {
	return p.email
}

// Phone returns the contact phone number.
func (p Patient) Phone() string {
	return p.phone
}
