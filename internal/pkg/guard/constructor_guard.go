// Package guard provides a defensive construction pattern for domain objects.
// Embedding a ConstructorGuard in a struct makes zero-value instances
// detectable, so objects that bypass their designated constructor fail
// validation instead of circulating in an invalid state.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by ConstructorGuard.Validate when a
// nil validation error is passed. Validation always fails with a meaningful
// message even if no specific error is provided.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard ensures value objects and entities are only created
// through their designated constructor functions. The guard keeps an internal
// flag that is only set when the object is created through the constructor;
// a zero-value struct fails validation.
//
// Example usage:
//
//	var ErrPreviewNotConstructed = errors.New("Preview must be created via NewPreview")
//
//	type Preview struct {
//	    items []LineItem
//	    guard guard.ConstructorGuard
//	}
//
//	func NewPreview(items []LineItem) (Preview, error) {
//	    if len(items) == 0 {
//	        return Preview{}, errors.New("items are required")
//	    }
//	    return Preview{items: items, guard: guard.NewConstructorGuard()}, nil
//	}
//
//	func (p Preview) Validate() error {
//	    return p.guard.Validate(ErrPreviewNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard creates a ConstructorGuard that marks an object as
// properly constructed. Call it in the constructor of domain objects.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate checks whether the guarded object was created through its
// constructor. Returns nil for constructed objects, validationError for
// zero values, or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
