package errs_test

import (
	"errors"
	"testing"

	"pharmacy/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("patientId", "P001")

		assert.Equal(t, "patientId", err.ParamName)
		assert.Equal(t, "P001", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: P001", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("store lookup failed")
		err := errs.NewObjectNotFoundErrorWithCause("orderId", "ORD-1", cause)

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "ORD-1", err.ID)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: orderId, ID is: ORD-1 (cause: store lookup failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("classifiable with errors.Is", func(t *testing.T) {
		var err error = errs.NewObjectNotFoundError("medicineId", "M042")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("message")

		assert.Equal(t, "message", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: message", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("empty request body")
		err := errs.NewValueIsRequiredErrorWithCause("message", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is required: message (cause: empty request body)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("quantity")

		assert.Equal(t, "quantity", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: quantity", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("not a positive number")
		err := errs.NewValueIsInvalidErrorWithCause("quantity", cause)

		assert.Equal(t, "quantity", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: quantity (cause: not a positive number)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("quantity", 120, 1, 90)

		assert.Equal(t, "quantity", err.ParamName)
		assert.Equal(t, 120, err.Value)
		assert.Equal(t, 1, err.Min)
		assert.Equal(t, 90, err.Max)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: 120 is quantity, min value is 1, max value is 90", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})
}

func TestInvalidStateError(t *testing.T) {
	t.Run("NewInvalidStateError", func(t *testing.T) {
		err := errs.NewInvalidStateError("order", "CANCELLED", "CONFIRMED")

		assert.Equal(t, "order", err.ParamName)
		assert.Equal(t, "CANCELLED", err.CurrentState)
		assert.Equal(t, "CONFIRMED", err.RequestedState)
		require.NoError(t, err.Cause)
		assert.Equal(t, "invalid state: order cannot go from CANCELLED to CONFIRMED", err.Error())
		assert.Equal(t, errs.ErrInvalidState, err.Unwrap())
	})

	t.Run("NewInvalidStateErrorWithCause", func(t *testing.T) {
		cause := errors.New("terminal status")
		err := errs.NewInvalidStateErrorWithCause("order", "COMPLETED", "CANCELLED", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"invalid state: order cannot go from COMPLETED to CANCELLED (cause: terminal status)",
			err.Error())
	})

	t.Run("classifiable with errors.Is", func(t *testing.T) {
		var err error = errs.NewInvalidStateError("order", "CANCELLED", "CONFIRMED")
		assert.ErrorIs(t, err, errs.ErrInvalidState)
	})
}

func TestUpstreamUnavailableError(t *testing.T) {
	t.Run("NewUpstreamUnavailableError", func(t *testing.T) {
		err := errs.NewUpstreamUnavailableError("intent classifier")

		assert.Equal(t, "intent classifier", err.ServiceName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "upstream unavailable: intent classifier", err.Error())
		assert.Equal(t, errs.ErrUpstreamUnavailable, err.Unwrap())
	})

	t.Run("NewUpstreamUnavailableErrorWithCause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := errs.NewUpstreamUnavailableErrorWithCause("warehouse webhook", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "upstream unavailable: warehouse webhook (cause: connection refused)", err.Error())
		assert.ErrorIs(t, err, errs.ErrUpstreamUnavailable)
	})
}
