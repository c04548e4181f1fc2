package order_test

import (
	"strings"
	"testing"
	"time"

	"pharmacy/internal/core/domain/model/order"
	"pharmacy/internal/core/domain/model/safety"
	"pharmacy/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreviewID(t *testing.T) {
	t.Run("should generate an uppercase eight character token", func(t *testing.T) {
		id := order.NewPreviewID()

		assert.True(t, strings.HasPrefix(id, "PRV-"))
		assert.Len(t, id, len("PRV-")+8)
		assert.Equal(t, strings.ToUpper(id), id)
	})
}

func TestNewPreview(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	approved := safety.Result{
		Decision: safety.DecisionApprove,
		Reasons:  []string{"All safety checks passed."},
	}

	t.Run("should carry the safety outcome and rounded total", func(t *testing.T) {
		items := []order.LineItem{
			mustLineItem(t, "MED002", "Metformin", "500mg", 60, 0.20),
		}

		preview, err := order.NewPreview("PRV-AB12CD34", "P001", "John Smith", items, approved, now)

		require.NoError(t, err)
		assert.Equal(t, "PRV-AB12CD34", preview.ID())
		assert.InDelta(t, 12.00, preview.TotalAmount(), 0.001)
		assert.Equal(t, safety.DecisionApprove, preview.SafetyDecision())
		assert.False(t, preview.RequiresPrescription())
		assert.Equal(t, now, preview.CreatedAt())
	})

	t.Run("should require items", func(t *testing.T) {
		_, err := order.NewPreview("PRV-AB12CD34", "P001", "John Smith", nil, approved, now)
		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should fail validation when not constructed via factory", func(t *testing.T) {
		var preview order.Preview
		assert.ErrorIs(t, preview.Validate(), order.ErrPreviewIsNotConstructed)
	})
}
