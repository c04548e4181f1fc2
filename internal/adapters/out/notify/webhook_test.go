package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pharmacy/internal/adapters/out/notify"
	"pharmacy/internal/core/ports"
	"pharmacy/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() ports.FulfillmentRequest {
	return ports.FulfillmentRequest{
		OrderID: "ORD-20260831-AB12CD",
		Items: []ports.FulfillmentItem{
			{MedicineID: "MED001", MedicineName: "Paracetamol", Quantity: 30},
		},
		DeliveryType:   "HOME_DELIVERY",
		PatientName:    "John Smith",
		PatientEmail:   "john@example.com",
		PatientPhone:   "+1-555-0101",
		PatientAddress: "123 Main St, City, State 12345",
		Priority:       "NORMAL",
	}
}

func TestWebhookNotifier(t *testing.T) {
	t.Run("should post the fulfillment payload as JSON", func(t *testing.T) {
		var received ports.FulfillmentRequest
		var contentType string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType = r.Header.Get("Content-Type")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		notifier := notify.NewWebhookNotifier(server.URL)
		err := notifier.NotifyFulfillment(context.Background(), sampleRequest())

		require.NoError(t, err)
		assert.Equal(t, "application/json", contentType)
		assert.Equal(t, "ORD-20260831-AB12CD", received.OrderID)
		assert.Equal(t, "HOME_DELIVERY", received.DeliveryType)
		require.Len(t, received.Items, 1)
		assert.Equal(t, 30, received.Items[0].Quantity)
	})

	t.Run("should report non-200 responses as upstream unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "warehouse offline", http.StatusServiceUnavailable)
		}))
		defer server.Close()

		notifier := notify.NewWebhookNotifier(server.URL)
		err := notifier.NotifyFulfillment(context.Background(), sampleRequest())

		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrUpstreamUnavailable))
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("should report connection failures as upstream unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		server.Close()

		notifier := notify.NewWebhookNotifier(server.URL)
		err := notifier.NotifyFulfillment(context.Background(), sampleRequest())

		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrUpstreamUnavailable))
	})
}
