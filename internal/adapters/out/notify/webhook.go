// Package notify implements the fulfillment notifier port as an outbound
// webhook to the warehouse endpoint.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"pharmacy/internal/core/ports"
	"pharmacy/internal/pkg/errs"
)

// notifyTimeout bounds the single delivery attempt. There is no retry; a
// failed notification is logged by the caller and never blocks the
// confirmation flow.
const notifyTimeout = 10 * time.Second

// WebhookNotifier posts fulfillment requests to the configured warehouse
// URL.
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a notifier for the given warehouse URL.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: notifyTimeout},
	}
}

// NotifyFulfillment posts the payload once. Non-2xx responses and network
// failures are reported as UpstreamUnavailable.
func (n *WebhookNotifier) NotifyFulfillment(ctx context.Context, request ports.FulfillmentRequest) error {
	payload, err := json.Marshal(request)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return errs.NewUpstreamUnavailableErrorWithCause("warehouse webhook", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errs.NewUpstreamUnavailableErrorWithCause("warehouse webhook",
			fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}
	return nil
}
