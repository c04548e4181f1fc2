package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"pharmacy/internal/adapters/out/llm"
	"pharmacy/internal/core/domain/model/conversation"
	"pharmacy/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedCall struct {
	path          string
	authorization string
	body          map[string]any
}

// completionServer fakes the chat-completions endpoint: it records each
// request and replies with the given message content.
func completionServer(t *testing.T, content string, calls *[]capturedCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*calls = append(*calls, capturedCall{
			path:          r.URL.Path,
			authorization: r.Header.Get("Authorization"),
			body:          body,
		})
		fmt.Fprintf(w, `{"choices":[{"message":{"content":%q}}]}`, content)
	}))
}

func newTestClient(baseURL string) *llm.Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return llm.NewClient(baseURL, "test-key", "intent-model", "extraction-model", logger)
}

func patientCtx() conversation.PatientContext {
	return conversation.PatientContext{
		PatientID:        "P001",
		PatientName:      "John Smith",
		RecentOrderCount: 2,
	}
}

func TestClassifyIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("should parse the structured intent from the completion", func(t *testing.T) {
		var calls []capturedCall
		server := completionServer(t,
			`{"intent":"ORDER","confidence":0.92,"response_draft":"Sure, let me prepare that."}`, &calls)
		defer server.Close()

		result, err := newTestClient(server.URL).ClassifyIntent(ctx, "I need paracetamol", patientCtx(), nil)

		require.NoError(t, err)
		assert.Equal(t, conversation.IntentOrder, result.Intent)
		assert.InDelta(t, 0.92, result.Confidence, 0.001)

		require.Len(t, calls, 1)
		assert.Equal(t, "/chat/completions", calls[0].path)
		assert.Equal(t, "Bearer test-key", calls[0].authorization)
		assert.Equal(t, "intent-model", calls[0].body["model"])
	})

	t.Run("should map unknown intent labels to general inquiry", func(t *testing.T) {
		var calls []capturedCall
		server := completionServer(t, `{"intent":"SOMETHING_ELSE","confidence":0.4}`, &calls)
		defer server.Close()

		result, err := newTestClient(server.URL).ClassifyIntent(ctx, "hmm", patientCtx(), nil)

		require.NoError(t, err)
		assert.Equal(t, conversation.IntentGeneralInquiry, result.Intent)
	})

	t.Run("should tolerate malformed completion content", func(t *testing.T) {
		var calls []capturedCall
		server := completionServer(t, `not json at all`, &calls)
		defer server.Close()

		result, err := newTestClient(server.URL).ClassifyIntent(ctx, "hello", patientCtx(), nil)

		require.NoError(t, err)
		assert.Equal(t, conversation.IntentGeneralInquiry, result.Intent)
	})

	t.Run("should report upstream errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer server.Close()

		_, err := newTestClient(server.URL).ClassifyIntent(ctx, "hello", patientCtx(), nil)

		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrUpstreamUnavailable))
	})

	t.Run("should send at most the last ten transcript turns", func(t *testing.T) {
		var calls []capturedCall
		server := completionServer(t, `{"intent":"ORDER","confidence":0.9}`, &calls)
		defer server.Close()

		window := make([]conversation.Message, 14)
		for i := range window {
			window[i] = conversation.Message{
				Role:    conversation.RoleUser,
				Content: fmt.Sprintf("turn %d", i),
			}
		}

		_, err := newTestClient(server.URL).ClassifyIntent(ctx, "I need paracetamol", patientCtx(), window)
		require.NoError(t, err)

		require.Len(t, calls, 1)
		messages := calls[0].body["messages"].([]any)
		// Two system blocks, ten history turns, the inbound message.
		assert.Len(t, messages, 13)
		first := messages[2].(map[string]any)
		assert.Equal(t, "turn 4", first["content"])
	})
}

func TestExtractEntities(t *testing.T) {
	ctx := context.Background()

	t.Run("should parse the structured entities from the completion", func(t *testing.T) {
		var calls []capturedCall
		server := completionServer(t,
			`{"entities":[{"medicine":"Metformin","dosage":"500mg","quantity":60,"confidence":0.95}],"needs_clarification":false}`,
			&calls)
		defer server.Close()

		result, err := newTestClient(server.URL).ExtractEntities(ctx, "metformin 500mg, 60 tablets", patientCtx(), nil)

		require.NoError(t, err)
		require.Len(t, result.Entities, 1)
		assert.Equal(t, "Metformin", result.Entities[0].Medicine)
		assert.Equal(t, 60, result.Entities[0].Quantity)
		assert.False(t, result.NeedsClarification)

		require.Len(t, calls, 1)
		assert.Equal(t, "extraction-model", calls[0].body["model"])
	})

	t.Run("should degrade to a clarification request when the upstream fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		result, err := newTestClient(server.URL).ExtractEntities(ctx, "metformin", patientCtx(), nil)

		require.NoError(t, err)
		assert.True(t, result.NeedsClarification)
		assert.NotEmpty(t, result.ClarificationMessage)
	})

	t.Run("should degrade to a clarification request on malformed output", func(t *testing.T) {
		var calls []capturedCall
		server := completionServer(t, `{{{`, &calls)
		defer server.Close()

		result, err := newTestClient(server.URL).ExtractEntities(ctx, "metformin", patientCtx(), nil)

		require.NoError(t, err)
		assert.True(t, result.NeedsClarification)
	})
}
