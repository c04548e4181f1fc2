// Package llm implements the intent classifier and entity extractor ports
// against an OpenAI-compatible chat-completions endpoint. The transport is a
// plain HTTP POST with a bounded timeout; malformed model output degrades to
// the safe defaults the orchestrator expects instead of surfacing an error
// to the end user.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"pharmacy/internal/core/domain/model/conversation"
	"pharmacy/internal/pkg/errs"
)

const (
	requestTimeout = 15 * time.Second

	// intentHistoryWindow and extractionHistoryWindow bound how many
	// transcript turns go upstream with each call.
	intentHistoryWindow     = 10
	extractionHistoryWindow = 6
)

// Client calls an OpenAI-compatible chat-completions API. One client serves
// both the classifier and extractor ports, with a model name per concern.
type Client struct {
	baseURL         string
	apiKey          string
	intentModel     string
	extractionModel string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient creates a client for the given endpoint and models.
func NewClient(baseURL, apiKey, intentModel, extractionModel string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:         baseURL,
		apiKey:          apiKey,
		intentModel:     intentModel,
		extractionModel: extractionModel,
		httpClient:      &http.Client{Timeout: requestTimeout},
		logger:          logger.With("component", "llm_client"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ClassifyIntent sends the system instructions, the patient context block
// and the last turns of the transcript, and parses the structured intent.
// Malformed model output is tolerated by treating the message as a general
// inquiry; transport failures are reported as UpstreamUnavailable for the
// orchestrator to degrade on.
func (c *Client) ClassifyIntent(
	ctx context.Context,
	message string,
	patientCtx conversation.PatientContext,
	historyWindow []conversation.Message,
) (conversation.IntentResult, error) {
	patientBlock := fmt.Sprintf(
		"Current Patient Information:\n- Name: %s\n- ID: %s\n- Recent Orders: %d orders on file",
		patientCtx.PatientName, patientCtx.PatientID, patientCtx.RecentOrderCount)

	messages := []chatMessage{
		{Role: "system", Content: intentSystemPrompt},
		{Role: "system", Content: patientBlock},
	}
	messages = appendHistory(messages, historyWindow, intentHistoryWindow)
	messages = append(messages, chatMessage{Role: "user", Content: message})

	content, err := c.complete(ctx, c.intentModel, messages, 0.7, 800)
	if err != nil {
		return conversation.IntentResult{}, err
	}

	var result conversation.IntentResult
	if jsonErr := json.Unmarshal([]byte(content), &result); jsonErr != nil {
		c.logger.WarnContext(ctx, "Intent classifier returned malformed output, treating as general inquiry",
			"error", jsonErr)
		return conversation.IntentResult{Intent: conversation.IntentGeneralInquiry}, nil
	}

	result.Intent = conversation.ParseIntent(string(result.Intent))
	return result, nil
}

// ExtractEntities sends the system instructions, the recent-orders context
// and the last turns of the transcript, and parses the structured entities.
// Any failure degrades to a needs-clarification result so the user always
// receives a coherent reply.
func (c *Client) ExtractEntities(
	ctx context.Context,
	message string,
	patientCtx conversation.PatientContext,
	historyWindow []conversation.Message,
) (conversation.ExtractionResult, error) {
	messages := []chatMessage{
		{Role: "system", Content: extractionSystemPrompt},
	}
	if patientCtx.RecentOrderCount > 0 {
		messages = append(messages, chatMessage{
			Role: "system",
			Content: fmt.Sprintf("The patient %s has %d recent medication orders on file.",
				patientCtx.PatientName, patientCtx.RecentOrderCount),
		})
	}
	messages = appendHistory(messages, historyWindow, extractionHistoryWindow)
	messages = append(messages, chatMessage{Role: "user", Content: message})

	content, err := c.complete(ctx, c.extractionModel, messages, 0.3, 1000)
	if err != nil {
		c.logger.WarnContext(ctx, "Entity extraction failed, asking for clarification", "error", err)
		return clarificationFallback(), nil
	}

	var result conversation.ExtractionResult
	if jsonErr := json.Unmarshal([]byte(content), &result); jsonErr != nil {
		c.logger.WarnContext(ctx, "Entity extractor returned malformed output, asking for clarification",
			"error", jsonErr)
		return clarificationFallback(), nil
	}
	return result, nil
}

func clarificationFallback() conversation.ExtractionResult {
	return conversation.ExtractionResult{
		NeedsClarification:   true,
		ClarificationMessage: "I had trouble understanding your request. Could you please rephrase it?",
	}
}

func appendHistory(messages []chatMessage, window []conversation.Message, limit int) []chatMessage {
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	for _, msg := range window {
		messages = append(messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return messages
}

func (c *Client) complete(
	ctx context.Context, model string, messages []chatMessage, temperature float64, maxTokens int,
) (string, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	reqBody.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errs.NewUpstreamUnavailableErrorWithCause("text understanding service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errs.NewUpstreamUnavailableErrorWithCause("text understanding service",
			fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}

	var parsed chatResponse
	if err = json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errs.NewUpstreamUnavailableErrorWithCause("text understanding service", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errs.NewUpstreamUnavailableError("text understanding service")
	}
	return parsed.Choices[0].Message.Content, nil
}
