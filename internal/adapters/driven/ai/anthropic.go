package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nyaya-labs/nyaya-core/internal/core/ports/driven"
)

// Ensure AnthropicExplainer implements Explainer
var _ driven.Explainer = (*AnthropicExplainer)(nil)

// AnthropicExplainer implements Explainer using Anthropic's messages API
type AnthropicExplainer struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewAnthropicExplainer creates a new Anthropic explainer
func NewAnthropicExplainer(apiKey, model string) (driven.Explainer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	if model == "" {
		model = "claude-3-5-haiku-latest"
	}

	return &AnthropicExplainer{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://api.anthropic.com/v1",
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// messagesRequest is the request body for the messages API
type messagesRequest struct {
	Model     string        `json:"model"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

// messagesResponse is the response from the messages API
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Explain generates an explanation for one finding group
func (e *AnthropicExplainer) Explain(ctx context.Context, req driven.ExplainRequest) (string, error) {
	reqBody := messagesRequest{
		Model:  e.model,
		System: systemPrompt,
		Messages: []chatMessage{
			{Role: "user", Content: buildUserPrompt(req)},
		},
		MaxTokens: 300,
	}

	resp, err := e.doRequest(ctx, reqBody)
	if err != nil {
		return "", err
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content returned")
}

// Model returns the model name being used
func (e *AnthropicExplainer) Model() string {
	return e.model
}

// Ping verifies the service is reachable with a minimal completion
func (e *AnthropicExplainer) Ping(ctx context.Context) error {
	_, err := e.doRequest(ctx, messagesRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "user", Content: "ping"},
		},
		MaxTokens: 1,
	})
	return err
}

// Close releases resources held by the explainer
func (e *AnthropicExplainer) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// doRequest makes a request to the messages API
func (e *AnthropicExplainer) doRequest(ctx context.Context, reqBody messagesRequest) (*messagesResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBody, &msgResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if msgResp.Error != nil {
		return nil, fmt.Errorf("Anthropic API error: %s (type: %s)",
			msgResp.Error.Message, msgResp.Error.Type)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Anthropic API returned status %d", resp.StatusCode)
	}

	return &msgResp, nil
}
