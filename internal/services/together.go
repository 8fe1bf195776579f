package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	togetherBaseURL = "https://api.together.xyz/v1"

	DefaultTogetherTemperature = 0.7
	DefaultTogetherMaxTokens   = 2000
)

// TogetherService implements CompletionService for the Together AI
// completions endpoint.
type TogetherService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
}

var _ CompletionService = (*TogetherService)(nil)

// TogetherCompletionRequest is the request body for Together AI text
// completions.
type TogetherCompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens"`
	Temperature float64  `json:"temperature"`
	Stop        []string `json:"stop,omitempty"`
}

// TogetherCompletionResponse is the response body for Together AI text
// completions.
type TogetherCompletionResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewTogetherService creates a new Together AI completion service.
func NewTogetherService(apiKey string, modelName string, timeout time.Duration) *TogetherService {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &TogetherService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   togetherBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete sends a text-completion request and returns the raw model
// output.
func (t *TogetherService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultTogetherMaxTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = DefaultTogetherTemperature
	}

	body := TogetherCompletionRequest{
		Model:       t.modelName,
		Prompt:      req.Prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stop:        req.Stop,
	}

	reqBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var completion TogetherCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if completion.Error != nil {
		return "", fmt.Errorf("API error: %s", completion.Error.Message)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return completion.Choices[0].Text, nil
}
