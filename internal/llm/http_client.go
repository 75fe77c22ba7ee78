package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient is a generic reference Client implementation that POSTs a
// JSON completion request to a configured endpoint. It carries no
// vendor-specific request/response shape; a real deployment supplies
// the endpoint and expects this same envelope from a local shim.
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient creates a Client bound to endpoint.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type completionRequest struct {
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"`
	MaxTokens    int     `json:"max_tokens"`
	Temperature  float64 `json:"temperature"`
}

type completionResponse struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (c *HTTPClient) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (Response, error) {
	body, err := json.Marshal(completionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{Success: false, Error: err.Error()}, nil
	}
	defer resp.Body.Close()

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{Success: false, Error: fmt.Sprintf("decode completion response: %v", err)}, nil
	}
	return Response{Text: out.Text, Success: out.Success, Error: out.Error}, nil
}

var _ Client = (*HTTPClient)(nil)
