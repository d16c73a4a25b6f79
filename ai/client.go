// Package ai wraps an external text-generation HTTP endpoint. The scoring
// layer treats every failure here as "unavailable", so the client reports
// errors instead of retrying indefinitely.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const completionPath = "/api/ai/generate"

type completionRequest struct {
	Model       string  `json:"model,omitempty"`
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

type completionResponse struct {
	Text string `json:"text"`
}

// Client talks to the configured text-generation service.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *retryablehttp.Client
}

// NewClient builds a Client for the generation endpoint at baseURL. Retries
// are kept short: the caller imposes its own deadline and falls back to
// heuristic scoring on expiry.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, logger *logrus.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil
	if logger != nil {
		rc.Logger = logger
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    rc,
	}
}

// Complete submits system and user prompts and returns the generated text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		System:      systemPrompt,
		Prompt:      userPrompt,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("ai: marshal request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai: unexpected status %d", resp.StatusCode)
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("ai: decode response: %w", err)
	}
	if strings.TrimSpace(decoded.Text) == "" {
		return "", fmt.Errorf("ai: empty completion text")
	}

	return decoded.Text, nil
}
