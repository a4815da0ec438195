// Package ollama implements the text-generation capability against an
// Ollama-compatible inference endpoint.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"garmin-fitness-assistant/internal/advisor"
)

// Client calls an Ollama /api/generate endpoint. Every request is
// bounded by the client timeout; any fault maps to
// advisor.ErrLLMUnavailable so the synthesizer's rule-based fallback
// takes over.
type Client struct {
	httpClient *http.Client
	endpoint   string
	model      string
	logger     *slog.Logger
}

// NewClient creates a client for the given endpoint and model.
func NewClient(endpoint, model string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		model:      model,
		logger:     logger,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a prompt and returns the completion text. Network
// errors, non-200 responses, undecodable bodies, and empty completions
// all wrap advisor.ErrLLMUnavailable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Warn("llm_generate failed", "error", err, "duration_ms", duration.Milliseconds())
		return "", fmt.Errorf("%w: %v", advisor.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	c.logger.Info("llm_generate", "model", c.model, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", advisor.ErrLLMUnavailable, resp.StatusCode, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: failed to decode response: %v", advisor.ErrLLMUnavailable, err)
	}

	text := strings.TrimSpace(genResp.Response)
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", advisor.ErrLLMUnavailable)
	}
	return text, nil
}
