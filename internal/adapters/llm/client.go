// Package llm provides the HTTP client for the local Ollama instance used
// for answer generation and embeddings. Everything runs on the local host;
// the system keeps the source's offline constraint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

var (
	ErrNotRunning = &ClientError{Message: "ollama is not running"}
	ErrTimeout    = &ClientError{Message: "ollama request timed out"}
)

// Config holds client options.
type Config struct {
	BaseURL        string
	GenerateModel  string
	EmbeddingModel string
	Timeout        time.Duration
}

// Client talks to the Ollama API. Safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates an Ollama client, filling defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:11434"
	}
	if cfg.GenerateModel == "" {
		cfg.GenerateModel = "llama3.1"
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "mxbai-embed-large"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CheckRunning verifies that Ollama is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL, nil)
	if err != nil {
		return &ClientError{Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Message: "unexpected status from Ollama: " + resp.Status}
	}
	return nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Complete sends a prompt to /api/generate and returns the full response
// text (non-streaming).
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.cfg.GenerateModel,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", &ClientError{Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", ErrNotRunning
	}
	defer resp.Body.Close()

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ClientError{Message: "failed to decode response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := "generate request failed: " + resp.Status
		if result.Error != "" {
			msg = result.Error
		}
		return "", &ClientError{Message: msg}
	}

	return result.Response, nil
}

type embeddingsRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingsResponse struct {
	Embedding []float64 `json:"embedding"`
	Error     string    `json:"error,omitempty"`
}

// Embed returns the embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embeddingsRequest{
		Model:  c.cfg.EmbeddingModel,
		Prompt: text,
	})
	if err != nil {
		return nil, &ClientError{Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	var result embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Message: "failed to decode response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := "embeddings request failed: " + resp.Status
		if result.Error != "" {
			msg = result.Error
		}
		return nil, &ClientError{Message: msg}
	}

	return result.Embedding, nil
}
