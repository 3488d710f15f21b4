// Package ollama provides a client for the Ollama text-generation API.
//
// The client performs a single synchronous call per request: it waits for the
// complete response, extracts the generated text, and discards the rest of the
// payload. There is no retry, caching, or streaming.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/book-expert/logger"
)

// API endpoints.
const (
	apiGenerate = "/api/generate"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// DefaultTimeout bounds one generation call. Local LLM inference routinely
// takes tens of seconds, so the bound is generous.
const DefaultTimeout = 90 * time.Second

// maxErrorBodyBytes limits how much of an error response body is carried in
// diagnostics.
const maxErrorBodyBytes = 512

// Static errors.
var (
	// ErrBadStatus indicates the server answered with a non-success status.
	ErrBadStatus = errors.New("ollama returned non-OK status")
	// ErrMissingResponse indicates the reply had no usable response field.
	ErrMissingResponse = errors.New("ollama response missing generated text")
	// ErrEmptyPrompt indicates the caller passed an empty prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)

// GenerateRequest is the JSON payload for the generation endpoint. Streaming
// is always disabled: the client waits for the full response.
type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system,omitempty"`
	Stream bool   `json:"stream"`
}

// generateResponse is the subset of the reply the client inspects. Ollama
// sends additional timing metadata which is deliberately ignored.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Client talks to one Ollama server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a client for the server at baseURL. A non-positive timeout
// falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Generate sends one prompt to the model and returns the generated text.
// The optional system instruction is passed through unchanged.
func (c *Client) Generate(ctx context.Context, model, prompt, system string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	payload := GenerateRequest{
		Model:  model,
		Prompt: prompt,
		System: system,
		Stream: false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	url := c.baseURL + apiGenerate

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)

	c.log.Info("Generating with model %s at %s", model, url)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach ollama at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.statusError(resp)
	}

	var reply generateResponse

	err = json.NewDecoder(resp.Body).Decode(&reply)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMissingResponse, err)
	}

	if reply.Response == "" {
		return "", fmt.Errorf("%w: empty response field from %s", ErrMissingResponse, url)
	}

	return reply.Response, nil
}

// Ping verifies the server is reachable. Ollama answers plain GET / with a
// short status line, which is enough for a liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach ollama at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s from %s", ErrBadStatus, resp.Status, c.baseURL)
	}

	return nil
}

// statusError builds a diagnostic for a non-success response, keeping a
// bounded excerpt of the body.
func (c *Client) statusError(resp *http.Response) error {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

	return fmt.Errorf("%w: %s: %s", ErrBadStatus, resp.Status, bytes.TrimSpace(excerpt))
}
