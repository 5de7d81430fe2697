// SPDX-License-Identifier: EPL-2.0

// Package llm asks a chat completion backend for the line an avatar should
// speak next.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://api.cerebras.ai/v1/chat/completions"
	DefaultModel    = "llama-3.3-70b"
	DefaultTimeout  = 60 * time.Second

	maxErrorBody = 4096
)

var (
	ErrNoChoices     = errors.New("llm: response holds no choices")
	ErrEmptyPrompt   = errors.New("llm: empty prompt")
	ErrEmptyEndpoint = errors.New("llm: endpoint not configured")
)

// Client turns a prompt into a single completed reply.
type Client interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("llm: backend returned HTTP %d: %s", e.Code, e.Body)
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Stream   bool      `json:"stream"`
	Messages []message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// HTTPClient talks to an OpenAI compatible /chat/completions endpoint.
// Requests are never retried.
type HTTPClient struct {
	endpoint string
	model    string
	apiKey   string
	http     *http.Client
}

type Option func(*HTTPClient)

func WithModel(model string) Option {
	return func(c *HTTPClient) {
		if model != "" {
			c.model = model
		}
	}
}

func WithAPIKey(key string) Option {
	return func(c *HTTPClient) { c.apiKey = key }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.http = hc
		}
	}
}

func NewHTTPClient(endpoint string, opts ...Option) (*HTTPClient, error) {
	if endpoint == "" {
		return nil, ErrEmptyEndpoint
	}

	c := &HTTPClient{
		endpoint: endpoint,
		model:    DefaultModel,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Model() string { return c.model }

func (c *HTTPClient) Chat(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.model,
		Stream:   false,
		Messages: []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrNoChoices
	}

	return out.Choices[0].Message.Content, nil
}
