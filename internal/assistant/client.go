package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorKind classifies assistant failures so the UI can present them
// distinctly instead of swallowing them.
type ErrorKind string

const (
	ErrKindAuth      ErrorKind = "auth"
	ErrKindRateLimit ErrorKind = "rate_limit"
	ErrKindNetwork   ErrorKind = "network"
	ErrKindResponse  ErrorKind = "response"
)

// ClientError is a categorized failure from the assistant endpoint.
type ClientError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assistant %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("assistant %s: %s", e.Kind, e.Msg)
}

func (e *ClientError) Unwrap() error { return e.Err }

// Client calls an OpenAI-compatible chat completions endpoint. The API key
// is injected configuration, treated as an opaque bearer credential.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
	log       *zap.Logger
}

// ClientConfig configures the assistant client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Logger    *zap.Logger
}

// NewClient creates an assistant client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: 60 * time.Second},
		log:       cfg.Logger,
	}
}

// Configured reports whether a credential is present.
func (c *Client) Configured() bool { return c.apiKey != "" }

// chatRequest is the request body for /chat/completions.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the response from /chat/completions.
type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Ask sends a prompt and returns the assistant's answer. Transient network
// failures are retried once; every other failure surfaces immediately with
// its category.
func (c *Client) Ask(ctx context.Context, p Prompt) (string, error) {
	answer, err := c.ask(ctx, p)
	if err == nil {
		return answer, nil
	}

	var cerr *ClientError
	if errors.As(err, &cerr) && cerr.Kind == ErrKindNetwork && ctx.Err() == nil {
		c.log.Debug("retrying after network failure", zap.Error(err))
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
			return "", err
		}
		return c.ask(ctx, p)
	}
	return "", err
}

func (c *Client) ask(ctx context.Context, p Prompt) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System},
			{Role: "user", Content: p.User},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ClientError{Kind: ErrKindResponse, Msg: "marshaling request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", &ClientError{Kind: ErrKindResponse, Msg: "creating request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ClientError{Kind: ErrKindNetwork, Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ClientError{Kind: ErrKindNetwork, Msg: "reading response", Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return "", &ClientError{Kind: ErrKindAuth, Msg: apiErrorMessage(respBody, "invalid or missing API key")}
	case http.StatusTooManyRequests:
		return "", &ClientError{Kind: ErrKindRateLimit, Msg: apiErrorMessage(respBody, "rate limited")}
	default:
		return "", &ClientError{
			Kind: ErrKindResponse,
			Msg:  fmt.Sprintf("status %d: %s", resp.StatusCode, apiErrorMessage(respBody, string(respBody))),
		}
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return "", &ClientError{Kind: ErrKindResponse, Msg: "parsing response", Err: err}
	}
	if len(chat.Choices) == 0 {
		return "", &ClientError{Kind: ErrKindResponse, Msg: "no choices in response"}
	}
	return chat.Choices[0].Message.Content, nil
}

// apiErrorMessage pulls the error message out of an API error body.
func apiErrorMessage(body []byte, fallback string) string {
	var chat chatResponse
	if json.Unmarshal(body, &chat) == nil && chat.Error != nil && chat.Error.Message != "" {
		return chat.Error.Message
	}
	return fallback
}
