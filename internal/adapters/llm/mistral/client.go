package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/plootony/MISTY/internal/domain"
	"github.com/plootony/MISTY/internal/ports"
)

const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "mistral-small-latest"

	// maxErrorBody caps how much of a failed response ends up in the error.
	maxErrorBody = 512
)

// Client implements ports.Completer via the Mistral chat completions API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
	logger     *slog.Logger
}

// NewClient validates its inputs up front so a missing key fails at startup.
func NewClient(httpClient *http.Client, apiKey, baseURL, model string, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		logger:     logger,
	}, nil
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string { return c.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request and returns the first choice.
func (c *Client) Complete(ctx context.Context, in ports.CompletionRequest) (string, error) {
	start := time.Now()
	content, err := c.call(ctx, in)
	if err != nil {
		c.logger.WarnContext(ctx, "completion failed",
			"model", c.model,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamLLM, err)
	}
	c.logger.DebugContext(ctx, "completion",
		"model", c.model,
		"latency_ms", time.Since(start).Milliseconds(),
		"chars", len(content),
	)
	return content, nil
}

func (c *Client) call(ctx context.Context, in ports.CompletionRequest) (string, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    make([]chatMessage, len(in.Messages)),
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}
	for i, m := range in.Messages {
		reqBody.Messages[i] = chatMessage{Role: m.Role, Content: m.Content}
	}
	if in.JSONMode {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upstream status %d: %s", resp.StatusCode, truncate(respBody, maxErrorBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
