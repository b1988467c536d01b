// Package ai implements the chat-completions client backing Angel's
// interview generation.
package ai

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

	"go.uber.org/zap"

	"github.com/founderport/angel/internal/interview"
	"github.com/founderport/angel/internal/logging"
)

const defaultBaseURL = "https://api.openai.com/v1/chat/completions"

// ErrRateLimited marks a 429 from the provider. The caller's fallback reply
// already invites a retry, so the turn is not escalated further.
var ErrRateLimited = errors.New("ai: provider rate limited")

// Client calls the chat-completions API. It implements interview.Generator.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used for proxies and tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithHTTPClient substitutes the HTTP client, used in tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// NewClient creates a chat-completions client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    normalizeAPIKey(apiKey),
		baseURL:   defaultBaseURL,
		model:     "gpt-4o",
		maxTokens: 2000,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Generate implements interview.Generator. System instructions are joined
// into a single system message ahead of the conversation window.
func (c *Client) Generate(ctx context.Context, systemInstructions []string, history []interview.Turn, userMessage string) (string, error) {
	messages := make([]chatMessage, 0, len(history)+2)
	if len(systemInstructions) > 0 {
		messages = append(messages, chatMessage{
			Role:    "system",
			Content: strings.Join(systemInstructions, "\n\n"),
		})
	}
	for _, t := range history {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})

	resp, err := c.makeRequest(ctx, &chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
		Stream:      false,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ai: empty choices in response %s", resp.ID)
	}
	return resp.Choices[0].Message.Content, nil
}

// makeRequest sends one HTTP request to the chat API.
func (c *Client) makeRequest(ctx context.Context, req *chatRequest) (*chatResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		logging.L().Warn("ai provider rate limited", zap.String("model", req.Model))
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 500))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("chat API error: %s", chatResp.Error.Message)
	}

	return &chatResp, nil
}

// Health checks the API is reachable with the configured key.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.makeRequest(ctx, &chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "user", Content: "Hello"},
		},
		MaxTokens: 5,
	})
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
