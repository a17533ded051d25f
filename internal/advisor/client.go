// Package advisor obtains per-bookmark action suggestions from the Anthropic
// messages API. The advisor is strictly advisory: any failure here degrades to
// fallback decisions downstream, it never stops a session.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"riptide/internal/domain"
	"riptide/internal/log"
)

const (
	// DefaultBaseURL is the production Anthropic endpoint.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	apiVersion = "2023-06-01"
)

// Client calls the Anthropic messages API with rate limiting between calls.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModel sets the model used for suggestions.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// WithMaxTokens caps the response size per request.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithMinInterval sets the minimum delay between requests.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.minInterval = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates an advisor client with the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY)")
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		baseURL:     DefaultBaseURL,
		apiKey:      apiKey,
		model:       "claude-3-5-haiku-latest",
		maxTokens:   2048,
		minInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Suggest requests suggestions for one batch. The returned map is keyed by
// bookmark id; bookmarks the model gave nothing usable for are absent.
func (c *Client) Suggest(ctx context.Context, batch []domain.Bookmark, collections []domain.Collection, current domain.CollectionRef) (map[int64]domain.Suggestion, error) {
	if len(batch) == 0 {
		return map[int64]domain.Suggestion{}, nil
	}

	if err := c.rateLimit(ctx); err != nil {
		return nil, err
	}

	prompt := buildPrompt(batch, collections, current)
	text, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	suggestions := Parse(text, batch)
	log.Debug(log.CatAdvisor, "parsed suggestions", "batch", len(batch), "suggestions", len(suggestions))
	return suggestions, nil
}

// rateLimit blocks until the minimum interval since the previous call has
// elapsed, or the context is cancelled.
func (c *Client) rateLimit(ctx context.Context) error {
	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastCall)
	c.lastCall = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("anthropic API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var msgResp messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&msgResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	var sb strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
