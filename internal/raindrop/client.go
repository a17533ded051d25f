// Package raindrop is a client for the raindrop.io REST API, covering the
// subset riptide needs: listing collections, paging through bookmarks, and
// deleting or moving individual bookmarks.
package raindrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"riptide/internal/cachemanager"
	"riptide/internal/domain"
	"riptide/internal/log"
)

const (
	// DefaultBaseURL is the production raindrop.io endpoint.
	DefaultBaseURL = "https://api.raindrop.io/rest/v1"

	collectionsCacheKey = "collections"
	collectionsCacheTTL = 5 * time.Minute
)

// APIError is a non-2xx response from the raindrop API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("raindrop API returned %d: %s", e.StatusCode, e.Body)
}

// Client talks to the raindrop.io API. Collections are cached briefly since
// the picker and the executor both resolve collection names repeatedly.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int

	cache       cachemanager.CacheManager[[]domain.Collection]
	collections *cachemanager.ReadThroughCache[[]domain.Collection, struct{}]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithPageSize sets the per-request page size (the API caps it at 50).
func WithPageSize(n int) Option {
	return func(c *Client) { c.pageSize = n }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a raindrop client with the given API token.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("raindrop token is required (set RAINDROP_TOKEN)")
	}

	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		token:      token,
		pageSize:   50,
		cache:      cachemanager.NewInMemoryCacheManager[[]domain.Collection]("collections", collectionsCacheTTL, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.collections = cachemanager.NewReadThroughCache(c.cache, c.fetchCollections, false)
	return c, nil
}

type collectionItem struct {
	ID    int64  `json:"_id"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

type collectionsResponse struct {
	Items []collectionItem `json:"items"`
}

// Collections returns all collections, using a short-lived read-through cache
// so repeated name lookups during a batch do not hammer the API.
func (c *Client) Collections(ctx context.Context) ([]domain.Collection, error) {
	return c.collections.Get(ctx, collectionsCacheKey, struct{}{}, collectionsCacheTTL)
}

func (c *Client) fetchCollections(ctx context.Context, _ struct{}) ([]domain.Collection, error) {
	var resp collectionsResponse
	if err := c.get(ctx, "/collections", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching collections: %w", err)
	}

	collections := make([]domain.Collection, 0, len(resp.Items))
	for _, item := range resp.Items {
		collections = append(collections, domain.Collection{
			ID:    item.ID,
			Title: item.Title,
			Count: item.Count,
		})
	}

	log.Debug(log.CatRaindrop, "fetched collections", "count", len(collections))
	return collections, nil
}

// InvalidateCollections drops the collection cache. Called after mutations
// that change collection counts.
func (c *Client) InvalidateCollections() {
	_ = c.cache.Delete(context.Background(), collectionsCacheKey)
}

type bookmarkItem struct {
	ID      int64     `json:"_id"`
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	Excerpt string    `json:"excerpt"`
	Domain  string    `json:"domain"`
	Created time.Time `json:"created"`
}

type bookmarksResponse struct {
	Items []bookmarkItem `json:"items"`
	Count int            `json:"count"`
}

// FetchPage returns one page of bookmarks from a collection, newest first,
// along with the collection's total bookmark count.
func (c *Client) FetchPage(ctx context.Context, collectionID int64, page int) ([]domain.Bookmark, int, error) {
	params := map[string]string{
		"page":    strconv.Itoa(page),
		"perpage": strconv.Itoa(c.pageSize),
		"sort":    "-created",
	}

	var resp bookmarksResponse
	path := fmt.Sprintf("/raindrops/%d", collectionID)
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, 0, fmt.Errorf("fetching bookmarks page %d: %w", page, err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(resp.Items))
	for _, item := range resp.Items {
		bookmarks = append(bookmarks, domain.Bookmark{
			ID:        item.ID,
			Title:     item.Title,
			URL:       item.Link,
			Domain:    item.Domain,
			Excerpt:   item.Excerpt,
			CreatedAt: item.Created,
		})
	}

	log.Debug(log.CatRaindrop, "fetched page", "collection", collectionID, "page", page, "items", len(bookmarks), "total", resp.Count)
	return bookmarks, resp.Count, nil
}

// DeleteBookmark removes a bookmark permanently.
func (c *Client) DeleteBookmark(ctx context.Context, bookmarkID int64) error {
	path := fmt.Sprintf("/raindrop/%d", bookmarkID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("deleting bookmark %d: %w", bookmarkID, err)
	}
	return nil
}

// MoveBookmark moves a bookmark into another collection.
func (c *Client) MoveBookmark(ctx context.Context, bookmarkID, collectionID int64) error {
	body := map[string]any{
		"collection": map[string]any{"$id": collectionID},
	}
	path := fmt.Sprintf("/raindrop/%d", bookmarkID)
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("moving bookmark %d to collection %d: %w", bookmarkID, collectionID, err)
	}
	return nil
}

// FindCollection resolves a collection name to an id: exact match first, then
// substring match in either direction. Matching is case-insensitive.
func FindCollection(collections []domain.Collection, name string) (int64, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return 0, false
	}

	for _, col := range collections {
		if strings.ToLower(col.Title) == needle {
			return col.ID, true
		}
	}

	for _, col := range collections {
		title := strings.ToLower(col.Title)
		if strings.Contains(title, needle) || strings.Contains(needle, title) {
			return col.ID, true
		}
	}

	return 0, false
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	return c.doWithParams(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doWithParams(ctx, method, path, nil, body, out)
}

func (c *Client) doWithParams(ctx context.Context, method, path string, params map[string]string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	if len(params) > 0 {
		q := req.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
