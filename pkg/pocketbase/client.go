package pocketbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to one PocketBase instance on behalf of one auth store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authStore  *AuthStore
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithAuthStore sets the store auth calls save into. Defaults to a fresh
// in-memory AuthStore.
func WithAuthStore(s *AuthStore) Option {
	return func(cl *Client) {
		if s != nil {
			cl.authStore = s
		}
	}
}

// New returns a Client for the PocketBase instance at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.authStore == nil {
		c.authStore = NewAuthStore()
	}
	return c
}

// AuthStore returns the store auth calls write into.
func (c *Client) AuthStore() *AuthStore {
	return c.authStore
}

// Collection returns a service for the records of the named collection.
func (c *Client) Collection(name string) *RecordService {
	return &RecordService{client: c, collection: name}
}

// FileURL builds the public URL of a file field value. thumb is an optional
// PocketBase thumb size such as "100x250". Returns "" when record or
// filename is empty.
func (c *Client) FileURL(record *Record, filename, thumb string) string {
	if record == nil || record.ID == "" || filename == "" {
		return ""
	}
	collection := record.CollectionID
	if collection == "" {
		collection = record.CollectionName
	}

	u := fmt.Sprintf("%s/api/files/%s/%s/%s",
		c.baseURL,
		url.PathEscape(collection),
		url.PathEscape(record.ID),
		url.PathEscape(filename),
	)
	if thumb != "" {
		u += "?" + url.Values{"thumb": {thumb}}.Encode()
	}
	return u
}

// send performs a JSON request. out may be nil. Non-2xx responses are
// returned as *Error.
func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("pocketbase: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("pocketbase: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.authStore.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pocketbase: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pocketbase: decode response: %w", err)
	}
	return nil
}
