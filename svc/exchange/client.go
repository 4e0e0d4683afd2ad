package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/anilink/core"
)

// Client calls a TokenExchange endpoint over HTTP and maps its error bodies
// back onto ErrMissingCode, ErrNotConfigured and ErrExchangeFailed.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a Client for endpoint. A nil httpClient gets a 20s
// timeout.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Exchange posts code and redirectURI to the endpoint. An empty code fails
// without a request.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (*Response, error) {
	if code == "" {
		return nil, ErrMissingCode
	}

	body, err := json.Marshal(Request{Code: code, RedirectURI: redirectURI})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var eb core.ErrorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		return nil, errorFor(resp.StatusCode, eb.Error.Code)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrExchangeFailed, err)
	}
	return &out, nil
}

func errorFor(status int, key string) error {
	for _, e := range []core.HTTPError{ErrMissingCode, ErrNotConfigured, ErrExchangeFailed} {
		if e.Key == key {
			return e
		}
	}
	if status == http.StatusBadRequest {
		return ErrMissingCode
	}
	return ErrExchangeFailed
}
