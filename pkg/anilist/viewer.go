package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const viewerQuery = `query {
  Viewer {
    id
    name
    avatar {
      medium
      large
    }
  }
}`

// Viewer is the authenticated AniList user.
type Viewer struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Avatar struct {
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"avatar"`
}

type graphQLResponse struct {
	Data struct {
		Viewer *Viewer `json:"Viewer"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"errors"`
}

// Client queries the AniList GraphQL API.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithGraphQLURL points the client at another GraphQL endpoint.
func WithGraphQLURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.endpoint = u
		}
	}
}

// WithHTTPClient sets the base transport. Bearer auth is layered on top of it.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient returns a Client for the public AniList GraphQL API.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   GraphQLURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Viewer fetches the profile of the user owning accessToken.
func (c *Client) Viewer(ctx context.Context, accessToken string) (*Viewer, error) {
	if accessToken == "" {
		return nil, ErrEmptyToken
	}

	payload, err := json.Marshal(map[string]string{"query": viewerQuery})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("anilist: viewer request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("anilist: viewer request returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("anilist: decode viewer: %w", err)
	}

	if len(out.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, out.Errors[0].Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anilist: viewer request returned status %d", resp.StatusCode)
	}
	if out.Data.Viewer == nil {
		return nil, ErrNoViewer
	}
	return out.Data.Viewer, nil
}
