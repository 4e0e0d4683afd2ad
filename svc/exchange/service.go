package exchange

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/anilink/pkg/anilist"
	"github.com/dmitrymomot/anilink/pkg/logger"
)

// Request is the body of a token exchange call.
type Request struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// Response carries the access token and its lifetime in seconds.
type Response struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service trades AniList authorization codes for access tokens using the
// confidential client credentials.
type Service struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the Service logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHTTPClient sets the client used to reach the token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// NewService returns a Service for cfg. Missing credentials are reported
// per call, not here.
func NewService(cfg Config, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Exchange trades req.Code for an access token. Input is checked before
// configuration and nothing goes over the network until both pass.
func (s *Service) Exchange(ctx context.Context, req Request) (*Response, error) {
	if req.Code == "" {
		return nil, ErrMissingCode
	}
	if !s.cfg.configured() {
		s.logger.ErrorContext(ctx, "anilist client credentials are not configured",
			logger.Component("exchange"),
			slog.Bool("client_id_set", s.cfg.ClientID != ""),
			slog.Bool("client_secret_set", s.cfg.ClientSecret != ""),
		)
		return nil, ErrNotConfigured
	}

	conf := &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  req.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   anilist.AuthURL,
			TokenURL:  s.cfg.tokenURL(),
			AuthStyle: anilist.Endpoint.AuthStyle,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := conf.Exchange(ctx, req.Code)
	if err != nil {
		attrs := []any{logger.Component("exchange"), logger.Provider("anilist"), logger.Error(err)}
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			attrs = append(attrs, logger.Status(re.Response.StatusCode))
		}
		s.logger.ErrorContext(ctx, "anilist token exchange failed", attrs...)
		return nil, ErrExchangeFailed
	}

	return &Response{
		AccessToken: tok.AccessToken,
		ExpiresIn:   expiresIn(tok),
	}, nil
}

func expiresIn(tok *oauth2.Token) int64 {
	if tok.ExpiresIn > 0 {
		return tok.ExpiresIn
	}
	if tok.Expiry.IsZero() {
		return 0
	}
	return int64(math.Round(time.Until(tok.Expiry).Seconds()))
}

// Direct is a Service called in-process with the same signature as Client.
type Direct struct{ s *Service }

// Direct returns s in the code-and-redirect form used by Client.
func (s *Service) Direct() Direct { return Direct{s: s} }

func (d Direct) Exchange(ctx context.Context, code, redirectURI string) (*Response, error) {
	return d.s.Exchange(ctx, Request{Code: code, RedirectURI: redirectURI})
}
