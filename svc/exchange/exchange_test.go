package exchange_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/svc/exchange"
)

const (
	clientID     = "123"
	clientSecret = "top-secret-value"
)

type tokenServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newTokenServer(t *testing.T, status int, body string) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, clientID, r.PostForm.Get("client_id"))
		assert.Equal(t, clientSecret, r.PostForm.Get("client_secret"))
		assert.Equal(t, "https://app.test/auth/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newService(ts *tokenServer, cfg exchange.Config, opts ...exchange.Option) *exchange.Service {
	cfg.TokenURL = ts.URL
	return exchange.NewService(cfg, opts...)
}

var configured = exchange.Config{ClientID: clientID, ClientSecret: clientSecret}

func TestService_Exchange(t *testing.T) {
	t.Parallel()

	req := exchange.Request{Code: "abc", RedirectURI: "https://app.test/auth/callback"}

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{"access_token":"tok","token_type":"Bearer","expires_in":31536000,"refresh_token":"r"}`)

		resp, err := newService(ts, configured).Exchange(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.AccessToken)
		assert.InDelta(t, 31536000, resp.ExpiresIn, 2)
		assert.Equal(t, int32(1), ts.hits.Load())
	})

	t.Run("missing code is checked first", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{}`)

		_, err := newService(ts, exchange.Config{}).Exchange(context.Background(), exchange.Request{RedirectURI: "x"})
		assert.ErrorIs(t, err, exchange.ErrMissingCode)
		assert.Zero(t, ts.hits.Load())
	})

	t.Run("missing credentials", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{}`)

		for _, cfg := range []exchange.Config{{ClientID: clientID}, {ClientSecret: clientSecret}} {
			_, err := newService(ts, cfg).Exchange(context.Background(), req)
			assert.ErrorIs(t, err, exchange.ErrNotConfigured)
		}
		assert.Zero(t, ts.hits.Load())
	})

	t.Run("provider failure is logged not returned", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant","error_description":"code already used"}`)
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithJSONFormatter())

		_, err := newService(ts, configured, exchange.WithLogger(log)).Exchange(context.Background(), req)
		require.ErrorIs(t, err, exchange.ErrExchangeFailed)
		assert.NotContains(t, err.Error(), "invalid_grant")
		assert.Contains(t, buf.String(), "invalid_grant")
		assert.Contains(t, buf.String(), `"status":400`)
	})
}

func TestService_Handle(t *testing.T) {
	t.Parallel()

	post := func(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
		t.Helper()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/anilist/exchange-token", strings.NewReader(body)))
		return rec
	}

	errorCode := func(t *testing.T, rec *httptest.ResponseRecorder) string {
		t.Helper()
		var body struct {
			Error struct{ Code, Message string } `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body.Error.Code
	}

	t.Run("success never echoes the secret", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)

		rec := post(t, newService(ts, configured).Handle(), `{"code":"abc","redirect_uri":"https://app.test/auth/callback"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), clientSecret)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp, 2)
		assert.Equal(t, "tok", resp["access_token"])
	})

	t.Run("missing code answers 400 without outbound request", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{}`)

		rec := post(t, newService(ts, configured).Handle(), `{"redirect_uri":"https://app.test/auth/callback"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "missing_code", errorCode(t, rec))
		assert.Zero(t, ts.hits.Load())
	})

	t.Run("misconfigured answers 500", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{}`)

		rec := post(t, newService(ts, exchange.Config{}).Handle(), `{"code":"abc"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "not_configured", errorCode(t, rec))
	})

	t.Run("provider failure answers 500", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusUnauthorized, `{"error":"invalid_client"}`)

		rec := post(t, newService(ts, configured).Handle(), `{"code":"abc","redirect_uri":"https://app.test/auth/callback"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "exchange_failed", errorCode(t, rec))
		assert.NotContains(t, rec.Body.String(), "invalid_client")
	})

	t.Run("rejects other methods", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		exchange.NewService(configured).Handle().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestClient_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("maps error classes", func(t *testing.T) {
		t.Parallel()
		ts := newTokenServer(t, http.StatusOK, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)

		ok := httptest.NewServer(newService(ts, configured).Handle())
		defer ok.Close()
		misconfigured := httptest.NewServer(newService(ts, exchange.Config{}).Handle())
		defer misconfigured.Close()

		resp, err := exchange.NewClient(ok.URL, nil).Exchange(context.Background(), "abc", "https://app.test/auth/callback")
		require.NoError(t, err)
		assert.Equal(t, "tok", resp.AccessToken)
		assert.Equal(t, int64(3600), resp.ExpiresIn)

		_, err = exchange.NewClient(misconfigured.URL, nil).Exchange(context.Background(), "abc", "https://app.test/auth/callback")
		assert.ErrorIs(t, err, exchange.ErrNotConfigured)
	})

	t.Run("missing code never leaves the client", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits.Add(1) }))
		defer srv.Close()

		_, err := exchange.NewClient(srv.URL, nil).Exchange(context.Background(), "", "x")
		assert.ErrorIs(t, err, exchange.ErrMissingCode)
		assert.Zero(t, hits.Load())
	})

	t.Run("unknown failure body", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := exchange.NewClient(srv.URL, nil).Exchange(context.Background(), "abc", "x")
		assert.ErrorIs(t, err, exchange.ErrExchangeFailed)
	})
}

func TestService_Direct(t *testing.T) {
	t.Parallel()
	ts := newTokenServer(t, http.StatusOK, `{"access_token":"tok","token_type":"Bearer","expires_in":60}`)

	direct := newService(ts, configured).Direct()
	resp, err := direct.Exchange(context.Background(), "abc", "https://app.test/auth/callback")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)

	_, err = direct.Exchange(context.Background(), "", "https://app.test/auth/callback")
	assert.ErrorIs(t, err, exchange.ErrMissingCode)
}
