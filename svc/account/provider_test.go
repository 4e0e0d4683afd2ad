package account_test

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/pocketbase/pbtest"
	"github.com/dmitrymomot/anilink/svc/account"
)

const redirectURL = "https://app.test/auth/oauth2/google/callback"

func TestAuthenticator_ProviderLogin(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		authURL, err := f.auth.ProviderLoginURL(ctx, account.ProviderGoogle, redirectURL)
		require.NoError(t, err)
		u, err := url.Parse(authURL)
		require.NoError(t, err)
		assert.Equal(t, "google.example", u.Host)
		assert.Equal(t, redirectURL, u.Query().Get("redirect_uri"))
		state := u.Query().Get("state")

		data, err := f.auth.LoginWithProvider(ctx, account.ProviderGoogle, account.ProviderCallback{Code: pbtest.GoodCode, State: state})
		require.NoError(t, err)
		assert.Equal(t, "google@oauth.example", data.Record.Email)
		assert.True(t, f.bridge.IsValid())
		assert.Equal(t, "google@oauth.example", f.auth.Users().Current().Email)

		_, err = f.storage.Get(ctx, account.PendingProviderKey)
		assert.ErrorIs(t, err, kvstore.ErrNotFound)
	})

	t.Run("state mismatch consumes pending attempt", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		_, err := f.auth.ProviderLoginURL(ctx, account.ProviderGithub, redirectURL)
		require.NoError(t, err)

		_, err = f.auth.LoginWithProvider(ctx, account.ProviderGithub, account.ProviderCallback{Code: pbtest.GoodCode, State: "forged"})
		require.ErrorIs(t, err, account.ErrProviderState)
		assert.Equal(t, "GitHub login failed. Please try again.", err.Error())
		assert.Zero(t, f.srv.Hits("auth-with-oauth2"))

		_, err = f.auth.LoginWithProvider(ctx, account.ProviderGithub, account.ProviderCallback{Code: pbtest.GoodCode, State: "state-github"})
		require.ErrorIs(t, err, account.ErrProviderState)
		assert.Zero(t, f.srv.Hits("auth-with-oauth2"))
	})

	t.Run("provider mismatch", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		_, err := f.auth.ProviderLoginURL(ctx, account.ProviderGoogle, redirectURL)
		require.NoError(t, err)
		_, err = f.auth.LoginWithProvider(ctx, account.ProviderGithub, account.ProviderCallback{Code: pbtest.GoodCode, State: "state-google"})
		assert.ErrorIs(t, err, account.ErrProviderState)
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		_, err := f.auth.ProviderLoginURL(ctx, account.ProviderGoogle, redirectURL)
		require.NoError(t, err)
		_, err = f.auth.LoginWithProvider(ctx, account.ProviderGoogle, account.ProviderCallback{Code: "bad", State: "state-google"})
		require.Error(t, err)
		assert.Equal(t, "Failed to authenticate.", err.Error())
		assert.False(t, f.bridge.IsValid())
	})

	t.Run("unreadable pending login is logged", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()

		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithJSONFormatter())
		records := f.pb.Collection("user")
		auth := account.New(f.pb, records, account.NewUserStore(records, account.Mapper{}), f.storage, account.WithLogger(log))

		require.NoError(t, f.storage.Set(ctx, account.PendingProviderKey, "{not json"))
		_, err := auth.LoginWithProvider(ctx, account.ProviderGoogle, account.ProviderCallback{Code: pbtest.GoodCode, State: "state-google"})
		require.ErrorIs(t, err, account.ErrProviderState)
		assert.Contains(t, buf.String(), "discarding unreadable pending provider login")
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Zero(t, f.srv.Hits("auth-with-oauth2"))
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.auth.ProviderLoginURL(context.Background(), "facebook", redirectURL)
		assert.ErrorIs(t, err, account.ErrUnknownProvider)
		assert.Zero(t, f.srv.Hits("auth-methods"))
	})
}
