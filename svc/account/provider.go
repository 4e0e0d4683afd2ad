package account

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

const (
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// PendingProviderKey holds the single in-flight provider login of a browser.
const PendingProviderKey = "pocketbase_oauth2"

var providers = []string{ProviderGoogle, ProviderGithub}

// ProviderCallback carries the query of the provider's redirect back to us.
type ProviderCallback struct {
	Code  string
	State string
}

type pendingLogin struct {
	Provider     string `json:"provider"`
	State        string `json:"state"`
	CodeVerifier string `json:"codeVerifier"`
	RedirectURL  string `json:"redirectURL"`
}

// ProviderLoginURL starts a Google or GitHub login. It remembers the
// provider's state and PKCE verifier, replacing any earlier attempt, and
// returns the URL to send the browser to.
func (a *Authenticator) ProviderLoginURL(ctx context.Context, provider, redirectURL string) (string, error) {
	op := providerOp(provider)
	if !slices.Contains(providers, provider) {
		return "", newAuthError(op, ErrUnknownProvider)
	}

	methods, err := a.records.ListAuthMethods(ctx)
	if err != nil {
		return "", newAuthError(op, err)
	}
	p, ok := methods.Provider(provider)
	if !ok {
		return "", newAuthError(op, pocketbase.ErrProviderNotFound)
	}

	pending, err := json.Marshal(pendingLogin{
		Provider:     provider,
		State:        p.State,
		CodeVerifier: p.CodeVerifier,
		RedirectURL:  redirectURL,
	})
	if err != nil {
		return "", newAuthError(op, err)
	}
	if err := a.storage.Set(ctx, PendingProviderKey, string(pending)); err != nil {
		return "", newAuthError(op, fmt.Errorf("store pending login: %w", err))
	}

	// PocketBase's authURL ends with an empty redirect_uri parameter.
	return p.AuthURL + url.QueryEscape(redirectURL), nil
}

// LoginWithProvider finishes the login started by ProviderLoginURL. The
// pending attempt is consumed whatever the outcome.
func (a *Authenticator) LoginWithProvider(ctx context.Context, provider string, cb ProviderCallback) (*pocketbase.AuthData, error) {
	op := providerOp(provider)

	raw, err := a.storage.Take(ctx, PendingProviderKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return nil, newAuthError(op, err)
	}

	var pending pendingLogin
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &pending); err != nil {
			a.logger.WarnContext(ctx, "discarding unreadable pending provider login",
				logger.Component("account"),
				logger.Provider(provider),
				logger.Error(err),
			)
		}
	}
	if pending.State == "" || pending.Provider != provider || cb.Code == "" ||
		subtle.ConstantTimeCompare([]byte(pending.State), []byte(cb.State)) != 1 {
		a.logger.WarnContext(ctx, "provider login state mismatch",
			logger.Component("account"),
			logger.Provider(provider),
		)
		return nil, newAuthError(op, ErrProviderState)
	}

	data, err := a.records.AuthWithOAuth2Code(ctx, provider, cb.Code, pending.CodeVerifier, pending.RedirectURL)
	if err != nil {
		return nil, newAuthError(op, err)
	}
	a.signedIn(ctx, *data)
	return data, nil
}
