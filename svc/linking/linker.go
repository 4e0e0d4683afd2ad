package linking

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/anilink/core"
	"github.com/dmitrymomot/anilink/pkg/anilist"
	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
	"github.com/dmitrymomot/anilink/pkg/toast"
	"github.com/dmitrymomot/anilink/svc/exchange"
)

// StateKey is where the outstanding CSRF state is kept.
const StateKey = "anilist_oauth_state"

const stateBytes = 32

const (
	msgLinked        = "AniList account linked successfully!"
	msgDefaultFailed = "Failed to link AniList account"
)

// Profile is the AniList identity merged into the account record.
type Profile struct {
	UserID       int64
	Username     string
	AvatarMedium string
	AvatarLarge  string
	AccessToken  string
}

type (
	// TokenExchanger trades an authorization code for an access token.
	TokenExchanger interface {
		Exchange(ctx context.Context, code, redirectURI string) (*exchange.Response, error)
	}

	// ProfileFetcher reads the AniList profile behind an access token.
	ProfileFetcher interface {
		Viewer(ctx context.Context, accessToken string) (*anilist.Viewer, error)
	}

	// SessionReader exposes the signed-in account record, if any.
	SessionReader interface {
		Record() *pocketbase.Record
	}

	// AccountRecords updates the account record and refreshes the session.
	AccountRecords interface {
		Update(ctx context.Context, id string, body any) (*pocketbase.Record, error)
		AuthRefresh(ctx context.Context) (*pocketbase.AuthData, error)
	}
)

// Linker drives the AniList linking flow for one browser.
type Linker struct {
	cfg       Config
	storage   kvstore.Store
	exchanger TokenExchanger
	profiles  ProfileFetcher
	session   SessionReader
	records   AccountRecords
	onRefresh func(pocketbase.AuthData)
	toasts    toast.Notifier
	logger    *slog.Logger
}

// Option configures a Linker.
type Option func(*Linker)

// WithLogger sets the Linker logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(k *Linker) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithToasts sets where CompleteAuthorization reports its outcome.
func WithToasts(n toast.Notifier) Option {
	return func(k *Linker) { k.toasts = n }
}

// OnRefresh registers fn to receive the refreshed session after a link.
func OnRefresh(fn func(pocketbase.AuthData)) Option {
	return func(k *Linker) { k.onRefresh = fn }
}

// New wires a Linker for one browser. storage holds the pending state,
// session supplies the signed-in record and records writes the AniList
// fields back to it.
func New(cfg Config, storage kvstore.Store, exchanger TokenExchanger, profiles ProfileFetcher, session SessionReader, records AccountRecords, opts ...Option) *Linker {
	k := &Linker{
		cfg:       cfg,
		storage:   storage,
		exchanger: exchanger,
		profiles:  profiles,
		session:   session,
		records:   records,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// BeginAuthorization stores a new state, replacing any earlier one, and
// returns the AniList authorize URL. With incomplete configuration it logs
// the problem and returns ok=false without touching the stored state.
func (k *Linker) BeginAuthorization(ctx context.Context) (authURL string, ok bool) {
	if !k.cfg.valid() {
		k.logger.ErrorContext(ctx, "missing AniList configuration",
			logger.Component("linking"),
			slog.Bool("client_id_set", k.cfg.ClientID != ""),
			slog.Bool("redirect_uri_set", k.cfg.RedirectURI != ""),
		)
		return "", false
	}

	state, err := newState()
	if err != nil {
		k.logger.ErrorContext(ctx, "failed to generate oauth state",
			logger.Component("linking"),
			logger.Error(err),
		)
		return "", false
	}
	if err := k.storage.Set(ctx, StateKey, state); err != nil {
		k.logger.ErrorContext(ctx, "failed to store oauth state",
			logger.Component("linking"),
			logger.Error(err),
		)
		return "", false
	}

	return anilist.AuthorizeURL(k.cfg.ClientID, k.cfg.RedirectURI, state), true
}

// Link completes the flow started by BeginAuthorization.
func (k *Linker) Link(ctx context.Context, code, state string) (*Profile, error) {
	stored, err := k.storage.Take(ctx, StateKey)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		k.logger.WarnContext(ctx, "failed to consume oauth state",
			logger.Component("linking"),
			logger.Error(err),
		)
	}
	if stored == "" || state == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(state)) != 1 {
		return nil, ErrInvalidState
	}

	tok, err := k.exchanger.Exchange(ctx, code, k.cfg.RedirectURI)
	if err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrTokenExchange
	}

	viewer, err := k.profiles.Viewer(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch anilist profile: %w", err)
	}
	profile := &Profile{
		UserID:       viewer.ID,
		Username:     viewer.Name,
		AvatarMedium: viewer.Avatar.Medium,
		AvatarLarge:  viewer.Avatar.Large,
		AccessToken:  tok.AccessToken,
	}

	rec := k.session.Record()
	if rec == nil || rec.ID == "" {
		return nil, ErrNotAuthenticated
	}

	if _, err := k.records.Update(ctx, rec.ID, map[string]any{
		"anilist_token":             profile.AccessToken,
		"anilist_user_id":           profile.UserID,
		"anilist_username":          profile.Username,
		"anilist_avatar_url_medium": profile.AvatarMedium,
		"anilist_avatar_url_large":  profile.AvatarLarge,
	}); err != nil {
		return nil, err
	}

	data, err := k.records.AuthRefresh(ctx)
	if err != nil {
		return nil, err
	}
	if k.onRefresh != nil {
		k.onRefresh(*data)
	}

	k.logger.InfoContext(ctx, "anilist account linked",
		logger.Component("linking"),
		logger.UserID(rec.ID),
		slog.Int64("anilist_user_id", profile.UserID),
	)
	return profile, nil
}

// CompleteAuthorization runs Link and reports the outcome as a toast. It
// never returns an error.
func (k *Linker) CompleteAuthorization(ctx context.Context, code, state string) bool {
	if _, err := k.Link(ctx, code, state); err != nil {
		k.logger.ErrorContext(ctx, "anilist oauth failed",
			logger.Component("linking"),
			logger.Provider("anilist"),
			logger.Error(err),
		)
		k.notify(toast.KindError, failureMessage(err))
		return false
	}
	k.notify(toast.KindSuccess, msgLinked)
	return true
}

func (k *Linker) notify(kind toast.Kind, msg string) {
	if k.toasts != nil {
		k.toasts.Open(kind, msg)
	}
}

// failureMessage picks the text shown to the user. Transport and decoding
// errors fall back to a generic message.
func failureMessage(err error) string {
	var he core.HTTPError
	var pbErr *pocketbase.Error
	switch {
	case errors.Is(err, ErrInvalidState), errors.Is(err, ErrTokenExchange), errors.Is(err, ErrNotAuthenticated):
		return err.Error()
	case errors.As(err, &he):
		return he.Error()
	case errors.As(err, &pbErr):
		return pbErr.Error()
	}
	return msgDefaultFailed
}

func newState() (string, error) {
	b := make([]byte, stateBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
