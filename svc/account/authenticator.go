package account

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

// Authenticator performs the account operations of one browser.
//
// Operations are not serialized against each other: two overlapping logins
// both write the auth store and the user view, and the last one to finish
// wins.
type Authenticator struct {
	pb      *pocketbase.Client
	records *pocketbase.RecordService
	users   *UserStore
	storage kvstore.Store
	mapper  Mapper
	logger  *slog.Logger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithLogger sets the Authenticator logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New wires an Authenticator. records must be the auth collection of pb,
// and storage the browser's key-value area.
func New(pb *pocketbase.Client, records *pocketbase.RecordService, users *UserStore, storage kvstore.Store, opts ...Option) *Authenticator {
	a := &Authenticator{
		pb:      pb,
		records: records,
		users:   users,
		storage: storage,
		mapper:  users.mapper,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Users returns the LocalUserView holder.
func (a *Authenticator) Users() *UserStore { return a.users }

// MapAuthDataToUser projects a raw auth payload into a User.
func (a *Authenticator) MapAuthDataToUser(data pocketbase.AuthData) User {
	return a.mapper.Map(data)
}

// Login signs in with email and password and loads the user view.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*pocketbase.AuthData, error) {
	data, err := a.records.AuthWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		a.logger.DebugContext(ctx, "password login rejected",
			logger.Component("account"),
			logger.Error(err),
		)
		return nil, newAuthError(OpLogin, err)
	}
	a.signedIn(ctx, *data)
	return data, nil
}

// CreateAccount creates the account with a hidden email and signs in with
// the same credentials.
func (a *Authenticator) CreateAccount(ctx context.Context, acc NewAccount) (*pocketbase.AuthData, error) {
	body := map[string]any{
		"email":           strings.TrimSpace(acc.Email),
		"emailVisibility": false,
		"password":        acc.Password,
		"passwordConfirm": acc.PasswordConfirm,
	}
	if _, err := a.records.Create(ctx, body); err != nil {
		return nil, newAuthError(OpCreate, err)
	}
	return a.Login(ctx, acc.Email, acc.Password)
}

// Logout ends the session locally. It never fails.
func (a *Authenticator) Logout(ctx context.Context) {
	a.pb.AuthStore().Clear(ctx)
	if a.storage != nil {
		if err := a.storage.Delete(ctx, pocketbase.StorageKey); err != nil {
			a.logger.WarnContext(ctx, "failed to remove persisted session",
				logger.Component("account"),
				logger.Error(err),
			)
		}
	}
	a.users.Clear()
}

// AuthRefresh renews a valid session and reloads the user view. An invalid
// session, or a refresh PocketBase rejects, signs the browser out without
// reporting an error.
func (a *Authenticator) AuthRefresh(ctx context.Context) {
	if !a.pb.AuthStore().IsValid() {
		a.Logout(ctx)
		return
	}

	data, err := a.records.AuthRefresh(ctx)
	if err != nil {
		a.logger.InfoContext(ctx, "session refresh failed, signing out",
			logger.Component("account"),
			logger.Error(err),
		)
		a.Logout(ctx)
		return
	}
	a.signedIn(ctx, *data)
}

// RequestEmailChange asks PocketBase to send a confirmation link to newEmail.
func (a *Authenticator) RequestEmailChange(ctx context.Context, newEmail string) error {
	if err := a.records.RequestEmailChange(ctx, strings.TrimSpace(newEmail)); err != nil {
		return newAuthError(OpEmailChange, err)
	}
	return nil
}

// DeleteAccount deletes the loaded user's record and signs out.
func (a *Authenticator) DeleteAccount(ctx context.Context) error {
	u := a.users.Current()
	if u == nil {
		return newAuthError(OpDelete, ErrNoUser)
	}
	if err := a.records.Delete(ctx, u.ID); err != nil {
		return newAuthError(OpDelete, err)
	}
	a.logger.InfoContext(ctx, "account deleted",
		logger.Component("account"),
		logger.UserID(u.ID),
	)
	a.Logout(ctx)
	return nil
}

func (a *Authenticator) signedIn(ctx context.Context, data pocketbase.AuthData) {
	u := a.users.Load(data)
	a.logger.DebugContext(ctx, "user signed in",
		logger.Component("account"),
		logger.UserID(u.ID),
	)
}
