package pocketbase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
)

// StorageKey is where the auth store persists its token and record.
const StorageKey = "pocketbase_auth"

// ChangeFunc is notified after every auth store transition.
type ChangeFunc func(token string, record *Record)

type listener struct {
	id uint64
	fn ChangeFunc
}

// AuthStore holds the current PocketBase token and auth record and
// optionally persists them to a kvstore.Store.
type AuthStore struct {
	mu        sync.Mutex
	token     string
	record    *Record
	listeners []listener
	nextID    uint64

	storage kvstore.Store
	key     string
	now     func() time.Time
	logger  *slog.Logger
}

// AuthStoreOption configures an AuthStore.
type AuthStoreOption func(*AuthStore)

// WithStorage persists the auth state to s under StorageKey.
func WithStorage(s kvstore.Store) AuthStoreOption {
	return func(a *AuthStore) { a.storage = s }
}

// WithStorageKey overrides StorageKey.
func WithStorageKey(key string) AuthStoreOption {
	return func(a *AuthStore) {
		if key != "" {
			a.key = key
		}
	}
}

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) AuthStoreOption {
	return func(a *AuthStore) {
		if now != nil {
			a.now = now
		}
	}
}

func WithAuthStoreLogger(l *slog.Logger) AuthStoreOption {
	return func(a *AuthStore) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthStore returns an empty, unpersisted store unless WithStorage is given.
func NewAuthStore(opts ...AuthStoreOption) *AuthStore {
	a := &AuthStore{
		key:    StorageKey,
		now:    time.Now,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *AuthStore) Token() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.token
}

// Record returns a copy of the auth record, or nil.
func (a *AuthStore) Record() *Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.record.Clone()
}

// IsValid reports whether the token is present and not expired.
func (a *AuthStore) IsValid() bool {
	return TokenValid(a.Token(), a.now())
}

// Save replaces the auth state, persists it and notifies listeners.
// A persistence failure is logged; the in-memory state is still updated.
func (a *AuthStore) Save(ctx context.Context, token string, record *Record) {
	a.mu.Lock()
	a.token = token
	a.record = record.Clone()
	a.mu.Unlock()

	if a.storage != nil {
		blob, err := json.Marshal(AuthData{Token: token, Record: record})
		if err == nil {
			err = a.storage.Set(ctx, a.key, string(blob))
		}
		if err != nil {
			a.logger.WarnContext(ctx, "failed to persist auth state",
				logger.Component("pocketbase.authstore"),
				logger.Error(err),
			)
		}
	}

	a.notify()
}

// Clear drops the auth state, removes the persisted copy and notifies listeners.
func (a *AuthStore) Clear(ctx context.Context) {
	a.mu.Lock()
	a.token = ""
	a.record = nil
	a.mu.Unlock()

	if a.storage != nil {
		if err := a.storage.Delete(ctx, a.key); err != nil {
			a.logger.WarnContext(ctx, "failed to remove persisted auth state",
				logger.Component("pocketbase.authstore"),
				logger.Error(err),
			)
		}
	}

	a.notify()
}

// Load restores the persisted auth state, if any. Listeners are notified
// when something was restored.
func (a *AuthStore) Load(ctx context.Context) error {
	if a.storage == nil {
		return nil
	}

	blob, err := a.storage.Get(ctx, a.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var data AuthData
	if err := json.Unmarshal([]byte(blob), &data); err != nil {
		return err
	}

	a.mu.Lock()
	a.token = data.Token
	a.record = data.Record
	a.mu.Unlock()

	a.notify()
	return nil
}

// OnChange registers fn and returns a function that unregisters it. With
// fireImmediately, fn is called once with the current state before OnChange
// returns.
func (a *AuthStore) OnChange(fn ChangeFunc, fireImmediately bool) func() {
	a.mu.Lock()
	a.nextID++
	id := a.nextID
	a.listeners = append(a.listeners, listener{id: id, fn: fn})
	token, record := a.token, a.record.Clone()
	a.mu.Unlock()

	if fireImmediately {
		fn(token, record)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			for i, l := range a.listeners {
				if l.id == id {
					a.listeners = append(a.listeners[:i:i], a.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Listeners reports the number of registered change listeners.
func (a *AuthStore) Listeners() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listeners)
}

func (a *AuthStore) notify() {
	a.mu.Lock()
	token, record := a.token, a.record
	listeners := make([]listener, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, l := range listeners {
		l.fn(token, record.Clone())
	}
}

// TokenValid reports whether token is a JWT whose "exp" claim is after now.
// The signature is not verified; PocketBase does that on every request.
// Tokens without an "exp" claim are treated as valid.
func TokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if len(claims) == 0 {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return now.Before(exp.Time)
}
