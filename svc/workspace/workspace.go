package workspace

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/anilink/pkg/kvstore"
	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
	"github.com/dmitrymomot/anilink/pkg/toast"
	"github.com/dmitrymomot/anilink/svc/account"
	"github.com/dmitrymomot/anilink/svc/linking"
	"github.com/dmitrymomot/anilink/svc/session"
)

// Workspace is everything one browser needs.
type Workspace struct {
	ID         string
	Storage    kvstore.Store
	PocketBase *pocketbase.Client
	Bridge     *session.Bridge
	Users      *account.UserStore
	Auth       *account.Authenticator
	Linker     *linking.Linker
	Toasts     *toast.Queue
}

func (w *Workspace) close() {
	w.Bridge.Close()
	w.Toasts.Close()
}

type entry struct {
	once     sync.Once
	ws       *Workspace
	lastSeen time.Time
}

// Registry hands out Workspaces by browser id.
type Registry struct {
	cfg       Config
	store     kvstore.Store
	exchanger linking.TokenExchanger
	profiles  linking.ProfileFetcher
	pbHTTP    *http.Client
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger handed to every workspace, tagged with its
// browser id.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithPocketBaseHTTPClient sets the HTTP client shared by every workspace's
// PocketBase client.
func WithPocketBaseHTTPClient(c *http.Client) Option {
	return func(r *Registry) { r.pbHTTP = c }
}

// WithClock replaces time.Now for idle tracking.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRegistry returns an empty Registry. store is shared by every browser,
// each under its own key namespace. Collection defaults to "user" and
// Location to UTC.
func NewRegistry(cfg Config, store kvstore.Store, exchanger linking.TokenExchanger, profiles linking.ProfileFetcher, opts ...Option) *Registry {
	if cfg.Collection == "" {
		cfg.Collection = "user"
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	r := &Registry{
		cfg:       cfg,
		store:     store,
		exchanger: exchanger,
		profiles:  profiles,
		logger:    logger.Discard(),
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the browser's Workspace, building it on first use. Concurrent
// first calls for one browser build it once; the others wait.
func (r *Registry) Get(ctx context.Context, browserID string) *Workspace {
	r.mu.Lock()
	e, ok := r.entries[browserID]
	if !ok {
		e = &entry{}
		r.entries[browserID] = e
	}
	e.lastSeen = r.now()
	r.mu.Unlock()

	e.once.Do(func() {
		e.ws = r.build(ctx, browserID)
	})
	return e.ws
}

// Len reports the number of live workspaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts workspaces unused for longer than maxIdle and reports how many
// were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var evicted []*entry
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			evicted = append(evicted, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range evicted {
		// Wait for an in-flight build so its bridge gets closed too.
		e.once.Do(func() {})
		if e.ws != nil {
			e.ws.close()
		}
	}
	return len(evicted)
}

// Run sweeps every interval until ctx is done, then closes every workspace.
func (r *Registry) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.logger.DebugContext(ctx, "evicted idle workspaces",
					logger.Component("workspace"),
					slog.Int("count", n),
				)
			}
		}
	}
}

// Close evicts every workspace.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.once.Do(func() {})
		if e.ws != nil {
			e.ws.close()
		}
	}
}

// build wires the graph and runs the startup sequence: restore the persisted
// session, start mirroring it, then refresh it.
func (r *Registry) build(ctx context.Context, browserID string) *Workspace {
	log := r.logger.With(logger.BrowserID(browserID))
	storage := kvstore.Scoped(r.store, browserID)

	authStore := pocketbase.NewAuthStore(
		pocketbase.WithStorage(storage),
		pocketbase.WithAuthStoreLogger(log),
	)
	pb := pocketbase.New(r.cfg.PocketBaseURL,
		pocketbase.WithAuthStore(authStore),
		pocketbase.WithHTTPClient(r.pbHTTP),
	)
	records := pb.Collection(r.cfg.Collection)

	users := account.NewUserStore(records, account.Mapper{
		Files:    pb,
		Thumb:    r.cfg.AvatarThumb,
		Location: r.cfg.Location,
	})
	bridge := session.NewBridge(authStore, session.WithLogger(log))
	auth := account.New(pb, records, users, storage, account.WithLogger(log))
	toasts := toast.New()
	linker := linking.New(r.cfg.Linking, storage, r.exchanger, r.profiles, bridge, records,
		linking.WithLogger(log),
		linking.WithToasts(toasts),
		linking.OnRefresh(func(data pocketbase.AuthData) { users.Load(data) }),
	)

	// Startup must not depend on the request that triggered it.
	ctx = context.WithoutCancel(ctx)
	if err := authStore.Load(ctx); err != nil {
		log.WarnContext(ctx, "discarding unreadable persisted session",
			logger.Component("workspace"),
			logger.Error(err),
		)
		authStore.Clear(ctx)
	}
	bridge.Initialize()
	auth.AuthRefresh(ctx)

	return &Workspace{
		ID:         browserID,
		Storage:    storage,
		PocketBase: pb,
		Bridge:     bridge,
		Users:      users,
		Auth:       auth,
		Linker:     linker,
		Toasts:     toasts,
	}
}
