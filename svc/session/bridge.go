package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/anilink/pkg/logger"
	"github.com/dmitrymomot/anilink/pkg/pocketbase"
)

// Session is the mirrored auth state.
type Session struct {
	Token   string
	Record  *pocketbase.Record
	IsValid bool
}

// Source is the external auth state the Bridge observes.
type Source interface {
	Token() string
	Record() *pocketbase.Record
	IsValid() bool
	OnChange(fn pocketbase.ChangeFunc, fireImmediately bool) func()
}

// Bridge keeps a Session in sync with a Source.
type Bridge struct {
	source Source
	logger *slog.Logger

	mu          sync.RWMutex
	session     Session
	unsubscribe func()
	subs        map[int]func(Session)
	nextSub     int
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used to report initialization failures.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBridge returns a Bridge over source. It mirrors nothing until
// Initialize is called.
func NewBridge(source Source, opts ...Option) *Bridge {
	b := &Bridge{
		source: source,
		logger: logger.Discard(),
		subs:   make(map[int]func(Session)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Initialize captures the current source state and starts listening for
// changes. The listener fires once immediately so nothing that happened
// between the capture and the registration is lost. Subsequent calls are
// no-ops.
func (b *Bridge) Initialize() {
	b.mu.RLock()
	started := b.unsubscribe != nil
	b.mu.RUnlock()
	if started {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("failed to initialize session bridge",
				logger.Component("session.bridge"),
				logger.Error(fmt.Errorf("%v", r)),
			)
		}
	}()

	b.publish(b.source.Token(), b.source.Record(), b.source.IsValid())

	unsubscribe := b.source.OnChange(func(token string, record *pocketbase.Record) {
		b.publish(token, record, b.source.IsValid())
	}, true)

	b.mu.Lock()
	if b.unsubscribe != nil {
		b.mu.Unlock()
		unsubscribe()
		return
	}
	b.unsubscribe = unsubscribe
	b.mu.Unlock()
}

// Close stops listening to the source. The last mirrored Session stays
// readable.
func (b *Bridge) Close() {
	b.mu.Lock()
	unsubscribe := b.unsubscribe
	b.unsubscribe = nil
	b.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Session returns a copy of the mirrored state.
func (b *Bridge) Session() Session {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s := b.session
	s.Record = s.Record.Clone()
	return s
}

// IsValid reports whether the mirrored token is present and unexpired.
func (b *Bridge) IsValid() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session.IsValid
}

// Record returns a copy of the mirrored account record, or nil.
func (b *Bridge) Record() *pocketbase.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.session.Record.Clone()
}

// Subscribe registers fn to run after every re-publication.
func (b *Bridge) Subscribe(fn func(Session)) (unsubscribe func()) {
	b.mu.Lock()
	b.nextSub++
	id := b.nextSub
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *Bridge) publish(token string, record *pocketbase.Record, valid bool) {
	s := Session{Token: token, Record: record.Clone(), IsValid: valid}

	b.mu.Lock()
	b.session = s
	subs := make([]func(Session), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(Session{Token: s.Token, Record: s.Record.Clone(), IsValid: s.IsValid})
	}
}

// LogValue keeps tokens out of log output.
func (s Session) LogValue() slog.Value {
	id := ""
	if s.Record != nil {
		id = s.Record.ID
	}
	return slog.GroupValue(slog.String("user_id", id), slog.Bool("valid", s.IsValid))
}
