package toast

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the toast severity.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultLifetime is how long a toast stays visible once delivered.
const DefaultLifetime = 3 * time.Second

// Toast is one notification as delivered to the browser.
type Toast struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier is the write side of a Queue.
type Notifier interface {
	Open(kind Kind, message string) Toast
}

// Queue holds the visible toasts in insertion order.
type Queue struct {
	mu       sync.Mutex
	items    []Toast
	timers   map[string]*time.Timer
	lifetime time.Duration
}

// Option configures a Queue.
type Option func(*Queue)

// WithLifetime overrides DefaultLifetime. Non-positive values disable
// auto-dismissal.
func WithLifetime(d time.Duration) Option {
	return func(q *Queue) {
		q.lifetime = d
	}
}

// New returns an empty Queue with DefaultLifetime.
func New(opts ...Option) *Queue {
	q := &Queue{
		timers:   make(map[string]*time.Timer),
		lifetime: DefaultLifetime,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Open appends a toast. Its lifetime starts on the first List that returns
// it, so a toast opened before the browser polls is not lost.
func (q *Queue) Open(kind Kind, message string) Toast {
	t := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
	return t
}

// Success opens a KindSuccess toast.
func (q *Queue) Success(message string) Toast { return q.Open(KindSuccess, message) }

// Error opens a KindError toast.
func (q *Queue) Error(message string) Toast { return q.Open(KindError, message) }

// Dismiss removes the toast with the given id. It reports whether the toast
// was still visible.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the visible toasts, oldest first, and starts the
// lifetime of those being delivered for the first time.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.items))
	copy(out, q.items)

	if q.lifetime > 0 {
		for _, t := range out {
			if _, scheduled := q.timers[t.ID]; scheduled {
				continue
			}
			id := t.ID
			q.timers[id] = time.AfterFunc(q.lifetime, func() { q.Dismiss(id) })
		}
	}
	return out
}

// Close stops pending timers and drops every toast.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
}
