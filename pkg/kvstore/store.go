package kvstore

import "context"

// Store is a string key-value area.
type Store interface {
	// Get returns ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set overwrites any existing value.
	Set(ctx context.Context, key, value string) error
	// Delete is a no-op for absent keys.
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes the key in one step. Of several
	// concurrent calls for one key, exactly one gets the value; the rest get
	// ErrNotFound.
	Take(ctx context.Context, key string) (string, error)
}

type scoped struct {
	next   Store
	prefix string
}

// Scoped returns a Store that prefixes every key with namespace + ":".
func Scoped(s Store, namespace string) Store {
	return &scoped{next: s, prefix: namespace + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, error) {
	return s.next.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.next.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.next.Delete(ctx, s.prefix+key)
}

func (s *scoped) Take(ctx context.Context, key string) (string, error) {
	return s.next.Take(ctx, s.prefix+key)
}
