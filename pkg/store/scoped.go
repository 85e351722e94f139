package store

import "context"

// Scoped prefixes every key with a namespace before delegating to the
// wrapped store. Closing a Scoped store closes the wrapped one.
//
//	s := NewScoped(redisStore, "team-a")
//	s.Set(ctx, "archboard:diagram", data) // writes "team-a:archboard:diagram"
type Scoped struct {
	inner  Store
	prefix string
}

// NewScoped creates a store whose keys are prefixed with namespace + ":".
func NewScoped(inner Store, namespace string) *Scoped {
	return &Scoped{inner: inner, prefix: namespace + ":"}
}

// Key returns the key passed to the wrapped store.
func (s *Scoped) Key(key string) string { return s.prefix + key }

// Get retrieves a value from the namespace.
func (s *Scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.Key(key))
}

// Set stores a value in the namespace.
func (s *Scoped) Set(ctx context.Context, key string, data []byte) error {
	return s.inner.Set(ctx, s.Key(key), data)
}

// Delete removes a value from the namespace.
func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.Key(key))
}

// Close closes the wrapped store.
func (s *Scoped) Close() error { return s.inner.Close() }

// Unwrap returns the wrapped store.
func (s *Scoped) Unwrap() Store { return s.inner }

var _ Store = (*Scoped)(nil)
