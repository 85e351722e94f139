// Package store provides the durable key-value stores the diagram autosave
// is written to.
//
// A [Store] holds opaque byte values under string keys. Implementations:
//   - [Memory]: in-process map, for tests and ephemeral sessions
//   - [File]: one file per key under a directory, the CLI default
//   - [Null]: discards writes and never hits
//   - [Redis]: a Redis server, for a shared host
//   - [Mongo]: one document per key in a MongoDB collection
//
// [Scoped] wraps any Store and prefixes keys with a namespace so several
// editors can share one backend.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Store is a durable key-value store.
//
// Get reports a missing key as (nil, false, nil); an error means the store
// itself could not be read.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNull   = "null"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists every backend name.
var Backends = []string{BackendFile, BackendMemory, BackendNull, BackendRedis, BackendMongo}

// Options selects and configures a backend for [Open].
type Options struct {
	Backend   string
	Namespace string

	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend ("file" when empty) and
// wraps it in a [Scoped] store when a namespace is set.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		s, err = NewFile(opts.Dir)
	case BackendMemory:
		s = NewMemory()
	case BackendNull:
		s = NewNull()
	case BackendRedis:
		s, err = NewRedis(ctx, RedisConfig{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
	case BackendMongo:
		s, err = NewMongo(ctx, MongoConfig{
			URI:        opts.MongoURI,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownBackend, opts.Backend, strings.Join(Backends, ", "))
	}
	if err != nil {
		return nil, err
	}
	if opts.Namespace != "" {
		s = NewScoped(s, opts.Namespace)
	}
	return s, nil
}
