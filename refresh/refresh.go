// Package refresh decides, for one lookup key, whether to answer from the
// cache, from the durable store, or from a fresh upstream download, and how
// to fall back when the upstream is rate limiting us.
//
// The same policy serves every entity kind; see Refresher.
package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/amonks/albumengine/entry"
)

var (
	// ErrRateLimited is returned (wrapped) by a Downloader when the upstream
	// asked us to slow down. A Refresher recovers from it by serving stored
	// data.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrNotFound is returned (wrapped) by a Store when the record that owns
	// the requested collection doesn't exist. A Refresher answers it with an
	// empty result.
	ErrNotFound = errors.New("owner not found")
)

// Entity is anything a Refresher can cache and age.
type Entity interface {
	Entry() entry.Entry
	Updated() time.Time
}

// Cache is an ordered list store with per-key expiry.
type Cache interface {
	// ReadAll returns up to the first 50 values stored at key, without
	// touching its expiry. A missing key is an empty result.
	ReadAll(ctx context.Context, key string) ([]string, error)

	// Touch resets key's expiry to ttl.
	Touch(ctx context.Context, key string, ttl time.Duration) error

	// WriteAll replaces whatever is stored at key with values and sets its
	// expiry to ttl.
	WriteAll(ctx context.Context, key string, values []string, ttl time.Duration) error
}

// Store is the durable system of record for collections of E addressed by K.
type Store[K any, E Entity] interface {
	// Find returns the stored collection for key, possibly empty.
	Find(ctx context.Context, key K) ([]E, error)

	// Save persists a freshly downloaded collection for key, atomically.
	Save(ctx context.Context, key K, entities []E) error
}

// Downloader fetches a fresh collection for key from the upstream catalog.
type Downloader[K any, E Entity] interface {
	Fetch(ctx context.Context, key K) ([]E, error)
}

// DownloaderFunc adapts a function to a Downloader.
type DownloaderFunc[K any, E Entity] func(ctx context.Context, key K) ([]E, error)

func (f DownloaderFunc[K, E]) Fetch(ctx context.Context, key K) ([]E, error) {
	return f(ctx, key)
}

// TTL is the pair of lifetimes that govern one lookup.
type TTL struct {
	// DB is how long a stored entity stays fresh after its last update.
	DB time.Duration

	// Cache is the sliding expiry applied to the cached copy.
	Cache time.Duration
}

// IsStale reports whether any entity was last updated more than ttl before
// now. An empty collection is never stale; emptiness is the caller's concern.
func IsStale[E Entity](entities []E, ttl time.Duration, now time.Time) bool {
	for _, e := range entities {
		if e.Updated().Add(ttl).Before(now) {
			return true
		}
	}
	return false
}
