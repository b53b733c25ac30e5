package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amonks/albumengine/entry"
	"github.com/rs/zerolog"
)

// Options wires a Refresher to its collaborators.
type Options[K any, E Entity] struct {
	Cache      Cache
	Store      Store[K, E]
	Downloader Downloader[K, E]

	// Key namespaces a lookup key into a cache key, like "artists:queen".
	Key func(K) string

	// FromEntry rebuilds an entity from its cached entry.
	FromEntry func(entry.Entry) E

	Logger zerolog.Logger

	// Now defaults to the current UTC time.
	Now func() time.Time
}

// Refresher serves collections of E addressed by K.
//
// A populated cache is authoritative until it expires. On a miss the store is
// consulted, and if its collection is missing or stale the downloader is
// called, at most once per Get. A rate-limited (or empty) download falls back
// to whatever the store had, which is then cached so that repeated requests
// don't hammer the upstream.
//
// Concurrent Gets for the same key are not coalesced: each may download, and
// each writes the cache. All writes are whole-collection overwrites, so the
// worst outcome is a wasted upstream call.
type Refresher[K any, E Entity] struct {
	cache      Cache
	store      Store[K, E]
	downloader Downloader[K, E]
	key        func(K) string
	fromEntry  func(entry.Entry) E
	log        zerolog.Logger
	now        func() time.Time
}

func New[K any, E Entity](opts Options[K, E]) *Refresher[K, E] {
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Refresher[K, E]{
		cache:      opts.Cache,
		store:      opts.Store,
		downloader: opts.Downloader,
		key:        opts.Key,
		fromEntry:  opts.FromEntry,
		log:        opts.Logger,
		now:        now,
	}
}

// Get returns the collection for key. The only errors it returns are store
// failures and non-rate-limit download failures; cache trouble is logged and
// otherwise ignored.
func (r *Refresher[K, E]) Get(ctx context.Context, key K, ttl TTL) ([]E, error) {
	cacheKey := r.key(key)
	log := r.log.With().Str("key", cacheKey).Logger()

	if cached, ok := r.readCache(ctx, log, cacheKey); ok {
		if err := r.cache.Touch(ctx, cacheKey, ttl.Cache); err != nil {
			log.Warn().Err(err).Msg("error touching cache")
		}
		return cached, nil
	}

	stored, err := r.store.Find(ctx, key)
	if errors.Is(err, ErrNotFound) {
		log.Info().Err(err).Msg("nothing to look up")
		return []E{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error loading '%s' from store: %w", cacheKey, err)
	}
	if stored == nil {
		stored = []E{}
	}

	if len(stored) == 0 || IsStale(stored, ttl.DB, r.now()) {
		log.Info().Int("stored", len(stored)).Msg("not found or out of date, downloading")
		refreshed, err := r.download(ctx, log, key)
		if err != nil {
			return nil, err
		}
		if len(refreshed) > 0 {
			log.Info().Int("count", len(refreshed)).Msg("updating store and cache")
			if err := r.store.Save(ctx, key, refreshed); err != nil {
				return nil, fmt.Errorf("error saving '%s' to store: %w", cacheKey, err)
			}
			r.writeCache(ctx, log, cacheKey, refreshed, ttl.Cache)
			return refreshed, nil
		}
	}

	log.Info().Int("count", len(stored)).Msg("caching stored collection")
	r.writeCache(ctx, log, cacheKey, stored, ttl.Cache)
	return stored, nil
}

// download calls the downloader once. A rate limit and an empty result both
// come back as (nil, nil): the caller can't tell them apart, and falls back
// to stored data either way.
func (r *Refresher[K, E]) download(ctx context.Context, log zerolog.Logger, key K) ([]E, error) {
	fetched, err := r.downloader.Fetch(ctx, key)
	if errors.Is(err, ErrRateLimited) {
		log.Warn().Err(err).Msg("download rate limited, falling back to stored collection")
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("error downloading '%s': %w", r.key(key), err)
	}
	if len(fetched) == 0 {
		log.Info().Msg("download returned nothing, falling back to stored collection")
		return nil, nil
	}
	return fetched, nil
}

// readCache reports a hit only when the key holds at least one value and
// every value decodes. Anything else is a miss.
func (r *Refresher[K, E]) readCache(ctx context.Context, log zerolog.Logger, cacheKey string) ([]E, bool) {
	values, err := r.cache.ReadAll(ctx, cacheKey)
	if err != nil {
		log.Warn().Err(err).Msg("error reading cache, treating as a miss")
		return nil, false
	}
	if len(values) == 0 {
		return nil, false
	}

	entries, err := entry.DecodeAll(values)
	if err != nil {
		log.Warn().Err(err).Strs("values", values).Msg("undecodable cache value, treating as a miss")
		return nil, false
	}

	log.Debug().Strs("values", values).Msg("cache hit")
	out := make([]E, len(entries))
	for i, e := range entries {
		out[i] = r.fromEntry(e)
	}
	return out, true
}

func (r *Refresher[K, E]) writeCache(ctx context.Context, log zerolog.Logger, cacheKey string, entities []E, ttl time.Duration) {
	entries := make([]entry.Entry, len(entities))
	for i, e := range entities {
		entries[i] = e.Entry()
	}
	if err := r.cache.WriteAll(ctx, cacheKey, entry.EncodeAll(entries), ttl); err != nil {
		log.Warn().Err(err).Msg("error writing cache")
	}
}
