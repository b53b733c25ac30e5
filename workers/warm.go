package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amonks/albumengine/data"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	KindArtists = "artists"
	KindAlbums  = "albums"
)

// Kinds lists what Warm can refresh.
var Kinds = []string{KindArtists, KindAlbums}

// Catalog is what the warmers need from catalog.Service.
type Catalog interface {
	Artists(ctx context.Context, name string) ([]data.Artist, error)
	TopAlbums(ctx context.Context, amgID int64) ([]data.Album, error)
}

type Options struct {
	// Kinds selects what to refresh. Albums are found through artists, so
	// "albums" always looks artists up too.
	Kinds []string

	// Concurrency bounds how many lookups are in flight. Zero means one.
	Concurrency int

	// Wait, if set, is called before every lookup; it's how the warmers
	// sit out an upstream backoff window.
	Wait func(context.Context) error

	Logger zerolog.Logger
}

// Result counts what a warmer looked up.
type Result struct {
	mu      sync.Mutex
	Names   int
	Artists int
	Albums  int
}

func (r *Result) add(names, artists, albums int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Names += names
	r.Artists += artists
	r.Albums += albums
}

type warmer struct {
	svc    Catalog
	opts   Options
	albums bool
	result *Result
}

func newWarmer(svc Catalog, opts Options) (*warmer, error) {
	w := &warmer{svc: svc, opts: opts, result: &Result{}}
	for _, kind := range opts.Kinds {
		switch kind {
		case KindArtists:
		case KindAlbums:
			w.albums = true
		default:
			return nil, fmt.Errorf("unsupported kind '%s'", kind)
		}
	}
	return w, nil
}

func (w *warmer) group(ctx context.Context) (*errgroup.Group, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	limit := w.opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	return g, ctx
}

func (w *warmer) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("canceled: %w", err)
	}
	if w.opts.Wait == nil {
		return nil
	}
	return w.opts.Wait(ctx)
}

// Warm refreshes every name in names, and, if albums are selected, the top
// albums of every artist found. The first error stops the run.
func Warm(ctx context.Context, svc Catalog, names []string, opts Options) (*Result, error) {
	w, err := newWarmer(svc, opts)
	if err != nil {
		return nil, err
	}

	g, ctx := w.group(ctx)
	for _, name := range names {
		name := name // per-iteration copy for go1.21 loop semantics
		g.Go(func() error {
			if err := w.wait(ctx); err != nil {
				return err
			}
			artists, err := svc.Artists(ctx, name)
			if err != nil {
				return fmt.Errorf("error warming artists named '%s': %w", name, err)
			}
			w.opts.Logger.Info().Str("name", name).Int("artists", len(artists)).Msg("warmed")
			w.result.add(1, len(artists), 0)

			if !w.albums {
				return nil
			}
			for _, artist := range artists {
				if err := w.topAlbums(ctx, artist.AmgID); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return w.result, err
	}
	return w.result, nil
}

func (w *warmer) topAlbums(ctx context.Context, amgID int64) error {
	if err := w.wait(ctx); err != nil {
		return err
	}
	albums, err := w.svc.TopAlbums(ctx, amgID)
	if err != nil {
		return fmt.Errorf("error warming top albums of %d: %w", amgID, err)
	}
	w.opts.Logger.Debug().Int64("amg_id", amgID).Int("albums", len(albums)).Msg("warmed")
	w.result.add(0, 0, len(albums))
	return nil
}

// StaleSource lists artists whose stored albums need refreshing; *db.DB is
// one.
type StaleSource interface {
	StaleArtistAmgIDs(ctx context.Context, albumTTL time.Duration, limit int) ([]int64, error)
}

// RefreshStale makes one pass over up to limit artists whose albums are
// older than albumTTL, refreshing each one's top albums.
func RefreshStale(ctx context.Context, svc Catalog, src StaleSource, albumTTL time.Duration, limit int, opts Options) (*Result, error) {
	w, err := newWarmer(svc, opts)
	if err != nil {
		return nil, err
	}

	ids, err := src.StaleArtistAmgIDs(ctx, albumTTL, limit)
	if err != nil {
		return nil, err
	}
	w.opts.Logger.Info().Int("artists", len(ids)).Msg("refreshing stale albums")

	g, ctx := w.group(ctx)
	for _, id := range ids {
		id := id // per-iteration copy for go1.21 loop semantics
		g.Go(func() error {
			return w.topAlbums(ctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return w.result, err
	}
	return w.result, nil
}
