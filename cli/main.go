// albumengine looks up artists and their top albums on iTunes, keeping the
// results in sqlite and Redis so that repeated lookups stay cheap and keep
// working while iTunes is rate limiting us.
//
// see db/schema.sql for info about the resulting database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/amonks/albumengine/cachestore"
	"github.com/amonks/albumengine/catalog"
	"github.com/amonks/albumengine/config"
	"github.com/amonks/albumengine/db"
	"github.com/amonks/albumengine/itunes"
	"github.com/amonks/albumengine/limiter"
	"github.com/amonks/albumengine/sigctx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// itunesDefaultBackoff is how long to back off after a 429 that doesn't say.
const itunesDefaultBackoff = time.Minute

var usage = strings.TrimSpace(`
usage: albumengine $cmd
valid $cmd are 'serve', 'artists', 'albums', 'warm', 'progress'
for help: albumengine $cmd -help
`)

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed loading .env file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	if len(os.Args) < 2 {
		return errors.New(usage)
	}
	cmd, args := os.Args[1], os.Args[2:]

	ctx := sigctx.New()

	var f func(context.Context, *app, []string) error
	switch cmd {
	case "serve":
		f = serve
	case "artists":
		f = artists
	case "albums":
		f = albums
	case "warm":
		f = warm
	case "progress":
		f = progress
	default:
		return fmt.Errorf("unknown cmd: '%s'\n%s", cmd, usage)
	}

	a, err := open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	return f(ctx, a, args)
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid LOG_LEVEL '%s': %w", level, err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().
		Logger(), nil
}

// app holds everything a subcommand might need.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	db      *db.DB
	cache   *cachestore.Redis
	lim     *limiter.Limiter
	itunes  *itunes.Client
	catalog *catalog.Service
}

func open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	d, err := db.Open(cfg.DB, log.With().Str("component", "db").Logger())
	if err != nil {
		return nil, err
	}

	cache, err := cachestore.Open(ctx, cachestore.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		d.Close()
		return nil, err
	}

	lim := limiter.New(cfg.LimiterFile, itunesDefaultBackoff, log.With().Str("component", "limiter").Logger())
	if err := lim.Load(); err != nil {
		d.Close()
		cache.Close()
		return nil, err
	}

	client := itunes.New(itunes.Options{
		BaseURL: cfg.ITunes.BaseURL,
		Timeout: cfg.ITunes.Timeout,
		Limiter: lim,
		Logger:  log.With().Str("component", "itunes").Logger(),
	})

	return &app{
		cfg:    cfg,
		log:    log,
		db:     d,
		cache:  cache,
		lim:    lim,
		itunes: client,
		catalog: catalog.New(catalog.Options{
			Cache:            cache,
			Artists:          d.Artists(),
			Albums:           d.Albums(),
			ArtistDownloader: client.ArtistDownloader(),
			AlbumDownloader:  client.AlbumDownloader(),
			ArtistTTL:        cfg.Artist.TTL(),
			AlbumTTL:         cfg.Album.TTL(),
			Logger:           log,
		}),
	}, nil
}

func (a *app) Close() {
	if err := a.itunes.Close(); err != nil {
		a.log.Error().Err(err).Msg("error closing itunes client")
	}
	if err := a.cache.Close(); err != nil {
		a.log.Error().Err(err).Msg("error closing redis")
	}
	if err := a.db.Close(); err != nil {
		a.log.Error().Err(err).Msg("error closing db")
	}
}
