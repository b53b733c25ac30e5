package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/amonks/albumengine/setflag"
	"github.com/amonks/albumengine/subcmd"
	"github.com/amonks/albumengine/workers"
)

func warm(ctx context.Context, a *app, args []string) error {
	subcmd := subcmd.New("warm", "refresh the store and cache for a list of artist names, read from\nthe arguments or, with -, one per line from stdin").
		SetArgs("name", "string", "artist names to look up")
	kinds := setflag.New(workers.Kinds...)
	subcmd.Var(kinds, "kinds", "what to refresh: artists, albums")
	var (
		concurrency = subcmd.Int("concurrency", 4, "lookups in flight at once")
		stale       = subcmd.Int("stale", 0, "afterwards, refresh the albums of up to this many artists whose albums are stale")
		report      = subcmd.Duration("report", 0, "log store progress at this interval while warming")
	)
	rest, err := subcmd.ParseArgs(args)
	if err != nil {
		return err
	}
	kinds.Default(workers.KindArtists)

	names := rest
	if len(rest) == 1 && rest[0] == "-" {
		if names, err = readNames(os.Stdin); err != nil {
			return err
		}
	}

	opts := workers.Options{
		Kinds:       kinds.List(),
		Concurrency: *concurrency,
		Wait:        a.lim.Wait,
		Logger:      a.log.With().Str("component", "warm").Logger(),
	}

	if *report > 0 {
		reportCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go workers.Report(reportCtx, a.db, a.cfg.Artist.TTL().DB, a.cfg.Album.TTL().DB, *report, opts.Logger)
	}

	start := time.Now()
	res, err := workers.Warm(ctx, a.catalog, names, opts)
	if err != nil {
		return fmt.Errorf("warm error: %w", err)
	}
	a.log.Info().
		Int("names", res.Names).
		Int("artists", res.Artists).
		Int("albums", res.Albums).
		Dur("took", time.Since(start)).
		Msg("warmed")

	if *stale == 0 {
		return nil
	}
	res, err = workers.RefreshStale(ctx, a.catalog, a.db, a.cfg.Album.TTL().DB, *stale, opts)
	if err != nil {
		return fmt.Errorf("stale refresh error: %w", err)
	}
	a.log.Info().Int("albums", res.Albums).Msg("refreshed stale albums")
	return nil
}

func readNames(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading names: %w", err)
	}
	return names, nil
}
