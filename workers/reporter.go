package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/amonks/albumengine/db"
	"github.com/rs/zerolog"
)

// ProgressSource reports how much of the catalog is stored; *db.DB is one.
type ProgressSource interface {
	Progress(ctx context.Context, artistTTL, albumTTL time.Duration) (*db.Progress, error)
}

// Report logs the store's progress right away and then every interval,
// until ctx is done.
func Report(ctx context.Context, src ProgressSource, artistTTL, albumTTL, every time.Duration, log zerolog.Logger) error {
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		p, err := src.Progress(ctx, artistTTL, albumTTL)
		if err != nil {
			return fmt.Errorf("reporting error: %w", err)
		}
		log.Info().
			Int("artists", p.Artists).
			Int("stale_artists", p.StaleArtists).
			Int("albums", p.Albums).
			Int("stale_albums", p.StaleAlbums).
			Msg("progress")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}
