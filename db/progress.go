package db

import (
	"context"
	"fmt"
	"time"
)

// Progress summarizes how much of the catalog is stored, and how much of it
// is older than the database TTLs.
type Progress struct {
	Artists      int
	StaleArtists int
	Albums       int
	StaleAlbums  int
}

func (db *DB) Progress(ctx context.Context, artistTTL, albumTTL time.Duration) (*Progress, error) {
	now := db.now()
	var p Progress
	var err error
	if p.Artists, err = db.count(ctx, "artists", time.Time{}); err != nil {
		return nil, err
	}
	if p.StaleArtists, err = db.count(ctx, "artists", now.Add(-artistTTL)); err != nil {
		return nil, err
	}
	if p.Albums, err = db.count(ctx, "albums", time.Time{}); err != nil {
		return nil, err
	}
	if p.StaleAlbums, err = db.count(ctx, "albums", now.Add(-albumTTL)); err != nil {
		return nil, err
	}
	return &p, nil
}

// count counts rows in table, or only those last updated before cutoff if
// cutoff is nonzero.
func (db *DB) count(ctx context.Context, table string, cutoff time.Time) (int, error) {
	var count int64
	q := db.WithContext(ctx).Table(table)
	if !cutoff.IsZero() {
		q = q.Where("last_updated < ?", cutoff)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return int(count), nil
}

// StaleArtistAmgIDs lists the AMG ids of artists whose albums have never
// been stored or are older than albumTTL.
func (db *DB) StaleArtistAmgIDs(ctx context.Context, albumTTL time.Duration, limit int) ([]int64, error) {
	ids := []int64{}
	cutoff := db.now().Add(-albumTTL)
	if err := db.
		WithContext(ctx).
		Table("artists").
		Joins("left join albums on albums.artist_id = artists.id").
		Group("artists.amg_id").
		Having("max(albums.last_updated) is null or max(albums.last_updated) < ?", cutoff).
		Order("artists.amg_id").
		Limit(limit).
		Pluck("artists.amg_id", &ids).
		Error; err != nil {
		return nil, fmt.Errorf("error listing artists with stale albums: %w", err)
	}
	return ids, nil
}
