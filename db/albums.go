package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/amonks/albumengine/data"
	"github.com/amonks/albumengine/refresh"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxTopAlbums bounds the number of albums kept per artist.
const MaxTopAlbums = 5

// AlbumStore holds each artist's top albums, keyed by the artist's AMG id.
type AlbumStore struct {
	db *DB
}

func (db *DB) Albums() *AlbumStore {
	return &AlbumStore{db: db}
}

// artistByAmgID returns the stored artist with the given AMG id, or an
// error wrapping refresh.ErrNotFound.
func artistByAmgID(tx *gorm.DB, amgID int64) (data.Artist, error) {
	var artist data.Artist
	err := tx.Where("amg_id = ?", amgID).Order("id").Take(&artist).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return artist, fmt.Errorf("no artist with amg id %d: %w", amgID, refresh.ErrNotFound)
	} else if err != nil {
		return artist, fmt.Errorf("error looking up artist with amg id %d: %w", amgID, err)
	}
	return artist, nil
}

// Find returns the artist's MaxTopAlbums most recently updated albums. It
// fails with refresh.ErrNotFound if no artist has that AMG id.
func (s *AlbumStore) Find(ctx context.Context, amgID int64) ([]data.Album, error) {
	tx := s.db.WithContext(ctx)
	artist, err := artistByAmgID(tx, amgID)
	if err != nil {
		return nil, err
	}

	albums := []data.Album{}
	if err := tx.
		Where("artist_id = ?", artist.ID).
		Order("last_updated desc, id").
		Limit(MaxTopAlbums).
		Find(&albums).
		Error; err != nil {
		return nil, fmt.Errorf("error finding albums by artist %d: %w", artist.ID, err)
	}
	for i := range albums {
		albums[i].Artist = &artist
	}
	return albums, nil
}

// Save upserts albums as belonging to the artist with the given AMG id,
// stamping each one as updated now.
func (s *AlbumStore) Save(ctx context.Context, amgID int64, albums []data.Album) error {
	if len(albums) == 0 {
		return nil
	}
	now := s.db.now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		artist, err := artistByAmgID(tx, amgID)
		if err != nil {
			return err
		}
		for i := range albums {
			albums[i].ArtistID = artist.ID
			albums[i].Artist = &artist
			albums[i].LastUpdated = now
		}
		if err := tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&albums).
			Error; err != nil {
			return fmt.Errorf("error saving %d albums by artist %d: %w", len(albums), artist.ID, err)
		}
		if err := tx.Omit(clause.Associations).Save(&artist).Error; err != nil {
			return fmt.Errorf("error saving artist %d: %w", artist.ID, err)
		}
		return nil
	})
}
