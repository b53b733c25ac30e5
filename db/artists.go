package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/albumengine/data"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxArtists bounds the result of a name search.
const MaxArtists = 50

// ArtistStore holds artist search results, keyed by the (lowercased) name
// that was searched for.
type ArtistStore struct {
	db *DB
}

func (db *DB) Artists() *ArtistStore {
	return &ArtistStore{db: db}
}

// Find returns up to MaxArtists stored artists whose names contain name,
// ignoring case. Case is folded in Go, so non-ASCII names match too.
func (s *ArtistStore) Find(ctx context.Context, name string) ([]data.Artist, error) {
	artists := []data.Artist{}
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"
	if err := s.db.
		WithContext(ctx).
		Where(`name_lower like ? escape '\'`, pattern).
		Order("name").
		Limit(MaxArtists).
		Find(&artists).
		Error; err != nil {
		return nil, fmt.Errorf("error finding artists named like '%s': %w", name, err)
	}
	return artists, nil
}

// Save upserts artists, stamping each one as updated now and filling in
// NameLower.
func (s *ArtistStore) Save(ctx context.Context, name string, artists []data.Artist) error {
	if len(artists) == 0 {
		return nil
	}
	now := s.db.now()
	for i := range artists {
		artists[i].LastUpdated = now
		artists[i].NameLower = strings.ToLower(artists[i].Name)
	}
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Omit(clause.Associations).
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&artists).
			Error
	}); err != nil {
		return fmt.Errorf("error saving %d artists for '%s': %w", len(artists), name, err)
	}
	return nil
}
