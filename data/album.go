package data

import (
	"time"

	"github.com/amonks/albumengine/entry"
)

// Albums are fetched from iTunes as an artist's top five.
type Album struct {
	// iTunes collectionId, like 1440650428
	ID int64 `gorm:"primaryKey;autoIncrement:false" json:"id"`

	// like "A Night at the Opera"
	Name string `json:"name"`

	ArtistID int64 `gorm:"index" json:"-"`

	// The owner as resolved by the downloader. Never written through the
	// association; ArtistID is what gets persisted.
	Artist *Artist `json:"-"`

	LastUpdated time.Time `json:"-"`
}

func (a Album) Entry() entry.Entry {
	return entry.Entry{ID: a.ID, Name: a.Name}
}

func (a Album) Updated() time.Time {
	return a.LastUpdated
}

// AlbumFromEntry rebuilds an album from its cache entry. The owning artist
// is not part of the entry, so it is left unset.
func AlbumFromEntry(e entry.Entry) Album {
	return Album{ID: e.ID, Name: e.Name}
}
