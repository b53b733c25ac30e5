package data

import (
	"time"

	"github.com/amonks/albumengine/entry"
)

// Artists are found by name through the iTunes search API.
//
// The durable identity is iTunes' artistId; the AMG id is what callers use to
// address an artist (and its albums) from outside.
type Artist struct {
	// like 3296287
	ID int64 `gorm:"primaryKey;autoIncrement:false" json:"-"`

	// like 5026
	AmgID int64 `gorm:"index" json:"amgId"`

	// like "Queen"
	Name string `json:"name"`

	// like "queen"; Name folded by Go, since sqlite's lower() only folds ASCII.
	NameLower string `json:"-"`

	// Set whenever the row is written from a successful upstream fetch.
	LastUpdated time.Time `json:"-"`

	TopAlbums []Album `gorm:"foreignKey:ArtistID" json:"-"`
}

func (a Artist) Entry() entry.Entry {
	return entry.Entry{ID: a.AmgID, Name: a.Name}
}

func (a Artist) Updated() time.Time {
	return a.LastUpdated
}

// ArtistFromEntry rebuilds an artist from its cache entry. Only AmgID and
// Name are known.
func ArtistFromEntry(e entry.Entry) Artist {
	return Artist{AmgID: e.ID, Name: e.Name}
}
