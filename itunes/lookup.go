package itunes

import (
	"context"
	"strconv"

	"github.com/amonks/albumengine/data"
	"github.com/amonks/albumengine/refresh"
)

type results struct {
	Results []result `json:"results"`
}

const (
	wrapperArtist     = "artist"
	wrapperCollection = "collection"
)

// result is the union of the artist and collection shapes the API returns;
// WrapperType says which one it is.
type result struct {
	WrapperType    string `json:"wrapperType"`
	ArtistID       int64  `json:"artistId"`
	AmgArtistID    int64  `json:"amgArtistId"`
	ArtistName     string `json:"artistName"`
	CollectionID   int64  `json:"collectionId"`
	CollectionName string `json:"collectionName"`
}

func (r result) artist() data.Artist {
	return data.Artist{ID: r.ArtistID, AmgID: r.AmgArtistID, Name: r.ArtistName}
}

// SearchArtists finds artists whose names match name. Artists without an AMG
// id are left out, since their albums can't be looked up.
func (c *Client) SearchArtists(ctx context.Context, name string) ([]data.Artist, error) {
	var res results
	if err := c.get(ctx, "/search", map[string]string{
		"entity": "allArtist",
		"term":   name,
	}, &res); err != nil {
		return nil, err
	}

	artists := make([]data.Artist, 0, len(res.Results))
	for _, r := range res.Results {
		if r.AmgArtistID == 0 {
			c.log.Debug().Int64("artist_id", r.ArtistID).Str("name", r.ArtistName).Msg("skipping artist without amg id")
			continue
		}
		artists = append(artists, r.artist())
	}
	return artists, nil
}

// TopAlbums looks up the artist with the given AMG id and up to MaxAlbums of
// their albums. Each album's Artist is the looked-up artist: the response's
// artist row, wherever it falls, or failing that the first album's artist.
func (c *Client) TopAlbums(ctx context.Context, amgID int64) ([]data.Album, error) {
	var res results
	if err := c.get(ctx, "/lookup", map[string]string{
		"amgArtistId": strconv.FormatInt(amgID, 10),
		"entity":      "album",
		"limit":       strconv.Itoa(MaxAlbums),
	}, &res); err != nil {
		return nil, err
	}

	var (
		owner       *data.Artist
		collections []result
	)
	for _, r := range res.Results {
		switch r.WrapperType {
		case wrapperArtist:
			if owner == nil {
				a := r.artist()
				owner = &a
			}
		case wrapperCollection:
			collections = append(collections, r)
		}
	}
	if len(collections) == 0 {
		return []data.Album{}, nil
	}
	// Collections carry their artist's fields too.
	if owner == nil {
		a := collections[0].artist()
		owner = &a
	}
	if len(collections) > MaxAlbums {
		collections = collections[:MaxAlbums]
	}

	albums := make([]data.Album, len(collections))
	for i, r := range collections {
		albums[i] = data.Album{
			ID:       r.CollectionID,
			Name:     r.CollectionName,
			ArtistID: owner.ID,
			Artist:   owner,
		}
	}
	return albums, nil
}

func (c *Client) ArtistDownloader() refresh.DownloaderFunc[string, data.Artist] {
	return c.SearchArtists
}

func (c *Client) AlbumDownloader() refresh.DownloaderFunc[int64, data.Album] {
	return c.TopAlbums
}
