// Package catalog answers the two lookups albumengine serves: artists by
// name, and an artist's top albums.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/albumengine/data"
	"github.com/amonks/albumengine/refresh"
	"github.com/rs/zerolog"
)

type Options struct {
	Cache   refresh.Cache
	Artists refresh.Store[string, data.Artist]
	Albums  refresh.Store[int64, data.Album]

	ArtistDownloader refresh.Downloader[string, data.Artist]
	AlbumDownloader  refresh.Downloader[int64, data.Album]

	ArtistTTL refresh.TTL
	AlbumTTL  refresh.TTL

	Logger zerolog.Logger
}

type Service struct {
	artists   *refresh.Refresher[string, data.Artist]
	albums    *refresh.Refresher[int64, data.Album]
	artistTTL refresh.TTL
	albumTTL  refresh.TTL
}

func ArtistsKey(name string) string {
	return "artists:" + name
}

func TopAlbumsKey(amgID int64) string {
	return fmt.Sprintf("topAlbums:artist:%d", amgID)
}

func New(opts Options) *Service {
	return &Service{
		artists: refresh.New(refresh.Options[string, data.Artist]{
			Cache:      opts.Cache,
			Store:      opts.Artists,
			Downloader: opts.ArtistDownloader,
			Key:        ArtistsKey,
			FromEntry:  data.ArtistFromEntry,
			Logger:     opts.Logger.With().Str("kind", "artists").Logger(),
		}),
		albums: refresh.New(refresh.Options[int64, data.Album]{
			Cache:      opts.Cache,
			Store:      opts.Albums,
			Downloader: opts.AlbumDownloader,
			Key:        TopAlbumsKey,
			FromEntry:  data.AlbumFromEntry,
			Logger:     opts.Logger.With().Str("kind", "albums").Logger(),
		}),
		artistTTL: opts.ArtistTTL,
		albumTTL:  opts.AlbumTTL,
	}
}

// Artists returns artists whose names contain name, ignoring case and
// surrounding space.
func (s *Service) Artists(ctx context.Context, name string) ([]data.Artist, error) {
	return s.artists.Get(ctx, strings.ToLower(strings.TrimSpace(name)), s.artistTTL)
}

// TopAlbums returns the top albums of the artist with the given AMG id.
func (s *Service) TopAlbums(ctx context.Context, amgID int64) ([]data.Album, error) {
	return s.albums.Get(ctx, amgID, s.albumTTL)
}
