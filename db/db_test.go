package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amonks/albumengine/data"
	"github.com/amonks/albumengine/db"
	"github.com/amonks/albumengine/refresh"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2022, 2, 3, 12, 0, 0, 0, time.UTC)

func open(t *testing.T) *db.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d.WithClock(func() time.Time { return now })
}

func names(artists []data.Artist) []string {
	var out []string
	for _, a := range artists {
		out = append(out, a.Name)
	}
	return out
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 2; i++ {
		d, err := db.Open(path, zerolog.Nop())
		require.NoError(t, err)
		require.NoError(t, d.Close())
	}
}

func TestArtistsFindEmpty(t *testing.T) {
	d := open(t)
	artists, err := d.Artists().Find(context.Background(), "queen")
	require.NoError(t, err)
	assert.NotNil(t, artists)
	assert.Empty(t, artists)
}

func TestArtistsSaveAndFind(t *testing.T) {
	d := open(t)
	ctx := context.Background()

	in := []data.Artist{
		{ID: 3296287, AmgID: 5026, Name: "Queen"},
		{ID: 1, AmgID: 1, Name: "Queens of the Stone Age"},
		{ID: 2, AmgID: 2, Name: "Prince"},
	}
	require.NoError(t, d.Artists().Save(ctx, "queen", in))
	for _, a := range in {
		assert.True(t, a.LastUpdated.Equal(now))
	}

	got, err := d.Artists().Find(ctx, "QUEEN")
	require.NoError(t, err)
	assert.Equal(t, []string{"Queen", "Queens of the Stone Age"}, names(got))
	assert.Equal(t, int64(5026), got[0].AmgID)
	assert.True(t, got[0].LastUpdated.Equal(now))
}

func TestArtistsSaveUpserts(t *testing.T) {
	d := open(t)
	ctx := context.Background()

	require.NoError(t, d.Artists().Save(ctx, "queen", []data.Artist{{ID: 1, AmgID: 5026, Name: "Queen"}}))
	later := d.WithClock(func() time.Time { return now.Add(time.Hour) })
	require.NoError(t, later.Artists().Save(ctx, "queen", []data.Artist{{ID: 1, AmgID: 5026, Name: "Queen (Band)"}}))

	got, err := d.Artists().Find(ctx, "queen")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Queen (Band)", got[0].Name)
	assert.True(t, got[0].LastUpdated.Equal(now.Add(time.Hour)))
}

func TestArtistsFindEscapesWildcards(t *testing.T) {
	d := open(t)
	ctx := context.Background()

	require.NoError(t, d.Artists().Save(ctx, "x", []data.Artist{
		{ID: 1, AmgID: 1, Name: "100% Funk"},
		{ID: 2, AmgID: 2, Name: "1000 Homo DJs"},
		{ID: 3, AmgID: 3, Name: "a_b"},
		{ID: 4, AmgID: 4, Name: "axb"},
	}))

	got, err := d.Artists().Find(ctx, "100%")
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Funk"}, names(got))

	got, err = d.Artists().Find(ctx, "a_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_b"}, names(got))
}

func TestArtistsFindFoldsNonASCII(t *testing.T) {
	d := open(t)
	ctx := context.Background()

	require.NoError(t, d.Artists().Save(ctx, "ólafur", []data.Artist{
		{ID: 1, AmgID: 1, Name: "Ólafur Arnalds"},
		{ID: 2, AmgID: 2, Name: "Øystein Sevåg"},
		{ID: 3, AmgID: 3, Name: "Édith Piaf"},
	}))

	got, err := d.Artists().Find(ctx, "ólafur")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ólafur Arnalds"}, names(got))
	assert.Equal(t, "ólafur arnalds", got[0].NameLower)

	got, err = d.Artists().Find(ctx, "ØYSTEIN")
	require.NoError(t, err)
	assert.Equal(t, []string{"Øystein Sevåg"}, names(got))

	got, err = d.Artists().Find(ctx, "édith")
	require.NoError(t, err)
	assert.Equal(t, []string{"Édith Piaf"}, names(got))
}

func TestArtistsFindIsBounded(t *testing.T) {
	d := open(t)
	ctx := context.Background()

	var in []data.Artist
	for i := 1; i <= db.MaxArtists+10; i++ {
		in = append(in, data.Artist{ID: int64(i), AmgID: int64(i), Name: "The Band"})
	}
	require.NoError(t, d.Artists().Save(ctx, "band", in))

	got, err := d.Artists().Find(ctx, "band")
	require.NoError(t, err)
	assert.Len(t, got, db.MaxArtists)
}

func TestAlbumsFindUnknownArtist(t *testing.T) {
	d := open(t)
	_, err := d.Albums().Find(context.Background(), 5026)
	assert.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestAlbumsSaveUnknownArtist(t *testing.T) {
	d := open(t)
	err := d.Albums().Save(context.Background(), 5026, []data.Album{{ID: 1, Name: "jazz"}})
	assert.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestAlbumsFindKnownArtistWithoutAlbums(t *testing.T) {
	d := open(t)
	ctx := context.Background()
	require.NoError(t, d.Artists().Save(ctx, "queen", []data.Artist{{ID: 3296287, AmgID: 5026, Name: "Queen"}}))

	albums, err := d.Albums().Find(ctx, 5026)
	require.NoError(t, err)
	assert.NotNil(t, albums)
	assert.Empty(t, albums)
}

func TestAlbumsSaveAndFind(t *testing.T) {
	d := open(t)
	ctx := context.Background()
	require.NoError(t, d.Artists().Save(ctx, "queen", []data.Artist{{ID: 3296287, AmgID: 5026, Name: "Queen"}}))

	in := []data.Album{{ID: 1, Name: "Jazz"}, {ID: 2, Name: "The Game"}}
	require.NoError(t, d.Albums().Save(ctx, 5026, in))
	assert.Equal(t, int64(3296287), in[0].ArtistID)
	require.NotNil(t, in[0].Artist)
	assert.Equal(t, "Queen", in[0].Artist.Name)

	got, err := d.Albums().Find(ctx, 5026)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "Jazz", got[0].Name)
	assert.True(t, got[0].LastUpdated.Equal(now))
	require.NotNil(t, got[0].Artist)
	assert.Equal(t, int64(5026), got[0].Artist.AmgID)
}

func TestAlbumsFindReturnsMostRecent(t *testing.T) {
	d := open(t)
	ctx := context.Background()
	require.NoError(t, d.Artists().Save(ctx, "queen", []data.Artist{{ID: 3296287, AmgID: 5026, Name: "Queen"}}))

	var old []data.Album
	for i := 1; i <= db.MaxTopAlbums; i++ {
		old = append(old, data.Album{ID: int64(i), Name: "old"})
	}
	require.NoError(t, d.Albums().Save(ctx, 5026, old))

	later := d.WithClock(func() time.Time { return now.Add(time.Hour) })
	require.NoError(t, later.Albums().Save(ctx, 5026, []data.Album{{ID: 100, Name: "new"}}))

	got, err := d.Albums().Find(ctx, 5026)
	require.NoError(t, err)
	require.Len(t, got, db.MaxTopAlbums)
	assert.Equal(t, int64(100), got[0].ID)
	assert.Equal(t, "new", got[0].Name)
}

func TestProgress(t *testing.T) {
	d := open(t)
	ctx := context.Background()

	require.NoError(t, d.Artists().Save(ctx, "q", []data.Artist{
		{ID: 1, AmgID: 10, Name: "Queen"},
		{ID: 2, AmgID: 20, Name: "Queensryche"},
	}))
	require.NoError(t, d.Albums().Save(ctx, 10, []data.Album{{ID: 1, Name: "Jazz"}}))

	later := d.WithClock(func() time.Time { return now.Add(time.Hour) })
	p, err := later.Progress(ctx, time.Minute, 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, db.Progress{Artists: 2, StaleArtists: 2, Albums: 1, StaleAlbums: 0}, *p)

	ids, err := later.StaleArtistAmgIDs(ctx, 2*time.Hour, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{20}, ids)

	ids, err = later.StaleArtistAmgIDs(ctx, time.Minute, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20}, ids)
}
