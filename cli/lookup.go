package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/amonks/albumengine/subcmd"
)

func artists(ctx context.Context, a *app, args []string) error {
	subcmd := subcmd.New("artists", "find artists by name").
		SetArgs("name", "string", "the artist name to search for")
	rest, err := subcmd.ParseArgs(args)
	if err != nil {
		return err
	}

	found, err := a.catalog.Artists(ctx, strings.Join(rest, " "))
	if err != nil {
		return err
	}
	for _, artist := range found {
		fmt.Fprintf(os.Stdout, "%d\t%s\n", artist.AmgID, artist.Name)
	}
	return nil
}

func albums(ctx context.Context, a *app, args []string) error {
	subcmd := subcmd.New("albums", "list an artist's top albums").
		SetArg("amg-id", "int", "the artist's AMG id, as printed by 'albumengine artists'")
	rest, err := subcmd.ParseArgs(args)
	if err != nil {
		return err
	}

	amgID, err := strconv.ParseInt(rest[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid amg id '%s': %w", rest[0], err)
	}

	found, err := a.catalog.TopAlbums(ctx, amgID)
	if err != nil {
		return err
	}
	for _, album := range found {
		fmt.Fprintf(os.Stdout, "%d\t%s\n", album.ID, album.Name)
	}
	return nil
}
