package main

import (
	"context"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/amonks/albumengine/db"
	"github.com/amonks/albumengine/subcmd"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func progress(ctx context.Context, a *app, args []string) error {
	subcmd := subcmd.New("progress", "report how much of the catalog is stored, and how much of it is stale")
	if _, err := subcmd.ParseArgs(args); err != nil {
		return err
	}

	p, err := a.db.Progress(ctx, a.cfg.Artist.TTL().DB, a.cfg.Album.TTL().DB)
	if err != nil {
		return err
	}
	return printProgress(os.Stdout, p, a.lim.NextAt())
}

var humanPrinter = message.NewPrinter(language.English)

// printProgress writes p as a table. A non-zero limitedUntil is reported
// below it.
func printProgress(out io.Writer, p *db.Progress, limitedUntil time.Time) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	humanPrinter.Fprintf(w, "\tknown\tstale\t\n")
	humanPrinter.Fprintf(w, "artists\t%d\t%d\t\n", p.Artists, p.StaleArtists)
	humanPrinter.Fprintf(w, "albums\t%d\t%d\t\n", p.Albums, p.StaleAlbums)
	if !limitedUntil.IsZero() {
		humanPrinter.Fprintf(w, "\nrate limited until %s\n", limitedUntil.Local().Format("15:04:05"))
	}
	return w.Flush()
}
