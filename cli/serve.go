package main

import (
	"context"
	"fmt"

	"github.com/amonks/albumengine/server"
	"github.com/amonks/albumengine/subcmd"
)

func serve(ctx context.Context, a *app, args []string) error {
	subcmd := subcmd.New("serve", "run a web server")
	var (
		port = subcmd.Int("port", a.cfg.Port, "http port")
	)
	if _, err := subcmd.ParseArgs(args); err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", *port)
	a.log.Info().Str("addr", addr).Msg("listening")
	return server.Run(ctx, server.New(a.catalog, a.cache, a.log), addr)
}
