package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/undertone/internal/server"
	"github.com/urfave/cli/v3"
)

// DevServer runs the in-memory backend until interrupted.
func (r *Runner) DevServer(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := server.NewBackend(server.BackendOpts{
		Logger:         r.logger,
		AllowedOrigins: cmd.StringSlice("origins"),
	})

	r.writePlainln("Undertone dev backend on http://%s (ctrl+c to stop)", addr)
	return server.New(addr, backend.Handler(), r.logger).Run(ctx)
}
