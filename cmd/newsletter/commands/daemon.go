package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/daemon"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	StopTimeout time.Duration `name:"stop-timeout" help:"How long to wait for an active run on shutdown" default:"30s"`
}

func (d *DaemonCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dm, err := daemon.New(root.Config, cfg, daemonFactory(ctx))
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	if err := dm.Start(ctx); err != nil {
		return err
	}

	slog.Info("Daemon started, waiting for shutdown signal...")
	<-ctx.Done()
	slog.Info("Shutdown signal received, stopping daemon...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), d.StopTimeout)
	defer stopCancel()
	if err := dm.Stop(stopCtx); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	return nil
}
