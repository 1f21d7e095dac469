package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/newsletter/internal/metrics"
)

// RunCmd implements the 'run' command.
type RunCmd struct{}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rn, err := newRunner(ctx, cfg, metrics.NoopRecorder{})
	if err != nil {
		return err
	}
	defer func() { _ = rn.Close() }()

	report, err := rn.Run(ctx)
	if report != nil {
		_, _ = fmt.Fprintln(os.Stdout, report.String())
	}
	return err
}
