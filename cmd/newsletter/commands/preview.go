package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/newsletter/internal/metrics"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Output string `short:"o" help:"Write the composed document to this file instead of stdout" type:"path"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
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

	report, err := rn.Preview(ctx)
	if err != nil {
		return err
	}
	return writeDocument(p.Output, os.Stdout, report.Document)
}

func writeDocument(path string, stdout io.Writer, doc string) error {
	if path == "" {
		_, err := io.WriteString(stdout, doc)
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	return nil
}
