package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter handles error presentation and exit code determination for CLI applications.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
		exit:    os.Exit,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := As(err); !ok {
		return 1
	}

	switch GetCategory(err) {
	case CategoryConfig:
		return 7
	case CategoryProvider:
		return 8
	case CategoryComposition, CategoryPipeline:
		return 11
	case CategoryDaemon:
		return 12
	case CategoryInternal:
		return 10
	default:
		return 1
	}
}

// FormatError formats an error for user-friendly display.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		lines := make([]string, 0, len(joined.Unwrap()))
		for _, inner := range joined.Unwrap() {
			lines = append(lines, a.FormatError(inner))
		}
		return strings.Join(lines, "\n")
	}

	ne, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return ne.Error()
	}

	stage, _ := ne.Context["stage"].(string)
	inner, _ := innermost(err)
	switch {
	case inner.Category == CategoryConfig:
		return inner.Message
	case stage != "":
		return fmt.Sprintf("%s: stage %s: %s", inner.Category, stage, inner.Message)
	default:
		return fmt.Sprintf("%s: %s", inner.Category, inner.Message)
	}
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	exitCode := a.ExitCodeFor(err)
	message := a.FormatError(err)

	if a.shouldLog(err) {
		a.logError(err)
	}

	_, _ = fmt.Fprintf(a.out, "%s\n", message)
	a.exit(exitCode)
}

// shouldLog determines if an error should be logged.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if ne, ok := innermost(err); ok {
		return ne.Category == CategoryInternal || ne.Severity == SeverityFatal
	}
	return true
}

// logError logs an error with appropriate level and context.
func (a *CLIErrorAdapter) logError(err error) {
	ne, ok := innermost(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{
		slog.String("category", string(ne.Category)),
	}
	if ne.Retryable {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	if ne.Cause != nil {
		attrs = append(attrs, slog.String("cause", ne.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), slogLevelFromSeverity(ne.Severity), ne.Message, attrs...)
}

// slogLevelFromSeverity converts NewsletterError severity to slog level.
func slogLevelFromSeverity(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
