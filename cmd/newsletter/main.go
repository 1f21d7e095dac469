package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/newsletter/cmd/newsletter/commands"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("newsletter"),
		kong.Description("Assemble the weekly newsletter from calendars, scripture and playlists."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	if err := parser.Run(&commands.Global{Logger: slog.Default()}, cli); err != nil {
		nerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
