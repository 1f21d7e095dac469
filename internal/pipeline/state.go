package pipeline

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/compose"
	"git.home.luguber.info/inful/newsletter/internal/directory"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// RunContext is fixed when a run starts and never changes afterwards.
type RunContext struct {
	RunID     string
	StartedAt time.Time
	Location  *time.Location
	Publish   bool
	Logger    *slog.Logger // carries the run id
}

// runState carries stage outputs. Each field is written by exactly one stage
// (named alongside) and only read by later ones.
type runState struct {
	window     window.Window           // ResolveWindow
	nextWindow window.Window           // ResolveWindow
	directory  *directory.Directory    // BuildDirectory
	references map[string][]string     // FetchScriptureReferences
	scripture  map[string]string       // BuildScriptureFragments
	music      string                  // BuildMusicFragment
	calendars  []providers.Calendar    // BuildCalendarFragmentsThisWeek
	thisWeek   string                  // BuildCalendarFragmentsThisWeek
	nextWeek   string                  // BuildCalendarFragmentsNextWeek
	template   string                  // FetchTemplate
	composed   *compose.Result         // Compose
	confirm    *providers.Confirmation // Publish
}
