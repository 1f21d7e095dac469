// Package providers defines the read-only collaborator contracts the
// newsletter pipeline consumes. Concrete transports live in subpackages.
package providers

import (
	"context"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/directory"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// SecretProvider resolves named secrets. Unknown names are an error.
type SecretProvider interface {
	Read(ctx context.Context, name string) (string, error)
}

// DirectoryProvider lists contacts for the person directory.
type DirectoryProvider interface {
	ListContacts(ctx context.Context, fields []string) ([]directory.Contact, error)
}

// Calendar identifies one calendar of the calendar provider.
type Calendar struct {
	ID      string
	Label   string
	Primary bool
}

// Event is a single (expanded) calendar entry.
type Event struct {
	Label       string
	Description string
	Attendees   []string
	Start       time.Time
	End         time.Time
}

// CalendarProvider exposes calendars and their events.
type CalendarProvider interface {
	// ListCalendars returns the calendars the account can read. Implementations
	// should leave out the primary calendar; callers filter it again anyway.
	ListCalendars(ctx context.Context) ([]Calendar, error)
	GetCalendar(ctx context.Context, id string) (Calendar, error)
	GetEvents(ctx context.Context, cal Calendar, w window.Window) ([]Event, error)
}

// PassageOptions toggles optional parts of the returned passage markup.
type PassageOptions struct {
	IncludeFootnotes      bool
	IncludeHeadings       bool
	IncludeSubheadings    bool
	IncludeShortCopyright bool
}

// PassageProvider returns rendered markup for a scripture reference.
type PassageProvider interface {
	GetPassageMarkup(ctx context.Context, reference string, opts PassageOptions) (string, error)
}

// PlaylistProvider returns the ordered track names of a playlist.
type PlaylistProvider interface {
	GetTrackNames(ctx context.Context, playlistID string) ([]string, error)
}

// Confirmation is returned by a successful publish.
type Confirmation struct {
	TemplateID  string    `json:"template_id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Bytes       int       `json:"bytes"`
	PublishedAt time.Time `json:"published_at"`
}

// TemplateStore fetches source templates and publishes composed ones.
type TemplateStore interface {
	FetchTemplateHTML(ctx context.Context, templateID string) (string, error)
	PublishTemplateHTML(ctx context.Context, templateID, name, html string) (Confirmation, error)
}

// Set bundles every collaborator one run needs.
type Set struct {
	Directory DirectoryProvider
	Calendars CalendarProvider
	Passages  PassageProvider
	Playlists PlaylistProvider
	Templates TemplateStore
}
