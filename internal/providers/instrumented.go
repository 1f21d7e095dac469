package providers

import (
	"context"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/directory"
	"git.home.luguber.info/inful/newsletter/internal/metrics"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// Instrument wraps every non-nil collaborator in set so each call is timed
// on rec.
func Instrument(set Set, rec metrics.Recorder) Set {
	if rec == nil {
		return set
	}
	out := set
	if set.Directory != nil {
		out.Directory = instrumentedDirectory{next: set.Directory, rec: rec}
	}
	if set.Calendars != nil {
		out.Calendars = instrumentedCalendars{next: set.Calendars, rec: rec}
	}
	if set.Passages != nil {
		out.Passages = instrumentedPassages{next: set.Passages, rec: rec}
	}
	if set.Playlists != nil {
		out.Playlists = instrumentedPlaylists{next: set.Playlists, rec: rec}
	}
	if set.Templates != nil {
		out.Templates = instrumentedTemplates{next: set.Templates, rec: rec}
	}
	return out
}

func observe(rec metrics.Recorder, provider, operation string, start time.Time, err error) {
	rec.ObserveProviderCall(provider, operation, time.Since(start), err == nil)
}

type instrumentedDirectory struct {
	next DirectoryProvider
	rec  metrics.Recorder
}

func (i instrumentedDirectory) ListContacts(ctx context.Context, fields []string) ([]directory.Contact, error) {
	start := time.Now()
	out, err := i.next.ListContacts(ctx, fields)
	observe(i.rec, "directory", "listContacts", start, err)
	return out, err
}

type instrumentedCalendars struct {
	next CalendarProvider
	rec  metrics.Recorder
}

func (i instrumentedCalendars) ListCalendars(ctx context.Context) ([]Calendar, error) {
	start := time.Now()
	out, err := i.next.ListCalendars(ctx)
	observe(i.rec, "calendar", "listCalendars", start, err)
	return out, err
}

func (i instrumentedCalendars) GetCalendar(ctx context.Context, id string) (Calendar, error) {
	start := time.Now()
	out, err := i.next.GetCalendar(ctx, id)
	observe(i.rec, "calendar", "getCalendar", start, err)
	return out, err
}

func (i instrumentedCalendars) GetEvents(ctx context.Context, cal Calendar, w window.Window) ([]Event, error) {
	start := time.Now()
	out, err := i.next.GetEvents(ctx, cal, w)
	observe(i.rec, "calendar", "getEvents", start, err)
	return out, err
}

type instrumentedPassages struct {
	next PassageProvider
	rec  metrics.Recorder
}

func (i instrumentedPassages) GetPassageMarkup(ctx context.Context, reference string, opts PassageOptions) (string, error) {
	start := time.Now()
	out, err := i.next.GetPassageMarkup(ctx, reference, opts)
	observe(i.rec, "passages", "getPassageMarkup", start, err)
	return out, err
}

type instrumentedPlaylists struct {
	next PlaylistProvider
	rec  metrics.Recorder
}

func (i instrumentedPlaylists) GetTrackNames(ctx context.Context, playlistID string) ([]string, error) {
	start := time.Now()
	out, err := i.next.GetTrackNames(ctx, playlistID)
	observe(i.rec, "playlist", "getTrackNames", start, err)
	return out, err
}

type instrumentedTemplates struct {
	next TemplateStore
	rec  metrics.Recorder
}

func (i instrumentedTemplates) FetchTemplateHTML(ctx context.Context, templateID string) (string, error) {
	start := time.Now()
	out, err := i.next.FetchTemplateHTML(ctx, templateID)
	observe(i.rec, "templates", "fetchTemplateHTML", start, err)
	return out, err
}

func (i instrumentedTemplates) PublishTemplateHTML(ctx context.Context, templateID, name, html string) (Confirmation, error) {
	start := time.Now()
	out, err := i.next.PublishTemplateHTML(ctx, templateID, name, html)
	observe(i.rec, "templates", "publishTemplateHTML", start, err)
	return out, err
}
