package fragments

import (
	"context"
	"html"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/newsletter/internal/directory"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/sequence"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// DefaultCalendarLinkBase prefixes a calendar id to build its subscribe link.
const DefaultCalendarLinkBase = "https://calendar.google.com/calendar?cid="

// EventLabel strips a redundant "<calendar> - " prefix from an event label.
func EventLabel(calendarLabel, eventLabel string) string {
	return strings.TrimPrefix(eventLabel, calendarLabel+" - ")
}

// ResolveAttendees maps attendee emails to display names, keeping the raw
// address for anyone the directory does not know. An event without attendees
// falls back to its description.
func ResolveAttendees(dir *directory.Directory, ev providers.Event) string {
	names := make([]string, 0, len(ev.Attendees))
	for _, email := range ev.Attendees {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		names = append(names, dir.NameOr(email, email))
	}
	if len(names) == 0 {
		return ev.Description
	}
	return strings.Join(names, ", ")
}

// CalendarHTML renders one calendar's events as a definition-list group. A
// calendar without events yields the empty string.
func CalendarHTML(cal providers.Calendar, events []providers.Event, dir *directory.Directory, linkBase string) string {
	if len(events) == 0 {
		return ""
	}

	link := linkBase + url.QueryEscape(cal.ID)
	var b strings.Builder
	b.WriteString(`<dt><b><a href="` + html.EscapeString(link) + `">` + html.EscapeString(cal.Label) + `</a></b></dt> `)
	for _, ev := range events {
		b.WriteString(`<dd><i>`)
		b.WriteString(html.EscapeString(EventLabel(cal.Label, ev.Label)))
		b.WriteString(`</i>: `)
		b.WriteString(html.EscapeString(ResolveAttendees(dir, ev)))
		b.WriteString(`</dd>`)
	}
	return b.String()
}

// NonEmpty drops empty fragments, keeping the order of the rest.
func NonEmpty(fragments []string) []string {
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// SortCalendars drops primary calendars and orders the rest by label using
// locale-aware collation. The input slice is left untouched.
func SortCalendars(cals []providers.Calendar) []providers.Calendar {
	out := make([]providers.Calendar, 0, len(cals))
	for _, c := range cals {
		if !c.Primary {
			out = append(out, c)
		}
	}
	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b providers.Calendar) int {
		return col.CompareString(a.Label, b.Label)
	})
	return out
}

// CalendarBuilder renders the calendar section for a reporting window.
type CalendarBuilder struct {
	Provider  providers.CalendarProvider
	Directory *directory.Directory
	LinkBase  string
	Logger    *slog.Logger
}

// Calendars lists the non-primary calendars in display order.
func (b *CalendarBuilder) Calendars(ctx context.Context) ([]providers.Calendar, error) {
	cals, err := b.Provider.ListCalendars(ctx)
	if err != nil {
		return nil, nerrors.ProviderFailed("calendar", "listCalendars", err)
	}
	sorted := SortCalendars(cals)

	labels := make([]string, len(sorted))
	for i, c := range sorted {
		labels[i] = c.Label
	}
	b.logger().Info("Calendar provider reports calendars", slog.Any("calendars", labels))
	return sorted, nil
}

// Build fetches each calendar's events for w, one calendar at a time in the
// given order, and returns the window fragment: a date header followed by
// the non-empty calendar groups. When no calendar has events the result is
// the empty string.
func (b *CalendarBuilder) Build(ctx context.Context, cals []providers.Calendar, w window.Window) (string, error) {
	groups, err := sequence.Map(cals, func(cal providers.Calendar) (string, error) {
		events, err := b.Provider.GetEvents(ctx, cal, w)
		if err != nil {
			return "", nerrors.ProviderFailed("calendar", "getEvents", err).
				WithContext("calendar", cal.Label)
		}
		b.logger().Debug("Fetched calendar events",
			logfields.Calendar(cal.Label),
			slog.Int("events", len(events)))
		return CalendarHTML(cal, events, b.Directory, b.linkBase()), nil
	})
	if err != nil {
		return "", err
	}

	groups = NonEmpty(groups)
	if len(groups) == 0 {
		return "", nil
	}
	return WindowHeader(w.ServiceDate) + "<dl>" + strings.Join(groups, "") + "</dl>", nil
}

func (b *CalendarBuilder) linkBase() string {
	if b.LinkBase == "" {
		return DefaultCalendarLinkBase
	}
	return b.LinkBase
}

func (b *CalendarBuilder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
