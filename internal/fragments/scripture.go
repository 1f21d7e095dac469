package fragments

import (
	"context"
	"html"
	"log/slog"
	"net/url"
	"strings"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/sequence"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// Defaults for the link appended after each passage.
const (
	DefaultPassageLinkBase = "http://esv.to/"
	DefaultPassageLinkText = "Read the full passage here"
)

// SplitReferences splits a multi-line description into one reference per
// line. Lines are trimmed and blank lines dropped; order is preserved.
func SplitReferences(description string) []string {
	lines := strings.Split(description, "\n")
	refs := make([]string, 0, len(lines))
	for _, line := range lines {
		if ref := strings.TrimSpace(line); ref != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}

// ReferenceTable keys each event's references by the slot key of its label
// (with the calendar prefix stripped). A later event with the same key
// replaces an earlier one.
func ReferenceTable(calendarLabel string, events []providers.Event) map[string][]string {
	table := make(map[string][]string, len(events))
	for _, ev := range events {
		key := SlotKey(EventLabel(calendarLabel, ev.Label))
		if key == "" {
			continue
		}
		table[key] = SplitReferences(ev.Description)
	}
	return table
}

// PassageLink renders the "read more" anchor for a reference.
func PassageLink(linkBase, reference, text string) string {
	href := linkBase + url.PathEscape(reference)
	return `<a href="` + html.EscapeString(href) + `" target="_blank">` + html.EscapeString(text) + `</a>`
}

// ScriptureBuilder reads references from the scripture calendar and renders
// passage text for them.
type ScriptureBuilder struct {
	Calendars  providers.CalendarProvider
	Passages   providers.PassageProvider
	CalendarID string
	Options    providers.PassageOptions
	LinkBase   string
	LinkText   string
	// SkipFailed renders a failed reference as nothing instead of aborting
	// the whole fragment.
	SkipFailed bool
	Logger     *slog.Logger
}

// References returns the slot-key to reference-list table for w.
func (b *ScriptureBuilder) References(ctx context.Context, w window.Window) (map[string][]string, error) {
	cal, err := b.Calendars.GetCalendar(ctx, b.CalendarID)
	if err != nil {
		return nil, nerrors.ProviderFailed("calendar", "getCalendar", err).
			WithContext("calendar_id", b.CalendarID)
	}
	events, err := b.Calendars.GetEvents(ctx, cal, w)
	if err != nil {
		return nil, nerrors.ProviderFailed("calendar", "getEvents", err).
			WithContext("calendar", cal.Label)
	}
	return ReferenceTable(cal.Label, events), nil
}

// PassagesHTML fetches each reference in order, one request at a time, and
// concatenates the passage markup with a trailing link per reference.
func (b *ScriptureBuilder) PassagesHTML(ctx context.Context, references []string) (string, error) {
	producers := make([]sequence.Producer[string], len(references))
	for i, ref := range references {
		p := func() (string, error) { return b.passageHTML(ctx, ref) }
		if b.SkipFailed {
			p = sequence.OrZero(p, func(err error) {
				b.logger().Warn("Skipping passage that could not be fetched",
					logfields.Reference(ref), logfields.Error(err))
			})
		}
		producers[i] = p
	}

	parts, err := sequence.Run(producers)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ""), nil
}

func (b *ScriptureBuilder) passageHTML(ctx context.Context, reference string) (string, error) {
	b.logger().Info("Getting passage text", logfields.Reference(reference))
	markup, err := b.Passages.GetPassageMarkup(ctx, reference, b.Options)
	if err != nil {
		return "", nerrors.ProviderFailed("passages", "getPassageMarkup", err).
			WithContext("reference", reference)
	}
	return markup + PassageLink(b.linkBase(), reference, b.linkText()), nil
}

func (b *ScriptureBuilder) linkBase() string {
	if b.LinkBase == "" {
		return DefaultPassageLinkBase
	}
	return b.LinkBase
}

func (b *ScriptureBuilder) linkText() string {
	if b.LinkText == "" {
		return DefaultPassageLinkText
	}
	return b.LinkText
}

func (b *ScriptureBuilder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}
