package fragments

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

var errNotFound = errors.New("not found")

type fakeCalendars struct {
	calendars []providers.Calendar
	events    map[string][]providers.Event
	fail      map[string]error
	calls     []string
}

func (f *fakeCalendars) ListCalendars(context.Context) ([]providers.Calendar, error) {
	return f.calendars, nil
}

func (f *fakeCalendars) GetCalendar(_ context.Context, id string) (providers.Calendar, error) {
	for _, c := range f.calendars {
		if c.ID == id {
			return c, nil
		}
	}
	return providers.Calendar{}, errNotFound
}

func (f *fakeCalendars) GetEvents(_ context.Context, cal providers.Calendar, _ window.Window) ([]providers.Event, error) {
	f.calls = append(f.calls, cal.Label)
	if err := f.fail[cal.ID]; err != nil {
		return nil, err
	}
	return f.events[cal.ID], nil
}

type fakePassages struct {
	fail  map[string]error
	calls []string
}

func (f *fakePassages) GetPassageMarkup(_ context.Context, ref string, _ providers.PassageOptions) (string, error) {
	f.calls = append(f.calls, ref)
	if err := f.fail[ref]; err != nil {
		return "", err
	}
	return "<p>" + ref + "</p>", nil
}

type fakePlaylists struct {
	tracks map[string][]string
}

func (f *fakePlaylists) GetTrackNames(_ context.Context, id string) ([]string, error) {
	t, ok := f.tracks[id]
	if !ok {
		return nil, errNotFound
	}
	return t, nil
}

func testWindow() window.Window {
	w, _ := window.Resolve(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), window.DefaultTrailingDays)
	return w
}
