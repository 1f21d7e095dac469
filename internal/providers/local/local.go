// Package local implements every collaborator contract over files on disk:
// a YAML fixture file for contacts, calendars, passages and playlists, and a
// pair of directories for template fetch and publish. It is meant for
// development runs and tests where no remote account is available.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/newsletter/internal/directory"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// Fixtures is the on-disk shape of the fixture file.
type Fixtures struct {
	Contacts  []ContactFixture    `yaml:"contacts"`
	Calendars []CalendarFixture   `yaml:"calendars"`
	Passages  map[string]string   `yaml:"passages"`
	Playlists map[string][]string `yaml:"playlists"`
}

type ContactFixture struct {
	Name   string   `yaml:"name"`
	Emails []string `yaml:"emails"`
}

type CalendarFixture struct {
	ID      string         `yaml:"id"`
	Label   string         `yaml:"label"`
	Primary bool           `yaml:"primary,omitempty"`
	Events  []EventFixture `yaml:"events"`
}

type EventFixture struct {
	Label       string    `yaml:"label"`
	Description string    `yaml:"description,omitempty"`
	Attendees   []string  `yaml:"attendees,omitempty"`
	Start       time.Time `yaml:"start"`
	End         time.Time `yaml:"end,omitempty"`
}

// LoadFixtures reads and decodes a fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	// #nosec G304 -- path comes from the operator's configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures %s: %w", path, err)
	}
	return &f, nil
}

// Provider serves fixtures and a directory-backed template store.
type Provider struct {
	fixtures     *Fixtures
	templatesDir string
	publishDir   string
	now          func() time.Time

	mu sync.Mutex // serializes publishes
}

// Option customizes a Provider.
type Option func(*Provider)

// WithClock overrides the publish timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New returns a provider over fixtures. publishDir defaults to templatesDir.
func New(fixtures *Fixtures, templatesDir, publishDir string, opts ...Option) *Provider {
	if fixtures == nil {
		fixtures = &Fixtures{}
	}
	if publishDir == "" {
		publishDir = templatesDir
	}
	p := &Provider{fixtures: fixtures, templatesDir: templatesDir, publishDir: publishDir, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Set exposes p under every collaborator contract.
func (p *Provider) Set() providers.Set {
	return providers.Set{
		Directory: p,
		Calendars: p,
		Passages:  p,
		Playlists: p,
		Templates: p,
	}
}

func (p *Provider) ListContacts(_ context.Context, _ []string) ([]directory.Contact, error) {
	out := make([]directory.Contact, 0, len(p.fixtures.Contacts))
	for _, c := range p.fixtures.Contacts {
		out = append(out, directory.Contact{Name: c.Name, Emails: slices.Clone(c.Emails)})
	}
	return out, nil
}

// ListCalendars leaves out the primary calendar.
func (p *Provider) ListCalendars(_ context.Context) ([]providers.Calendar, error) {
	var out []providers.Calendar
	for _, c := range p.fixtures.Calendars {
		if c.Primary {
			continue
		}
		out = append(out, providers.Calendar{ID: c.ID, Label: c.Label})
	}
	return out, nil
}

func (p *Provider) GetCalendar(_ context.Context, id string) (providers.Calendar, error) {
	c, ok := p.calendar(id)
	if !ok {
		return providers.Calendar{}, fmt.Errorf("calendar %q not found", id)
	}
	return providers.Calendar{ID: c.ID, Label: c.Label, Primary: c.Primary}, nil
}

// GetEvents returns the events overlapping w, ordered by start time.
func (p *Provider) GetEvents(_ context.Context, cal providers.Calendar, w window.Window) ([]providers.Event, error) {
	c, ok := p.calendar(cal.ID)
	if !ok {
		return nil, fmt.Errorf("calendar %q not found", cal.ID)
	}
	var out []providers.Event
	for _, e := range c.Events {
		end := e.End
		if end.IsZero() {
			end = e.Start
		}
		if e.Start.After(w.End) || end.Before(w.Start) {
			continue
		}
		out = append(out, providers.Event{
			Label:       e.Label,
			Description: e.Description,
			Attendees:   slices.Clone(e.Attendees),
			Start:       e.Start,
			End:         end,
		})
	}
	slices.SortStableFunc(out, func(a, b providers.Event) int { return a.Start.Compare(b.Start) })
	return out, nil
}

func (p *Provider) GetPassageMarkup(_ context.Context, reference string, _ providers.PassageOptions) (string, error) {
	markup, ok := p.fixtures.Passages[reference]
	if !ok {
		return "", fmt.Errorf("passage %q not found", reference)
	}
	return markup, nil
}

func (p *Provider) GetTrackNames(_ context.Context, playlistID string) ([]string, error) {
	tracks, ok := p.fixtures.Playlists[playlistID]
	if !ok {
		return nil, fmt.Errorf("playlist %q not found", playlistID)
	}
	return slices.Clone(tracks), nil
}

// FetchTemplateHTML reads <templatesDir>/<id>.html.
func (p *Provider) FetchTemplateHTML(_ context.Context, templateID string) (string, error) {
	path, err := templatePath(p.templatesDir, templateID)
	if err != nil {
		return "", err
	}
	// #nosec G304 -- path is confined to the templates directory
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", templateID, err)
	}
	return string(data), nil
}

// PublishTemplateHTML replaces <publishDir>/<id>.html atomically.
func (p *Provider) PublishTemplateHTML(ctx context.Context, templateID, name, html string) (providers.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return providers.Confirmation{}, err
	}
	path, err := templatePath(p.publishDir, templateID)
	if err != nil {
		return providers.Confirmation{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(p.publishDir, 0o750); err != nil {
		return providers.Confirmation{}, fmt.Errorf("create publish dir: %w", err)
	}
	tmp, err := os.CreateTemp(p.publishDir, "."+templateID+"-*.tmp")
	if err != nil {
		return providers.Confirmation{}, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := tmp.WriteString(html)
	if err != nil {
		_ = tmp.Close()
		return providers.Confirmation{}, fmt.Errorf("write template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return providers.Confirmation{}, fmt.Errorf("close template: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return providers.Confirmation{}, fmt.Errorf("replace template: %w", err)
	}

	return providers.Confirmation{
		TemplateID:  templateID,
		Name:        name,
		Location:    path,
		Bytes:       n,
		PublishedAt: p.now().UTC(),
	}, nil
}

func (p *Provider) calendar(id string) (CalendarFixture, bool) {
	for _, c := range p.fixtures.Calendars {
		if c.ID == id {
			return c, true
		}
	}
	return CalendarFixture{}, false
}

func templatePath(dir, templateID string) (string, error) {
	if templateID == "" || filepath.Base(templateID) != templateID || templateID == "." || templateID == ".." {
		return "", fmt.Errorf("invalid template id %q", templateID)
	}
	return filepath.Join(dir, templateID+".html"), nil
}
