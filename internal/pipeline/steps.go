package pipeline

import (
	"context"
	"log/slog"
	"slices"

	"git.home.luguber.info/inful/newsletter/internal/directory"
	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/fragments"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
	"git.home.luguber.info/inful/newsletter/internal/providers"
	"git.home.luguber.info/inful/newsletter/internal/sequence"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

// contactFields are the person fields requested from the directory.
var contactFields = []string{"names", "emailAddresses"}

func (p *Pipeline) stages(publish bool) []StageDef {
	defs := []StageDef{
		{StageResolveWindow, p.stageResolveWindow},
		{StageBuildDirectory, p.stageBuildDirectory},
		{StageFetchScriptureReferences, p.stageFetchScriptureReferences},
		{StageBuildScriptureFragments, p.stageBuildScriptureFragments},
		{StageBuildMusicFragment, p.stageBuildMusicFragment},
		{StageBuildCalendarsThisWeek, p.stageBuildCalendarsThisWeek},
		{StageBuildCalendarsNextWeek, p.stageBuildCalendarsNextWeek},
		{StageFetchTemplate, p.stageFetchTemplate},
		{StageCompose, p.stageCompose},
	}
	if publish {
		defs = append(defs, StageDef{StagePublish, p.stagePublish})
	}
	return defs
}

func (p *Pipeline) stageResolveWindow(_ context.Context, rc RunContext, st *runState) error {
	w, err := window.Resolve(rc.StartedAt.In(rc.Location), p.cfg.Window.TrailingDays)
	if err != nil {
		return nerrors.ConfigInvalid("window.trailing_days", err.Error())
	}
	st.window = w
	st.nextWindow = w.Next()
	rc.Logger.Info("Resolved reporting window",
		slog.String("service_date", fragments.ServiceDateText(w.ServiceDate)),
		slog.String("this_week", w.String()),
		slog.String("next_week", st.nextWindow.String()))
	return nil
}

func (p *Pipeline) stageBuildDirectory(ctx context.Context, rc RunContext, st *runState) error {
	contacts, err := p.set.Directory.ListContacts(ctx, contactFields)
	if err != nil {
		return nerrors.ProviderFailed("directory", "listContacts", err)
	}
	st.directory = directory.New(contacts)
	rc.Logger.Info("Built person directory", slog.Int("emails", st.directory.Len()))
	return nil
}

// stageFetchScriptureReferences keeps the sections that fill scriptureSlots.
// A missing section aborts the run before any passage is requested; any other
// section is logged and dropped.
func (p *Pipeline) stageFetchScriptureReferences(ctx context.Context, rc RunContext, st *runState) error {
	refs, err := p.scriptureBuilder(rc).References(ctx, st.window)
	if err != nil {
		return err
	}

	extra := make([]string, 0, len(refs))
	for key := range refs {
		if !slices.Contains(scriptureSlots, key) {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		rc.Logger.Warn("Ignoring scripture section without a slot", logfields.Slot(key),
			logfields.Calendar(p.cfg.Calendars.ScriptureCalendarID))
	}

	st.references = make(map[string][]string, len(scriptureSlots))
	for _, key := range scriptureSlots {
		section, ok := refs[key]
		if !ok {
			return nerrors.New(nerrors.CategoryProvider, nerrors.SeverityFatal, "scripture calendar has no section for slot").
				WithContext("slot", key).
				WithContext("calendar_id", p.cfg.Calendars.ScriptureCalendarID)
		}
		st.references[key] = section
	}
	return nil
}

// stageBuildScriptureFragments renders the scripture slots in order, with all
// passage requests issued one at a time.
func (p *Pipeline) stageBuildScriptureFragments(ctx context.Context, rc RunContext, st *runState) error {
	b := p.scriptureBuilder(rc)
	markups, err := sequence.Map(scriptureSlots, func(key string) (string, error) {
		rc.Logger.Debug("Building scripture section", logfields.Slot(key),
			slog.Any("references", st.references[key]))
		return b.PassagesHTML(ctx, st.references[key])
	})
	if err != nil {
		return err
	}

	st.scripture = make(map[string]string, len(scriptureSlots))
	for i, k := range scriptureSlots {
		st.scripture[k] = markups[i]
	}
	return nil
}

func (p *Pipeline) stageBuildMusicFragment(ctx context.Context, rc RunContext, st *runState) error {
	b := &fragments.MusicBuilder{
		Playlists:   p.set.Playlists,
		PlaylistURL: p.cfg.Music.PlaylistURL,
		YouTubeURL:  p.cfg.Music.YouTubeURL,
		Suffixes:    p.cfg.Music.Suffixes,
		Logger:      rc.Logger,
	}
	music, err := b.Build(ctx)
	if err != nil {
		return err
	}
	st.music = music
	return nil
}

func (p *Pipeline) stageBuildCalendarsThisWeek(ctx context.Context, rc RunContext, st *runState) error {
	b := p.calendarBuilder(rc, st.directory)
	cals, err := b.Calendars(ctx)
	if err != nil {
		return err
	}
	frag, err := b.Build(ctx, cals, st.window)
	if err != nil {
		return err
	}
	st.calendars = cals
	st.thisWeek = frag
	return nil
}

func (p *Pipeline) stageBuildCalendarsNextWeek(ctx context.Context, rc RunContext, st *runState) error {
	frag, err := p.calendarBuilder(rc, st.directory).Build(ctx, st.calendars, st.nextWindow)
	if err != nil {
		return err
	}
	st.nextWeek = frag
	return nil
}

func (p *Pipeline) stageFetchTemplate(ctx context.Context, rc RunContext, st *runState) error {
	id := p.cfg.Template.SourceID
	rc.Logger.Info("Fetching source template", logfields.TemplateID(id))
	html, err := p.set.Templates.FetchTemplateHTML(ctx, id)
	if err != nil {
		return nerrors.ProviderFailed("templates", "fetchTemplateHTML", err).WithContext("template_id", id)
	}
	st.template = html
	return nil
}

func (p *Pipeline) stageCompose(_ context.Context, rc RunContext, st *runState) error {
	res, err := p.composer.Compose(st.template, st.slotMap())
	if err != nil {
		return err
	}
	if len(res.Unmatched) > 0 {
		rc.Logger.Warn("Template has no element for some slots", slog.Any("slots", res.Unmatched))
		p.recorder.AddUnmatchedSlots(len(res.Unmatched))
	}
	st.composed = res
	return nil
}

func (p *Pipeline) stagePublish(ctx context.Context, rc RunContext, st *runState) error {
	id, name := p.cfg.Template.PublishID, p.cfg.Template.PublishName
	conf, err := p.set.Templates.PublishTemplateHTML(ctx, id, name, st.composed.HTML)
	if err != nil {
		return nerrors.ProviderFailed("templates", "publishTemplateHTML", err).WithContext("template_id", id)
	}
	st.confirm = &conf
	rc.Logger.Info("Published newsletter template",
		logfields.TemplateID(conf.TemplateID),
		slog.String("name", conf.Name),
		slog.Int("bytes", conf.Bytes))
	return nil
}

func (p *Pipeline) scriptureBuilder(rc RunContext) *fragments.ScriptureBuilder {
	sc := p.cfg.Scripture
	return &fragments.ScriptureBuilder{
		Calendars:  p.set.Calendars,
		Passages:   p.set.Passages,
		CalendarID: p.cfg.Calendars.ScriptureCalendarID,
		Options: providers.PassageOptions{
			IncludeFootnotes:      sc.IncludeFootnotes,
			IncludeHeadings:       sc.IncludeHeadings,
			IncludeSubheadings:    sc.IncludeSubheadings,
			IncludeShortCopyright: sc.IncludeShortCopyright,
		},
		LinkBase:   sc.LinkBase,
		LinkText:   sc.LinkText,
		SkipFailed: sc.SkipFailedPassages,
		Logger:     rc.Logger,
	}
}

func (p *Pipeline) calendarBuilder(rc RunContext, dir *directory.Directory) *fragments.CalendarBuilder {
	return &fragments.CalendarBuilder{
		Provider:  p.set.Calendars,
		Directory: dir,
		LinkBase:  p.cfg.Calendars.LinkBase,
		Logger:    rc.Logger,
	}
}
