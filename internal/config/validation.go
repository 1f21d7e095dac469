package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
)

// Validate checks a defaulted configuration. It never touches the network, so
// a bad file is rejected before any collaborator is called.
func Validate(cfg *Config) error {
	validator := &configurationValidator{config: cfg}
	return validator.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	return errors.Join(
		cv.validateWindow(),
		cv.validateTimezone(),
		cv.validateTemplate(),
		cv.validateMusic(),
		cv.validateCalendars(),
		cv.validateProviders(),
		cv.validateDaemon(),
	)
}

func (cv *configurationValidator) validateWindow() error {
	if cv.config.Window.TrailingDays < 1 {
		return nerrors.ConfigInvalid("window.trailing_days", "must be at least 1")
	}
	return nil
}

func (cv *configurationValidator) validateTimezone() error {
	_, err := cv.config.Location()
	return err
}

func (cv *configurationValidator) validateTemplate() error {
	t := cv.config.Template
	var errs []error
	if strings.TrimSpace(t.SourceID) == "" {
		errs = append(errs, nerrors.ConfigRequired("template.source_id"))
	}
	if strings.TrimSpace(t.PublishID) == "" {
		errs = append(errs, nerrors.ConfigRequired("template.publish_id"))
	}
	return errors.Join(errs...)
}

func (cv *configurationValidator) validateMusic() error {
	m := cv.config.Music
	var errs []error
	if m.PlaylistURL == "" {
		errs = append(errs, nerrors.ConfigRequired("music.playlist_url"))
	} else if err := validateHTTPURL(m.PlaylistURL); err != nil {
		errs = append(errs, nerrors.ConfigInvalid("music.playlist_url", err.Error()))
	}
	if m.YouTubeURL != "" {
		if err := validateHTTPURL(m.YouTubeURL); err != nil {
			errs = append(errs, nerrors.ConfigInvalid("music.youtube_url", err.Error()))
		}
	}
	return errors.Join(errs...)
}

func (cv *configurationValidator) validateCalendars() error {
	if strings.TrimSpace(cv.config.Calendars.ScriptureCalendarID) == "" {
		return nerrors.ConfigRequired("calendars.scripture_calendar_id")
	}
	return nil
}

func (cv *configurationValidator) validateProviders() error {
	p := cv.config.Providers
	switch p.Kind {
	case ProviderLocal:
		var errs []error
		if p.Fixtures == "" {
			errs = append(errs, nerrors.ConfigRequired("providers.fixtures"))
		}
		if p.TemplatesDir == "" {
			errs = append(errs, nerrors.ConfigRequired("providers.templates_dir"))
		}
		return errors.Join(errs...)
	default:
		return nerrors.ConfigInvalid("providers.kind", "unsupported provider kind "+string(p.Kind))
	}
}

func (cv *configurationValidator) validateDaemon() error {
	d := cv.config.Daemon
	var errs []error
	if _, err := cron.ParseStandard(d.Schedule); err != nil {
		errs = append(errs, nerrors.ConfigInvalid("daemon.schedule", err.Error()))
	}
	if d.Retry.Backoff == "" {
		errs = append(errs, nerrors.ConfigInvalid("daemon.retry.backoff", "must be fixed, linear or exponential"))
	}
	return errors.Join(errs...)
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if u.Host == "" {
		return errors.New("host is empty")
	}
	return nil
}
