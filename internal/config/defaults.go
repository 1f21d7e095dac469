package config

import (
	"time"

	"git.home.luguber.info/inful/newsletter/internal/compose"
	"git.home.luguber.info/inful/newsletter/internal/fragments"
	"git.home.luguber.info/inful/newsletter/internal/window"
)

const (
	DefaultPublishName = "Processed Newsletter Template"
	DefaultEnvPrefix   = "NEWSLETTER_"
	DefaultSchedule    = "0 6 * * 4" // Thursday morning, ahead of Sunday
	DefaultAdminAddr   = "127.0.0.1:8090"
	DefaultSubject     = "newsletter.runs"
)

// applyDefaults fills every optional field the operator left empty.
func applyDefaults(cfg *Config) {
	if cfg.Window.TrailingDays == 0 {
		cfg.Window.TrailingDays = window.DefaultTrailingDays
	}
	if cfg.Slots.Attribute == "" {
		cfg.Slots.Attribute = compose.DefaultAttribute
	}
	if cfg.Calendars.LinkBase == "" {
		cfg.Calendars.LinkBase = fragments.DefaultCalendarLinkBase
	}
	if cfg.Scripture.LinkBase == "" {
		cfg.Scripture.LinkBase = fragments.DefaultPassageLinkBase
	}
	if cfg.Scripture.LinkText == "" {
		cfg.Scripture.LinkText = fragments.DefaultPassageLinkText
	}
	if cfg.Music.Suffixes == nil {
		cfg.Music.Suffixes = append([]string(nil), fragments.DefaultTrackSuffixes...)
	}
	if cfg.Template.PublishName == "" {
		cfg.Template.PublishName = DefaultPublishName
	}
	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultEnvPrefix
	}
	if cfg.Providers.Kind == "" {
		cfg.Providers.Kind = ProviderLocal
	}
	if cfg.Providers.PublishDir == "" {
		cfg.Providers.PublishDir = cfg.Providers.TemplatesDir
	}
	if cfg.Daemon.Schedule == "" {
		cfg.Daemon.Schedule = DefaultSchedule
	}
	if cfg.Daemon.Retry.Backoff == "" {
		cfg.Daemon.Retry.Backoff = RetryBackoffExponential
	} else {
		cfg.Daemon.Retry.Backoff = NormalizeRetryBackoff(string(cfg.Daemon.Retry.Backoff))
	}
	if cfg.Daemon.Retry.Initial == 0 {
		cfg.Daemon.Retry.Initial = 30 * time.Second
	}
	if cfg.Daemon.Retry.Max == 0 {
		cfg.Daemon.Retry.Max = 10 * time.Minute
	}
	switch {
	case cfg.Daemon.Retry.MaxRetries == 0:
		cfg.Daemon.Retry.MaxRetries = 3
	case cfg.Daemon.Retry.MaxRetries < 0: // explicit opt-out
		cfg.Daemon.Retry.MaxRetries = 0
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultSubject
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
}
