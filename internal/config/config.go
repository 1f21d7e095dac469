package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
)

// CurrentVersion is the only configuration version this build understands.
const CurrentVersion = "1"

// Config is the newsletter configuration file.
type Config struct {
	Version   string          `yaml:"version"`
	Timezone  string          `yaml:"timezone,omitempty"` // IANA name; empty means local time
	Window    WindowConfig    `yaml:"window"`
	Slots     SlotsConfig     `yaml:"slots"`
	Calendars CalendarsConfig `yaml:"calendars"`
	Scripture ScriptureConfig `yaml:"scripture"`
	Music     MusicConfig     `yaml:"music"`
	Template  TemplateConfig  `yaml:"template"`
	Secrets   SecretsConfig   `yaml:"secrets"`
	Providers ProvidersConfig `yaml:"providers"`
	Daemon    DaemonConfig    `yaml:"daemon"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// WindowConfig sizes the calendar windows.
type WindowConfig struct {
	TrailingDays int `yaml:"trailing_days"` // days ending on the service date
}

// SlotsConfig controls how template slots are located.
type SlotsConfig struct {
	Attribute string `yaml:"attribute"`
}

// CalendarsConfig configures the calendar fragments.
type CalendarsConfig struct {
	ScriptureCalendarID string `yaml:"scripture_calendar_id"` // calendar holding the reading plan
	LinkBase            string `yaml:"link_base"`             // prefix for per-calendar links
}

// ScriptureConfig configures passage lookups.
type ScriptureConfig struct {
	LinkBase              string        `yaml:"link_base"`
	LinkText              string        `yaml:"link_text"`
	SkipFailedPassages    bool          `yaml:"skip_failed_passages"`
	MinInterval           time.Duration `yaml:"min_interval"` // spacing between passage requests
	IncludeFootnotes      bool          `yaml:"include_footnotes"`
	IncludeHeadings       bool          `yaml:"include_headings"`
	IncludeSubheadings    bool          `yaml:"include_subheadings"`
	IncludeShortCopyright bool          `yaml:"include_short_copyright"`
}

// MusicConfig configures the service music fragment.
type MusicConfig struct {
	PlaylistURL string   `yaml:"playlist_url"`
	YouTubeURL  string   `yaml:"youtube_url"`
	Suffixes    []string `yaml:"suffixes,omitempty"` // trailing decorations removed from track names
}

// TemplateConfig names the source template and the publish target.
type TemplateConfig struct {
	SourceID    string `yaml:"source_id"`
	PublishID   string `yaml:"publish_id"`
	PublishName string `yaml:"publish_name"`
}

// SecretsConfig lists the secrets that must resolve before providers are built.
type SecretsConfig struct {
	EnvPrefix string   `yaml:"env_prefix"`
	Required  []string `yaml:"required,omitempty"`
}

// ProviderKind selects the collaborator implementation.
type ProviderKind string

const ProviderLocal ProviderKind = "local"

// ProvidersConfig configures the collaborator implementation.
type ProvidersConfig struct {
	Kind         ProviderKind `yaml:"kind"`
	Fixtures     string       `yaml:"fixtures"`
	TemplatesDir string       `yaml:"templates_dir"`
	PublishDir   string       `yaml:"publish_dir,omitempty"`
}

// DaemonConfig configures scheduled operation.
type DaemonConfig struct {
	Schedule   string      `yaml:"schedule"`   // standard five-field cron expression
	AdminAddr  string      `yaml:"admin_addr"` // listen address of the admin server; empty disables it
	RunOnStart bool        `yaml:"run_on_start"`
	Retry      RetryConfig `yaml:"retry"`
}

// RetryConfig configures whole-run retries in daemon mode.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// NotifyConfig enables run outcome events on NATS.
type NotifyConfig struct {
	NATSURL   string `yaml:"nats_url,omitempty"`
	Subject   string `yaml:"subject"`
	JetStream bool   `yaml:"jetstream"` // publish through a JetStream stream owning subject
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nerrors.ConfigNotFound(configPath)
	}

	// #nosec G304 -- configPath is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, nerrors.Wrap(err, nerrors.CategoryConfig, nerrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	return Parse(data)
}

// Parse decodes configuration bytes after environment expansion.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, nerrors.Wrap(err, nerrors.CategoryConfig, nerrors.SeverityFatal, "failed to unmarshal config")
	}

	if cfg.Version != CurrentVersion {
		return nil, nerrors.ConfigInvalid("version",
			fmt.Sprintf("unsupported configuration version %q (expected %q)", cfg.Version, CurrentVersion))
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, nerrors.ConfigInvalid("timezone", err.Error())
	}
	return loc, nil
}
