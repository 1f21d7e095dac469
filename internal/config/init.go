package config

import (
	"fmt"
	"os"
	"path/filepath"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
)

const starterConfig = `# Newsletter assembly configuration
version: "1"

# IANA zone the service week is computed in; empty uses the host zone.
timezone: America/New_York

window:
  trailing_days: 7

slots:
  attribute: data-redeemer-bot

calendars:
  # Calendar whose events carry the weekly readings in their descriptions.
  scripture_calendar_id: scripture@group.calendar.google.com

scripture:
  skip_failed_passages: false
  min_interval: 1s

music:
  playlist_url: https://open.spotify.com/playlist/REPLACE_ME
  youtube_url: https://www.youtube.com/playlist?list=REPLACE_ME

template:
  source_id: newsletter-source
  publish_id: newsletter-processed
  publish_name: Processed Newsletter Template

secrets:
  env_prefix: NEWSLETTER_
  required: []

providers:
  kind: local
  fixtures: ./fixtures.yaml
  templates_dir: ./templates
  publish_dir: ./out

daemon:
  schedule: "0 6 * * 4"
  admin_addr: 127.0.0.1:8090
  retry:
    backoff: exponential
    initial: 30s
    max: 10m
    max_retries: 3

notify:
  # nats_url: nats://127.0.0.1:4222
  subject: newsletter.runs

logging:
  level: info
  format: text
`

// Init writes a starter configuration to path. An existing file is only
// replaced when force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return nerrors.New(nerrors.CategoryConfig, nerrors.SeverityFatal,
			"configuration file already exists (use --force to overwrite)").WithContext("path", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
