package daemon

import (
	"time"

	"git.home.luguber.info/inful/newsletter/internal/pipeline"
)

// State is the lifecycle state of the daemon.
type State string

const (
	StateStopped  State = "stopped"
	StateRunning  State = "running"
	StateStopping State = "stopping"
)

// Status is the snapshot served on /status.
type Status struct {
	State      State            `json:"state"`
	Version    string           `json:"version"`
	StartedAt  time.Time        `json:"started_at,omitempty"`
	Uptime     string           `json:"uptime,omitempty"`
	ConfigFile string           `json:"config_file,omitempty"`
	Schedule   string           `json:"schedule"`
	NextRun    *time.Time       `json:"next_run,omitempty"`
	RunActive  bool             `json:"run_active"`
	Runs       int64            `json:"runs"`
	Failures   int64            `json:"failures"`
	LastRunAt  *time.Time       `json:"last_run_at,omitempty"`
	LastReport *pipeline.Report `json:"last_report,omitempty"`
}
