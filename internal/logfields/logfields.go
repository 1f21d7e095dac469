package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCalendar   = "calendar"
	KeySlot       = "slot"
	KeyReference  = "reference"
	KeyPlaylist   = "playlist"
	KeyTemplateID = "template_id"
	KeyProvider   = "provider"
	KeySchedule   = "schedule"
	KeyError      = "error"
	KeyURL        = "url"
	KeySubject    = "subject"
	KeyOutcome    = "outcome"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr         { return slog.String(KeyRunID, id) }
func Stage(name string) slog.Attr       { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Calendar(label string) slog.Attr   { return slog.String(KeyCalendar, label) }
func Slot(key string) slog.Attr         { return slog.String(KeySlot, key) }
func Reference(ref string) slog.Attr    { return slog.String(KeyReference, ref) }
func Playlist(id string) slog.Attr      { return slog.String(KeyPlaylist, id) }
func TemplateID(id string) slog.Attr    { return slog.String(KeyTemplateID, id) }
func Provider(name string) slog.Attr    { return slog.String(KeyProvider, name) }
func Schedule(expr string) slog.Attr    { return slog.String(KeySchedule, expr) }
func URL(u string) slog.Attr            { return slog.String(KeyURL, u) }
func Subject(s string) slog.Attr        { return slog.String(KeySubject, s) }
func Outcome(o string) slog.Attr        { return slog.String(KeyOutcome, o) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
