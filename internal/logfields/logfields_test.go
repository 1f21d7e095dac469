package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "Compose", Stage("Compose")},
		{"Calendar", KeyCalendar, "Youth", Calendar("Youth")},
		{"Slot", KeySlot, "sermonDate", Slot("sermonDate")},
		{"Reference", KeyReference, "John 3:16", Reference("John 3:16")},
		{"Playlist", KeyPlaylist, "abc", Playlist("abc")},
		{"TemplateID", KeyTemplateID, "359089", TemplateID("359089")},
		{"Provider", KeyProvider, "calendar", Provider("calendar")},
		{"Schedule", KeySchedule, "0 6 * * 4", Schedule("0 6 * * 4")},
		{"URL", KeyURL, "nats://localhost:4222", URL("nats://localhost:4222")},
		{"Subject", KeySubject, "newsletter.runs", Subject("newsletter.runs")},
		{"Outcome", KeyOutcome, "success", Outcome("success")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s: key mismatch got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s: value mismatch got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestErrorHelper(t *testing.T) {
	if got := Error(nil); got.Key != KeyError || got.Value.String() != "" {
		t.Fatalf("nil error attr unexpected: %v", got)
	}
	if got := Error(errors.New("boom")); got.Value.String() != "boom" {
		t.Fatalf("error attr unexpected: %v", got)
	}
}

func TestDurationMS(t *testing.T) {
	a := DurationMS(12.5)
	if a.Key != KeyDurationMS || a.Value.Float64() != 12.5 {
		t.Fatalf("duration attr unexpected: %v", a)
	}
}
