package fragments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotKey(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Sermon Passage", "sermonPassage"},
		{"Scripture Reading", "scriptureReading"},
		{"SCRIPTURE READING", "scriptureReading"},
		{"sermon passage", "sermonPassage"},
		{"  Sermon   Passage  ", "sermonPassage"},
		{"Sermon -- Passage", "sermonPassage"},
		{"sermon_passage", "sermonPassage"},
		{"Sermon-Passage/Notes", "sermonPassageNotes"},
		{"sermonPassage", "sermonPassage"},
		{"HTMLParser", "htmlParser"},
		{"parseHTMLBody", "parseHtmlBody"},
		{"NATS Notice", "natsNotice"},
		{"SermonPassage", "sermonPassage"},
		{"Children's Church", "childrensChurch"},
		{"Psalm 23 Reading", "psalm23Reading"},
		{"Évangile du Jour", "évangileDuJour"},
		{"Évangile", "évangile"},
		{"", ""},
		{" - ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, SlotKey(tt.label))
		})
	}
}
