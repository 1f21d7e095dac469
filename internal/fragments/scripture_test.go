package fragments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/providers"
)

func TestSplitReferences(t *testing.T) {
	assert.Equal(t, []string{"John 3:16", "Romans 8:28"}, SplitReferences("John 3:16\nRomans 8:28"))
	assert.Equal(t, []string{"John 3:16", "Romans 8:28"}, SplitReferences("John 3:16\r\n\n  Romans 8:28 \n"))
	assert.Empty(t, SplitReferences(""))
}

func TestReferenceTable(t *testing.T) {
	table := ReferenceTable("Scripture", []providers.Event{
		{Label: "Scripture - Sermon Passage", Description: "John 3:16\nRomans 8:28"},
		{Label: "Scripture - Scripture Reading", Description: "Psalm 23"},
		{Label: " - ", Description: "ignored"},
	})
	assert.Equal(t, map[string][]string{
		"sermonPassage":    {"John 3:16", "Romans 8:28"},
		"scriptureReading": {"Psalm 23"},
	}, table)
}

func TestPassageLink(t *testing.T) {
	assert.Equal(t,
		`<a href="http://esv.to/John%203:16" target="_blank">Read the full passage here</a>`,
		PassageLink(DefaultPassageLinkBase, "John 3:16", DefaultPassageLinkText))
}

func TestScriptureBuilder_References(t *testing.T) {
	fc := &fakeCalendars{
		calendars: []providers.Calendar{{ID: "scripture@group", Label: "Scripture"}},
		events: map[string][]providers.Event{
			"scripture@group": {{Label: "Scripture - Sermon Passage", Description: "John 3:16"}},
		},
	}
	b := &ScriptureBuilder{Calendars: fc, CalendarID: "scripture@group"}

	refs, err := b.References(context.Background(), testWindow())
	require.NoError(t, err)
	assert.Equal(t, []string{"John 3:16"}, refs["sermonPassage"])

	b.CalendarID = "missing"
	_, err = b.References(context.Background(), testWindow())
	require.Error(t, err)
	assert.Equal(t, nerrors.CategoryProvider, nerrors.GetCategory(err))
}

func TestScriptureBuilder_PassagesHTML(t *testing.T) {
	fp := &fakePassages{}
	b := &ScriptureBuilder{Passages: fp}

	got, err := b.PassagesHTML(context.Background(), []string{"John 3:16", "Romans 8:28"})
	require.NoError(t, err)
	assert.Equal(t,
		`<p>John 3:16</p><a href="http://esv.to/John%203:16" target="_blank">Read the full passage here</a>`+
			`<p>Romans 8:28</p><a href="http://esv.to/Romans%208:28" target="_blank">Read the full passage here</a>`,
		got)
	assert.Equal(t, []string{"John 3:16", "Romans 8:28"}, fp.calls)
}

func TestScriptureBuilder_PassagesHTML_NoReferences(t *testing.T) {
	b := &ScriptureBuilder{Passages: &fakePassages{}}
	got, err := b.PassagesHTML(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestScriptureBuilder_FailedPassageAborts(t *testing.T) {
	fp := &fakePassages{fail: map[string]error{"Romans 8:28": errors.New("429")}}
	b := &ScriptureBuilder{Passages: fp}

	_, err := b.PassagesHTML(context.Background(), []string{"John 3:16", "Romans 8:28", "Psalm 23"})
	require.Error(t, err)
	assert.Equal(t, []string{"John 3:16", "Romans 8:28"}, fp.calls)
	assert.True(t, nerrors.IsRetryable(err))
}

func TestScriptureBuilder_SkipFailed(t *testing.T) {
	fp := &fakePassages{fail: map[string]error{"Romans 8:28": errors.New("429")}}
	b := &ScriptureBuilder{Passages: fp, SkipFailed: true, LinkText: "More"}

	got, err := b.PassagesHTML(context.Background(), []string{"John 3:16", "Romans 8:28", "Psalm 23"})
	require.NoError(t, err)
	assert.Equal(t, []string{"John 3:16", "Romans 8:28", "Psalm 23"}, fp.calls)
	assert.NotContains(t, got, "Romans")
	assert.Contains(t, got, "<p>Psalm 23</p>")
	assert.Contains(t, got, `target="_blank">More</a>`)
}
