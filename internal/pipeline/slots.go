package pipeline

import (
	"git.home.luguber.info/inful/newsletter/internal/compose"
	"git.home.luguber.info/inful/newsletter/internal/fragments"
)

// Slot keys filled on every run. The scripture slots take the calendar
// sections of the same name.
const (
	SlotSermonDate       = "sermonDate"
	SlotServiceMusic     = "serviceMusic"
	SlotThisWeekCalendar = "thisWeekCalendar"
	SlotNextWeekCalendar = "nextWeekCalendar"

	SlotScriptureReading = "scriptureReading"
	SlotSermonPassage    = "sermonPassage"
)

// scriptureSlots lists the scripture sections in rendering order.
var scriptureSlots = []string{SlotScriptureReading, SlotSermonPassage}

// slotMap assembles the composer input from the stage outputs.
func (st *runState) slotMap() compose.SlotMap {
	slots := make(compose.SlotMap, 6)
	for _, key := range scriptureSlots {
		slots[key] = compose.Markup(st.scripture[key])
	}
	slots[SlotSermonDate] = compose.Text(fragments.ServiceDateText(st.window.ServiceDate))
	slots[SlotServiceMusic] = compose.Markup(st.music)
	slots[SlotThisWeekCalendar] = compose.Markup(st.thisWeek)
	slots[SlotNextWeekCalendar] = compose.Markup(st.nextWeek)
	return slots
}
