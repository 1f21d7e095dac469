package fragments

import (
	"html"
	"time"
)

// Date layouts used in the newsletter.
const (
	ServiceDateLayout = "Monday, January 2, 2006"
	WindowDateLayout  = "January 2, 2006"
)

// ServiceDateText is the plain-text value of the service date slot.
func ServiceDateText(date time.Time) string {
	return date.Format(ServiceDateLayout)
}

// WindowHeader renders the date banner placed above a calendar window.
func WindowHeader(date time.Time) string {
	return `<span style="font-family:merriweather,georgia,times new roman,serif;font-size:16px">` +
		`<strong> - ` + html.EscapeString(date.Format(WindowDateLayout)) + `</strong></span>`
}
