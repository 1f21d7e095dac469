// Package fragments turns raw provider data into the HTML fragments and
// lookup tables that fill the newsletter template slots.
//
// Builders are stateless apart from the read-only person directory. Whenever
// a builder needs one provider call per item (one per calendar, one per
// scripture reference) the calls go through sequence.Run so that a
// rate-limited provider only ever sees one request at a time.
package fragments
