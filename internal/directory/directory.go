// Package directory resolves email addresses to display names for one run.
package directory

import "strings"

// Contact is a directory entry as returned by a DirectoryProvider.
type Contact struct {
	Name   string
	Emails []string
}

// Directory is a read-only email to display-name lookup. It is built once per
// run and safe for concurrent readers.
type Directory struct {
	names map[string]string
}

// New indexes contacts by every normalized email they carry. Contacts
// without a name are skipped; the first contact to claim an email wins.
func New(contacts []Contact) *Directory {
	d := &Directory{names: make(map[string]string)}
	for _, c := range contacts {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		for _, email := range c.Emails {
			key := Normalize(email)
			if key == "" {
				continue
			}
			if _, exists := d.names[key]; !exists {
				d.names[key] = name
			}
		}
	}
	return d
}

// Normalize lowercases and trims an email address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Lookup returns the display name registered for email.
func (d *Directory) Lookup(email string) (string, bool) {
	if d == nil {
		return "", false
	}
	name, ok := d.names[Normalize(email)]
	return name, ok
}

// NameOr returns the display name for email, or fallback when unknown.
func (d *Directory) NameOr(email, fallback string) string {
	if name, ok := d.Lookup(email); ok {
		return name
	}
	return fallback
}

// Len reports the number of indexed addresses.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
