package fragments

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// SlotKey derives the template slot key for a human label: the first word is
// lowercased, every following word is title-cased, and the words are joined
// without separators ("Sermon Passage" -> "sermonPassage").
//
// Words are maximal runs of letters and digits; any other rune separates
// words, so repeated or mixed delimiters ("Sermon -- Passage", "sermon_passage")
// collapse. Apostrophes are dropped rather than treated as separators
// ("Children's Church" -> "childrensChurch"). A lowercase-to-uppercase
// transition also starts a new word, which keeps existing camel-case keys
// stable ("sermonPassage" -> "sermonPassage"). Inside a run of capitals the
// last one starts a new word when a lowercase letter follows it
// ("HTMLParser" -> "htmlParser"). Input is NFC-normalized first
// so composed and decomposed accents produce the same key.
func SlotKey(label string) string {
	words := splitWords(norm.NFC.String(label))
	if len(words) == 0 {
		return ""
	}

	lower := cases.Lower(language.Und)
	title := cases.Title(language.Und)

	var b strings.Builder
	b.WriteString(lower.String(words[0]))
	for _, w := range words[1:] {
		b.WriteString(title.String(w))
	}
	return b.String()
}

func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
		prev  rune
	)
	rs := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	for i, r := range rs {
		switch {
		case r == '\'' || r == '’':
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			if len(cur) > 0 && unicode.IsUpper(r) &&
				(unicode.IsLower(prev) || (unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1]))) {
				flush()
			}
			cur = append(cur, r)
		default:
			flush()
		}
		prev = r
	}
	flush()
	return words
}
