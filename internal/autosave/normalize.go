package autosave

import (
	"regexp"
	"strings"
)

// Rich-text editors leave non-semantic residue behind: empty paragraph
// tags, break tags, non-breaking spaces. An "empty" edit made of nothing
// but residue must not register as a real change, or every visit to a
// field would trigger a write.
var (
	emptyMarkupRe   = regexp.MustCompile(`(?i)<(p|div|span|br)\s*/?>|</(p|div|span)>`)
	nbspRe          = regexp.MustCompile(`&nbsp;|\x{00a0}`)
	trailingBlankRe = regexp.MustCompile(`[ \t]+\n`)
)

// Normalize strips non-semantic empty markup and trims trailing whitespace.
// A value that is nothing but residue normalizes to the empty string.
func Normalize(value string) string {
	if value == "" {
		return ""
	}

	// Does stripping all markup and whitespace leave anything?
	stripped := emptyMarkupRe.ReplaceAllString(value, "")
	stripped = nbspRe.ReplaceAllString(stripped, " ")
	if strings.TrimSpace(stripped) == "" {
		return ""
	}

	// Real content: keep the markup, tidy the whitespace.
	out := nbspRe.ReplaceAllString(value, " ")
	out = trailingBlankRe.ReplaceAllString(out, "\n")
	return strings.TrimRight(out, " \t\n")
}

// HasContent reports whether the value carries semantic content after
// normalization. The store uses this for the first-content status
// transition.
func HasContent(value string) bool {
	return Normalize(value) != ""
}
