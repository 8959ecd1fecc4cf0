// Package tag extracts inline routing tags from message text. A tag is a
// token of the form #NAME or #NAME::SUB1::SUB2 where NAME and each SUB
// consist of letters, digits, and underscores. Tag names are case-insensitive
// (normalized to upper case); sub-tokens keep their original case so that
// downstream keyword matching can decide how to compare them.
package tag

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`#([A-Za-z0-9_]+)((?:::[A-Za-z0-9_]+)*)`)

// Tags maps a normalized (upper-case) tag name to its sub-tokens in
// first-seen order. A repeated tag accumulates sub-tokens across occurrences.
type Tags map[string][]string

// Parse extracts all tags from text. Text without any tag tokens yields an
// empty (non-nil) map. The input is never modified; stripping tags out of
// message text is a separate concern handled per sink (see Strip).
func Parse(text string) Tags {
	tags := make(Tags)
	for _, m := range tagRe.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(m[1])
		subs := tags[name]
		if m[2] != "" {
			for _, sub := range strings.Split(m[2], "::") {
				if sub != "" {
					subs = append(subs, sub)
				}
			}
		}
		tags[name] = subs
	}
	return tags
}

// Strip removes all tag tokens from text and trims surrounding whitespace.
func Strip(text string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(text, ""))
}

// Has reports whether the tag with the given (case-insensitive) name is present.
func (t Tags) Has(name string) bool {
	_, ok := t[strings.ToUpper(name)]
	return ok
}

// Subs returns the accumulated sub-tokens for a tag, or nil when the tag is
// absent or carries none.
func (t Tags) Subs(name string) []string {
	return t[strings.ToUpper(name)]
}
