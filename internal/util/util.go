// Package util provides small text helpers shared across the application:
// slug generation, language detection, and string truncation.
package util

import (
	"regexp"
	"strings"
)

var (
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces    = regexp.MustCompile(`\s+`)
	slugRepeatDas = regexp.MustCompile(`-+`)
)

// Slugify converts text into a URL-friendly slug: lower-cased, non-alphanumeric
// characters removed, whitespace collapsed into single hyphens. Text that
// contains no ASCII alphanumerics (e.g. a fully CJK title) yields an empty
// string; callers are expected to fall back to a generated slug.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = nonSlugChars.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugRepeatDas.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DetectLanguage classifies text as Chinese ("zh") or English ("en").
// Text where more than 20% of the runes fall in the CJK unified ideograph
// range is considered Chinese. Empty text defaults to "zh".
func DetectLanguage(text string) string {
	var han, total int
	for _, r := range text {
		if r >= 0x4e00 && r <= 0x9fff {
			han++
		}
		total++
	}
	if total == 0 {
		return "zh"
	}
	if float64(han)/float64(total) > 0.2 {
		return "zh"
	}
	return "en"
}

// Truncate shortens s to at most maxLen runes, appending an ellipsis marker
// when truncation occurred. Used for queue listings and log previews.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}
