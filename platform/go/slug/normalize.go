package slug

import (
	"regexp"
	"strings"
)

// DefaultMaxLength bounds generated slug candidates; it matches the policy
// default so normalized output is never rejected for length alone.
const DefaultMaxLength = 50

var (
	strippedChars  = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	hyphenRuns     = regexp.MustCompile(`-{2,}`)
)

// Normalize turns arbitrary display text into a canonical slug candidate:
// lowercase, non-word characters stripped, internal whitespace collapsed to
// single hyphens, hyphen runs collapsed, edges trimmed, truncated to maxLen
// without leaving a trailing hyphen. maxLen <= 0 applies DefaultMaxLength.
//
// The function is total; unusable input yields "" which the validator rejects.
func Normalize(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	s := strings.ToLower(strings.TrimSpace(text))
	s = strippedChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-_")

	if len(s) > maxLen {
		s = s[:maxLen]
		s = strings.TrimRight(s, "-_")
	}

	return s
}
