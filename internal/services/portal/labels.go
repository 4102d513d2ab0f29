package portal

import (
	"regexp"
	"strings"

	"github.com/ternarybob/accipio/internal/models"
)

var (
	// MM/DD/YYYY or YYYY-MM-DD date literals, first match only.
	dateRe = regexp.MustCompile(`\d{2}/\d{2}/\d{4}|\d{4}-\d{2}-\d{2}`)

	// Weekday names, full names before abbreviations so "Wednesday"
	// does not truncate to "Wed".
	dayRe = regexp.MustCompile(`(?i)\b(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues?|wed|thur?s?|fri|sat|sun)\b`)

	// "start - end" time-range expressions, am/pm optional.
	timeRangeRe = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(?:am|pm)?\s*(?:-|–|to)\s*\d{1,2}:\d{2}\s*(?:am|pm)?`)

	// Individual H:MM am/pm fragments used for time-token comparison.
	timeTokenRe = regexp.MustCompile(`(?i)\d{1,2}:\d{2}\s*(?:am|pm)`)
)

// ParseSlotLabel extracts date, weekday and time-range facts from a
// slot label. Every field is independently optional; absence is a
// valid outcome, not an error.
func ParseSlotLabel(label string) models.ParsedSlotLabel {
	return models.ParsedSlotLabel{
		Date:      dateRe.FindString(label),
		DayOfWeek: dayRe.FindString(label),
		TimeRange: timeRangeRe.FindString(label),
	}
}

// extractTimeTokens pulls normalized H:MMam/pm fragments out of text.
// Tokens are compared as literal strings, not numeric times; internal
// whitespace is stripped so "9:00 am" and "9:00am" compare equal.
func extractTimeTokens(text string) []string {
	matches := timeTokenRe.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		tokens = append(tokens, strings.ReplaceAll(m, " ", ""))
	}
	return tokens
}
