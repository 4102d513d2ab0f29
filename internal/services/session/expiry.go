package session

import "strings"

// minAuthenticatedTextLength is the length below which page text is
// treated as "not authenticated". An almost-empty body is itself
// suspicious, so short text is classified conservatively as expired
// even though this can misfire on a legitimately sparse page.
const minAuthenticatedTextLength = 50

// expiryPhrases are the substrings that mark a page as logged out.
// Matching is crude lowercase substring search rather than structural
// page detection; it trades precision for simplicity and is the main
// source of false positives in the system.
var expiryPhrases = []string{
	"login",
	"sign in",
	"session expired",
	"please log in",
	"authentication required",
}

// LooksExpired classifies page text as authenticated vs logged out.
// Fast and fallible; callers treat the answer as a hint that triggers a
// recoverable re-login, never as a hard fact.
func LooksExpired(pageText string) bool {
	trimmed := strings.TrimSpace(pageText)
	if len(trimmed) < minAuthenticatedTextLength {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range expiryPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
