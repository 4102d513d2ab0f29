package portal

import (
	"context"

	"github.com/ternarybob/accipio/internal/interfaces"
)

// Selector fallback chains, ordered by human-curated priority: specific
// attribute selectors first, generic fallbacks last. Probe walks each
// list strictly in order and takes the first hit.
var (
	UsernameSelectors = []string{
		`input[name="username"]`,
		`input[name="email"]`,
		`input[type="email"]`,
		`input[id*="user"]`,
		`input[id*="email"]`,
		`input[name*="user"]`,
		`input[type="text"]`,
	}

	PasswordSelectors = []string{
		`input[name="password"]`,
		`input[type="password"]`,
		`input[id*="pass"]`,
	}

	SubmitSelectors = []string{
		`button[type="submit"]`,
		`input[type="submit"]`,
		`button[id*="login"]`,
		`button[class*="login"]`,
		`button[class*="submit"]`,
	}

	AcceptButtonSelectors = []string{
		`button[id*="accept"]`,
		`button[class*="accept"]`,
		`input[type="submit"][value*="ccept"]`,
		`button[type="submit"]`,
		`input[type="submit"]`,
	}
)

// Probe returns the first selector in the list that matches an element
// on the page. Not-found is an ordinary outcome the caller recovers
// from, never an error; page-level failures are folded into not-found
// for the same reason.
func Probe(ctx context.Context, page interfaces.Page, selectors []string) (string, bool) {
	for _, selector := range selectors {
		exists, err := page.Exists(ctx, selector)
		if err != nil {
			return "", false
		}
		if exists {
			return selector, true
		}
	}
	return "", false
}
