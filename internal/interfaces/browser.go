package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/accipio/internal/models"
)

// Page is the browser capability consumed by the portal automation
// pipelines. The production implementation drives a chromedp tab; tests
// substitute synthetic pages so the login machine and slot engine can be
// exercised without a browser.
type Page interface {
	// Navigate loads the given URL and waits for the load event.
	Navigate(ctx context.Context, url string) error

	// WaitVisible blocks until the selector is visible or the timeout
	// elapses.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error

	// Exists reports whether at least one element matches the selector.
	// Probe failures are reported as (false, nil); an error means the
	// page itself is gone.
	Exists(ctx context.Context, selector string) (bool, error)

	// Click clicks the first element matching the selector.
	Click(ctx context.Context, selector string) error

	// ClickByText scans clickable elements (buttons, submit/button
	// inputs, anchors) and clicks the first whose visible text contains
	// any of the given lowercase phrases. Returns false when nothing
	// matched.
	ClickByText(ctx context.Context, phrases []string) (bool, error)

	// ClearAndType selects all existing content in the field, deletes
	// it, then types text with the given inter-keystroke delay.
	ClearAndType(ctx context.Context, selector, text string, keyDelay time.Duration) error

	// PressEnter sends the Enter key to the focused element.
	PressEnter(ctx context.Context) error

	// Text returns the visible text of the document body.
	Text(ctx context.Context) (string, error)

	// HTML returns the full page markup.
	HTML(ctx context.Context) (string, error)

	// Location returns the current page URL.
	Location(ctx context.Context) (string, error)

	// Evaluate runs a JavaScript expression and unmarshals its result
	// into out.
	Evaluate(ctx context.Context, expression string, out interface{}) error

	// Screenshot captures a full-page screenshot as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// Cookies returns all cookies visible to the page.
	Cookies(ctx context.Context) ([]models.Cookie, error)

	// SetCookies installs cookies into the page context before
	// navigation.
	SetCookies(ctx context.Context, cookies []models.Cookie) error

	// WaitNavigationOrDelay races a navigation-completion event against
	// the given delay and returns when either fires. The portal uses
	// client-side redirects that never emit a navigation event, so the
	// delay path is a normal outcome, not a failure.
	WaitNavigationOrDelay(ctx context.Context, max time.Duration)

	// Close tears down the page and its browser process.
	Close()
}

// Launcher creates isolated browser pages. Each accept/scrape/login run
// gets its own sandboxed browser context, never shared across
// concurrent jobs.
type Launcher interface {
	NewPage(ctx context.Context) (Page, error)
}
