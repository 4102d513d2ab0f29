package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
)

// page drives a single chromedp browser context. All operations run on
// the browser's own context chain; the caller context only contributes
// cancellation.
type page struct {
	ctx        context.Context
	navTimeout time.Duration
	loadFired  chan struct{} // fed by the load listener attached at creation
	cancels    []context.CancelFunc
	logger     arbor.ILogger
}

// drainLoad discards a buffered load event from an earlier navigation.
// Actions that may trigger a navigation drain first so that
// WaitNavigationOrDelay only sees events fired after the trigger.
func (p *page) drainLoad() {
	select {
	case <-p.loadFired:
	default:
	}
}

// run executes chromedp actions on the browser context, bounded by the
// given timeout and cancelled early if the caller context dies.
func (p *page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.ctx)
	defer cancel()
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *page) Navigate(ctx context.Context, url string) error {
	err := p.run(ctx, p.navTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	p.drainLoad()
	return err
}

func (p *page) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *page) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	expr := fmt.Sprintf("document.querySelector(%s) !== null", strconv.Quote(selector))
	if err := p.run(ctx, 5*time.Second, chromedp.Evaluate(expr, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (p *page) Click(ctx context.Context, selector string) error {
	p.drainLoad()
	return p.run(ctx, 10*time.Second, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

// clickByTextJS scans the clickable elements and clicks the first one
// whose visible text or value contains any of the given phrases.
// Written as an IIFE so Evaluate returns the matched flag directly.
const clickByTextJS = `(function(phrases) {
	var candidates = document.querySelectorAll('button, input[type="submit"], input[type="button"], a');
	for (var i = 0; i < candidates.length; i++) {
		var el = candidates[i];
		var text = ((el.textContent || '') + ' ' + (el.value || '')).toLowerCase();
		for (var j = 0; j < phrases.length; j++) {
			if (text.indexOf(phrases[j]) !== -1) {
				el.click();
				return true;
			}
		}
	}
	return false;
})(%s)`

func (p *page) ClickByText(ctx context.Context, phrases []string) (bool, error) {
	quoted := make([]string, len(phrases))
	for i, phrase := range phrases {
		quoted[i] = strconv.Quote(strings.ToLower(phrase))
	}
	expr := fmt.Sprintf(clickByTextJS, "["+strings.Join(quoted, ",")+"]")

	p.drainLoad()
	var clicked bool
	if err := p.run(ctx, 10*time.Second, chromedp.Evaluate(expr, &clicked)); err != nil {
		return false, err
	}
	return clicked, nil
}

func (p *page) ClearAndType(ctx context.Context, selector, text string, keyDelay time.Duration) error {
	if err := p.run(ctx, 10*time.Second,
		chromedp.Clear(selector, chromedp.ByQuery),
		chromedp.Focus(selector, chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("clear field %s: %w", selector, err)
	}

	for _, r := range text {
		if err := p.run(ctx, 5*time.Second, chromedp.SendKeys(selector, string(r), chromedp.ByQuery)); err != nil {
			return fmt.Errorf("type into %s: %w", selector, err)
		}
		if keyDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(keyDelay):
			}
		}
	}
	return nil
}

func (p *page) PressEnter(ctx context.Context) error {
	p.drainLoad()
	return p.run(ctx, 5*time.Second, chromedp.KeyEvent(kb.Enter))
}

func (p *page) Text(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, 10*time.Second, chromedp.Text("body", &text, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return text, nil
}

func (p *page) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 10*time.Second, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *page) Location(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, 5*time.Second, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (p *page) Evaluate(ctx context.Context, expression string, out interface{}) error {
	return p.run(ctx, 10*time.Second, chromedp.Evaluate(expression, out))
}

func (p *page) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, 15*time.Second, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *page) Cookies(ctx context.Context) ([]models.Cookie, error) {
	var raw []*network.Cookie
	err := p.run(ctx, 10*time.Second, chromedp.ActionFunc(func(ctx context.Context) error {
		cookies, err := network.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		raw = cookies
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("read browser cookies: %w", err)
	}

	cookies := make([]models.Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, models.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}
	return cookies, nil
}

func (p *page) SetCookies(ctx context.Context, cookies []models.Cookie) error {
	return p.run(ctx, 10*time.Second,
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				param := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithHTTPOnly(c.HTTPOnly).
					WithSecure(c.Secure)
				if c.Expires > 0 {
					expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
					param = param.WithExpires(&expires)
				}
				switch strings.ToLower(c.SameSite) {
				case "strict":
					param = param.WithSameSite(network.CookieSameSiteStrict)
				case "lax":
					param = param.WithSameSite(network.CookieSameSiteLax)
				case "none":
					param = param.WithSameSite(network.CookieSameSiteNone)
				}
				if err := param.Do(ctx); err != nil {
					return fmt.Errorf("set cookie %s: %w", c.Name, err)
				}
			}
			return nil
		}),
	)
}

// WaitNavigationOrDelay returns on the next load event or after the
// fixed delay. The event is buffered by the listener attached at page
// creation, so a navigation that finishes between the triggering click
// and this call still takes the fast path.
func (p *page) WaitNavigationOrDelay(ctx context.Context, max time.Duration) {
	select {
	case <-p.loadFired:
	case <-time.After(max):
	case <-ctx.Done():
	}
}

func (p *page) Close() {
	// Cancel browser before allocator so Chrome shuts down cleanly.
	for _, cancel := range p.cancels {
		cancel()
	}
	p.logger.Debug().Msg("Browser page closed")
}
