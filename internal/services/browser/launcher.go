package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/network"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// Launcher creates Chrome-backed pages. Every page gets its own
// allocator and browser process so concurrent jobs never share cookie
// jars or profile state.
type Launcher struct {
	config common.PortalConfig
	logger arbor.ILogger
}

// NewLauncher creates the chromedp page factory.
func NewLauncher(config common.PortalConfig, logger arbor.ILogger) *Launcher {
	return &Launcher{
		config: config,
		logger: logger,
	}
}

// NewPage starts a fresh browser process and returns a page bound to
// it. The caller owns the page and must Close it.
func (l *Launcher) NewPage(ctx context.Context) (interfaces.Page, error) {
	allocatorOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", l.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if l.config.UserAgent != "" {
		allocatorOpts = append(allocatorOpts, chromedp.UserAgent(l.config.UserAgent))
	}

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, allocatorOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Startup test plus cookie-domain access in one shot.
	if err := chromedp.Run(browserCtx, network.Enable(), chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("browser startup failed: %w", err)
	}

	l.logger.Debug().
		Bool("headless", l.config.Headless).
		Str("user_agent", l.config.UserAgent).
		Msg("Browser page created")

	p := &page{
		ctx:        browserCtx,
		navTimeout: l.config.NavTimeout,
		loadFired:  make(chan struct{}, 1),
		cancels:    []context.CancelFunc{browserCancel, allocatorCancel},
		logger:     l.logger,
	}

	// The load listener stays attached for the page's lifetime, so a
	// navigation that completes before anyone starts waiting on it is
	// still observed.
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if _, ok := ev.(*cdppage.EventLoadEventFired); ok {
			select {
			case p.loadFired <- struct{}{}:
			default:
			}
		}
	})

	return p, nil
}
