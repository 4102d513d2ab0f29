package scrape

import (
	"context"
	"fmt"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/portal"
	"github.com/ternarybob/accipio/internal/services/session"
	"github.com/ternarybob/arbor"
)

// Service runs synchronous scrapes of portal pages. Each scrape gets a
// fresh browser page seeded from the shared session cache.
type Service struct {
	config   common.PortalConfig
	launcher interfaces.Launcher
	sessions interfaces.SessionStore
	auth     *portal.Authenticator
	logger   arbor.ILogger
}

// NewService wires the scrape pipeline.
func NewService(
	config common.PortalConfig,
	launcher interfaces.Launcher,
	sessions interfaces.SessionStore,
	auth *portal.Authenticator,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:   config,
		launcher: launcher,
		sessions: sessions,
		auth:     auth,
		logger:   logger,
	}
}

// Scrape loads the requested page, recovering an expired session at
// most once, and returns its content as markdown plus extracted job
// links. Request credentials take priority over configured defaults for
// the recovery login.
func (s *Service) Scrape(ctx context.Context, request *models.ScrapeRequest) (*models.ScrapeResult, error) {
	if request.URL == "" {
		return nil, models.ErrMissingURL
	}

	page, err := s.launcher.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer page.Close()

	s.sessions.Apply(ctx, page)

	if err := page.Navigate(ctx, request.URL); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", request.URL, err)
	}

	pageText, err := page.Text(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page text: %w", err)
	}

	if session.LooksExpired(pageText) {
		if err := s.recoverSession(ctx, page, request); err != nil {
			return nil, err
		}
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page markup: %w", err)
	}

	markdown, err := md.NewConverter(request.URL, true, nil).ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Markdown conversion failed, returning HTML only")
		markdown = ""
	}

	links, err := ExtractJobLinks(html, request.URL)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Job link extraction failed")
	}
	if links == nil {
		links = []string{}
	}

	s.logger.Info().
		Str("url", request.URL).
		Int("job_links", len(links)).
		Msg("Scrape completed")

	return &models.ScrapeResult{
		Success:     true,
		RawMarkdown: markdown,
		RawHTML:     html,
		JobLinks:    links,
		ScrapedAt:   time.Now().UTC(),
	}, nil
}

// recoverSession performs the single re-login a scrape is allowed, then
// returns to the target page.
func (s *Service) recoverSession(ctx context.Context, page interfaces.Page, request *models.ScrapeRequest) error {
	creds := portal.Credentials{Username: request.Username, Password: request.Password}
	if creds.Username == "" || creds.Password == "" {
		creds = portal.Credentials{Username: s.config.Username, Password: s.config.Password}
	}
	if creds.Username == "" || creds.Password == "" {
		return models.ErrSessionExpiredNoCredentials
	}

	s.logger.Info().Str("url", request.URL).Msg("Session expired during scrape, logging in")
	if err := s.auth.Login(ctx, page, creds); err != nil {
		return fmt.Errorf("scrape recovery login: %w", err)
	}
	s.sessions.Save(ctx, page)

	if err := page.Navigate(ctx, request.URL); err != nil {
		return fmt.Errorf("return to %s after login: %w", request.URL, err)
	}
	return nil
}
