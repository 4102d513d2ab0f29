package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/portal"
	"github.com/ternarybob/arbor"
)

// Refresher performs explicit credential logins and repopulates the
// shared cookie cache. Backing for callers that want to warm the
// session ahead of job traffic instead of paying the login cost inside
// an accept run.
type Refresher struct {
	config   common.PortalConfig
	launcher interfaces.Launcher
	cache    *Cache
	auth     *portal.Authenticator
	logger   arbor.ILogger
}

// NewRefresher wires the explicit-login pipeline.
func NewRefresher(
	config common.PortalConfig,
	launcher interfaces.Launcher,
	cache *Cache,
	auth *portal.Authenticator,
	logger arbor.ILogger,
) *Refresher {
	return &Refresher{
		config:   config,
		launcher: launcher,
		cache:    cache,
		auth:     auth,
		logger:   logger,
	}
}

// Refresh logs in with the given credentials, falling back to the
// configured defaults, and caches the resulting cookies.
func (r *Refresher) Refresh(ctx context.Context, username, password string) (*models.LoginResult, error) {
	creds := portal.Credentials{Username: username, Password: password}
	if creds.Username == "" || creds.Password == "" {
		creds = portal.Credentials{Username: r.config.Username, Password: r.config.Password}
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, models.ErrNoCredentialsConfigured
	}

	page, err := r.launcher.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer page.Close()

	if err := r.auth.Login(ctx, page, creds); err != nil {
		return &models.LoginResult{
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	r.cache.Save(ctx, page)

	portalURL, err := page.Location(ctx)
	if err != nil {
		portalURL = ""
	}

	return &models.LoginResult{
		Success:     true,
		PortalURL:   portalURL,
		HasTokens:   r.cache.HasCookies(),
		RefreshedAt: time.Now().UTC(),
	}, nil
}
