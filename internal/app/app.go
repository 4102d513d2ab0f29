package app

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/handlers"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/services/accept"
	"github.com/ternarybob/accipio/internal/services/browser"
	"github.com/ternarybob/accipio/internal/services/interactive"
	"github.com/ternarybob/accipio/internal/services/portal"
	"github.com/ternarybob/accipio/internal/services/scrape"
	"github.com/ternarybob/accipio/internal/services/session"
	badgerstore "github.com/ternarybob/accipio/internal/storage/badger"
	"github.com/ternarybob/arbor"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	DB          *badgerstore.BadgerDB
	ResultStore interfaces.ResultStore

	// Browser automation services
	Launcher           interfaces.Launcher
	SessionCache       *session.Cache
	Authenticator      *portal.Authenticator
	Processor          *accept.Processor
	ScrapeService      *scrape.Service
	Refresher          *session.Refresher
	InteractiveManager *interactive.Manager

	// Background maintenance
	cron *cron.Cron

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	AcceptHandler  *handlers.AcceptHandler
	ScrapeHandler  *handlers.ScrapeHandler
	LoginHandler   *handlers.LoginHandler
	JobHandler     *handlers.JobHandler
	SessionHandler *handlers.SessionHandler
	WSHandler      *handlers.WebSocketHandler
}

// New builds the full application graph: storage, browser services,
// handlers, and the maintenance schedules.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := a.initStorage(); err != nil {
		return nil, err
	}
	a.initServices()
	a.initHandlers()
	if err := a.initSchedules(); err != nil {
		a.Close()
		return nil, err
	}

	logger.Info().Msg("Application initialized")
	return a, nil
}

func (a *App) initStorage() error {
	db, err := badgerstore.NewBadgerDB(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.DB = db
	a.ResultStore = badgerstore.NewResultStorage(db, a.Logger)
	return nil
}

func (a *App) initServices() {
	a.Launcher = browser.NewLauncher(a.Config.Portal, a.Logger)
	a.SessionCache = session.NewCache(a.Logger)
	a.Authenticator = portal.NewAuthenticator(a.Config.Portal, a.Logger)

	notifier := accept.NewHTTPNotifier(a.Config.Callback.Timeout, a.Logger)
	a.Processor = accept.NewProcessor(
		a.Config.Portal,
		a.Launcher,
		a.SessionCache,
		a.Authenticator,
		notifier,
		a.ResultStore,
		a.Logger,
	)

	a.ScrapeService = scrape.NewService(a.Config.Portal, a.Launcher, a.SessionCache, a.Authenticator, a.Logger)
	a.Refresher = session.NewRefresher(a.Config.Portal, a.Launcher, a.SessionCache, a.Authenticator, a.Logger)
	a.InteractiveManager = interactive.NewManager(a.Launcher, a.Logger)
}

func (a *App) initHandlers() {
	secret := a.Config.Portal.Secret

	a.APIHandler = handlers.NewAPIHandler(a.SessionCache)
	a.AcceptHandler = handlers.NewAcceptHandler(a.Processor, secret)
	a.ScrapeHandler = handlers.NewScrapeHandler(a.ScrapeService, secret)
	a.LoginHandler = handlers.NewLoginHandler(a.Refresher, secret)
	a.JobHandler = handlers.NewJobHandler(a.ResultStore)
	a.SessionHandler = handlers.NewSessionHandler(a.InteractiveManager, secret)
	a.WSHandler = handlers.NewWebSocketHandler(a.InteractiveManager, secret)
}

// initSchedules starts the cron jobs reclaiming idle interactive
// sessions and purging expired job results.
func (a *App) initSchedules() error {
	a.cron = cron.New()

	sweep := a.Config.Sessions
	if sweep.SweepSchedule != "" && sweep.IdleTimeout > 0 {
		if _, err := a.cron.AddFunc(sweep.SweepSchedule, func() {
			if reclaimed := a.InteractiveManager.SweepIdle(sweep.IdleTimeout); reclaimed > 0 {
				a.Logger.Info().Int("reclaimed", reclaimed).Msg("Idle session sweep completed")
			}
		}); err != nil {
			return fmt.Errorf("invalid session sweep schedule %q: %w", sweep.SweepSchedule, err)
		}
	}

	results := a.Config.Results
	if results.PurgeSchedule != "" && results.Retention > 0 {
		if _, err := a.cron.AddFunc(results.PurgeSchedule, func() {
			cutoff := time.Now().UTC().Add(-results.Retention)
			if _, err := a.ResultStore.PurgeOlderThan(cutoff); err != nil {
				a.Logger.Warn().Err(err).Msg("Result purge failed")
			}
		}); err != nil {
			return fmt.Errorf("invalid result purge schedule %q: %w", results.PurgeSchedule, err)
		}
	}

	a.cron.Start()
	return nil
}

// Close releases all application resources.
func (a *App) Close() error {
	a.Logger.Info().Msg("Shutting down application")

	if a.cron != nil {
		a.cron.Stop()
	}
	if a.InteractiveManager != nil {
		a.InteractiveManager.CloseAll()
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close database")
			return err
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
	return nil
}
