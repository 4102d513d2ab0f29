package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// LoginState tracks progress through the credential-entry sequence.
type LoginState int

const (
	LoginNotStarted LoginState = iota
	LoginFormLoaded
	LoginCredentialsEntered
	LoginSubmitted
	LoginSucceeded
	LoginFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginNotStarted:
		return "not_started"
	case LoginFormLoaded:
		return "form_loaded"
	case LoginCredentialsEntered:
		return "credentials_entered"
	case LoginSubmitted:
		return "submitted"
	case LoginSucceeded:
		return "succeeded"
	case LoginFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Credentials are the portal username/password pair.
type Credentials struct {
	Username string
	Password string
}

// submitTextPhrases is the text-content fallback scan used when no
// submit selector matches.
var submitTextPhrases = []string{"login", "sign in", "submit", "log in"}

// errorPhrases mark an explicit credential rejection. Checking these
// takes priority over every success heuristic.
var errorPhrases = []string{
	"invalid password",
	"incorrect password",
	"invalid credentials",
	"invalid username",
	"login failed",
	"user not found",
	"account locked",
	"too many attempts",
}

// Lenient success signals: any single one is accepted as proof of
// success. The portal's post-login redirect behavior is inconsistent
// (sometimes a full navigation, sometimes client-side), so the machine
// favors false success over false failure to avoid blocking downstream
// automation.
var (
	successURLFragments = []string{"dashboard", "available", "jobs", "home", "portal"}
	successTextPhrases  = []string{"welcome", "dashboard", "available jobs", "logout", "sign out", "my account"}
)

// longPageTextThreshold is the length past which a page that never
// mentions "password" is assumed to be an authenticated landing page.
const longPageTextThreshold = 500

// Authenticator runs the login state machine against portal pages. It
// owns the rate limiter spacing out login attempts so concurrent jobs
// recovering an expired session never hammer the portal's login form.
type Authenticator struct {
	config  common.PortalConfig
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewAuthenticator creates the shared authenticator.
func NewAuthenticator(config common.PortalConfig, logger arbor.ILogger) *Authenticator {
	interval := config.LoginInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Authenticator{
		config:  config,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

// Login drives the full state machine on the given page. The page ends
// on whatever the portal served after submit; callers re-navigate to
// their target URL afterwards.
func (a *Authenticator) Login(ctx context.Context, page interfaces.Page, creds Credentials) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("login rate limit wait: %w", err)
	}

	machine := &loginMachine{
		page:   page,
		config: a.config,
		logger: a.logger,
	}
	return machine.run(ctx, creds)
}

// loginMachine walks NotStarted -> FormLoaded -> CredentialsEntered ->
// Submitted -> Succeeded|Failed. One instance per login attempt.
type loginMachine struct {
	page   interfaces.Page
	config common.PortalConfig
	logger arbor.ILogger
	state  LoginState
}

func (m *loginMachine) run(ctx context.Context, creds Credentials) error {
	steps := []func(context.Context, Credentials) error{
		m.loadForm,
		m.enterCredentials,
		m.submit,
		m.classify,
	}
	for _, step := range steps {
		if err := step(ctx, creds); err != nil {
			m.state = LoginFailed
			m.logger.Warn().Err(err).Str("state", m.state.String()).Msg("Login failed")
			return err
		}
	}
	m.state = LoginSucceeded
	m.logger.Info().Msg("Portal login succeeded")
	return nil
}

// loadForm navigates to the login URL and waits for any username/email
// field to appear.
func (m *loginMachine) loadForm(ctx context.Context, _ Credentials) error {
	if err := m.page.Navigate(ctx, m.config.LoginURL); err != nil {
		return fmt.Errorf("navigate to login page: %w", err)
	}

	deadline := time.Now().Add(m.config.FormTimeout)
	for {
		if _, ok := Probe(ctx, m.page, UsernameSelectors); ok {
			m.state = LoginFormLoaded
			return nil
		}
		if time.Now().After(deadline) {
			return models.ErrFormNotFound
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// enterCredentials locates both fields, clears any placeholder or
// pre-filled text, and types with an inter-keystroke delay to mimic
// human input.
func (m *loginMachine) enterCredentials(ctx context.Context, creds Credentials) error {
	userSel, ok := Probe(ctx, m.page, UsernameSelectors)
	if !ok {
		return models.ErrFieldsNotFound
	}
	passSel, ok := Probe(ctx, m.page, PasswordSelectors)
	if !ok {
		return models.ErrFieldsNotFound
	}

	if err := m.page.ClearAndType(ctx, userSel, creds.Username, m.config.TypeDelay); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := m.page.ClearAndType(ctx, passSel, creds.Password, m.config.TypeDelay); err != nil {
		return fmt.Errorf("type password: %w", err)
	}

	m.state = LoginCredentialsEntered
	return nil
}

// submit clicks a submit-like control, falling back to a button text
// scan and finally the Enter key, then races navigation against a
// fixed delay. The portal may redirect client-side without ever firing
// a navigation event, so the delay path is a normal outcome.
func (m *loginMachine) submit(ctx context.Context, _ Credentials) error {
	clicked := false
	if sel, ok := Probe(ctx, m.page, SubmitSelectors); ok {
		if err := m.page.Click(ctx, sel); err == nil {
			clicked = true
		}
	}
	if !clicked {
		if ok, err := m.page.ClickByText(ctx, submitTextPhrases); err == nil && ok {
			clicked = true
		}
	}
	if !clicked {
		if err := m.page.PressEnter(ctx); err != nil {
			return fmt.Errorf("press enter to submit: %w", err)
		}
	}

	m.page.WaitNavigationOrDelay(ctx, m.config.SubmitWait)
	m.state = LoginSubmitted
	return nil
}

// classify inspects the post-submit page and maps it to a terminal
// state.
func (m *loginMachine) classify(ctx context.Context, _ Credentials) error {
	pageText, err := m.page.Text(ctx)
	if err != nil {
		return fmt.Errorf("read post-submit page text: %w", err)
	}
	currentURL, err := m.page.Location(ctx)
	if err != nil {
		return fmt.Errorf("read post-submit location: %w", err)
	}
	passwordVisible, _ := m.page.Exists(ctx, `input[type="password"]`)

	return classifyOutcome(currentURL, pageText, passwordVisible)
}

// classifyOutcome maps the post-submit page state to Succeeded or a
// Failed reason. Explicit error phrases win over every success signal;
// after that, any single lenient signal is accepted as success;
// StillOnLoginPage fires only when the page is demonstrably still the
// login form.
func classifyOutcome(currentURL, pageText string, passwordVisible bool) error {
	lowerText := strings.ToLower(pageText)
	for _, phrase := range errorPhrases {
		if strings.Contains(lowerText, phrase) {
			return models.ErrInvalidCredentials
		}
	}

	// URL heuristics run against the path and query only. Hostnames
	// like portal.example.com carry success fragments on every page,
	// the login form included.
	lowerURL := strings.ToLower(currentURL)
	if u, err := url.Parse(currentURL); err == nil && u.Path != "" {
		lowerURL = strings.ToLower(u.RequestURI())
	}
	if !strings.Contains(lowerURL, "/login") {
		return nil
	}
	for _, fragment := range successURLFragments {
		if strings.Contains(lowerURL, fragment) {
			return nil
		}
	}
	for _, phrase := range successTextPhrases {
		if strings.Contains(lowerText, phrase) {
			return nil
		}
	}
	if len(pageText) > longPageTextThreshold && !strings.Contains(lowerText, "password") {
		return nil
	}

	if passwordVisible {
		return models.ErrStillOnLoginPage
	}

	// Still on a login-ish URL but the form is gone and nothing points
	// either way. The machine leans toward success rather than blocking
	// the pipeline on a weak signal.
	return nil
}
