package interactive

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// ErrSessionNotFound is returned for unknown or already-closed session
// ids.
var ErrSessionNotFound = fmt.Errorf("interactive session not found")

// Session is one remotely controlled browser page. Access is
// single-threaded through its own mutex; callers issuing concurrent
// actions against the same session serialize here.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`

	mu   sync.Mutex
	page interfaces.Page
}

// Manager owns the live interactive sessions. Sessions are created on
// demand and reclaimed either explicitly or by the idle sweep.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	launcher interfaces.Launcher
	logger   arbor.ILogger
}

// NewManager creates an empty session registry.
func NewManager(launcher interfaces.Launcher, logger arbor.ILogger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		launcher: launcher,
		logger:   logger,
	}
}

// Create starts a new browser session and returns its id.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	page, err := m.launcher.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch interactive browser: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		LastUsed:  now,
		page:      page,
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.logger.Info().Str("session_id", session.ID).Msg("Interactive session created")
	return session, nil
}

// Get returns the live session for the id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns a snapshot of the live sessions.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

// Close tears down one session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	session.mu.Lock()
	session.page.Close()
	session.mu.Unlock()

	m.logger.Info().Str("session_id", id).Msg("Interactive session closed")
	return nil
}

// CloseAll tears down every session, used at shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.mu.Lock()
		session.page.Close()
		session.mu.Unlock()
	}
}

// SweepIdle closes sessions whose last action is older than the
// timeout and returns how many were reclaimed.
func (m *Manager) SweepIdle(idleTimeout time.Duration) int {
	cutoff := time.Now().UTC().Add(-idleTimeout)

	m.mu.Lock()
	var stale []*Session
	for id, session := range m.sessions {
		session.mu.Lock()
		idle := session.LastUsed.Before(cutoff)
		session.mu.Unlock()
		if idle {
			stale = append(stale, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range stale {
		session.mu.Lock()
		session.page.Close()
		session.mu.Unlock()
		m.logger.Info().Str("session_id", session.ID).Msg("Idle interactive session reclaimed")
	}
	return len(stale)
}

// touch updates the idle clock. Callers hold session.mu.
func (s *Session) touch() {
	s.LastUsed = time.Now().UTC()
}

// Navigate loads a URL in the session's page.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.page.Navigate(ctx, url)
}

// Click clicks the first element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.page.Click(ctx, selector)
}

// Type clears the field and types the text.
func (s *Session) Type(ctx context.Context, selector, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.page.ClearAndType(ctx, selector, text, 0)
}

// Screenshot captures the current page as base64 PNG.
func (s *Session) Screenshot(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	shot, err := s.page.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(shot), nil
}

// Location returns the session page's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.page.Location(ctx)
}

// Text returns the visible page text.
func (s *Session) Text(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return s.page.Text(ctx)
}
