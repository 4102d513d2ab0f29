package interactive

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
)

type stubPage struct {
	interfaces.Page
	navigated []string
	closed    bool
}

func (p *stubPage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *stubPage) Close() { p.closed = true }

type stubLauncher struct {
	pages []*stubPage
}

func (l *stubLauncher) NewPage(_ context.Context) (interfaces.Page, error) {
	page := &stubPage{}
	l.pages = append(l.pages, page)
	return page, nil
}

func TestManagerLifecycle(t *testing.T) {
	launcher := &stubLauncher{}
	manager := NewManager(launcher, common.GetLogger())

	session, err := manager.Create(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)

	got, err := manager.Get(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, got)

	require.NoError(t, session.Navigate(context.Background(), "https://portal.example.com/jobs"))
	assert.Equal(t, []string{"https://portal.example.com/jobs"}, launcher.pages[0].navigated)

	require.NoError(t, manager.Close(session.ID))
	assert.True(t, launcher.pages[0].closed)

	_, err = manager.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, manager.Close(session.ID), ErrSessionNotFound)
}

func TestSweepIdleReclaimsOnlyStaleSessions(t *testing.T) {
	launcher := &stubLauncher{}
	manager := NewManager(launcher, common.GetLogger())

	stale, err := manager.Create(context.Background())
	require.NoError(t, err)
	fresh, err := manager.Create(context.Background())
	require.NoError(t, err)

	stale.mu.Lock()
	stale.LastUsed = time.Now().UTC().Add(-time.Hour)
	stale.mu.Unlock()

	reclaimed := manager.SweepIdle(10 * time.Minute)
	assert.Equal(t, 1, reclaimed)

	_, err = manager.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = manager.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestActionsRefreshIdleClock(t *testing.T) {
	launcher := &stubLauncher{}
	manager := NewManager(launcher, common.GetLogger())

	session, err := manager.Create(context.Background())
	require.NoError(t, err)

	session.mu.Lock()
	session.LastUsed = time.Now().UTC().Add(-time.Hour)
	session.mu.Unlock()

	require.NoError(t, session.Navigate(context.Background(), "https://portal.example.com/"))

	assert.Equal(t, 0, manager.SweepIdle(10*time.Minute), "recent action keeps the session alive")
}
