package accept

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/portal"
	"github.com/ternarybob/accipio/internal/services/session"
)

// authenticatedPageText is what the accept page shows to a logged-in
// worker. It has to read as authenticated to the session heuristics or
// the pipeline detours into login recovery.
const authenticatedPageText = "Available jobs ready for scheduling across your service area this week."

// acceptPage simulates the portal's accept page. Only the methods the
// pipeline touches are implemented.
type acceptPage struct {
	interfaces.Page

	texts     []string // returned by Text in order; last one repeats
	textIdx   int
	slots     []models.Slot
	selectors map[string]bool

	navigated []string
	clicked   []string
	closed    bool
}

func (p *acceptPage) Navigate(_ context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *acceptPage) Text(_ context.Context) (string, error) {
	if len(p.texts) == 0 {
		return "", nil
	}
	text := p.texts[p.textIdx]
	if p.textIdx < len(p.texts)-1 {
		p.textIdx++
	}
	return text, nil
}

func (p *acceptPage) Exists(_ context.Context, selector string) (bool, error) {
	return p.selectors[selector], nil
}

func (p *acceptPage) Click(_ context.Context, selector string) error {
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *acceptPage) ClickByText(_ context.Context, _ []string) (bool, error) {
	return false, nil
}

func (p *acceptPage) Evaluate(_ context.Context, _ string, out interface{}) error {
	*out.(*[]models.Slot) = p.slots
	return nil
}

func (p *acceptPage) Screenshot(_ context.Context) ([]byte, error) {
	return []byte("png-bytes"), nil
}

func (p *acceptPage) WaitNavigationOrDelay(_ context.Context, _ time.Duration) {}

func (p *acceptPage) Close() { p.closed = true }

type pageLauncher struct {
	page interfaces.Page
}

func (l *pageLauncher) NewPage(_ context.Context) (interfaces.Page, error) {
	return l.page, nil
}

// noopSessions satisfies SessionStore without caching anything.
type noopSessions struct{}

func (noopSessions) IsFresh() bool { return false }

func (noopSessions) Apply(_ context.Context, _ interfaces.Page) {}
func (noopSessions) Save(_ context.Context, _ interfaces.Page)  {}
func (noopSessions) Clear()                                     {}

// callbackRecorder is an httptest endpoint capturing delivered results.
type callbackRecorder struct {
	mu      sync.Mutex
	results []models.JobResult
	server  *httptest.Server
}

func newCallbackRecorder(t *testing.T) *callbackRecorder {
	rec := &callbackRecorder{}
	rec.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var result models.JobResult
		require.NoError(t, json.NewDecoder(r.Body).Decode(&result))
		rec.mu.Lock()
		rec.results = append(rec.results, result)
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(rec.server.Close)
	return rec
}

func (r *callbackRecorder) delivered() []models.JobResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.JobResult(nil), r.results...)
}

func newTestProcessor(page interfaces.Page, config common.PortalConfig) *Processor {
	logger := common.GetLogger()
	return NewProcessor(
		config,
		&pageLauncher{page: page},
		noopSessions{},
		portal.NewAuthenticator(config, logger),
		NewHTTPNotifier(5*time.Second, logger),
		nil,
		logger,
	)
}

func TestProcessAcceptsPreferredSlot(t *testing.T) {
	rec := newCallbackRecorder(t)
	require.False(t, session.LooksExpired(authenticatedPageText))

	page := &acceptPage{
		texts: []string{
			authenticatedPageText,
			"Your appointment is Confirmed, thank you",
		},
		slots: []models.Slot{
			{Value: "s1", Label: "Monday 02/12/2024 9:00am-11:00am", ElementID: "slot-1", GroupName: "slot"},
			{Value: "s2", Label: "Tuesday 02/13/2024 1:00pm-3:00pm", ElementID: "slot-2", GroupName: "slot"},
		},
		selectors: map[string]bool{`button[id*="accept"]`: true},
	}

	processor := newTestProcessor(page, common.PortalConfig{SubmitWait: time.Millisecond})
	processor.Process(context.Background(), &models.JobRequest{
		JobID:          "job-1",
		TaskID:         "task-1",
		AcceptURL:      "https://portal.example.com/accept/123",
		PreferredDays:  []string{"mon"},
		PreferredSlots: []string{"9:00am"},
		CallbackURL:    rec.server.URL,
		Secret:         "s3cret",
	})

	results := rec.delivered()
	require.Len(t, results, 1, "exactly one callback per job")

	result := results[0]
	assert.True(t, result.Success)
	assert.Equal(t, "job-1", result.JobID)
	assert.Equal(t, "task-1", result.TaskID)
	assert.Equal(t, "s3cret", result.Secret)
	assert.Equal(t, "Monday 02/12/2024 9:00am-11:00am", result.SelectedSlot)
	assert.Equal(t, "02/12/2024", result.SelectedDate)
	assert.Equal(t, "Monday", result.SelectedDay)
	assert.Equal(t, "confirmed", result.ConfirmationMessage)
	assert.Len(t, result.AvailableSlots, 2)
	assert.NotEmpty(t, result.ScreenshotBase64)
	assert.False(t, result.CompletedAt.IsZero())

	assert.Contains(t, page.clicked, "#slot-1")
	assert.True(t, page.closed)
}

func TestProcessExpiredSessionWithoutCredentials(t *testing.T) {
	rec := newCallbackRecorder(t)

	page := &acceptPage{
		texts: []string{"Session expired. Please log in to continue."},
	}

	processor := newTestProcessor(page, common.PortalConfig{})
	processor.Process(context.Background(), &models.JobRequest{
		JobID:       "job-2",
		TaskID:      "task-2",
		AcceptURL:   "https://portal.example.com/accept/456",
		CallbackURL: rec.server.URL,
	})

	results := rec.delivered()
	require.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, models.ErrNoCredentialsConfigured.Error())
	assert.Empty(t, result.SelectedSlot)
	assert.NotNil(t, result.AvailableSlots)
	assert.Empty(t, result.AvailableSlots)
}

func TestProcessNoSlots(t *testing.T) {
	rec := newCallbackRecorder(t)

	page := &acceptPage{
		texts: []string{authenticatedPageText},
		slots: nil,
	}

	processor := newTestProcessor(page, common.PortalConfig{})
	processor.Process(context.Background(), &models.JobRequest{
		JobID:       "job-3",
		TaskID:      "task-3",
		AcceptURL:   "https://portal.example.com/accept/789",
		CallbackURL: rec.server.URL,
	})

	results := rec.delivered()
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, models.ErrNoSlotsFound.Error())
}

// failingLauncher forces the earliest possible pipeline failure.
type failingLauncher struct{}

func (failingLauncher) NewPage(_ context.Context) (interfaces.Page, error) {
	panic("allocator exploded")
}

func TestProcessPanicStillDeliversCallback(t *testing.T) {
	rec := newCallbackRecorder(t)

	logger := common.GetLogger()
	config := common.PortalConfig{}
	processor := NewProcessor(
		config,
		failingLauncher{},
		noopSessions{},
		portal.NewAuthenticator(config, logger),
		NewHTTPNotifier(5*time.Second, logger),
		nil,
		logger,
	)

	processor.Process(context.Background(), &models.JobRequest{
		JobID:       "job-4",
		TaskID:      "task-4",
		AcceptURL:   "https://portal.example.com/accept/000",
		CallbackURL: rec.server.URL,
	})

	results := rec.delivered()
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, "internal error")
}
