package accept

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/portal"
	"github.com/ternarybob/accipio/internal/services/session"
	"github.com/ternarybob/arbor"
)

// confirmationPhrases are soft success signals scanned on the
// post-submit page. Their absence never fails the job; the portal's
// confirmation pages are too inconsistent to require one.
var confirmationPhrases = []string{"confirmed", "accepted", "scheduled", "success", "thank you"}

// acceptTextPhrases is the text fallback for the accept control when no
// selector in the chain matches.
var acceptTextPhrases = []string{"accept", "submit"}

// Processor runs the accept-job pipeline. Each job gets its own browser
// page; the session cache and authenticator are shared across jobs.
type Processor struct {
	config   common.PortalConfig
	launcher interfaces.Launcher
	sessions interfaces.SessionStore
	auth     *portal.Authenticator
	notifier interfaces.Notifier
	results  interfaces.ResultStore
	logger   arbor.ILogger
}

// NewProcessor wires the accept pipeline.
func NewProcessor(
	config common.PortalConfig,
	launcher interfaces.Launcher,
	sessions interfaces.SessionStore,
	auth *portal.Authenticator,
	notifier interfaces.Notifier,
	results interfaces.ResultStore,
	logger arbor.ILogger,
) *Processor {
	return &Processor{
		config:   config,
		launcher: launcher,
		sessions: sessions,
		auth:     auth,
		notifier: notifier,
		results:  results,
		logger:   logger,
	}
}

// Process runs one job end to end and delivers exactly one callback,
// whatever happens inside the pipeline. Panics are converted into a
// failure result rather than losing the callback.
func (p *Processor) Process(ctx context.Context, request *models.JobRequest) {
	result := &models.JobResult{
		JobID:          request.JobID,
		TaskID:         request.TaskID,
		Secret:         request.Secret,
		AvailableSlots: []string{},
	}

	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Error = fmt.Sprintf("internal error: %v", r)
			p.logger.Error().Str("job_id", request.JobID).Msgf("Accept pipeline panicked: %v", r)
		}
		p.finish(request, result)
	}()

	p.execute(ctx, request, result)
}

// finish persists and delivers the result. The store write is
// best-effort; the callback is the authoritative channel.
func (p *Processor) finish(request *models.JobRequest, result *models.JobResult) {
	result.CompletedAt = time.Now().UTC()

	if p.results != nil {
		if err := p.results.SaveResult(result); err != nil {
			p.logger.Warn().Err(err).Str("job_id", request.JobID).Msg("Failed to store job result")
		}
	}

	if err := p.notifier.Notify(request.CallbackURL, result); err != nil {
		p.logger.Error().Err(err).
			Str("job_id", request.JobID).
			Str("callback_url", request.CallbackURL).
			Msg("Callback delivery failed")
	}
}

func (p *Processor) execute(ctx context.Context, request *models.JobRequest, result *models.JobResult) {
	page, err := p.launcher.NewPage(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("launch browser: %v", err)
		return
	}
	defer page.Close()

	if err := p.run(ctx, page, request, result); err != nil {
		result.Success = false
		result.Error = err.Error()
	}

	// Screenshot on both paths; failures leave the field empty.
	p.attachScreenshot(ctx, page, result)
}

func (p *Processor) run(ctx context.Context, page interfaces.Page, request *models.JobRequest, result *models.JobResult) error {
	p.sessions.Apply(ctx, page)

	if err := page.Navigate(ctx, request.AcceptURL); err != nil {
		return fmt.Errorf("navigate to accept page: %w", err)
	}

	if err := p.ensureAuthenticated(ctx, page, request.AcceptURL); err != nil {
		return err
	}

	slots, err := portal.DiscoverSlots(ctx, page)
	if err != nil {
		return fmt.Errorf("discover slots: %w", err)
	}
	if len(slots) == 0 {
		return models.ErrNoSlotsFound
	}
	for _, slot := range slots {
		result.AvailableSlots = append(result.AvailableSlots, slot.Label)
	}

	best, score, err := portal.SelectBestSlot(slots, request.PreferredDays, request.PreferredSlots)
	if err != nil {
		return err
	}
	p.logger.Info().
		Str("job_id", request.JobID).
		Str("slot", best.Label).
		Int("score", score).
		Int("available", len(slots)).
		Msg("Slot selected")

	if err := p.selectSlot(ctx, page, best); err != nil {
		return fmt.Errorf("click slot %q: %w", best.Label, err)
	}

	if err := p.submitAccept(ctx, page); err != nil {
		return err
	}
	page.WaitNavigationOrDelay(ctx, p.config.SubmitWait)

	result.Success = true
	result.SelectedSlot = best.Label
	parsed := portal.ParseSlotLabel(best.Label)
	result.SelectedDate = parsed.Date
	result.SelectedDay = parsed.DayOfWeek
	result.ConfirmationMessage = p.findConfirmation(ctx, page)

	return nil
}

// ensureAuthenticated recovers an expired session in place: log in with
// the configured credentials, persist the fresh cookies, then return to
// the target URL.
func (p *Processor) ensureAuthenticated(ctx context.Context, page interfaces.Page, targetURL string) error {
	pageText, err := page.Text(ctx)
	if err != nil {
		return fmt.Errorf("read page text: %w", err)
	}
	if !session.LooksExpired(pageText) {
		return nil
	}

	if p.config.Username == "" || p.config.Password == "" {
		return models.ErrNoCredentialsConfigured
	}

	p.logger.Info().Msg("Session expired, recovering with configured credentials")
	creds := portal.Credentials{Username: p.config.Username, Password: p.config.Password}
	if err := p.auth.Login(ctx, page, creds); err != nil {
		return fmt.Errorf("session recovery login: %w", err)
	}
	p.sessions.Save(ctx, page)

	if err := page.Navigate(ctx, targetURL); err != nil {
		return fmt.Errorf("return to accept page after login: %w", err)
	}
	return nil
}

// selectSlot clicks the chosen radio, preferring its DOM id and falling
// back to a name/value attribute selector.
func (p *Processor) selectSlot(ctx context.Context, page interfaces.Page, slot models.Slot) error {
	if slot.ElementID != "" {
		if err := page.Click(ctx, "#"+slot.ElementID); err == nil {
			return nil
		}
	}
	selector := fmt.Sprintf(`input[type="radio"][name=%s][value=%s]`,
		strconv.Quote(slot.GroupName), strconv.Quote(slot.Value))
	return page.Click(ctx, selector)
}

// submitAccept walks the accept-control fallback chain.
func (p *Processor) submitAccept(ctx context.Context, page interfaces.Page) error {
	if sel, ok := portal.Probe(ctx, page, portal.AcceptButtonSelectors); ok {
		if err := page.Click(ctx, sel); err == nil {
			return nil
		}
	}
	if ok, err := page.ClickByText(ctx, acceptTextPhrases); err == nil && ok {
		return nil
	}
	return models.ErrSubmitButtonNotFound
}

// findConfirmation scans the post-submit page for a confirmation
// phrase. Best-effort; an empty message is a valid outcome.
func (p *Processor) findConfirmation(ctx context.Context, page interfaces.Page) string {
	pageText, err := page.Text(ctx)
	if err != nil {
		return ""
	}
	lower := strings.ToLower(pageText)
	for _, phrase := range confirmationPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

func (p *Processor) attachScreenshot(ctx context.Context, page interfaces.Page, result *models.JobResult) {
	shot, err := page.Screenshot(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Screenshot capture failed")
		return
	}
	result.ScreenshotBase64 = base64.StdEncoding.EncodeToString(shot)
}
