package models

import "time"

// JobRequest carries the parameters for one accept-job run.
// Immutable once accepted; the HTTP layer validates it and the
// processor treats it as read-only.
type JobRequest struct {
	JobID          string   `json:"job_id" validate:"required"`
	TaskID         string   `json:"task_id" validate:"required"`
	AcceptURL      string   `json:"accept_url" validate:"required,url"`
	PreferredSlots []string `json:"preferred_slots"` // ordered, earlier = higher priority
	PreferredDays  []string `json:"preferred_days"`  // full names or 3-letter abbreviations
	CallbackURL    string   `json:"callback_url" validate:"required,url"`
	Secret         string   `json:"secret"`
}

// JobResult is the callback payload produced exactly once per JobRequest.
// Selected* fields are set only on success; Error only on failure.
// ScreenshotBase64 is best-effort on both paths.
type JobResult struct {
	JobID               string    `json:"job_id" badgerhold:"index"`
	TaskID              string    `json:"task_id"`
	Success             bool      `json:"success"`
	SelectedSlot        string    `json:"selected_slot,omitempty"`
	SelectedDate        string    `json:"selected_date,omitempty"`
	SelectedDay         string    `json:"selected_day,omitempty"`
	ConfirmationMessage string    `json:"confirmation_message,omitempty"`
	ScreenshotBase64    string    `json:"screenshot_base64,omitempty"`
	AvailableSlots      []string  `json:"available_slots"`
	Error               string    `json:"error,omitempty"`
	Secret              string    `json:"secret,omitempty"`
	CompletedAt         time.Time `json:"completed_at"`
}

// ScrapeRequest carries the parameters for a synchronous scrape run.
// Username/password are optional per-request credentials used only when
// the session turns out to be expired.
type ScrapeRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Secret   string `json:"secret"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// ScrapeResult is the synchronous scrape response payload.
type ScrapeResult struct {
	Success     bool      `json:"success"`
	RawMarkdown string    `json:"raw_markdown,omitempty"`
	RawHTML     string    `json:"raw_html,omitempty"`
	JobLinks    []string  `json:"job_links"`
	ScrapedAt   time.Time `json:"scraped_at"`
	Error       string    `json:"error,omitempty"`
}

// LoginRequest carries explicit login credentials for POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Secret   string `json:"secret"`
}

// LoginResult is the synchronous login response payload.
type LoginResult struct {
	Success     bool      `json:"success"`
	PortalURL   string    `json:"portal_url"`
	HasTokens   bool      `json:"has_tokens"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Error       string    `json:"error,omitempty"`
}
