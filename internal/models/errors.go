package models

import "errors"

// Automation failure taxonomy. Pipelines wrap anything not listed here
// as a generic automation failure via fmt.Errorf.
var (
	// Login state machine failures.
	ErrFormNotFound       = errors.New("login form not found")
	ErrFieldsNotFound     = errors.New("login fields not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStillOnLoginPage   = errors.New("still on login page after submit")

	// Accept pipeline failures.
	ErrNoSlotsFound         = errors.New("no appointment slots found")
	ErrSubmitButtonNotFound = errors.New("submit button not found")

	// Session recovery failures.
	ErrNoCredentialsConfigured     = errors.New("session expired and no credentials configured")
	ErrSessionExpiredNoCredentials = errors.New("session expired and no credentials supplied")

	// Request-level failures.
	ErrMissingURL   = errors.New("missing url")
	ErrUnauthorized = errors.New("unauthorized")
)
