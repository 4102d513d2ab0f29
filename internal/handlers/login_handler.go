package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/session"
	"github.com/ternarybob/arbor"
)

// LoginHandler performs explicit session refreshes.
type LoginHandler struct {
	refresher *session.Refresher
	secret    string
	logger    arbor.ILogger
}

func NewLoginHandler(refresher *session.Refresher, secret string) *LoginHandler {
	return &LoginHandler{
		refresher: refresher,
		secret:    secret,
		logger:    common.GetLogger(),
	}
}

// LoginHandler logs in with the supplied credentials and caches the
// resulting session cookies.
func (h *LoginHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var request models.LoginRequest
	if err := DecodeAndValidate(r, &request); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !RequireSecret(w, h.secret, request.Secret) {
		return
	}

	result, err := h.refresher.Refresh(r.Context(), request.Username, request.Password)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Login refresh failed")

		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrNoCredentialsConfigured) {
			status = http.StatusBadRequest
		}
		WriteJSON(w, status, &models.LoginResult{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnauthorized
	}
	WriteJSON(w, status, result)
}
