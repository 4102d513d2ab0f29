package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/services/interactive"
	"github.com/ternarybob/arbor"
)

// SessionHandler exposes interactive browser sessions over REST. The
// shared secret travels in the X-Accipio-Secret header because these
// routes have no JSON body on every call.
type SessionHandler struct {
	manager *interactive.Manager
	secret  string
	logger  arbor.ILogger
}

func NewSessionHandler(manager *interactive.Manager, secret string) *SessionHandler {
	return &SessionHandler{
		manager: manager,
		secret:  secret,
		logger:  common.GetLogger(),
	}
}

type sessionActionRequest struct {
	URL      string `json:"url,omitempty"`
	Selector string `json:"selector,omitempty"`
	Text     string `json:"text,omitempty"`
}

type sessionInfo struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	LastUsed  string `json:"last_used"`
}

func toSessionInfo(s *interactive.Session) sessionInfo {
	return sessionInfo{
		ID:        s.ID,
		CreatedAt: s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		LastUsed:  s.LastUsed.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// SessionsHandler serves the collection routes: POST creates a session,
// GET lists the live ones.
func (h *SessionHandler) SessionsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireSecret(w, h.secret, r.Header.Get("X-Accipio-Secret")) {
		return
	}

	switch r.Method {
	case http.MethodPost:
		session, err := h.manager.Create(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to create interactive session")
			WriteError(w, http.StatusInternalServerError, "failed to create session")
			return
		}
		WriteJSON(w, http.StatusCreated, toSessionInfo(session))

	case http.MethodGet:
		sessions := h.manager.List()
		infos := make([]sessionInfo, 0, len(sessions))
		for _, s := range sessions {
			infos = append(infos, toSessionInfo(s))
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"count":    len(infos),
			"sessions": infos,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// SessionRoutesHandler serves per-session routes:
//
//	DELETE /api/sessions/{id}
//	POST   /api/sessions/{id}/navigate
//	POST   /api/sessions/{id}/click
//	POST   /api/sessions/{id}/type
//	GET    /api/sessions/{id}/screenshot
func (h *SessionHandler) SessionRoutesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireSecret(w, h.secret, r.Header.Get("X-Accipio-Secret")) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(strings.Trim(rest, "/"), "/", 2)
	id := parts[0]
	if id == "" {
		WriteError(w, http.StatusBadRequest, "session id is required")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	if action == "" && r.Method == http.MethodDelete {
		if err := h.manager.Close(id); err != nil {
			h.writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "closed", "id": id})
		return
	}

	session, err := h.manager.Get(id)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}

	switch action {
	case "navigate":
		if !RequireMethod(w, r, "POST") {
			return
		}
		var req sessionActionRequest
		if err := DecodeAndValidate(r, &req); err != nil || req.URL == "" {
			WriteError(w, http.StatusBadRequest, "url is required")
			return
		}
		if err := session.Navigate(r.Context(), req.URL); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case "click":
		if !RequireMethod(w, r, "POST") {
			return
		}
		var req sessionActionRequest
		if err := DecodeAndValidate(r, &req); err != nil || req.Selector == "" {
			WriteError(w, http.StatusBadRequest, "selector is required")
			return
		}
		if err := session.Click(r.Context(), req.Selector); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case "type":
		if !RequireMethod(w, r, "POST") {
			return
		}
		var req sessionActionRequest
		if err := DecodeAndValidate(r, &req); err != nil || req.Selector == "" {
			WriteError(w, http.StatusBadRequest, "selector is required")
			return
		}
		if err := session.Type(r.Context(), req.Selector, req.Text); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})

	case "screenshot":
		if !RequireMethod(w, r, "GET") {
			return
		}
		shot, err := session.Screenshot(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		url, _ := session.Location(r.Context())
		WriteJSON(w, http.StatusOK, map[string]string{
			"screenshot_base64": shot,
			"url":               url,
		})

	default:
		WriteError(w, http.StatusNotFound, "unknown session action")
	}
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, interactive.ErrSessionNotFound) {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}
