package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/services/interactive"
	"github.com/ternarybob/arbor"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler drives one interactive browser session per
// connection. Commands arrive as JSON frames and execute in order; the
// session is torn down when the connection closes unless it was
// attached to a pre-existing session.
type WebSocketHandler struct {
	manager *interactive.Manager
	secret  string
	logger  arbor.ILogger
}

func NewWebSocketHandler(manager *interactive.Manager, secret string) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		secret:  secret,
		logger:  common.GetLogger(),
	}
}

// wsCommand is one inbound control frame.
type wsCommand struct {
	Action   string `json:"action"` // navigate, click, type, screenshot, text, location, close
	URL      string `json:"url,omitempty"`
	Selector string `json:"selector,omitempty"`
	Text     string `json:"text,omitempty"`
}

// wsReply is the response frame for one command.
type wsReply struct {
	Action           string `json:"action"`
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
	SessionID        string `json:"session_id,omitempty"`
	URL              string `json:"url,omitempty"`
	Text             string `json:"text,omitempty"`
	ScreenshotBase64 string `json:"screenshot_base64,omitempty"`
}

// HandleWebSocket upgrades the connection and runs the command loop.
// An existing session can be attached via ?session_id=; otherwise a
// fresh session is created and owned by the connection.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" && r.URL.Query().Get("secret") != h.secret {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	session, owned, err := h.attachSession(r)
	if err != nil {
		conn.WriteJSON(wsReply{Action: "attach", Success: false, Error: err.Error()})
		return
	}
	if owned {
		defer h.manager.Close(session.ID)
	}

	conn.WriteJSON(wsReply{Action: "attach", Success: true, SessionID: session.ID})
	h.logger.Info().Str("session_id", session.ID).Bool("owned", owned).Msg("WebSocket session attached")

	for {
		var cmd wsCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			h.logger.Debug().Err(err).Str("session_id", session.ID).Msg("WebSocket connection closed")
			return
		}
		if cmd.Action == "close" {
			conn.WriteJSON(wsReply{Action: "close", Success: true})
			return
		}
		conn.WriteJSON(h.execute(r.Context(), session, cmd))
	}
}

func (h *WebSocketHandler) attachSession(r *http.Request) (*interactive.Session, bool, error) {
	if id := r.URL.Query().Get("session_id"); id != "" {
		session, err := h.manager.Get(id)
		return session, false, err
	}
	session, err := h.manager.Create(r.Context())
	return session, true, err
}

func (h *WebSocketHandler) execute(ctx context.Context, session *interactive.Session, cmd wsCommand) wsReply {
	reply := wsReply{Action: cmd.Action}

	var err error
	switch cmd.Action {
	case "navigate":
		err = session.Navigate(ctx, cmd.URL)
	case "click":
		err = session.Click(ctx, cmd.Selector)
	case "type":
		err = session.Type(ctx, cmd.Selector, cmd.Text)
	case "screenshot":
		reply.ScreenshotBase64, err = session.Screenshot(ctx)
	case "text":
		reply.Text, err = session.Text(ctx)
	case "location":
		reply.URL, err = session.Location(ctx)
	default:
		reply.Error = "unknown action"
		return reply
	}

	if err != nil {
		reply.Error = err.Error()
		return reply
	}
	reply.Success = true
	return reply
}
