package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Core job pipeline
	mux.HandleFunc("/accept", s.app.AcceptHandler.AcceptJobHandler) // POST - async, result via callback
	mux.HandleFunc("/scrape", s.app.ScrapeHandler.ScrapeHandler)    // POST - synchronous page scrape
	mux.HandleFunc("/login", s.app.LoginHandler.LoginHandler)       // POST - explicit session refresh

	// Service status
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/version", s.app.APIHandler.VersionHandler)

	// Stored job results
	mux.HandleFunc("/jobs", s.app.JobHandler.ListJobsHandler) // GET - recent results

	// Interactive browser sessions: collection routes plus per-session
	// actions under the id path, and the WebSocket control channel
	mux.HandleFunc("/api/sessions", s.app.SessionHandler.SessionsHandler)
	mux.HandleFunc("/api/sessions/", s.app.SessionHandler.SessionRoutesHandler)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// JSON 404 for everything else
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
