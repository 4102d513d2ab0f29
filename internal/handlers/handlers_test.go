package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/accept"
	"github.com/ternarybob/accipio/internal/services/portal"
)

type staleSessions struct{}

func (staleSessions) IsFresh() bool { return false }

func (staleSessions) Apply(_ context.Context, _ interfaces.Page) {}
func (staleSessions) Save(_ context.Context, _ interfaces.Page)  {}
func (staleSessions) Clear()                                     {}

// brokenLauncher fails every page launch, pushing the accept pipeline
// straight to its failure callback.
type brokenLauncher struct{}

func (brokenLauncher) NewPage(_ context.Context) (interfaces.Page, error) {
	return nil, fmt.Errorf("chrome unavailable")
}

func newAcceptHandler(secret string) *AcceptHandler {
	logger := common.GetLogger()
	config := common.PortalConfig{}
	processor := accept.NewProcessor(
		config,
		brokenLauncher{},
		staleSessions{},
		portal.NewAuthenticator(config, logger),
		accept.NewHTTPNotifier(5*time.Second, logger),
		nil,
		logger,
	)
	return NewAcceptHandler(processor, secret)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAcceptJobHandlerRejectsBadSecret(t *testing.T) {
	handler := newAcceptHandler("top-secret")

	body := `{"job_id":"j1","task_id":"t1","accept_url":"https://portal.example.com/accept/1","callback_url":"https://caller.example.com/cb","secret":"wrong"}`
	rec := postJSON(t, handler.AcceptJobHandler, "/accept", body)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAcceptJobHandlerRejectsInvalidPayload(t *testing.T) {
	handler := newAcceptHandler("")

	tests := []struct {
		name string
		body string
	}{
		{"missing job_id", `{"task_id":"t1","accept_url":"https://a.example.com/x","callback_url":"https://b.example.com/cb"}`},
		{"accept_url not a url", `{"job_id":"j1","task_id":"t1","accept_url":"not a url","callback_url":"https://b.example.com/cb"}`},
		{"malformed json", `{"job_id":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, handler.AcceptJobHandler, "/accept", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAcceptJobHandlerAcknowledgesImmediately(t *testing.T) {
	delivered := make(chan models.JobResult, 1)
	callback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var result models.JobResult
		require.NoError(t, json.NewDecoder(r.Body).Decode(&result))
		delivered <- result
		w.WriteHeader(http.StatusOK)
	}))
	defer callback.Close()

	handler := newAcceptHandler("")
	body := fmt.Sprintf(`{"job_id":"j1","task_id":"t1","accept_url":"https://portal.example.com/accept/1","callback_url":"%s"}`, callback.URL)
	rec := postJSON(t, handler.AcceptJobHandler, "/accept", body)

	require.Equal(t, http.StatusOK, rec.Code)
	var ack map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "processing", ack["status"])
	assert.Equal(t, "j1", ack["job_id"])
	assert.Equal(t, "t1", ack["task_id"])

	select {
	case result := <-delivered:
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "chrome unavailable")
	case <-time.After(5 * time.Second):
		t.Fatal("callback was never delivered")
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewAPIHandler(staleSessions{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["session_fresh"])

	stamp, ok := body["timestamp"].(string)
	require.True(t, ok, "timestamp should be present")
	_, err := time.Parse(time.RFC3339, stamp)
	assert.NoError(t, err)
}

func TestHealthHandlerRejectsPost(t *testing.T) {
	handler := NewAPIHandler(staleSessions{})

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
