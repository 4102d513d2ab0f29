package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/accept"
	"github.com/ternarybob/arbor"
)

// AcceptHandler receives job requests and runs them asynchronously.
// The HTTP response only acknowledges receipt; the outcome travels via
// the callback URL.
type AcceptHandler struct {
	processor *accept.Processor
	secret    string
	logger    arbor.ILogger
}

func NewAcceptHandler(processor *accept.Processor, secret string) *AcceptHandler {
	return &AcceptHandler{
		processor: processor,
		secret:    secret,
		logger:    common.GetLogger(),
	}
}

// AcceptJobHandler validates the request, acknowledges immediately, and
// hands the job to a background goroutine.
func (h *AcceptHandler) AcceptJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var request models.JobRequest
	if err := DecodeAndValidate(r, &request); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !RequireSecret(w, h.secret, request.Secret) {
		return
	}

	h.logger.Info().
		Str("job_id", request.JobID).
		Str("task_id", request.TaskID).
		Str("accept_url", request.AcceptURL).
		Msg("Job accepted for processing")

	// Detached from the request context: the job outlives this HTTP
	// exchange.
	go h.processor.Process(context.Background(), &request)

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "processing",
		"job_id":  request.JobID,
		"task_id": request.TaskID,
	})
}
