package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/arbor"
)

const defaultJobListLimit = 50

// JobHandler exposes stored job results for inspection.
type JobHandler struct {
	results interfaces.ResultStore
	logger  arbor.ILogger
}

func NewJobHandler(results interfaces.ResultStore) *JobHandler {
	return &JobHandler{
		results: results,
		logger:  common.GetLogger(),
	}
}

// ListJobsHandler returns recent job results, newest first. Supports a
// ?limit= query parameter.
func (h *JobHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := defaultJobListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	results, err := h.results.ListRecent(limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list job results")
		WriteError(w, http.StatusInternalServerError, "failed to list job results")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(results),
		"results": results,
	})
}
