package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/accipio/internal/services/scrape"
	"github.com/ternarybob/arbor"
)

// ScrapeHandler serves synchronous page scrapes.
type ScrapeHandler struct {
	service *scrape.Service
	secret  string
	logger  arbor.ILogger
}

func NewScrapeHandler(service *scrape.Service, secret string) *ScrapeHandler {
	return &ScrapeHandler{
		service: service,
		secret:  secret,
		logger:  common.GetLogger(),
	}
}

// ScrapeHandler runs the scrape within the request lifetime and returns
// the content inline.
func (h *ScrapeHandler) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var request models.ScrapeRequest
	if err := DecodeAndValidate(r, &request); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !RequireSecret(w, h.secret, request.Secret) {
		return
	}

	result, err := h.service.Scrape(r.Context(), &request)
	if err != nil {
		h.logger.Warn().Err(err).Str("url", request.URL).Msg("Scrape failed")

		status := http.StatusInternalServerError
		if errors.Is(err, models.ErrMissingURL) {
			status = http.StatusBadRequest
		}
		WriteJSON(w, status, &models.ScrapeResult{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
