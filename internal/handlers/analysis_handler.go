package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/analysis"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// AnalysisHandler serves analysis and parameter endpoints
type AnalysisHandler struct {
	service        AnalysisService
	requestTimeout time.Duration
	logger         arbor.ILogger
}

// NewAnalysisHandler creates the handler. requestTimeout bounds each
// analyze call end to end; zero leaves only the client's own deadline.
func NewAnalysisHandler(service AnalysisService, requestTimeout time.Duration, logger arbor.ILogger) *AnalysisHandler {
	return &AnalysisHandler{
		service:        service,
		requestTimeout: requestTimeout,
		logger:         logger,
	}
}

// AnalyzeHandler handles POST /api/analyze
func (h *AnalysisHandler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var raw models.RawInputs
	if err := DecodeJSON(r, &raw, true); err != nil {
		h.logger.Debug().Err(err).Msg("Rejected analyze body")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	if h.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.requestTimeout)
		defer cancel()
	}

	result, err := h.service.Analyze(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrAnalysisTimeout):
			h.logger.Warn().Err(err).Dur("timeout", h.requestTimeout).Msg("Analysis request timed out")
			WriteError(w, http.StatusGatewayTimeout, "Analysis timed out")
		case errors.Is(err, context.Canceled):
			h.logger.Debug().Msg("Analysis request canceled by client")
			WriteError(w, http.StatusServiceUnavailable, "Request canceled")
		default:
			h.logger.Error().Err(err).Msg("Analysis failed")
			WriteError(w, http.StatusInternalServerError, "Analysis failed")
		}
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// HistoryHandler handles GET /api/analyses?limit=N
func (h *AnalysisHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := GetLimitParam(r, defaultHistoryLimit, maxHistoryLimit)
	results, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list analyses")
		WriteError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": results,
		"count":    len(results),
		"limit":    limit,
	})
}

// ParamsHandler handles GET /api/params
func (h *AnalysisHandler) ParamsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, h.service.Params())
}
