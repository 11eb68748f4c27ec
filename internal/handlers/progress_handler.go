package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/moneypulse/internal/models"
	"github.com/ternarybob/moneypulse/internal/services/progress"
)

// ProgressHandler serves the daily deposit tracker
type ProgressHandler struct {
	service ProgressService
	logger  arbor.ILogger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(service ProgressService, logger arbor.ILogger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger,
	}
}

// progressResponse adds the derived fields clients display
type progressResponse struct {
	*models.Progress
	GoalMet   bool    `json:"goal_met"`
	Remaining float64 `json:"remaining"`
}

func newProgressResponse(p *models.Progress) progressResponse {
	return progressResponse{
		Progress:  p,
		GoalMet:   progress.GoalMet(*p),
		Remaining: progress.Remaining(*p),
	}
}

// GetProgressHandler handles GET /api/progress
func (h *ProgressHandler) GetProgressHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	p, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load progress")
		WriteError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	WriteJSON(w, http.StatusOK, newProgressResponse(p))
}

// DepositHandler handles POST /api/progress/deposit
func (h *ProgressHandler) DepositHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.DepositRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.service.Deposit(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to record deposit")
		return
	}

	WriteJSON(w, http.StatusOK, newProgressResponse(p))
}

// GoalHandler handles PUT /api/progress/goal
func (h *ProgressHandler) GoalHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPut) {
		return
	}

	var req models.GoalRequest
	if err := DecodeJSON(r, &req, false); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.service.SetGoal(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update goal")
		return
	}

	WriteJSON(w, http.StatusOK, newProgressResponse(p))
}

func (h *ProgressHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, progress.ErrInvalidAmount) {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error().Err(err).Msg(message)
	WriteError(w, http.StatusInternalServerError, message)
}
