package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
)

const jobsPathPrefix = "/api/jobs/"

// SchedulerHandler exposes background job status and manual runs
type SchedulerHandler struct {
	scheduler JobScheduler
	logger    arbor.ILogger
}

// NewSchedulerHandler creates a new scheduler handler
func NewSchedulerHandler(scheduler JobScheduler, logger arbor.ILogger) *SchedulerHandler {
	return &SchedulerHandler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// ListJobsHandler handles GET /api/jobs
func (h *SchedulerHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, h.scheduler.GetAllJobStatuses())
}

// RunJobHandler handles POST /api/jobs/{name}/run
func (h *SchedulerHandler) RunJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, jobsPathPrefix)
	name, ok := strings.CutSuffix(rest, "/run")
	if !ok || name == "" || strings.Contains(name, "/") {
		WriteError(w, http.StatusNotFound, "Unknown job route")
		return
	}

	if err := h.scheduler.TriggerJob(name); err != nil {
		h.logger.Warn().Err(err).Str("job_name", name).Msg("Manual job run failed")
		status := http.StatusConflict
		if strings.HasSuffix(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}

	WriteSuccess(w, "Job "+name+" completed")
}
