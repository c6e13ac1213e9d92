package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// HoursHandler handles worked-hours reporting endpoints
type HoursHandler struct {
	service *service.HoursService
	logger  *logger.Logger
}

// NewHoursHandler creates a new hours handler
func NewHoursHandler(svc *service.HoursService, log *logger.Logger) *HoursHandler {
	return &HoursHandler{
		service: svc,
		logger:  log,
	}
}

// GetSummary compares estimated against actual hours for a date range.
// Both bounds are inclusive dates.
// GET /employees/{id}/hours?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *HoursHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.URL.Query().Get("from"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	to, err := parseDate(r.URL.Query().Get("to"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"), from, to.AddDate(0, 0, 1))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, summary)
}
