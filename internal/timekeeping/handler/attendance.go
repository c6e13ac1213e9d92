package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// AttendanceHandler handles attendance punch endpoints
type AttendanceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  log,
	}
}

// PunchRequest is the request body for check-in and check-out punches.
// RecordedAt defaults to the current time; a set value marks a manual
// (back-dated) punch entered by an administrator.
type PunchRequest struct {
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
	DeviceID   *string    `json:"device_id,omitempty"`
	Location   *string    `json:"location,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

func (h *AttendanceHandler) punchFromRequest(r *http.Request) (*repository.AttendanceRecord, error) {
	var req PunchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return nil, err
	}

	rec := &repository.AttendanceRecord{
		EmployeeID: chi.URLParam(r, "id"),
		DeviceID:   req.DeviceID,
		Location:   req.Location,
		Notes:      req.Notes,
		CreatedBy:  actorID(r),
	}
	if req.RecordedAt != nil {
		rec.RecordedAt = req.RecordedAt.UTC()
		rec.IsManual = true
	}
	return rec, nil
}

// CheckIn records a check-in punch
// POST /employees/{id}/check-in
func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	rec, err := h.punchFromRequest(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CheckIn(r.Context(), rec); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, rec)
}

// CheckOut records a check-out punch
// POST /employees/{id}/check-out
func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	rec, err := h.punchFromRequest(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.CheckOut(r.Context(), rec); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, rec)
}

// ListRecords lists an employee's punches within a date range.
// Both bounds are inclusive dates.
// GET /employees/{id}/attendance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *AttendanceHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
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
	if to.Before(from) {
		httputil.Error(w, errors.BadRequest("to must not be before from"))
		return
	}

	records, err := h.service.ListRecords(r.Context(), chi.URLParam(r, "id"), from, to.AddDate(0, 0, 1))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, records)
}

// GetStatus reports whether the employee currently has an open check-in
// GET /employees/{id}/attendance/status
func (h *AttendanceHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, status)
}
