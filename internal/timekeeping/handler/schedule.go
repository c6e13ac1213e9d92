package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// ScheduleHandler handles schedule administration endpoints
type ScheduleHandler struct {
	service *service.ScheduleService
	logger  *logger.Logger
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(svc *service.ScheduleService, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		service: svc,
		logger:  log,
	}
}

// parseDate parses a YYYY-MM-DD query or path value.
func parseDate(value string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, errors.BadRequest("invalid date, expected YYYY-MM-DD")
	}
	return d, nil
}

func parseIntParam(r *http.Request, name string) (int, error) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, errors.BadRequest("invalid " + name)
	}
	return v, nil
}

// ============================================================================
// BASE SCHEDULES
// ============================================================================

// ListBaseSchedules lists an employee's recurring weekday schedules
// GET /employees/{id}/base-schedules
func (h *ScheduleHandler) ListBaseSchedules(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	schedules, err := h.service.ListBaseSchedules(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, schedules)
}

// SetBaseSchedule creates or replaces the schedule for one weekday
// PUT /employees/{id}/base-schedules/{weekday}
func (h *ScheduleHandler) SetBaseSchedule(w http.ResponseWriter, r *http.Request) {
	weekday, err := parseIntParam(r, "weekday")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var bs repository.BaseSchedule
	if err := httputil.DecodeJSON(r, &bs); err != nil {
		httputil.Error(w, err)
		return
	}
	bs.EmployeeID = chi.URLParam(r, "id")
	bs.Weekday = weekday

	if err := h.service.SetBaseSchedule(r.Context(), &bs); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, bs)
}

// ClearBaseSchedule removes the schedule for one weekday
// DELETE /employees/{id}/base-schedules/{weekday}
func (h *ScheduleHandler) ClearBaseSchedule(w http.ResponseWriter, r *http.Request) {
	weekday, err := parseIntParam(r, "weekday")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.ClearBaseSchedule(r.Context(), chi.URLParam(r, "id"), weekday); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ============================================================================
// TEMPLATES
// ============================================================================

// ListTemplates lists schedule templates
// GET /templates
func (h *ScheduleHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	templates, total, err := h.service.ListTemplates(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, templates, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// CreateTemplate creates a schedule template with its weekday rows
// POST /templates
func (h *ScheduleHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl repository.ScheduleTemplate
	if err := httputil.DecodeJSON(r, &tpl); err != nil {
		httputil.Error(w, err)
		return
	}
	tpl.CreatedBy = actorID(r)

	if err := h.service.CreateTemplate(r.Context(), &tpl); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, tpl)
}

// GetTemplate gets a template including its weekday rows
// GET /templates/{id}
func (h *ScheduleHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.service.GetTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tpl)
}

// UpdateTemplate replaces a template's metadata and weekday rows
// PUT /templates/{id}
func (h *ScheduleHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var tpl repository.ScheduleTemplate
	if err := httputil.DecodeJSON(r, &tpl); err != nil {
		httputil.Error(w, err)
		return
	}
	tpl.ID = chi.URLParam(r, "id")

	if err := h.service.UpdateTemplate(r.Context(), &tpl); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, tpl)
}

// DeleteTemplate soft deletes a template
// DELETE /templates/{id}
func (h *ScheduleHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ============================================================================
// WEEKLY ASSIGNMENTS
// ============================================================================

// AssignWeekRequest is the request body for assigning a template to a week
type AssignWeekRequest struct {
	TemplateID string `json:"template_id" validate:"required,uuid"`
}

// AssignWeek assigns a template to an employee for one ISO week
// PUT /employees/{id}/weeks/{year}/{week}
func (h *ScheduleHandler) AssignWeek(w http.ResponseWriter, r *http.Request) {
	year, err := parseIntParam(r, "year")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	week, err := parseIntParam(r, "week")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req AssignWeekRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	assignment := &repository.WeeklyScheduleAssignment{
		EmployeeID: chi.URLParam(r, "id"),
		TemplateID: req.TemplateID,
		Year:       year,
		WeekNumber: week,
		CreatedBy:  actorID(r),
	}

	if err := h.service.AssignWeek(r.Context(), assignment); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, assignment)
}

// GetWeekAssignment gets the assignment for one ISO week
// GET /employees/{id}/weeks/{year}/{week}
func (h *ScheduleHandler) GetWeekAssignment(w http.ResponseWriter, r *http.Request) {
	year, err := parseIntParam(r, "year")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	week, err := parseIntParam(r, "week")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	assignment, err := h.service.GetWeekAssignment(r.Context(), chi.URLParam(r, "id"), year, week)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if assignment == nil {
		httputil.Error(w, errors.NotFound("weekly schedule assignment"))
		return
	}

	httputil.JSON(w, http.StatusOK, assignment)
}

// ListWeekAssignments lists an employee's assignments for one year
// GET /employees/{id}/weeks?year=2024
func (h *ScheduleHandler) ListWeekAssignments(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid year"))
		return
	}

	assignments, err := h.service.ListWeekAssignments(r.Context(), chi.URLParam(r, "id"), year)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, assignments)
}

// UnassignWeek removes the assignment for one ISO week
// DELETE /employees/{id}/weeks/{year}/{week}
func (h *ScheduleHandler) UnassignWeek(w http.ResponseWriter, r *http.Request) {
	year, err := parseIntParam(r, "year")
	if err != nil {
		httputil.Error(w, err)
		return
	}
	week, err := parseIntParam(r, "week")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.service.UnassignWeek(r.Context(), chi.URLParam(r, "id"), year, week); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ============================================================================
// DAILY EXCEPTIONS
// ============================================================================

// CreateException creates a one-off schedule override for a date
// POST /employees/{id}/exceptions
func (h *ScheduleHandler) CreateException(w http.ResponseWriter, r *http.Request) {
	var ex repository.DailyException
	if err := httputil.DecodeJSON(r, &ex); err != nil {
		httputil.Error(w, err)
		return
	}
	ex.EmployeeID = chi.URLParam(r, "id")
	ex.CreatedBy = actorID(r)

	if err := h.service.CreateException(r.Context(), &ex); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, ex)
}

// ListExceptions lists an employee's exceptions within a date range
// GET /employees/{id}/exceptions?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ScheduleHandler) ListExceptions(w http.ResponseWriter, r *http.Request) {
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

	exceptions, err := h.service.ListExceptions(r.Context(), chi.URLParam(r, "id"), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, exceptions)
}

// GetException gets a daily exception by ID
// GET /exceptions/{id}
func (h *ScheduleHandler) GetException(w http.ResponseWriter, r *http.Request) {
	ex, err := h.service.GetException(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ex)
}

// UpdateException updates a daily exception
// PUT /exceptions/{id}
func (h *ScheduleHandler) UpdateException(w http.ResponseWriter, r *http.Request) {
	var ex repository.DailyException
	if err := httputil.DecodeJSON(r, &ex); err != nil {
		httputil.Error(w, err)
		return
	}
	ex.ID = chi.URLParam(r, "id")

	if err := h.service.UpdateException(r.Context(), &ex); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ex)
}

// DeleteException deletes a daily exception
// DELETE /exceptions/{id}
func (h *ScheduleHandler) DeleteException(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteException(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ============================================================================
// EFFECTIVE SCHEDULE
// ============================================================================

// GetEffectiveSchedule resolves the schedule for one date
// GET /employees/{id}/effective-schedule?date=YYYY-MM-DD
func (h *ScheduleHandler) GetEffectiveSchedule(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	es, err := h.service.GetEffectiveSchedule(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, es)
}

// GetEffectiveWeek resolves the schedule for each day of one ISO week
// GET /employees/{id}/effective-week?year=2024&week=36
func (h *ScheduleHandler) GetEffectiveWeek(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid year"))
		return
	}
	week, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil {
		httputil.Error(w, errors.BadRequest("invalid week"))
		return
	}

	days, err := h.service.GetEffectiveWeek(r.Context(), chi.URLParam(r, "id"), year, week)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, days)
}
