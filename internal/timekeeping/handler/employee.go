package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// EmployeeHandler handles employee endpoints
type EmployeeHandler struct {
	service *service.EmployeeService
	logger  *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.EmployeeService, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service: svc,
		logger:  log,
	}
}

// actorID returns the acting user's ID from the gateway header, or nil.
func actorID(r *http.Request) *string {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		return nil
	}
	return &userID
}

// List lists all employees
// GET /employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	employees, total, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, employees, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Get gets an employee by ID
// GET /employees/{id}
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	employee, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employee)
}

// GetByNumber gets an employee by their employee number
// GET /employees/by-number/{number}
func (h *EmployeeHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	employee, err := h.service.GetByNumber(r.Context(), number)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employee)
}

// Create creates a new employee
// POST /employees
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var emp repository.Employee
	if err := httputil.DecodeJSON(r, &emp); err != nil {
		httputil.Error(w, err)
		return
	}
	emp.CreatedBy = actorID(r)

	if err := h.service.Create(r.Context(), &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, emp)
}

// Update updates an employee
// PUT /employees/{id}
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var emp repository.Employee
	if err := httputil.DecodeJSON(r, &emp); err != nil {
		httputil.Error(w, err)
		return
	}
	emp.ID = chi.URLParam(r, "id")
	emp.UpdatedBy = actorID(r)

	if err := h.service.Update(r.Context(), &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Delete soft deletes an employee
// DELETE /employees/{id}
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
