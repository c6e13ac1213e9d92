package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// DeviceHandler handles attendance terminal endpoints
type DeviceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(svc *service.AttendanceService, log *logger.Logger) *DeviceHandler {
	return &DeviceHandler{
		service: svc,
		logger:  log,
	}
}

// RegisterDeviceRequest is the request body for registering a terminal
type RegisterDeviceRequest struct {
	Name     string  `json:"name" validate:"required,max=255"`
	Location *string `json:"location,omitempty"`
}

// Register registers a new attendance terminal. The response contains the
// terminal secret exactly once; it is stored only as a hash.
// POST /devices
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterDeviceRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	registered, err := h.service.RegisterDevice(r.Context(), req.Name, req.Location)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, registered)
}

// List lists attendance terminals
// GET /devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.service.ListDevices(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, devices)
}

// Get gets an attendance terminal by ID
// GET /devices/{id}
func (h *DeviceHandler) Get(w http.ResponseWriter, r *http.Request) {
	device, err := h.service.GetDevice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, device)
}

// Deactivate disables an attendance terminal
// DELETE /devices/{id}
func (h *DeviceHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeactivateDevice(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// AuthenticateRequest is the request body for terminal authentication
type AuthenticateRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// Authenticate verifies a terminal secret and issues an access token
// POST /devices/{id}/token
func (h *DeviceHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	token, err := h.service.AuthenticateDevice(r.Context(), chi.URLParam(r, "id"), req.Secret)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, token)
}
