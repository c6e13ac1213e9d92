package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/devicetoken"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/events"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
	"github.com/shiftflow/shiftflow-backend/pkg/tenant"
)

// AttendanceStatus reports whether an employee currently has an open
// check-in.
type AttendanceStatus struct {
	EmployeeID string     `json:"employee_id"`
	ClockedIn  bool       `json:"clocked_in"`
	Since      *time.Time `json:"since,omitempty"`
}

// RegisteredDevice is returned once at registration time; the plaintext
// secret is never stored and cannot be recovered later.
type RegisteredDevice struct {
	Device *repository.AttendanceDevice `json:"device"`
	Secret string                       `json:"secret"`
}

// AttendanceService handles attendance punches and terminal devices.
type AttendanceService struct {
	employeeRepo   *repository.EmployeeRepository
	attendanceRepo *repository.AttendanceRepository
	deviceRepo     *repository.DeviceRepository
	tokens         *devicetoken.Manager
	publisher      *events.TimekeepingEventPublisher
	logger         *logger.Logger
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(
	employeeRepo *repository.EmployeeRepository,
	attendanceRepo *repository.AttendanceRepository,
	deviceRepo *repository.DeviceRepository,
	tokens *devicetoken.Manager,
	publisher *events.TimekeepingEventPublisher,
	log *logger.Logger,
) *AttendanceService {
	return &AttendanceService{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		deviceRepo:     deviceRepo,
		tokens:         tokens,
		publisher:      publisher,
		logger:         log,
	}
}

func (s *AttendanceService) requireEmployee(ctx context.Context, employeeID string) error {
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("employee")
	}
	return nil
}

// CheckIn records a check-in punch. Punches are append-only; pairing and
// correction happen at reporting time, so a duplicate check-in is stored
// as-is rather than rejected.
func (s *AttendanceService) CheckIn(ctx context.Context, rec *repository.AttendanceRecord) error {
	rec.RecordType = repository.RecordTypeCheckIn
	return s.recordPunch(ctx, rec)
}

// CheckOut records a check-out punch.
func (s *AttendanceService) CheckOut(ctx context.Context, rec *repository.AttendanceRecord) error {
	rec.RecordType = repository.RecordTypeCheckOut
	return s.recordPunch(ctx, rec)
}

func (s *AttendanceService) recordPunch(ctx context.Context, rec *repository.AttendanceRecord) error {
	if err := s.requireEmployee(ctx, rec.EmployeeID); err != nil {
		return err
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	if rec.DeviceID != nil {
		if _, err := s.deviceRepo.GetByID(ctx, *rec.DeviceID); err != nil {
			return err
		}
	}

	if err := s.attendanceRepo.Create(ctx, rec); err != nil {
		return err
	}

	if rec.RecordType == repository.RecordTypeCheckIn {
		s.publisher.PublishCheckIn(ctx, rec)
	} else {
		s.publisher.PublishCheckOut(ctx, rec)
	}
	return nil
}

// ListRecords lists punches within [from, to), oldest first.
func (s *AttendanceService) ListRecords(ctx context.Context, employeeID string, from, to time.Time) ([]*repository.AttendanceRecord, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.attendanceRepo.ListForRange(ctx, employeeID, from, to)
}

// Status reports whether the employee's most recent punch left an open
// check-in.
func (s *AttendanceService) Status(ctx context.Context, employeeID string) (*AttendanceStatus, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	last, err := s.attendanceRepo.GetLastForEmployee(ctx, employeeID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	status := &AttendanceStatus{EmployeeID: employeeID}
	if last != nil && last.RecordType == repository.RecordTypeCheckIn {
		status.ClockedIn = true
		at := last.RecordedAt
		status.Since = &at
	}
	return status, nil
}

// RegisterDevice creates an attendance terminal and returns its secret.
// Only the bcrypt hash is stored.
func (s *AttendanceService) RegisterDevice(ctx context.Context, name string, location *string) (*RegisteredDevice, error) {
	if name == "" {
		return nil, errors.Validation(map[string]string{"name": "is required"})
	}

	secret := uuid.New().String()
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	device := &repository.AttendanceDevice{
		Name:       name,
		Location:   location,
		SecretHash: string(hash),
		IsActive:   true,
	}
	if err := s.deviceRepo.Create(ctx, device); err != nil {
		return nil, err
	}

	s.publisher.PublishDeviceRegistered(ctx, device)

	return &RegisteredDevice{Device: device, Secret: secret}, nil
}

// ListDevices lists attendance terminals.
func (s *AttendanceService) ListDevices(ctx context.Context) ([]*repository.AttendanceDevice, error) {
	return s.deviceRepo.List(ctx)
}

// GetDevice returns an attendance terminal by ID.
func (s *AttendanceService) GetDevice(ctx context.Context, id string) (*repository.AttendanceDevice, error) {
	return s.deviceRepo.GetByID(ctx, id)
}

// DeactivateDevice disables a terminal. Its tokens stop being honored at
// the next authentication; already issued tokens expire on their own.
func (s *AttendanceService) DeactivateDevice(ctx context.Context, id string) error {
	if err := s.deviceRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishDeviceDeactivated(ctx, id)
	return nil
}

// AuthenticateDevice verifies a terminal's secret and issues a short-lived
// access token scoped to the tenant.
func (s *AttendanceService) AuthenticateDevice(ctx context.Context, deviceID, secret string) (*devicetoken.Token, error) {
	device, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !device.IsActive {
		return nil, errors.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(device.SecretHash), []byte(secret)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	if err := s.deviceRepo.TouchLastSeen(ctx, deviceID); err != nil {
		s.logger.Error().Err(err).
			Str("device_id", deviceID).
			Msg("failed to update device last seen timestamp")
	}

	info := &devicetoken.DeviceInfo{
		ID:   device.ID,
		Name: device.Name,
	}
	info.TenantID, _ = tenant.TenantID(ctx)
	info.TenantSlug, _ = tenant.TenantSlug(ctx)
	info.TenantSchema, _ = tenant.TenantSchema(ctx)

	return s.tokens.Generate(info)
}
