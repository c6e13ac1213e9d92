package messaging

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types
const (
	// Employee events
	EventEmployeeCreated = "timekeeping.employee.created"
	EventEmployeeUpdated = "timekeeping.employee.updated"
	EventEmployeeDeleted = "timekeeping.employee.deleted"

	// Base schedule events
	EventBaseScheduleSet     = "timekeeping.schedule.base.set"
	EventBaseScheduleCleared = "timekeeping.schedule.base.cleared"

	// Template events
	EventTemplateCreated = "timekeeping.schedule.template.created"
	EventTemplateUpdated = "timekeeping.schedule.template.updated"
	EventTemplateDeleted = "timekeeping.schedule.template.deleted"

	// Weekly assignment events
	EventWeekAssigned   = "timekeeping.schedule.week.assigned"
	EventWeekUnassigned = "timekeeping.schedule.week.unassigned"

	// Exception events
	EventExceptionCreated = "timekeeping.schedule.exception.created"
	EventExceptionUpdated = "timekeeping.schedule.exception.updated"
	EventExceptionDeleted = "timekeeping.schedule.exception.deleted"

	// Attendance events
	EventAttendanceCheckIn  = "timekeeping.attendance.checkin"
	EventAttendanceCheckOut = "timekeeping.attendance.checkout"

	// Device events
	EventDeviceRegistered  = "timekeeping.device.registered"
	EventDeviceDeactivated = "timekeeping.device.deactivated"
)

// Exchange names
const (
	ExchangeTimekeepingEvents = "timekeeping.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            GenerateEventID(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// Employee Events

// EmployeeCreatedEvent is published when an employee is created
type EmployeeCreatedEvent struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeNumber string `json:"employee_number"`
	Name           string `json:"name"`

	// Tenant context for consumers outside the request path
	TenantID     string `json:"tenant_id"`
	TenantSlug   string `json:"tenant_slug"`
	TenantSchema string `json:"tenant_schema"`
}

// EmployeeUpdatedEvent is published when an employee is updated
type EmployeeUpdatedEvent struct {
	EmployeeID string         `json:"employee_id"`
	Fields     map[string]any `json:"fields"`
	TenantID   string         `json:"tenant_id"`
}

// EmployeeDeletedEvent is published when an employee is deleted
type EmployeeDeletedEvent struct {
	EmployeeID string `json:"employee_id"`
	TenantID   string `json:"tenant_id"`
}

// Base Schedule Events

// BaseScheduleSetEvent is published when a weekday base schedule is created or replaced
type BaseScheduleSetEvent struct {
	ScheduleID string  `json:"schedule_id"`
	EmployeeID string  `json:"employee_id"`
	Weekday    int     `json:"weekday"`
	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
	IsSplit    bool    `json:"is_split"`
}

// BaseScheduleClearedEvent is published when a weekday base schedule is removed
type BaseScheduleClearedEvent struct {
	ScheduleID string `json:"schedule_id"`
	EmployeeID string `json:"employee_id"`
	Weekday    int    `json:"weekday"`
}

// Template Events

// TemplateCreatedEvent is published when a schedule template is created
type TemplateCreatedEvent struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	DayCount   int    `json:"day_count"`
}

// TemplateUpdatedEvent is published when a schedule template is updated
type TemplateUpdatedEvent struct {
	TemplateID string         `json:"template_id"`
	Fields     map[string]any `json:"fields"`
}

// TemplateDeletedEvent is published when a schedule template is deleted
type TemplateDeletedEvent struct {
	TemplateID string `json:"template_id"`
}

// Weekly Assignment Events

// WeekAssignedEvent is published when a template is assigned to an employee's ISO week
type WeekAssignedEvent struct {
	AssignmentID string `json:"assignment_id"`
	EmployeeID   string `json:"employee_id"`
	TemplateID   string `json:"template_id"`
	Year         int    `json:"year"`
	WeekNumber   int    `json:"week_number"`
	Replaced     bool   `json:"replaced"`
}

// WeekUnassignedEvent is published when a weekly assignment is removed
type WeekUnassignedEvent struct {
	AssignmentID string `json:"assignment_id"`
	EmployeeID   string `json:"employee_id"`
	Year         int    `json:"year"`
	WeekNumber   int    `json:"week_number"`
}

// Exception Events

// ExceptionCreatedEvent is published when a daily exception is created
type ExceptionCreatedEvent struct {
	ExceptionID string    `json:"exception_id"`
	EmployeeID  string    `json:"employee_id"`
	Date        time.Time `json:"date"`
	Reason      string    `json:"reason,omitempty"`
}

// ExceptionUpdatedEvent is published when a daily exception is updated
type ExceptionUpdatedEvent struct {
	ExceptionID string         `json:"exception_id"`
	EmployeeID  string         `json:"employee_id"`
	Fields      map[string]any `json:"fields"`
}

// ExceptionDeletedEvent is published when a daily exception is deleted
type ExceptionDeletedEvent struct {
	ExceptionID string `json:"exception_id"`
	EmployeeID  string `json:"employee_id"`
}

// Attendance Events

// AttendanceCheckInEvent is published when a check-in is recorded
type AttendanceCheckInEvent struct {
	RecordID   string    `json:"record_id"`
	EmployeeID string    `json:"employee_id"`
	RecordedAt time.Time `json:"recorded_at"`
	DeviceID   *string   `json:"device_id,omitempty"`
	IsManual   bool      `json:"is_manual"`
}

// AttendanceCheckOutEvent is published when a check-out is recorded
type AttendanceCheckOutEvent struct {
	RecordID   string    `json:"record_id"`
	EmployeeID string    `json:"employee_id"`
	RecordedAt time.Time `json:"recorded_at"`
	DeviceID   *string   `json:"device_id,omitempty"`
	IsManual   bool      `json:"is_manual"`
}

// Device Events

// DeviceRegisteredEvent is published when an attendance device is registered
type DeviceRegisteredEvent struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// DeviceDeactivatedEvent is published when an attendance device is deactivated
type DeviceDeactivatedEvent struct {
	DeviceID string `json:"device_id"`
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Nanosecond()%10000)
}
