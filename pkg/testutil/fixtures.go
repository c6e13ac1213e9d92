package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EmployeeFixture represents test employee data
type EmployeeFixture struct {
	ID             string
	EmployeeNumber string
	FirstName      string
	LastName       string
	Email          string
	JobTitle       string
	Department     string
	HireDate       time.Time
	Status         string
	CreatedAt      time.Time
}

// BaseScheduleFixture represents a per-weekday recurring schedule for tests
type BaseScheduleFixture struct {
	ID             string
	EmployeeID     string
	Weekday        int
	IsWorkingDay   bool
	StartTime      string
	EndTime        string
	BreakStart     *string
	BreakEnd       *string
	IsSplitShift   bool
	MorningStart   *string
	MorningEnd     *string
	AfternoonStart *string
	AfternoonEnd   *string
}

// TemplateFixture represents a schedule template for tests
type TemplateFixture struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	Days        []TemplateDayFixture
}

// TemplateDayFixture represents a template day for tests
type TemplateDayFixture struct {
	ID         string
	TemplateID string
	Weekday    int
	StartTime  string
	EndTime    string
	BreakStart *string
	BreakEnd   *string
}

// AssignmentFixture represents a weekly schedule assignment for tests
type AssignmentFixture struct {
	ID         string
	EmployeeID string
	TemplateID string
	Year       int
	WeekNumber int
}

// ExceptionFixture represents a daily schedule exception for tests
type ExceptionFixture struct {
	ID           string
	EmployeeID   string
	Date         time.Time
	IsWorkingDay bool
	StartTime    string
	EndTime    string
	BreakStart *string
	BreakEnd   *string
	Reason     string
	IsActive   bool
}

// AttendanceRecordFixture represents a punch record for tests
type AttendanceRecordFixture struct {
	ID         string
	EmployeeID string
	RecordType string
	RecordedAt time.Time
	DeviceID   *string
	IsManual   bool
}

// DeviceFixture represents an attendance device for tests
type DeviceFixture struct {
	ID         string
	Name       string
	Location   string
	Secret     string
	SecretHash string
	IsActive   bool
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Employee creates an employee fixture with defaults
func (f *FixtureFactory) Employee(opts ...func(*EmployeeFixture)) EmployeeFixture {
	seq := f.nextSeq()

	emp := EmployeeFixture{
		ID:             uuid.New().String(),
		EmployeeNumber: fmt.Sprintf("EMP-%04d", seq),
		FirstName:      fmt.Sprintf("Employee%d", seq),
		LastName:       "Test",
		Email:          fmt.Sprintf("employee%d@test.shiftflow.io", seq),
		JobTitle:       "Associate",
		Department:     "Operations",
		HireDate:       time.Now().AddDate(-1, 0, 0),
		Status:         "active",
		CreatedAt:      time.Now(),
	}

	for _, opt := range opts {
		opt(&emp)
	}

	return emp
}

// WithEmployeeName sets the employee's first and last name
func WithEmployeeName(first, last string) func(*EmployeeFixture) {
	return func(e *EmployeeFixture) {
		e.FirstName = first
		e.LastName = last
	}
}

// WithEmployeeNumber sets the employee number
func WithEmployeeNumber(number string) func(*EmployeeFixture) {
	return func(e *EmployeeFixture) {
		e.EmployeeNumber = number
	}
}

// WithDepartment sets the employee's department
func WithDepartment(department string) func(*EmployeeFixture) {
	return func(e *EmployeeFixture) {
		e.Department = department
	}
}

// WithEmployeeStatus sets the employee's status
func WithEmployeeStatus(status string) func(*EmployeeFixture) {
	return func(e *EmployeeFixture) {
		e.Status = status
	}
}

// BaseSchedule creates a base schedule fixture with a standard 09:00-17:00 day
// and a one-hour lunch break
func (f *FixtureFactory) BaseSchedule(employeeID string, weekday int, opts ...func(*BaseScheduleFixture)) BaseScheduleFixture {
	bs := BaseScheduleFixture{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		Weekday:      weekday,
		IsWorkingDay: true,
		StartTime:    "09:00",
		EndTime:      "17:00",
		BreakStart: PtrString("13:00"),
		BreakEnd:   PtrString("14:00"),
	}

	for _, opt := range opts {
		opt(&bs)
	}

	return bs
}

// WithTimes sets the schedule's start and end times
func WithTimes(start, end string) func(*BaseScheduleFixture) {
	return func(b *BaseScheduleFixture) {
		b.StartTime = start
		b.EndTime = end
	}
}

// WithBreak sets the schedule's break window
func WithBreak(start, end string) func(*BaseScheduleFixture) {
	return func(b *BaseScheduleFixture) {
		b.BreakStart = &start
		b.BreakEnd = &end
	}
}

// WithoutBreak clears the schedule's break window
func WithoutBreak() func(*BaseScheduleFixture) {
	return func(b *BaseScheduleFixture) {
		b.BreakStart = nil
		b.BreakEnd = nil
	}
}

// WithSplitShift marks the schedule as split and sets both blocks
func WithSplitShift(morningStart, morningEnd, afternoonStart, afternoonEnd string) func(*BaseScheduleFixture) {
	return func(b *BaseScheduleFixture) {
		b.IsSplitShift = true
		b.MorningStart = &morningStart
		b.MorningEnd = &morningEnd
		b.AfternoonStart = &afternoonStart
		b.AfternoonEnd = &afternoonEnd
	}
}

// Template creates a schedule template fixture covering Monday through Friday
func (f *FixtureFactory) Template(opts ...func(*TemplateFixture)) TemplateFixture {
	seq := f.nextSeq()

	tpl := TemplateFixture{
		ID:       uuid.New().String(),
		Name:     fmt.Sprintf("Template %d", seq),
		IsActive: true,
	}

	for weekday := 0; weekday < 5; weekday++ {
		tpl.Days = append(tpl.Days, TemplateDayFixture{
			ID:         uuid.New().String(),
			TemplateID: tpl.ID,
			Weekday:    weekday,
			StartTime:  "08:00",
			EndTime:    "16:00",
		})
	}

	for _, opt := range opts {
		opt(&tpl)
	}

	return tpl
}

// WithTemplateName sets the template name
func WithTemplateName(name string) func(*TemplateFixture) {
	return func(t *TemplateFixture) {
		t.Name = name
	}
}

// WithTemplateDays replaces the template's days
func WithTemplateDays(days ...TemplateDayFixture) func(*TemplateFixture) {
	return func(t *TemplateFixture) {
		for i := range days {
			days[i].TemplateID = t.ID
		}
		t.Days = days
	}
}

// Assignment creates a weekly schedule assignment fixture
func (f *FixtureFactory) Assignment(employeeID, templateID string, year, week int) AssignmentFixture {
	return AssignmentFixture{
		ID:         uuid.New().String(),
		EmployeeID: employeeID,
		TemplateID: templateID,
		Year:       year,
		WeekNumber: week,
	}
}

// Exception creates a daily exception fixture
func (f *FixtureFactory) Exception(employeeID string, date time.Time, opts ...func(*ExceptionFixture)) ExceptionFixture {
	exc := ExceptionFixture{
		ID:           uuid.New().String(),
		EmployeeID:   employeeID,
		Date:         date,
		IsWorkingDay: true,
		StartTime:    "10:00",
		EndTime:      "15:00",
		Reason:       "appointment",
		IsActive:     true,
	}

	for _, opt := range opts {
		opt(&exc)
	}

	return exc
}

// WithDayOff marks the exception as a non-working override (e.g. vacation)
func WithDayOff() func(*ExceptionFixture) {
	return func(e *ExceptionFixture) {
		e.IsWorkingDay = false
		e.StartTime = ""
		e.EndTime = ""
	}
}

// WithExceptionTimes sets the exception's start and end times
func WithExceptionTimes(start, end string) func(*ExceptionFixture) {
	return func(e *ExceptionFixture) {
		e.StartTime = start
		e.EndTime = end
	}
}

// WithExceptionActive sets whether the exception is active
func WithExceptionActive(active bool) func(*ExceptionFixture) {
	return func(e *ExceptionFixture) {
		e.IsActive = active
	}
}

// CheckIn creates a check-in attendance record fixture
func (f *FixtureFactory) CheckIn(employeeID string, at time.Time) AttendanceRecordFixture {
	return AttendanceRecordFixture{
		ID:         uuid.New().String(),
		EmployeeID: employeeID,
		RecordType: "checkin",
		RecordedAt: at,
	}
}

// CheckOut creates a check-out attendance record fixture
func (f *FixtureFactory) CheckOut(employeeID string, at time.Time) AttendanceRecordFixture {
	return AttendanceRecordFixture{
		ID:         uuid.New().String(),
		EmployeeID: employeeID,
		RecordType: "checkout",
		RecordedAt: at,
	}
}

// Device creates an attendance device fixture with a bcrypt-hashed secret.
// The plaintext secret is kept on the fixture so tests can authenticate with it.
func (f *FixtureFactory) Device(opts ...func(*DeviceFixture)) DeviceFixture {
	seq := f.nextSeq()
	secret := fmt.Sprintf("device-secret-%d", seq)
	hash, _ := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)

	dev := DeviceFixture{
		ID:         uuid.New().String(),
		Name:       fmt.Sprintf("Terminal %d", seq),
		Location:   "Main entrance",
		Secret:     secret,
		SecretHash: string(hash),
		IsActive:   true,
	}

	for _, opt := range opts {
		opt(&dev)
	}

	return dev
}

// WithDeviceName sets the device name
func WithDeviceName(name string) func(*DeviceFixture) {
	return func(d *DeviceFixture) {
		d.Name = name
	}
}

// WithDeviceActive sets whether the device is active
func WithDeviceActive(active bool) func(*DeviceFixture) {
	return func(d *DeviceFixture) {
		d.IsActive = active
	}
}
