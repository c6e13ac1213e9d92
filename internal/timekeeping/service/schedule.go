package service

import (
	"context"
	"time"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/events"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// ScheduleService handles schedule administration: base schedules,
// templates, weekly assignments and daily exceptions.
type ScheduleService struct {
	employeeRepo   *repository.EmployeeRepository
	baseRepo       *repository.BaseScheduleRepository
	templateRepo   *repository.TemplateRepository
	assignmentRepo *repository.AssignmentRepository
	exceptionRepo  *repository.ExceptionRepository
	resolver       *ScheduleResolver
	publisher      *events.TimekeepingEventPublisher
	logger         *logger.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(
	employeeRepo *repository.EmployeeRepository,
	baseRepo *repository.BaseScheduleRepository,
	templateRepo *repository.TemplateRepository,
	assignmentRepo *repository.AssignmentRepository,
	exceptionRepo *repository.ExceptionRepository,
	resolver *ScheduleResolver,
	publisher *events.TimekeepingEventPublisher,
	log *logger.Logger,
) *ScheduleService {
	return &ScheduleService{
		employeeRepo:   employeeRepo,
		baseRepo:       baseRepo,
		templateRepo:   templateRepo,
		assignmentRepo: assignmentRepo,
		exceptionRepo:  exceptionRepo,
		resolver:       resolver,
		publisher:      publisher,
		logger:         log,
	}
}

// requireEmployee returns NotFound when the employee does not exist.
func (s *ScheduleService) requireEmployee(ctx context.Context, employeeID string) error {
	exists, err := s.employeeRepo.Exists(ctx, employeeID)
	if err != nil {
		return err
	}
	if !exists {
		return errors.NotFound("employee")
	}
	return nil
}

func validateClock(details map[string]string, field string, value *string) {
	if value == nil {
		return
	}
	if _, err := parseClock(*value); err != nil {
		details[field] = "must be a valid HH:MM time"
	}
}

// validateShiftTimes checks the time fields shared by base schedules,
// template days and working exceptions.
func validateShiftTimes(details map[string]string, isSplit bool, start, end, breakStart, breakEnd, ms, me, as, ae *string) {
	validateClock(details, "start_time", start)
	validateClock(details, "end_time", end)
	validateClock(details, "break_start", breakStart)
	validateClock(details, "break_end", breakEnd)
	validateClock(details, "morning_start", ms)
	validateClock(details, "morning_end", me)
	validateClock(details, "afternoon_start", as)
	validateClock(details, "afternoon_end", ae)

	if isSplit {
		if ms == nil || me == nil || as == nil || ae == nil {
			details["is_split_shift"] = "split shifts require morning and afternoon start and end times"
		}
	}
	if (breakStart == nil) != (breakEnd == nil) {
		details["break_start"] = "breaks require both start and end times"
	}
}

// SetBaseSchedule creates or replaces the recurring schedule for one weekday.
func (s *ScheduleService) SetBaseSchedule(ctx context.Context, bs *repository.BaseSchedule) error {
	details := map[string]string{}
	if bs.Weekday < 0 || bs.Weekday > 6 {
		details["weekday"] = "must be between 0 (Monday) and 6 (Sunday)"
	}
	if bs.IsWorkingDay {
		if !bs.IsSplitShift && (bs.StartTime == nil || bs.EndTime == nil) {
			details["start_time"] = "working days require start and end times"
		}
		validateShiftTimes(details, bs.IsSplitShift,
			bs.StartTime, bs.EndTime, bs.BreakStart, bs.BreakEnd,
			bs.MorningStart, bs.MorningEnd, bs.AfternoonStart, bs.AfternoonEnd)
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}

	if err := s.requireEmployee(ctx, bs.EmployeeID); err != nil {
		return err
	}
	if err := s.baseRepo.Upsert(ctx, bs); err != nil {
		return err
	}

	s.publisher.PublishBaseScheduleSet(ctx, bs)
	return nil
}

// ListBaseSchedules lists an employee's base schedule rows by weekday.
func (s *ScheduleService) ListBaseSchedules(ctx context.Context, employeeID string) ([]*repository.BaseSchedule, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.baseRepo.ListForEmployee(ctx, employeeID)
}

// ClearBaseSchedule removes the base schedule row for one weekday.
func (s *ScheduleService) ClearBaseSchedule(ctx context.Context, employeeID string, weekday int) error {
	if err := s.baseRepo.Delete(ctx, employeeID, weekday); err != nil {
		return err
	}

	s.publisher.PublishBaseScheduleCleared(ctx, employeeID, weekday)
	return nil
}

// CreateTemplate creates a schedule template with its weekday rows.
func (s *ScheduleService) CreateTemplate(ctx context.Context, tpl *repository.ScheduleTemplate) error {
	if err := s.validateTemplate(tpl); err != nil {
		return err
	}
	if err := s.templateRepo.Create(ctx, tpl); err != nil {
		return err
	}

	s.publisher.PublishTemplateCreated(ctx, tpl)
	return nil
}

// GetTemplate returns a template including its weekday rows.
func (s *ScheduleService) GetTemplate(ctx context.Context, id string) (*repository.ScheduleTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

// ListTemplates lists templates with pagination.
func (s *ScheduleService) ListTemplates(ctx context.Context, page, perPage int) ([]*repository.ScheduleTemplate, int64, error) {
	return s.templateRepo.List(ctx, page, perPage)
}

// UpdateTemplate replaces a template's metadata and weekday rows.
func (s *ScheduleService) UpdateTemplate(ctx context.Context, tpl *repository.ScheduleTemplate) error {
	if err := s.validateTemplate(tpl); err != nil {
		return err
	}
	if err := s.templateRepo.Update(ctx, tpl); err != nil {
		return err
	}

	s.publisher.PublishTemplateUpdated(ctx, tpl)
	return nil
}

// DeleteTemplate soft deletes a template. Templates still referenced by a
// weekly assignment cannot be deleted.
func (s *ScheduleService) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.templateRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishTemplateDeleted(ctx, id)
	return nil
}

func (s *ScheduleService) validateTemplate(tpl *repository.ScheduleTemplate) error {
	details := map[string]string{}
	if tpl.Name == "" {
		details["name"] = "is required"
	}
	seen := map[int]bool{}
	for _, day := range tpl.Days {
		if day.Weekday < 0 || day.Weekday > 6 {
			details["days"] = "weekday must be between 0 (Monday) and 6 (Sunday)"
			continue
		}
		if seen[day.Weekday] {
			details["days"] = "each weekday may appear at most once"
			continue
		}
		seen[day.Weekday] = true
		if !day.IsSplitShift && (day.StartTime == nil || day.EndTime == nil) {
			details["days"] = "template days require start and end times"
		}
		validateShiftTimes(details, day.IsSplitShift,
			day.StartTime, day.EndTime, day.BreakStart, day.BreakEnd,
			day.MorningStart, day.MorningEnd, day.AfternoonStart, day.AfternoonEnd)
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// AssignWeek assigns a template to an employee for one ISO week. Assigning
// over an existing week replaces the previous template.
func (s *ScheduleService) AssignWeek(ctx context.Context, a *repository.WeeklyScheduleAssignment) error {
	details := map[string]string{}
	if a.WeekNumber < 1 || a.WeekNumber > 53 {
		details["week_number"] = "must be between 1 and 53"
	}
	if a.Year < 2000 || a.Year > 2100 {
		details["year"] = "must be a plausible year"
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}

	if err := s.requireEmployee(ctx, a.EmployeeID); err != nil {
		return err
	}
	if _, err := s.templateRepo.GetByID(ctx, a.TemplateID); err != nil {
		return err
	}

	replaced, err := s.assignmentRepo.Upsert(ctx, a)
	if err != nil {
		return err
	}

	s.publisher.PublishWeekAssigned(ctx, a, replaced)
	return nil
}

// GetWeekAssignment returns the assignment for one ISO week, or nil when
// the week is unassigned.
func (s *ScheduleService) GetWeekAssignment(ctx context.Context, employeeID string, year, weekNumber int) (*repository.WeeklyScheduleAssignment, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.GetForWeek(ctx, employeeID, year, weekNumber)
}

// ListWeekAssignments lists an employee's assignments for one year.
func (s *ScheduleService) ListWeekAssignments(ctx context.Context, employeeID string, year int) ([]*repository.WeeklyScheduleAssignment, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.ListForYear(ctx, employeeID, year)
}

// UnassignWeek removes the assignment for one ISO week.
func (s *ScheduleService) UnassignWeek(ctx context.Context, employeeID string, year, weekNumber int) error {
	if err := s.assignmentRepo.Delete(ctx, employeeID, year, weekNumber); err != nil {
		return err
	}

	s.publisher.PublishWeekUnassigned(ctx, employeeID, year, weekNumber)
	return nil
}

// CreateException creates a one-off schedule override for a single date.
func (s *ScheduleService) CreateException(ctx context.Context, ex *repository.DailyException) error {
	if err := s.validateException(ex); err != nil {
		return err
	}
	if err := s.requireEmployee(ctx, ex.EmployeeID); err != nil {
		return err
	}
	if err := s.exceptionRepo.Create(ctx, ex); err != nil {
		return err
	}

	s.publisher.PublishExceptionCreated(ctx, ex)
	return nil
}

// GetException returns a daily exception by ID.
func (s *ScheduleService) GetException(ctx context.Context, id string) (*repository.DailyException, error) {
	return s.exceptionRepo.GetByID(ctx, id)
}

// ListExceptions lists an employee's exceptions within an inclusive date range.
func (s *ScheduleService) ListExceptions(ctx context.Context, employeeID string, from, to time.Time) ([]*repository.DailyException, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.exceptionRepo.ListForRange(ctx, employeeID, from, to)
}

// UpdateException updates a daily exception.
func (s *ScheduleService) UpdateException(ctx context.Context, ex *repository.DailyException) error {
	if err := s.validateException(ex); err != nil {
		return err
	}
	if err := s.exceptionRepo.Update(ctx, ex); err != nil {
		return err
	}

	s.publisher.PublishExceptionUpdated(ctx, ex)
	return nil
}

// DeleteException deletes a daily exception.
func (s *ScheduleService) DeleteException(ctx context.Context, id string) error {
	ex, err := s.exceptionRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.exceptionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishExceptionDeleted(ctx, id, ex.EmployeeID)
	return nil
}

func (s *ScheduleService) validateException(ex *repository.DailyException) error {
	details := map[string]string{}
	if ex.ExceptionDate.IsZero() {
		details["exception_date"] = "is required"
	}
	if ex.IsWorkingDay {
		if !ex.IsSplitShift && (ex.StartTime == nil || ex.EndTime == nil) {
			details["start_time"] = "working exceptions require start and end times"
		}
		validateShiftTimes(details, ex.IsSplitShift,
			ex.StartTime, ex.EndTime, ex.BreakStart, ex.BreakEnd,
			ex.MorningStart, ex.MorningEnd, ex.AfternoonStart, ex.AfternoonEnd)
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// GetEffectiveSchedule resolves the schedule that applies to an employee
// on a given date.
func (s *ScheduleService) GetEffectiveSchedule(ctx context.Context, employeeID string, date time.Time) (*EffectiveSchedule, error) {
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.resolver.Resolve(ctx, employeeID, date)
}

// GetEffectiveWeek resolves the schedule for every day of one ISO week,
// Monday through Sunday.
func (s *ScheduleService) GetEffectiveWeek(ctx context.Context, employeeID string, year, weekNumber int) ([]*EffectiveSchedule, error) {
	if weekNumber < 1 || weekNumber > 53 {
		return nil, errors.Validation(map[string]string{"week_number": "must be between 1 and 53"})
	}
	if err := s.requireEmployee(ctx, employeeID); err != nil {
		return nil, err
	}

	monday := isoWeekStart(year, weekNumber)
	days := make([]*EffectiveSchedule, 0, 7)
	for i := 0; i < 7; i++ {
		es, err := s.resolver.Resolve(ctx, employeeID, monday.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		days = append(days, es)
	}
	return days, nil
}

// isoWeekStart returns the Monday of the given ISO week.
func isoWeekStart(year, week int) time.Time {
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	week1Monday := jan4.AddDate(0, 0, -Weekday(jan4))
	return week1Monday.AddDate(0, 0, (week-1)*7)
}
