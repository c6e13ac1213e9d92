package events

import (
	"context"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
	"github.com/shiftflow/shiftflow-backend/pkg/messaging"
	"github.com/shiftflow/shiftflow-backend/pkg/tenant"
)

// TimekeepingEventPublisher publishes timekeeping-related events.
// Publishing is fire-and-forget: failures are logged, never returned,
// so a broker outage does not fail the originating request.
type TimekeepingEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewTimekeepingEventPublisher creates a new timekeeping event publisher
func NewTimekeepingEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TimekeepingEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeTimekeepingEvents, "timekeeping-service", log)
	if err != nil {
		return nil, err
	}

	return &TimekeepingEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishEmployeeCreated publishes an employee created event
func (p *TimekeepingEventPublisher) PublishEmployeeCreated(ctx context.Context, emp *repository.Employee) {
	data := messaging.EmployeeCreatedEvent{
		EmployeeID: emp.ID,
		Name:       emp.FirstName + " " + emp.LastName,
	}
	if emp.EmployeeNumber != nil {
		data.EmployeeNumber = *emp.EmployeeNumber
	}
	data.TenantID, _ = tenant.TenantID(ctx)
	data.TenantSlug, _ = tenant.TenantSlug(ctx)
	data.TenantSchema, _ = tenant.TenantSchema(ctx)

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeCreated, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", emp.ID).Msg("failed to publish employee created event")
	}
}

// PublishEmployeeUpdated publishes an employee updated event
func (p *TimekeepingEventPublisher) PublishEmployeeUpdated(ctx context.Context, emp *repository.Employee) {
	data := messaging.EmployeeUpdatedEvent{
		EmployeeID: emp.ID,
		Fields:     map[string]any{"name": emp.FirstName + " " + emp.LastName, "status": emp.Status},
	}
	data.TenantID, _ = tenant.TenantID(ctx)

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", emp.ID).Msg("failed to publish employee updated event")
	}
}

// PublishEmployeeDeleted publishes an employee deleted event
func (p *TimekeepingEventPublisher) PublishEmployeeDeleted(ctx context.Context, employeeID string) {
	data := messaging.EmployeeDeletedEvent{
		EmployeeID: employeeID,
	}
	data.TenantID, _ = tenant.TenantID(ctx)

	if err := p.publisher.Publish(ctx, messaging.EventEmployeeDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", employeeID).Msg("failed to publish employee deleted event")
	}
}

// PublishBaseScheduleSet publishes a base schedule set event
func (p *TimekeepingEventPublisher) PublishBaseScheduleSet(ctx context.Context, bs *repository.BaseSchedule) {
	data := messaging.BaseScheduleSetEvent{
		ScheduleID: bs.ID,
		EmployeeID: bs.EmployeeID,
		Weekday:    bs.Weekday,
		StartTime:  bs.StartTime,
		EndTime:    bs.EndTime,
		IsSplit:    bs.IsSplitShift,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBaseScheduleSet, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", bs.EmployeeID).Int("weekday", bs.Weekday).Msg("failed to publish base schedule set event")
	}
}

// PublishBaseScheduleCleared publishes a base schedule cleared event
func (p *TimekeepingEventPublisher) PublishBaseScheduleCleared(ctx context.Context, employeeID string, weekday int) {
	data := messaging.BaseScheduleClearedEvent{
		EmployeeID: employeeID,
		Weekday:    weekday,
	}

	if err := p.publisher.Publish(ctx, messaging.EventBaseScheduleCleared, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", employeeID).Int("weekday", weekday).Msg("failed to publish base schedule cleared event")
	}
}

// PublishTemplateCreated publishes a template created event
func (p *TimekeepingEventPublisher) PublishTemplateCreated(ctx context.Context, tpl *repository.ScheduleTemplate) {
	data := messaging.TemplateCreatedEvent{
		TemplateID: tpl.ID,
		Name:       tpl.Name,
		DayCount:   len(tpl.Days),
	}

	if err := p.publisher.Publish(ctx, messaging.EventTemplateCreated, data); err != nil {
		p.logger.Error().Err(err).Str("template_id", tpl.ID).Msg("failed to publish template created event")
	}
}

// PublishTemplateUpdated publishes a template updated event
func (p *TimekeepingEventPublisher) PublishTemplateUpdated(ctx context.Context, tpl *repository.ScheduleTemplate) {
	data := messaging.TemplateUpdatedEvent{
		TemplateID: tpl.ID,
		Fields:     map[string]any{"name": tpl.Name, "day_count": len(tpl.Days)},
	}

	if err := p.publisher.Publish(ctx, messaging.EventTemplateUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("template_id", tpl.ID).Msg("failed to publish template updated event")
	}
}

// PublishTemplateDeleted publishes a template deleted event
func (p *TimekeepingEventPublisher) PublishTemplateDeleted(ctx context.Context, templateID string) {
	data := messaging.TemplateDeletedEvent{
		TemplateID: templateID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventTemplateDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("template_id", templateID).Msg("failed to publish template deleted event")
	}
}

// PublishWeekAssigned publishes a week assigned event
func (p *TimekeepingEventPublisher) PublishWeekAssigned(ctx context.Context, a *repository.WeeklyScheduleAssignment, replaced bool) {
	data := messaging.WeekAssignedEvent{
		AssignmentID: a.ID,
		EmployeeID:   a.EmployeeID,
		TemplateID:   a.TemplateID,
		Year:         a.Year,
		WeekNumber:   a.WeekNumber,
		Replaced:     replaced,
	}

	if err := p.publisher.Publish(ctx, messaging.EventWeekAssigned, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", a.EmployeeID).Int("year", a.Year).Int("week", a.WeekNumber).Msg("failed to publish week assigned event")
	}
}

// PublishWeekUnassigned publishes a week unassigned event
func (p *TimekeepingEventPublisher) PublishWeekUnassigned(ctx context.Context, employeeID string, year, weekNumber int) {
	data := messaging.WeekUnassignedEvent{
		EmployeeID: employeeID,
		Year:       year,
		WeekNumber: weekNumber,
	}

	if err := p.publisher.Publish(ctx, messaging.EventWeekUnassigned, data); err != nil {
		p.logger.Error().Err(err).Str("employee_id", employeeID).Int("year", year).Int("week", weekNumber).Msg("failed to publish week unassigned event")
	}
}

// PublishExceptionCreated publishes an exception created event
func (p *TimekeepingEventPublisher) PublishExceptionCreated(ctx context.Context, ex *repository.DailyException) {
	data := messaging.ExceptionCreatedEvent{
		ExceptionID: ex.ID,
		EmployeeID:  ex.EmployeeID,
		Date:        ex.ExceptionDate,
	}
	if ex.Reason != nil {
		data.Reason = *ex.Reason
	}

	if err := p.publisher.Publish(ctx, messaging.EventExceptionCreated, data); err != nil {
		p.logger.Error().Err(err).Str("exception_id", ex.ID).Msg("failed to publish exception created event")
	}
}

// PublishExceptionUpdated publishes an exception updated event
func (p *TimekeepingEventPublisher) PublishExceptionUpdated(ctx context.Context, ex *repository.DailyException) {
	data := messaging.ExceptionUpdatedEvent{
		ExceptionID: ex.ID,
		EmployeeID:  ex.EmployeeID,
		Fields:      map[string]any{"start_time": ex.StartTime, "end_time": ex.EndTime, "is_active": ex.IsActive},
	}

	if err := p.publisher.Publish(ctx, messaging.EventExceptionUpdated, data); err != nil {
		p.logger.Error().Err(err).Str("exception_id", ex.ID).Msg("failed to publish exception updated event")
	}
}

// PublishExceptionDeleted publishes an exception deleted event
func (p *TimekeepingEventPublisher) PublishExceptionDeleted(ctx context.Context, exceptionID, employeeID string) {
	data := messaging.ExceptionDeletedEvent{
		ExceptionID: exceptionID,
		EmployeeID:  employeeID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventExceptionDeleted, data); err != nil {
		p.logger.Error().Err(err).Str("exception_id", exceptionID).Msg("failed to publish exception deleted event")
	}
}

// PublishCheckIn publishes an attendance check-in event
func (p *TimekeepingEventPublisher) PublishCheckIn(ctx context.Context, rec *repository.AttendanceRecord) {
	data := messaging.AttendanceCheckInEvent{
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		RecordedAt: rec.RecordedAt,
		DeviceID:   rec.DeviceID,
		IsManual:   rec.IsManual,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAttendanceCheckIn, data); err != nil {
		p.logger.Error().Err(err).Str("record_id", rec.ID).Msg("failed to publish check-in event")
	}
}

// PublishCheckOut publishes an attendance check-out event
func (p *TimekeepingEventPublisher) PublishCheckOut(ctx context.Context, rec *repository.AttendanceRecord) {
	data := messaging.AttendanceCheckOutEvent{
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		RecordedAt: rec.RecordedAt,
		DeviceID:   rec.DeviceID,
		IsManual:   rec.IsManual,
	}

	if err := p.publisher.Publish(ctx, messaging.EventAttendanceCheckOut, data); err != nil {
		p.logger.Error().Err(err).Str("record_id", rec.ID).Msg("failed to publish check-out event")
	}
}

// PublishDeviceRegistered publishes a device registered event
func (p *TimekeepingEventPublisher) PublishDeviceRegistered(ctx context.Context, dev *repository.AttendanceDevice) {
	data := messaging.DeviceRegisteredEvent{
		DeviceID: dev.ID,
		Name:     dev.Name,
	}
	if dev.Location != nil {
		data.Location = *dev.Location
	}

	if err := p.publisher.Publish(ctx, messaging.EventDeviceRegistered, data); err != nil {
		p.logger.Error().Err(err).Str("device_id", dev.ID).Msg("failed to publish device registered event")
	}
}

// PublishDeviceDeactivated publishes a device deactivated event
func (p *TimekeepingEventPublisher) PublishDeviceDeactivated(ctx context.Context, deviceID string) {
	data := messaging.DeviceDeactivatedEvent{
		DeviceID: deviceID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventDeviceDeactivated, data); err != nil {
		p.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to publish device deactivated event")
	}
}
