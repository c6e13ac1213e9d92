package service

import (
	"context"
	"time"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
)

// Effective schedule types, in priority order
const (
	ScheduleTypeDailyException = "daily_exception"
	ScheduleTypeWeeklyTemplate = "weekly_template"
	ScheduleTypeRegular        = "regular_schedule"
	ScheduleTypeNone           = "no_schedule"
)

// EffectiveSchedule is the resolved schedule for one employee on one date.
// It is derived per call and never persisted.
type EffectiveSchedule struct {
	Type         string    `json:"type"`
	Date         time.Time `json:"date"`
	IsWorkingDay bool      `json:"is_working_day"`

	StartTime  *string `json:"start_time,omitempty"`
	EndTime    *string `json:"end_time,omitempty"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`

	IsSplitShift   bool    `json:"is_split_shift"`
	MorningStart   *string `json:"morning_start,omitempty"`
	MorningEnd     *string `json:"morning_end,omitempty"`
	AfternoonStart *string `json:"afternoon_start,omitempty"`
	AfternoonEnd   *string `json:"afternoon_end,omitempty"`

	// Set when the schedule came from a weekly template.
	TemplateDay *repository.TemplateDay `json:"template_day,omitempty"`
}

// Weekday maps a date to the canonical weekday index used by every
// schedule table: 0 = Monday .. 6 = Sunday.
func Weekday(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// WeekNumber returns the ISO-8601 year and week number for a date.
// Note the year can differ from date.Year() near year boundaries:
// 2021-01-01 belongs to week 53 of 2020.
func WeekNumber(date time.Time) (year, week int) {
	return date.ISOWeek()
}

// Narrow read interfaces so the resolver can be unit tested without a database.
// The repository types satisfy these.

type exceptionSource interface {
	GetActiveForDate(ctx context.Context, employeeID string, date time.Time) (*repository.DailyException, error)
}

type assignmentSource interface {
	GetForWeek(ctx context.Context, employeeID string, year, weekNumber int) (*repository.WeeklyScheduleAssignment, error)
}

type templateDaySource interface {
	GetDay(ctx context.Context, templateID string, weekday int) (*repository.TemplateDay, error)
}

type baseScheduleSource interface {
	GetForWeekday(ctx context.Context, employeeID string, weekday int) (*repository.BaseSchedule, error)
}

// ScheduleResolver resolves the effective schedule for a date by walking
// the priority cascade: daily exception, weekly template, base schedule.
type ScheduleResolver struct {
	exceptions    exceptionSource
	assignments   assignmentSource
	templates     templateDaySource
	baseSchedules baseScheduleSource
}

// NewScheduleResolver creates a new schedule resolver
func NewScheduleResolver(
	exceptions exceptionSource,
	assignments assignmentSource,
	templates templateDaySource,
	baseSchedules baseScheduleSource,
) *ScheduleResolver {
	return &ScheduleResolver{
		exceptions:    exceptions,
		assignments:   assignments,
		templates:     templates,
		baseSchedules: baseSchedules,
	}
}

// Resolve returns the effective schedule for an employee on a date.
// First match wins; an active exception shadows everything else for
// that date, even when a weekly assignment and a base schedule exist.
func (r *ScheduleResolver) Resolve(ctx context.Context, employeeID string, date time.Time) (*EffectiveSchedule, error) {
	ex, err := r.exceptions.GetActiveForDate(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if ex != nil {
		return &EffectiveSchedule{
			Type:           ScheduleTypeDailyException,
			Date:           date,
			IsWorkingDay:   ex.IsWorkingDay,
			StartTime:      ex.StartTime,
			EndTime:        ex.EndTime,
			BreakStart:     ex.BreakStart,
			BreakEnd:       ex.BreakEnd,
			IsSplitShift:   ex.IsSplitShift,
			MorningStart:   ex.MorningStart,
			MorningEnd:     ex.MorningEnd,
			AfternoonStart: ex.AfternoonStart,
			AfternoonEnd:   ex.AfternoonEnd,
		}, nil
	}

	weekday := Weekday(date)

	year, week := WeekNumber(date)
	assignment, err := r.assignments.GetForWeek(ctx, employeeID, year, week)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		day, err := r.templates.GetDay(ctx, assignment.TemplateID, weekday)
		if err != nil {
			return nil, err
		}
		// A template without a row for this weekday falls through to the
		// base schedule rather than implying a day off.
		if day != nil {
			return &EffectiveSchedule{
				Type:           ScheduleTypeWeeklyTemplate,
				Date:           date,
				IsWorkingDay:   true,
				StartTime:      day.StartTime,
				EndTime:        day.EndTime,
				BreakStart:     day.BreakStart,
				BreakEnd:       day.BreakEnd,
				IsSplitShift:   day.IsSplitShift,
				MorningStart:   day.MorningStart,
				MorningEnd:     day.MorningEnd,
				AfternoonStart: day.AfternoonStart,
				AfternoonEnd:   day.AfternoonEnd,
				TemplateDay:    day,
			}, nil
		}
	}

	base, err := r.baseSchedules.GetForWeekday(ctx, employeeID, weekday)
	if err != nil {
		return nil, err
	}
	if base != nil {
		return &EffectiveSchedule{
			Type:           ScheduleTypeRegular,
			Date:           date,
			IsWorkingDay:   base.IsWorkingDay,
			StartTime:      base.StartTime,
			EndTime:        base.EndTime,
			BreakStart:     base.BreakStart,
			BreakEnd:       base.BreakEnd,
			IsSplitShift:   base.IsSplitShift,
			MorningStart:   base.MorningStart,
			MorningEnd:     base.MorningEnd,
			AfternoonStart: base.AfternoonStart,
			AfternoonEnd:   base.AfternoonEnd,
		}, nil
	}

	return &EffectiveSchedule{
		Type:         ScheduleTypeNone,
		Date:         date,
		IsWorkingDay: false,
	}, nil
}
