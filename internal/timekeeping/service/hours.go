package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// parseClock converts a wall-clock "HH:MM" string to minutes since midnight.
func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ShiftMinutes computes the scheduled minutes for one resolved day.
//
// Non-working days yield zero. Split shifts sum the two sub-intervals and
// ignore the break fields. Regular shifts subtract the break when both
// break bounds are present. Inverted intervals produce negative values on
// purpose so that bad data surfaces in reports instead of being hidden.
func ShiftMinutes(es *EffectiveSchedule) (int, error) {
	if es == nil || !es.IsWorkingDay {
		return 0, nil
	}

	if es.IsSplitShift &&
		es.MorningStart != nil && es.MorningEnd != nil &&
		es.AfternoonStart != nil && es.AfternoonEnd != nil {
		ms, err := parseClock(*es.MorningStart)
		if err != nil {
			return 0, err
		}
		me, err := parseClock(*es.MorningEnd)
		if err != nil {
			return 0, err
		}
		as, err := parseClock(*es.AfternoonStart)
		if err != nil {
			return 0, err
		}
		ae, err := parseClock(*es.AfternoonEnd)
		if err != nil {
			return 0, err
		}
		return (me - ms) + (ae - as), nil
	}

	if es.StartTime == nil || es.EndTime == nil {
		return 0, nil
	}
	start, err := parseClock(*es.StartTime)
	if err != nil {
		return 0, err
	}
	end, err := parseClock(*es.EndTime)
	if err != nil {
		return 0, err
	}
	minutes := end - start

	if es.BreakStart != nil && es.BreakEnd != nil {
		bs, err := parseClock(*es.BreakStart)
		if err != nil {
			return 0, err
		}
		be, err := parseClock(*es.BreakEnd)
		if err != nil {
			return 0, err
		}
		minutes -= be - bs
	}
	return minutes, nil
}

// HoursBreakdown is a minute total split into display components.
type HoursBreakdown struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	TotalMinutes int `json:"total_minutes"`
}

// BreakdownMinutes splits a minute total into hours and remaining minutes.
func BreakdownMinutes(total int) HoursBreakdown {
	return HoursBreakdown{
		Hours:        int(math.Floor(float64(total) / 60)),
		Minutes:      int(math.Round(math.Mod(float64(total), 60))),
		TotalMinutes: total,
	}
}

// FormatDuration renders a minute total as "HH:MM", with a leading minus
// sign for negative totals.
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// HoursDelta is the difference between actual and estimated minutes.
type HoursDelta struct {
	Minutes    int    `json:"minutes"`
	Formatted  string `json:"formatted"`
	Percentage int    `json:"percentage"`
}

// Delta compares actual minutes against estimated minutes. The percentage
// is actual over estimated; it is zero when nothing was estimated.
func Delta(actual, estimated int) HoursDelta {
	diff := actual - estimated
	formatted := FormatDuration(diff)
	if diff >= 0 {
		formatted = "+" + formatted
	}
	percentage := 0
	if estimated > 0 {
		percentage = int(math.Round(float64(actual) / float64(estimated) * 100))
	}
	return HoursDelta{
		Minutes:    diff,
		Formatted:  formatted,
		Percentage: percentage,
	}
}

// HoursSummary reports estimated vs. actual worked time for a date range.
type HoursSummary struct {
	EmployeeID string         `json:"employee_id"`
	StartDate  string         `json:"start_date"`
	EndDate    string         `json:"end_date"`
	Estimated  HoursBreakdown `json:"estimated"`
	Actual     HoursBreakdown `json:"actual"`
	Delta      HoursDelta     `json:"delta"`
}

type attendanceSource interface {
	ListForRange(ctx context.Context, employeeID string, from, to time.Time) ([]*repository.AttendanceRecord, error)
}

type employeeSource interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// HoursService aggregates scheduled and punched time over date ranges.
type HoursService struct {
	resolver   *ScheduleResolver
	attendance attendanceSource
	employees  employeeSource
	logger     *logger.Logger
}

// NewHoursService creates a new hours service
func NewHoursService(resolver *ScheduleResolver, attendance attendanceSource, employees employeeSource, log *logger.Logger) *HoursService {
	return &HoursService{
		resolver:   resolver,
		attendance: attendance,
		employees:  employees,
		logger:     log,
	}
}

// EstimatedMinutes sums the scheduled minutes for every day in
// [start, endExclusive). A day whose schedule cannot be resolved is logged
// and contributes zero; one bad day must not sink a whole payroll period.
func (s *HoursService) EstimatedMinutes(ctx context.Context, employeeID string, start, endExclusive time.Time) int {
	total := 0
	for day := start; day.Before(endExclusive); day = day.AddDate(0, 0, 1) {
		es, err := s.resolver.Resolve(ctx, employeeID, day)
		if err != nil {
			s.logger.Error().Err(err).
				Str("employee_id", employeeID).
				Str("date", day.Format("2006-01-02")).
				Msg("failed to resolve schedule for day, skipping")
			continue
		}
		minutes, err := ShiftMinutes(es)
		if err != nil {
			s.logger.Error().Err(err).
				Str("employee_id", employeeID).
				Str("date", day.Format("2006-01-02")).
				Msg("failed to compute shift minutes for day, skipping")
			continue
		}
		total += minutes
	}
	return total
}

// ActualMinutes sums worked time from attendance punches in
// [start, endExclusive). Punches are paired in chronological order: a
// check-in opens an interval and the next check-out closes it. A second
// check-in while one is open discards the earlier one, and a check-out
// without an open interval is ignored. A trailing open check-in
// contributes nothing.
func (s *HoursService) ActualMinutes(ctx context.Context, employeeID string, start, endExclusive time.Time) (int, error) {
	records, err := s.attendance.ListForRange(ctx, employeeID, start, endExclusive)
	if err != nil {
		return 0, err
	}

	total := 0
	var lastCheckin *time.Time
	for _, rec := range records {
		switch rec.RecordType {
		case repository.RecordTypeCheckIn:
			if lastCheckin != nil {
				s.logger.Warn().
					Str("employee_id", employeeID).
					Time("open_checkin", *lastCheckin).
					Time("new_checkin", rec.RecordedAt).
					Msg("check-in while previous interval still open, discarding it")
			}
			at := rec.RecordedAt
			lastCheckin = &at
		case repository.RecordTypeCheckOut:
			if lastCheckin == nil {
				continue
			}
			total += int(rec.RecordedAt.Sub(*lastCheckin).Minutes())
			lastCheckin = nil
		}
	}
	return total, nil
}

// Summary combines estimated and actual minutes for a date range.
// The employee must exist; a range with no schedule and no punches is
// a valid all-zero summary, an unknown employee is not.
func (s *HoursService) Summary(ctx context.Context, employeeID string, start, endExclusive time.Time) (*HoursSummary, error) {
	exists, err := s.employees.Exists(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.NotFound("employee")
	}

	estimated := s.EstimatedMinutes(ctx, employeeID, start, endExclusive)
	actual, err := s.ActualMinutes(ctx, employeeID, start, endExclusive)
	if err != nil {
		return nil, err
	}

	return &HoursSummary{
		EmployeeID: employeeID,
		StartDate:  start.Format("2006-01-02"),
		EndDate:    endExclusive.AddDate(0, 0, -1).Format("2006-01-02"),
		Estimated:  BreakdownMinutes(estimated),
		Actual:     BreakdownMinutes(actual),
		Delta:      Delta(actual, estimated),
	}, nil
}
