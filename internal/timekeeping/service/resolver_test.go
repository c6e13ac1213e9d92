package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/testutil"
)

// ============================================================================
// STUB LOOKUP SOURCES
// ============================================================================

type stubExceptions struct {
	byDate map[string]*repository.DailyException
	errOn  map[string]error
}

func (s *stubExceptions) GetActiveForDate(_ context.Context, _ string, date time.Time) (*repository.DailyException, error) {
	key := date.Format("2006-01-02")
	if err, ok := s.errOn[key]; ok {
		return nil, err
	}
	return s.byDate[key], nil
}

type stubAssignments struct {
	byWeek map[[2]int]*repository.WeeklyScheduleAssignment
}

func (s *stubAssignments) GetForWeek(_ context.Context, _ string, year, weekNumber int) (*repository.WeeklyScheduleAssignment, error) {
	return s.byWeek[[2]int{year, weekNumber}], nil
}

type stubTemplateDays struct {
	byWeekday map[int]*repository.TemplateDay
}

func (s *stubTemplateDays) GetDay(_ context.Context, _ string, weekday int) (*repository.TemplateDay, error) {
	return s.byWeekday[weekday], nil
}

type stubBaseSchedules struct {
	byWeekday map[int]*repository.BaseSchedule
}

func (s *stubBaseSchedules) GetForWeekday(_ context.Context, _ string, weekday int) (*repository.BaseSchedule, error) {
	return s.byWeekday[weekday], nil
}

func emptyResolver() *service.ScheduleResolver {
	return service.NewScheduleResolver(
		&stubExceptions{},
		&stubAssignments{},
		&stubTemplateDays{},
		&stubBaseSchedules{},
	)
}

func mondayBase() *repository.BaseSchedule {
	return &repository.BaseSchedule{
		EmployeeID:   "emp-1",
		Weekday:      0,
		IsWorkingDay: true,
		StartTime:    testutil.PtrString("09:00"),
		EndTime:      testutil.PtrString("17:00"),
	}
}

// ============================================================================
// WEEKDAY AND WEEK NUMBER TESTS
// ============================================================================

func TestWeekday(t *testing.T) {
	tests := []struct {
		date    string
		weekday int
	}{
		{"2024-09-02", 0}, // Monday
		{"2024-09-03", 1},
		{"2024-09-04", 2},
		{"2024-09-05", 3},
		{"2024-09-06", 4},
		{"2024-09-07", 5}, // Saturday
		{"2024-09-08", 6}, // Sunday
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.weekday, service.Weekday(d))
		})
	}
}

func TestWeekNumber_YearBoundary(t *testing.T) {
	// 2021-01-01 is a Friday and belongs to ISO week 53 of 2020.
	d := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	year, week := service.WeekNumber(d)
	assert.Equal(t, 2020, year)
	assert.Equal(t, 53, week)

	// The first Monday of 2021 opens week 1.
	d = time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	year, week = service.WeekNumber(d)
	assert.Equal(t, 2021, year)
	assert.Equal(t, 1, week)
}

// ============================================================================
// RESOLUTION CASCADE TESTS
// ============================================================================

func TestResolve_NoSchedule(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	es, err := emptyResolver().Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeNone, es.Type)
	assert.False(t, es.IsWorkingDay)
	assert.Nil(t, es.StartTime)
}

func TestResolve_BaseSchedule(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	resolver := service.NewScheduleResolver(
		&stubExceptions{},
		&stubAssignments{},
		&stubTemplateDays{},
		&stubBaseSchedules{byWeekday: map[int]*repository.BaseSchedule{0: mondayBase()}},
	)

	es, err := resolver.Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeRegular, es.Type)
	assert.True(t, es.IsWorkingDay)
	require.NotNil(t, es.StartTime)
	assert.Equal(t, "09:00", *es.StartTime)

	// Tuesday has no base schedule row.
	es, err = resolver.Resolve(ctx, "emp-1", monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeNone, es.Type)
}

func TestResolve_TemplateOverridesBase(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	year, week := service.WeekNumber(monday)

	resolver := service.NewScheduleResolver(
		&stubExceptions{},
		&stubAssignments{byWeek: map[[2]int]*repository.WeeklyScheduleAssignment{
			{year, week}: {EmployeeID: "emp-1", TemplateID: "tpl-1", Year: year, WeekNumber: week},
		}},
		&stubTemplateDays{byWeekday: map[int]*repository.TemplateDay{
			0: {TemplateID: "tpl-1", Weekday: 0, StartTime: testutil.PtrString("07:00"), EndTime: testutil.PtrString("15:00")},
		}},
		&stubBaseSchedules{byWeekday: map[int]*repository.BaseSchedule{0: mondayBase()}},
	)

	es, err := resolver.Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeWeeklyTemplate, es.Type)
	assert.True(t, es.IsWorkingDay)
	assert.Equal(t, "07:00", *es.StartTime)
	assert.Equal(t, "15:00", *es.EndTime)
}

func TestResolve_SplitTemplateDay(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	year, week := service.WeekNumber(monday)

	resolver := service.NewScheduleResolver(
		&stubExceptions{},
		&stubAssignments{byWeek: map[[2]int]*repository.WeeklyScheduleAssignment{
			{year, week}: {EmployeeID: "emp-1", TemplateID: "tpl-1", Year: year, WeekNumber: week},
		}},
		&stubTemplateDays{byWeekday: map[int]*repository.TemplateDay{
			0: {
				TemplateID:     "tpl-1",
				Weekday:        0,
				IsSplitShift:   true,
				MorningStart:   testutil.PtrString("09:00"),
				MorningEnd:     testutil.PtrString("13:00"),
				AfternoonStart: testutil.PtrString("15:00"),
				AfternoonEnd:   testutil.PtrString("18:00"),
			},
		}},
		&stubBaseSchedules{},
	)

	es, err := resolver.Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeWeeklyTemplate, es.Type)
	assert.True(t, es.IsSplitShift)
	assert.Nil(t, es.StartTime)
	assert.Nil(t, es.EndTime)

	minutes, err := service.ShiftMinutes(es)
	require.NoError(t, err)
	assert.Equal(t, 420, minutes)
}

func TestResolve_AssignmentWithoutDayFallsToBase(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	year, week := service.WeekNumber(monday)

	// The assigned template only covers Tuesday, so Monday falls through
	// to the base schedule instead of becoming a day off.
	resolver := service.NewScheduleResolver(
		&stubExceptions{},
		&stubAssignments{byWeek: map[[2]int]*repository.WeeklyScheduleAssignment{
			{year, week}: {EmployeeID: "emp-1", TemplateID: "tpl-1", Year: year, WeekNumber: week},
		}},
		&stubTemplateDays{byWeekday: map[int]*repository.TemplateDay{
			1: {TemplateID: "tpl-1", Weekday: 1, StartTime: testutil.PtrString("07:00"), EndTime: testutil.PtrString("15:00")},
		}},
		&stubBaseSchedules{byWeekday: map[int]*repository.BaseSchedule{0: mondayBase()}},
	)

	es, err := resolver.Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeRegular, es.Type)
	assert.Equal(t, "09:00", *es.StartTime)
}

func TestResolve_ExceptionWinsOverEverything(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	year, week := service.WeekNumber(monday)

	resolver := service.NewScheduleResolver(
		&stubExceptions{byDate: map[string]*repository.DailyException{
			"2024-09-02": {
				EmployeeID:    "emp-1",
				ExceptionDate: monday,
				IsWorkingDay:  true,
				StartTime:     testutil.PtrString("12:00"),
				EndTime:       testutil.PtrString("20:00"),
			},
		}},
		&stubAssignments{byWeek: map[[2]int]*repository.WeeklyScheduleAssignment{
			{year, week}: {EmployeeID: "emp-1", TemplateID: "tpl-1", Year: year, WeekNumber: week},
		}},
		&stubTemplateDays{byWeekday: map[int]*repository.TemplateDay{
			0: {TemplateID: "tpl-1", Weekday: 0, StartTime: testutil.PtrString("07:00"), EndTime: testutil.PtrString("15:00")},
		}},
		&stubBaseSchedules{byWeekday: map[int]*repository.BaseSchedule{0: mondayBase()}},
	)

	es, err := resolver.Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeDailyException, es.Type)
	assert.Equal(t, "12:00", *es.StartTime)
	assert.Equal(t, "20:00", *es.EndTime)
}

func TestResolve_DayOffException(t *testing.T) {
	ctx := context.Background()
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)

	resolver := service.NewScheduleResolver(
		&stubExceptions{byDate: map[string]*repository.DailyException{
			"2024-09-02": {
				EmployeeID:    "emp-1",
				ExceptionDate: monday,
				Reason:        testutil.PtrString("vacation"),
				IsWorkingDay:  false,
			},
		}},
		&stubAssignments{},
		&stubTemplateDays{},
		&stubBaseSchedules{byWeekday: map[int]*repository.BaseSchedule{0: mondayBase()}},
	)

	es, err := resolver.Resolve(ctx, "emp-1", monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeDailyException, es.Type)
	assert.False(t, es.IsWorkingDay)
	assert.Nil(t, es.StartTime)
}
