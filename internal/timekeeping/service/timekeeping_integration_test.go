package service_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
	"github.com/shiftflow/shiftflow-backend/pkg/testutil"
)

var suite *testutil.IntegrationSuite

func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	suite, err = testutil.NewIntegrationSuite(ctx)
	if err != nil {
		log.Fatalf("failed to create integration suite: %v", err)
	}
	defer suite.Cleanup(ctx)
	defer testutil.TerminateContainer(ctx)

	os.Exit(m.Run())
}

// Exercises the full resolution cascade and the hours report against real
// repositories: base schedule Monday to Friday, a template assigned to one
// week that only covers Monday, and a vacation exception on Wednesday.
func TestEffectiveScheduleAndHours_EndToEnd(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-e2e-hours")
	tenantCtx := suite.TenantContext(tenant)

	employeeRepo := repository.NewEmployeeRepository(suite.DB)
	baseRepo := repository.NewBaseScheduleRepository(suite.DB)
	templateRepo := repository.NewTemplateRepository(suite.DB)
	assignmentRepo := repository.NewAssignmentRepository(suite.DB)
	exceptionRepo := repository.NewExceptionRepository(suite.DB)
	attendanceRepo := repository.NewAttendanceRepository(suite.DB)

	resolver := service.NewScheduleResolver(exceptionRepo, assignmentRepo, templateRepo, baseRepo)
	hours := service.NewHoursService(resolver, attendanceRepo, employeeRepo, logger.New("e2e-test", "test"))

	emp := &repository.Employee{
		FirstName: "Lucia",
		LastName:  "Navarro",
		HireDate:  time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, employeeRepo.Create(tenantCtx, emp))

	// Base schedule: Monday to Friday 09:00-17:00 with a one hour break.
	for wd := 0; wd < 5; wd++ {
		require.NoError(t, baseRepo.Upsert(tenantCtx, &repository.BaseSchedule{
			EmployeeID:   emp.ID,
			Weekday:      wd,
			IsWorkingDay: true,
			StartTime:    testutil.PtrString("09:00"),
			EndTime:      testutil.PtrString("17:00"),
			BreakStart:   testutil.PtrString("13:00"),
			BreakEnd:     testutil.PtrString("14:00"),
		}))
	}

	// Template covering only Monday, assigned to the week under test.
	tpl := &repository.ScheduleTemplate{
		Name: "early-monday",
		Days: []*repository.TemplateDay{
			{Weekday: 0, StartTime: testutil.PtrString("08:00"), EndTime: testutil.PtrString("14:00")},
		},
	}
	require.NoError(t, templateRepo.Create(tenantCtx, tpl))

	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	year, week := service.WeekNumber(monday)
	_, err := assignmentRepo.Upsert(tenantCtx, &repository.WeeklyScheduleAssignment{
		EmployeeID: emp.ID,
		TemplateID: tpl.ID,
		Year:       year,
		WeekNumber: week,
	})
	require.NoError(t, err)

	// Vacation on Wednesday.
	wednesday := monday.AddDate(0, 0, 2)
	require.NoError(t, exceptionRepo.Create(tenantCtx, &repository.DailyException{
		EmployeeID:    emp.ID,
		ExceptionDate: wednesday,
		IsWorkingDay:  false,
		Reason:        testutil.PtrString("vacation"),
		IsActive:      true,
	}))

	// Monday comes from the template.
	es, err := resolver.Resolve(tenantCtx, emp.ID, monday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeWeeklyTemplate, es.Type)
	assert.Equal(t, "08:00", *es.StartTime)

	// Tuesday has no template day and falls back to the base schedule.
	es, err = resolver.Resolve(tenantCtx, emp.ID, monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeRegular, es.Type)

	// Wednesday is the vacation exception.
	es, err = resolver.Resolve(tenantCtx, emp.ID, wednesday)
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeDailyException, es.Type)
	assert.False(t, es.IsWorkingDay)

	// Sunday has nothing.
	es, err = resolver.Resolve(tenantCtx, emp.ID, monday.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Equal(t, service.ScheduleTypeNone, es.Type)

	// Estimated: Monday template 360 + Tue/Thu/Fri base 420 each,
	// Wednesday off, weekend unscheduled.
	estimated := hours.EstimatedMinutes(tenantCtx, emp.ID, monday, monday.AddDate(0, 0, 7))
	assert.Equal(t, 360+3*420, estimated)

	// Punches: Monday 08:00-14:30, Tuesday 09:00-17:15.
	punches := []*repository.AttendanceRecord{
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: monday.Add(8 * time.Hour)},
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckOut, RecordedAt: monday.Add(14*time.Hour + 30*time.Minute)},
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: monday.AddDate(0, 0, 1).Add(9 * time.Hour)},
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckOut, RecordedAt: monday.AddDate(0, 0, 1).Add(17*time.Hour + 15*time.Minute)},
	}
	for _, p := range punches {
		require.NoError(t, attendanceRepo.Create(tenantCtx, p))
	}

	summary, err := hours.Summary(tenantCtx, emp.ID, monday, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1620, summary.Estimated.TotalMinutes)
	assert.Equal(t, 390+495, summary.Actual.TotalMinutes)
	assert.Equal(t, 885-1620, summary.Delta.Minutes)
	assert.Equal(t, 55, summary.Delta.Percentage) // round(885/1620*100)
}
