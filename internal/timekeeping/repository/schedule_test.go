package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestEmployee inserts an employee the schedule tables can reference
func createTestEmployee(t *testing.T, ctx context.Context, firstName, lastName string) *repository.Employee {
	t.Helper()

	repo := repository.NewEmployeeRepository(suite.DB)
	emp := &repository.Employee{
		FirstName: firstName,
		LastName:  lastName,
		HireDate:  time.Date(2023, 1, 9, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, emp))
	return emp
}

func TestBaseScheduleRepository_UpsertAndGet(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-base-schedule-upsert")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Base", "Schedule")

	repo := repository.NewBaseScheduleRepository(suite.DB)

	bs := &repository.BaseSchedule{
		EmployeeID:   emp.ID,
		Weekday:      0, // Monday
		IsWorkingDay: true,
		StartTime:    testutil.PtrString("09:00"),
		EndTime:      testutil.PtrString("17:00"),
		BreakStart:   testutil.PtrString("13:00"),
		BreakEnd:     testutil.PtrString("14:00"),
	}
	require.NoError(t, repo.Upsert(tenantCtx, bs))
	assert.NotEmpty(t, bs.ID)

	retrieved, err := repo.GetForWeekday(tenantCtx, emp.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.True(t, retrieved.IsWorkingDay)
	assert.Equal(t, "09:00", *retrieved.StartTime)
	assert.Equal(t, "17:00", *retrieved.EndTime)
	assert.Equal(t, "13:00", *retrieved.BreakStart)

	// Upsert for the same weekday replaces, it does not duplicate
	bs2 := &repository.BaseSchedule{
		EmployeeID:   emp.ID,
		Weekday:      0,
		IsWorkingDay: true,
		StartTime:    testutil.PtrString("08:00"),
		EndTime:      testutil.PtrString("16:00"),
	}
	require.NoError(t, repo.Upsert(tenantCtx, bs2))
	assert.Equal(t, bs.ID, bs2.ID, "upsert should keep the original row")

	retrieved, err = repo.GetForWeekday(tenantCtx, emp.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "08:00", *retrieved.StartTime)
	assert.Nil(t, retrieved.BreakStart)

	schedules, err := repo.ListForEmployee(tenantCtx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, schedules, 1)
}

func TestBaseScheduleRepository_GetForWeekday_Missing(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-base-schedule-missing")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "No", "Schedule")

	repo := repository.NewBaseScheduleRepository(suite.DB)

	// Missing weekday is not an error, it just resolves to no schedule
	bs, err := repo.GetForWeekday(tenantCtx, emp.ID, 6)
	require.NoError(t, err)
	assert.Nil(t, bs)
}

func TestBaseScheduleRepository_SplitShift(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-base-schedule-split")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Split", "Shift")

	repo := repository.NewBaseScheduleRepository(suite.DB)

	bs := &repository.BaseSchedule{
		EmployeeID:     emp.ID,
		Weekday:        2,
		IsWorkingDay:   true,
		StartTime:      testutil.PtrString("09:00"),
		EndTime:        testutil.PtrString("18:00"),
		IsSplitShift:   true,
		MorningStart:   testutil.PtrString("09:00"),
		MorningEnd:     testutil.PtrString("13:00"),
		AfternoonStart: testutil.PtrString("15:00"),
		AfternoonEnd:   testutil.PtrString("18:00"),
	}
	require.NoError(t, repo.Upsert(tenantCtx, bs))

	retrieved, err := repo.GetForWeekday(tenantCtx, emp.ID, 2)
	require.NoError(t, err)
	assert.True(t, retrieved.IsSplitShift)
	assert.Equal(t, "15:00", *retrieved.AfternoonStart)
}

func TestBaseScheduleRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-base-schedule-delete")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Delete", "Schedule")

	repo := repository.NewBaseScheduleRepository(suite.DB)

	bs := &repository.BaseSchedule{
		EmployeeID:   emp.ID,
		Weekday:      4,
		IsWorkingDay: true,
		StartTime:    testutil.PtrString("10:00"),
		EndTime:      testutil.PtrString("15:00"),
	}
	require.NoError(t, repo.Upsert(tenantCtx, bs))

	require.NoError(t, repo.Delete(tenantCtx, emp.ID, 4))

	deleted, err := repo.GetForWeekday(tenantCtx, emp.ID, 4)
	require.NoError(t, err)
	assert.Nil(t, deleted)

	// Deleting again reports not found
	err = repo.Delete(tenantCtx, emp.ID, 4)
	assert.Error(t, err)
}

func TestTemplateRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-template-create")
	tenantCtx := suite.TenantContext(tenant)

	repo := repository.NewTemplateRepository(suite.DB)

	tpl := &repository.ScheduleTemplate{
		Name:     "Early Week",
		IsActive: true,
		Days: []*repository.TemplateDay{
			{Weekday: 0, StartTime: testutil.PtrString("07:00"), EndTime: testutil.PtrString("15:00")},
			{Weekday: 1, StartTime: testutil.PtrString("07:00"), EndTime: testutil.PtrString("15:00"), BreakStart: testutil.PtrString("11:00"), BreakEnd: testutil.PtrString("11:30")},
		},
	}
	require.NoError(t, repo.Create(tenantCtx, tpl))
	assert.NotEmpty(t, tpl.ID)

	retrieved, err := repo.GetByID(tenantCtx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Early Week", retrieved.Name)
	require.Len(t, retrieved.Days, 2)
	assert.Equal(t, 0, retrieved.Days[0].Weekday)
	assert.Equal(t, "11:00", *retrieved.Days[1].BreakStart)
}

func TestTemplateRepository_GetDay(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-template-get-day")
	tenantCtx := suite.TenantContext(tenant)

	repo := repository.NewTemplateRepository(suite.DB)

	tpl := &repository.ScheduleTemplate{
		Name:     "Mon Only",
		IsActive: true,
		Days: []*repository.TemplateDay{
			{Weekday: 0, StartTime: testutil.PtrString("08:00"), EndTime: testutil.PtrString("16:00")},
		},
	}
	require.NoError(t, repo.Create(tenantCtx, tpl))

	day, err := repo.GetDay(tenantCtx, tpl.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, "08:00", *day.StartTime)

	// A weekday the template does not define resolves to nil, not an error
	day, err = repo.GetDay(tenantCtx, tpl.ID, 3)
	require.NoError(t, err)
	assert.Nil(t, day)
}

func TestTemplateRepository_SplitDayWithoutInterval(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-template-split-day")
	tenantCtx := suite.TenantContext(tenant)

	repo := repository.NewTemplateRepository(suite.DB)

	// A split day persists with no single interval at all.
	tpl := &repository.ScheduleTemplate{
		Name:     "Split Friday",
		IsActive: true,
		Days: []*repository.TemplateDay{
			{
				Weekday:        4,
				IsSplitShift:   true,
				MorningStart:   testutil.PtrString("09:00"),
				MorningEnd:     testutil.PtrString("13:00"),
				AfternoonStart: testutil.PtrString("15:00"),
				AfternoonEnd:   testutil.PtrString("18:00"),
			},
		},
	}
	require.NoError(t, repo.Create(tenantCtx, tpl))

	day, err := repo.GetDay(tenantCtx, tpl.ID, 4)
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.True(t, day.IsSplitShift)
	assert.Nil(t, day.StartTime)
	assert.Nil(t, day.EndTime)
	assert.Equal(t, "09:00", *day.MorningStart)
	assert.Equal(t, "18:00", *day.AfternoonEnd)
}

func TestTemplateRepository_UpdateReplacesDays(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-template-update")
	tenantCtx := suite.TenantContext(tenant)

	repo := repository.NewTemplateRepository(suite.DB)

	tpl := &repository.ScheduleTemplate{
		Name:     "Before",
		IsActive: true,
		Days: []*repository.TemplateDay{
			{Weekday: 0, StartTime: testutil.PtrString("08:00"), EndTime: testutil.PtrString("16:00")},
			{Weekday: 1, StartTime: testutil.PtrString("08:00"), EndTime: testutil.PtrString("16:00")},
		},
	}
	require.NoError(t, repo.Create(tenantCtx, tpl))

	tpl.Name = "After"
	tpl.Days = []*repository.TemplateDay{
		{Weekday: 4, StartTime: testutil.PtrString("12:00"), EndTime: testutil.PtrString("20:00")},
	}
	require.NoError(t, repo.Update(tenantCtx, tpl))

	retrieved, err := repo.GetByID(tenantCtx, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", retrieved.Name)
	require.Len(t, retrieved.Days, 1)
	assert.Equal(t, 4, retrieved.Days[0].Weekday)
}

func TestTemplateRepository_SoftDelete_InUse(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-template-delete-in-use")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Uses", "Template")

	tplRepo := repository.NewTemplateRepository(suite.DB)
	asgRepo := repository.NewAssignmentRepository(suite.DB)

	tpl := &repository.ScheduleTemplate{
		Name:     "Assigned",
		IsActive: true,
		Days:     []*repository.TemplateDay{{Weekday: 0, StartTime: testutil.PtrString("09:00"), EndTime: testutil.PtrString("17:00")}},
	}
	require.NoError(t, tplRepo.Create(tenantCtx, tpl))

	_, err := asgRepo.Upsert(tenantCtx, &repository.WeeklyScheduleAssignment{
		EmployeeID: emp.ID,
		TemplateID: tpl.ID,
		Year:       2025,
		WeekNumber: 10,
	})
	require.NoError(t, err)

	// Deleting an assigned template must be refused
	err = tplRepo.SoftDelete(tenantCtx, tpl.ID)
	assert.Error(t, err)

	// After removing the assignment the delete goes through
	require.NoError(t, asgRepo.Delete(tenantCtx, emp.ID, 2025, 10))
	require.NoError(t, tplRepo.SoftDelete(tenantCtx, tpl.ID))

	_, err = tplRepo.GetByID(tenantCtx, tpl.ID)
	assert.Error(t, err)
}

func TestAssignmentRepository_UpsertReportsReplacement(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-assignment-upsert")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Week", "Worker")

	tplRepo := repository.NewTemplateRepository(suite.DB)
	asgRepo := repository.NewAssignmentRepository(suite.DB)

	tplA := &repository.ScheduleTemplate{Name: "A", IsActive: true}
	tplB := &repository.ScheduleTemplate{Name: "B", IsActive: true}
	require.NoError(t, tplRepo.Create(tenantCtx, tplA))
	require.NoError(t, tplRepo.Create(tenantCtx, tplB))

	replaced, err := asgRepo.Upsert(tenantCtx, &repository.WeeklyScheduleAssignment{
		EmployeeID: emp.ID,
		TemplateID: tplA.ID,
		Year:       2025,
		WeekNumber: 14,
	})
	require.NoError(t, err)
	assert.False(t, replaced)

	// Same week, different template: replaces silently
	replaced, err = asgRepo.Upsert(tenantCtx, &repository.WeeklyScheduleAssignment{
		EmployeeID: emp.ID,
		TemplateID: tplB.ID,
		Year:       2025,
		WeekNumber: 14,
	})
	require.NoError(t, err)
	assert.True(t, replaced)

	current, err := asgRepo.GetForWeek(tenantCtx, emp.ID, 2025, 14)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, tplB.ID, current.TemplateID)
}

func TestAssignmentRepository_GetForWeek_Missing(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-assignment-missing")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "No", "Assignment")

	repo := repository.NewAssignmentRepository(suite.DB)

	a, err := repo.GetForWeek(tenantCtx, emp.ID, 2025, 1)
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestAssignmentRepository_WeekNumberRange(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-assignment-week-range")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Bad", "Week")

	tplRepo := repository.NewTemplateRepository(suite.DB)
	asgRepo := repository.NewAssignmentRepository(suite.DB)

	tpl := &repository.ScheduleTemplate{Name: "Any", IsActive: true}
	require.NoError(t, tplRepo.Create(tenantCtx, tpl))

	// Week 54 violates the week_number_range constraint
	_, err := asgRepo.Upsert(tenantCtx, &repository.WeeklyScheduleAssignment{
		EmployeeID: emp.ID,
		TemplateID: tpl.ID,
		Year:       2025,
		WeekNumber: 54,
	})
	assert.Error(t, err)

	// Week 53 is valid, some ISO years have it
	_, err = asgRepo.Upsert(tenantCtx, &repository.WeeklyScheduleAssignment{
		EmployeeID: emp.ID,
		TemplateID: tpl.ID,
		Year:       2020,
		WeekNumber: 53,
	})
	assert.NoError(t, err)
}

func TestExceptionRepository_CreateAndResolveByDate(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-exception-create")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Ex", "Ception")

	repo := repository.NewExceptionRepository(suite.DB)

	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	ex := &repository.DailyException{
		EmployeeID:    emp.ID,
		ExceptionDate: date,
		IsWorkingDay:  true,
		StartTime:     testutil.PtrString("10:00"),
		EndTime:       testutil.PtrString("14:00"),
		Reason:        testutil.PtrString("doctor appointment"),
		IsActive:      true,
	}
	require.NoError(t, repo.Create(tenantCtx, ex))

	active, err := repo.GetActiveForDate(tenantCtx, emp.ID, date)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "10:00", *active.StartTime)

	// Other dates resolve to nil
	active, err = repo.GetActiveForDate(tenantCtx, emp.ID, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestExceptionRepository_InactiveInvisibleToResolution(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-exception-inactive")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Inactive", "Exception")

	repo := repository.NewExceptionRepository(suite.DB)

	date := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	ex := &repository.DailyException{
		EmployeeID:    emp.ID,
		ExceptionDate: date,
		IsWorkingDay:  true,
		StartTime:     testutil.PtrString("11:00"),
		EndTime:       testutil.PtrString("15:00"),
		IsActive:      true,
	}
	require.NoError(t, repo.Create(tenantCtx, ex))

	ex.IsActive = false
	require.NoError(t, repo.Update(tenantCtx, ex))

	active, err := repo.GetActiveForDate(tenantCtx, emp.ID, date)
	require.NoError(t, err)
	assert.Nil(t, active, "inactive exception must not resolve")

	// Still visible by ID and within range listings
	byID, err := repo.GetByID(tenantCtx, ex.ID)
	require.NoError(t, err)
	assert.False(t, byID.IsActive)

	list, err := repo.ListForRange(tenantCtx, emp.ID, date.AddDate(0, 0, -1), date.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestExceptionRepository_UniquePerDate(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-exception-unique")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Unique", "Date")

	repo := repository.NewExceptionRepository(suite.DB)

	date := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)
	first := &repository.DailyException{
		EmployeeID:    emp.ID,
		ExceptionDate: date,
		IsWorkingDay:  true,
		StartTime:     testutil.PtrString("09:00"),
		EndTime:       testutil.PtrString("12:00"),
		IsActive:      true,
	}
	require.NoError(t, repo.Create(tenantCtx, first))

	second := &repository.DailyException{
		EmployeeID:    emp.ID,
		ExceptionDate: date,
		IsWorkingDay:  true,
		StartTime:     testutil.PtrString("13:00"),
		EndTime:       testutil.PtrString("17:00"),
		IsActive:      true,
	}
	err := repo.Create(tenantCtx, second)
	assert.Error(t, err, "one exception per employee and date")
}

func TestExceptionRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-exception-delete")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Delete", "Exception")

	repo := repository.NewExceptionRepository(suite.DB)

	ex := &repository.DailyException{
		EmployeeID:    emp.ID,
		ExceptionDate: time.Date(2025, 8, 11, 0, 0, 0, 0, time.UTC),
		IsWorkingDay:  true,
		StartTime:     testutil.PtrString("08:00"),
		EndTime:       testutil.PtrString("12:00"),
		IsActive:      true,
	}
	require.NoError(t, repo.Create(tenantCtx, ex))

	require.NoError(t, repo.Delete(tenantCtx, ex.ID))

	_, err := repo.GetByID(tenantCtx, ex.ID)
	assert.Error(t, err)
}
