package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/handler"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/service"
	"github.com/shiftflow/shiftflow-backend/pkg/httputil"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
	"github.com/shiftflow/shiftflow-backend/pkg/testutil"
)

// ============================================================================
// STUBS
// ============================================================================

type stubExceptions struct{}

func (s *stubExceptions) GetActiveForDate(_ context.Context, _ string, _ time.Time) (*repository.DailyException, error) {
	return nil, nil
}

type stubAssignments struct{}

func (s *stubAssignments) GetForWeek(_ context.Context, _ string, _, _ int) (*repository.WeeklyScheduleAssignment, error) {
	return nil, nil
}

type stubTemplateDays struct{}

func (s *stubTemplateDays) GetDay(_ context.Context, _ string, _ int) (*repository.TemplateDay, error) {
	return nil, nil
}

type stubBaseSchedules struct {
	byWeekday map[int]*repository.BaseSchedule
}

func (s *stubBaseSchedules) GetForWeekday(_ context.Context, _ string, weekday int) (*repository.BaseSchedule, error) {
	return s.byWeekday[weekday], nil
}

type stubAttendance struct {
	records []*repository.AttendanceRecord
}

func (s *stubAttendance) ListForRange(_ context.Context, _ string, _, _ time.Time) ([]*repository.AttendanceRecord, error) {
	return s.records, nil
}

type stubEmployees struct {
	missing map[string]bool
}

func (s *stubEmployees) Exists(_ context.Context, id string) (bool, error) {
	return !s.missing[id], nil
}

// hoursRouter wires a HoursService over stubs into the route shape the
// service uses, behind the tenant middleware.
func hoursRouter(attendance *stubAttendance, employees *stubEmployees) http.Handler {
	log := logger.New("hours-handler-test", "test")

	resolver := service.NewScheduleResolver(
		&stubExceptions{},
		&stubAssignments{},
		&stubTemplateDays{},
		&stubBaseSchedules{byWeekday: map[int]*repository.BaseSchedule{
			0: {
				EmployeeID:   "emp-1",
				Weekday:      0,
				IsWorkingDay: true,
				StartTime:    testutil.PtrString("09:00"),
				EndTime:      testutil.PtrString("17:00"),
			},
		}},
	)
	svc := service.NewHoursService(resolver, attendance, employees, log)
	h := handler.NewHoursHandler(svc, log)

	r := chi.NewRouter()
	r.Use(httputil.TenantMiddleware)
	r.Get("/employees/{id}/hours", h.GetSummary)
	return r
}

func tenantRequest(method, path string) *http.Request {
	req := testutil.NewHTTPRequest(method, path, nil)
	return testutil.WithTenantHeaders(req, "tenant-1", "acme", "tenant_acme")
}

// ============================================================================
// HOURS SUMMARY ENDPOINT
// ============================================================================

func TestHoursHandler_GetSummary(t *testing.T) {
	monday := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	attendance := &stubAttendance{records: []*repository.AttendanceRecord{
		{EmployeeID: "emp-1", RecordType: repository.RecordTypeCheckIn, RecordedAt: monday.Add(9 * time.Hour)},
		{EmployeeID: "emp-1", RecordType: repository.RecordTypeCheckOut, RecordedAt: monday.Add(17*time.Hour + 30*time.Minute)},
	}}
	router := hoursRouter(attendance, &stubEmployees{})

	req := tenantRequest(http.MethodGet, "/employees/emp-1/hours?from=2024-09-02&to=2024-09-02")
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var body struct {
		Data service.HoursSummary `json:"data"`
	}
	testutil.ParseJSONBody(t, rr, &body)

	assert.Equal(t, "emp-1", body.Data.EmployeeID)
	assert.Equal(t, 480, body.Data.Estimated.TotalMinutes)
	assert.Equal(t, 510, body.Data.Actual.TotalMinutes)
	assert.Equal(t, 30, body.Data.Delta.Minutes)
	assert.Equal(t, "+00:30", body.Data.Delta.Formatted)
}

func TestHoursHandler_GetSummary_InvalidDate(t *testing.T) {
	router := hoursRouter(&stubAttendance{}, &stubEmployees{})

	req := tenantRequest(http.MethodGet, "/employees/emp-1/hours?from=02-09-2024&to=2024-09-02")
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestHoursHandler_GetSummary_UnknownEmployee(t *testing.T) {
	router := hoursRouter(&stubAttendance{}, &stubEmployees{missing: map[string]bool{"ghost": true}})

	req := tenantRequest(http.MethodGet, "/employees/ghost/hours?from=2024-09-02&to=2024-09-02")
	rr := testutil.ExecuteRequest(router, req)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	testutil.AssertBodyContains(t, rr, "NOT_FOUND")
}

func TestHoursHandler_GetSummary_MissingTenantContext(t *testing.T) {
	router := hoursRouter(&stubAttendance{}, &stubEmployees{})

	req := testutil.NewHTTPRequest(http.MethodGet, "/employees/emp-1/hours?from=2024-09-02&to=2024-09-02", nil)
	rr := testutil.ExecuteRequest(router, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
	testutil.AssertBodyContains(t, rr, "missing tenant context")
}
