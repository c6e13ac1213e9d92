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

func TestAttendanceRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-attendance-create")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Punch", "Clock")

	repo := repository.NewAttendanceRepository(suite.DB)

	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	punches := []*repository.AttendanceRecord{
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: day.Add(8 * time.Hour), Location: testutil.PtrString("main office")},
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckOut, RecordedAt: day.Add(12 * time.Hour)},
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: day.Add(13 * time.Hour)},
		{EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckOut, RecordedAt: day.Add(17 * time.Hour)},
	}
	for _, rec := range punches {
		require.NoError(t, repo.Create(tenantCtx, rec))
		assert.NotEmpty(t, rec.ID)
	}

	records, err := repo.ListForRange(tenantCtx, emp.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Ordered by recorded_at ascending
	assert.Equal(t, repository.RecordTypeCheckIn, records[0].RecordType)
	assert.Equal(t, repository.RecordTypeCheckOut, records[3].RecordType)
	assert.True(t, records[0].RecordedAt.Before(records[1].RecordedAt))

	// Location round-trips on the read path
	require.NotNil(t, records[0].Location)
	assert.Equal(t, "main office", *records[0].Location)
	assert.Nil(t, records[1].Location)

	last, err := repo.GetLastForEmployee(tenantCtx, emp.ID, day.Add(9*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, last)
	require.NotNil(t, last.Location)
	assert.Equal(t, "main office", *last.Location)
}

func TestAttendanceRepository_ListForRange_ExclusiveUpperBound(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-attendance-range")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Range", "Bound")

	repo := repository.NewAttendanceRepository(suite.DB)

	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	require.NoError(t, repo.Create(tenantCtx, &repository.AttendanceRecord{
		EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: day.Add(9 * time.Hour),
	}))
	// Midnight of the next day lies outside [day, nextDay)
	require.NoError(t, repo.Create(tenantCtx, &repository.AttendanceRecord{
		EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: nextDay,
	}))

	records, err := repo.ListForRange(tenantCtx, emp.ID, day, nextDay)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceRepository_RecordTypeConstraint(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-attendance-type")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Bad", "Type")

	repo := repository.NewAttendanceRepository(suite.DB)

	err := repo.Create(tenantCtx, &repository.AttendanceRecord{
		EmployeeID: emp.ID,
		RecordType: "lunch",
		RecordedAt: time.Now().UTC(),
	})
	assert.Error(t, err)
}

func TestAttendanceRepository_GetLastForEmployee(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-attendance-last")
	tenantCtx := suite.TenantContext(tenant)
	emp := createTestEmployee(t, tenantCtx, "Last", "Punch")

	repo := repository.NewAttendanceRepository(suite.DB)

	// No records yet
	last, err := repo.GetLastForEmployee(tenantCtx, emp.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Nil(t, last)

	day := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(tenantCtx, &repository.AttendanceRecord{
		EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckIn, RecordedAt: day.Add(8 * time.Hour),
	}))
	require.NoError(t, repo.Create(tenantCtx, &repository.AttendanceRecord{
		EmployeeID: emp.ID, RecordType: repository.RecordTypeCheckOut, RecordedAt: day.Add(16 * time.Hour),
	}))

	last, err = repo.GetLastForEmployee(tenantCtx, emp.ID, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, repository.RecordTypeCheckOut, last.RecordType)

	// Before the checkout, the checkin is the last record
	last, err = repo.GetLastForEmployee(tenantCtx, emp.ID, day.Add(12*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, repository.RecordTypeCheckIn, last.RecordType)
}

func TestDeviceRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-device-lifecycle")
	tenantCtx := suite.TenantContext(tenant)

	repo := repository.NewDeviceRepository(suite.DB)

	fixtures := testutil.NewFixtureFactory()
	fx := fixtures.Device(testutil.WithDeviceName("front-entrance"))

	dev := &repository.AttendanceDevice{
		Name:       fx.Name,
		Location:   testutil.PtrString("front entrance"),
		SecretHash: fx.SecretHash,
		IsActive:   true,
	}
	require.NoError(t, repo.Create(tenantCtx, dev))
	assert.NotEmpty(t, dev.ID)

	retrieved, err := repo.GetByID(tenantCtx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.SecretHash, retrieved.SecretHash)
	assert.True(t, retrieved.IsActive)
	assert.Nil(t, retrieved.LastSeenAt)

	require.NoError(t, repo.TouchLastSeen(tenantCtx, dev.ID))
	retrieved, err = repo.GetByID(tenantCtx, dev.ID)
	require.NoError(t, err)
	assert.NotNil(t, retrieved.LastSeenAt)

	require.NoError(t, repo.Deactivate(tenantCtx, dev.ID))
	retrieved, err = repo.GetByID(tenantCtx, dev.ID)
	require.NoError(t, err)
	assert.False(t, retrieved.IsActive)

	devices, err := repo.List(tenantCtx)
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestDeviceRepository_NotFound(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupTimekeepingTenant(t, ctx, "test-device-not-found")
	tenantCtx := suite.TenantContext(tenant)

	repo := repository.NewDeviceRepository(suite.DB)

	_, err := repo.GetByID(tenantCtx, "00000000-0000-0000-0000-000000000000")
	assert.Error(t, err)

	err = repo.Deactivate(tenantCtx, "00000000-0000-0000-0000-000000000000")
	assert.Error(t, err)
}
