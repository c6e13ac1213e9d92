package repository_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestEmployeeRepository_Create(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupEmployeeTenant(t, ctx, "test-create-employee")
	repo := repository.NewEmployeeRepository(suite.DB)
	tenantCtx := suite.TenantContext(tenant)

	hireDate := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	emp := &repository.Employee{
		FirstName: "Maria",
		LastName:  "Santos",
		HireDate:  hireDate,
	}

	err := repo.Create(tenantCtx, emp)
	require.NoError(t, err)

	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, "active", emp.Status, "status should default to active")
	assert.False(t, emp.CreatedAt.IsZero())
}

func TestEmployeeRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupEmployeeTenant(t, ctx, "test-get-employee")
	repo := repository.NewEmployeeRepository(suite.DB)
	tenantCtx := suite.TenantContext(tenant)

	emp := &repository.Employee{
		FirstName:      "Jonas",
		LastName:       "Berg",
		EmployeeNumber: testutil.PtrString("EMP-1001"),
		Email:          testutil.PtrString("jonas.berg@example.com"),
		HireDate:       time.Date(2022, 9, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(tenantCtx, emp))

	retrieved, err := repo.GetByID(tenantCtx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)

	assert.Equal(t, emp.ID, retrieved.ID)
	assert.Equal(t, "Jonas", retrieved.FirstName)
	assert.Equal(t, "EMP-1001", *retrieved.EmployeeNumber)
}

func TestEmployeeRepository_GetByNumber(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupEmployeeTenant(t, ctx, "test-get-employee-number")
	repo := repository.NewEmployeeRepository(suite.DB)
	tenantCtx := suite.TenantContext(tenant)

	emp := &repository.Employee{
		FirstName:      "Lena",
		LastName:       "Koch",
		EmployeeNumber: testutil.PtrString("EMP-2042"),
		HireDate:       time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(tenantCtx, emp))

	retrieved, err := repo.GetByNumber(tenantCtx, "EMP-2042")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, retrieved.ID)

	_, err = repo.GetByNumber(tenantCtx, "EMP-9999")
	assert.Error(t, err)
}

func TestEmployeeRepository_List(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupEmployeeTenant(t, ctx, "test-list-employees")
	repo := repository.NewEmployeeRepository(suite.DB)
	tenantCtx := suite.TenantContext(tenant)

	hireDate := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	employees := []*repository.Employee{
		{FirstName: "Ana", LastName: "Vidal", HireDate: hireDate},
		{FirstName: "Pablo", LastName: "Moreno", HireDate: hireDate},
		{FirstName: "Carmen", LastName: "Iglesias", HireDate: hireDate, Status: "on_leave"},
	}
	for _, emp := range employees {
		require.NoError(t, repo.Create(tenantCtx, emp))
	}

	results, total, err := repo.List(tenantCtx, 1, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(3), total)
	assert.Len(t, results, 3)
	// Ordered by last name
	assert.Equal(t, "Iglesias", results[0].LastName)
}

func TestEmployeeRepository_Update(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupEmployeeTenant(t, ctx, "test-update-employee")
	repo := repository.NewEmployeeRepository(suite.DB)
	tenantCtx := suite.TenantContext(tenant)

	emp := &repository.Employee{
		FirstName: "Original",
		LastName:  "Name",
		HireDate:  time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(tenantCtx, emp))

	emp.FirstName = "Updated"
	emp.Status = "on_leave"
	emp.Department = testutil.PtrString("Logistics")
	require.NoError(t, repo.Update(tenantCtx, emp))

	updated, err := repo.GetByID(tenantCtx, emp.ID)
	require.NoError(t, err)

	assert.Equal(t, "Updated", updated.FirstName)
	assert.Equal(t, "on_leave", updated.Status)
	assert.Equal(t, "Logistics", *updated.Department)
}

func TestEmployeeRepository_SoftDelete(t *testing.T) {
	ctx := context.Background()

	tenant := suite.SetupEmployeeTenant(t, ctx, "test-delete-employee")
	repo := repository.NewEmployeeRepository(suite.DB)
	tenantCtx := suite.TenantContext(tenant)

	emp := &repository.Employee{
		FirstName: "ToDelete",
		LastName:  "Employee",
		HireDate:  time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(tenantCtx, emp))

	require.NoError(t, repo.SoftDelete(tenantCtx, emp.ID))

	deleted, err := repo.GetByID(tenantCtx, emp.ID)
	assert.Error(t, err)
	assert.Nil(t, deleted)

	exists, err := repo.Exists(tenantCtx, emp.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestEmployeeRepository_TenantIsolation(t *testing.T) {
	ctx := context.Background()

	tenant1 := suite.SetupEmployeeTenant(t, ctx, "test-emp-isolation-1")
	tenant2 := suite.SetupEmployeeTenant(t, ctx, "test-emp-isolation-2")

	repo := repository.NewEmployeeRepository(suite.DB)
	ctx1 := suite.TenantContext(tenant1)
	ctx2 := suite.TenantContext(tenant2)

	hireDate := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)

	emp1 := &repository.Employee{FirstName: "Tenant1", LastName: "Employee", HireDate: hireDate}
	require.NoError(t, repo.Create(ctx1, emp1))

	emp2 := &repository.Employee{FirstName: "Tenant2", LastName: "Employee", HireDate: hireDate}
	require.NoError(t, repo.Create(ctx2, emp2))

	results1, total1, err := repo.List(ctx1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total1)
	assert.Equal(t, "Tenant1", results1[0].FirstName)

	notFound, err := repo.GetByID(ctx1, emp2.ID)
	assert.Error(t, err)
	assert.Nil(t, notFound)

	notFound, err = repo.GetByID(ctx2, emp1.ID)
	assert.Error(t, err)
	assert.Nil(t, notFound)
}
