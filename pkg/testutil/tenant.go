package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shiftflow/shiftflow-backend/pkg/tenant"
)

// TestTenant represents a tenant created for testing
type TestTenant struct {
	ID         string
	Name       string
	Slug       string
	SchemaName string
}

// TenantManager manages test tenant schemas
type TenantManager struct {
	db      *sqlx.DB
	tenants []TestTenant
	mu      sync.Mutex
}

// NewTenantManager creates a new tenant manager for tests
func NewTenantManager(db *sqlx.DB) *TenantManager {
	return &TenantManager{
		db:      db,
		tenants: make([]TestTenant, 0),
	}
}

// CreateTenant creates a new isolated tenant schema for testing.
// Each test can have its own tenant to ensure complete isolation.
//
// Usage:
//
//	tm := testutil.NewTenantManager(db)
//	tenant := tm.CreateTenant(ctx, "acme-retail")
//	ctx = testutil.WithTestTenant(ctx, tenant)
//
//	// Now all repository operations will use this tenant's schema
//	emp, err := employeeRepo.GetByID(ctx, employeeID)
func (tm *TenantManager) CreateTenant(ctx context.Context, name string) (*TestTenant, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	id := uuid.New().String()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	schemaName := fmt.Sprintf("tenant_%s", strings.ReplaceAll(slug, "-", "_"))

	// Create schema
	_, err := tm.db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	if err != nil {
		return nil, fmt.Errorf("failed to create tenant schema: %w", err)
	}

	// Register tenant in public.tenants
	_, err = tm.db.ExecContext(ctx, `
		INSERT INTO public.tenants (id, name, slug, schema_name, subscription_status)
		VALUES ($1, $2, $3, $4, 'active')
		ON CONFLICT (slug) DO NOTHING
	`, id, name, slug, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to register tenant: %w", err)
	}

	t := TestTenant{
		ID:         id,
		Name:       name,
		Slug:       slug,
		SchemaName: schemaName,
	}

	tm.tenants = append(tm.tenants, t)
	return &t, nil
}

// CreateTenantWithMigrations creates a tenant and applies the given migrations
func (tm *TenantManager) CreateTenantWithMigrations(ctx context.Context, name string, migrations []string) (*TestTenant, error) {
	t, err := tm.CreateTenant(ctx, name)
	if err != nil {
		return nil, err
	}

	// Set search_path and apply migrations
	for _, migration := range migrations {
		_, err = tm.db.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s, public", t.SchemaName))
		if err != nil {
			return nil, fmt.Errorf("failed to set search_path: %w", err)
		}

		_, err = tm.db.ExecContext(ctx, migration)
		if err != nil {
			return nil, fmt.Errorf("failed to apply migration: %w", err)
		}
	}

	// Reset search_path
	_, err = tm.db.ExecContext(ctx, "SET search_path TO public")
	if err != nil {
		return nil, fmt.Errorf("failed to reset search_path: %w", err)
	}

	return t, nil
}

// DropTenant removes a tenant schema completely
func (tm *TenantManager) DropTenant(ctx context.Context, t *TestTenant) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	// Drop schema with CASCADE (removes all objects)
	_, err := tm.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", t.SchemaName))
	if err != nil {
		return fmt.Errorf("failed to drop tenant schema: %w", err)
	}

	// Remove from tenants table
	_, err = tm.db.ExecContext(ctx, "DELETE FROM public.tenants WHERE id = $1", t.ID)
	if err != nil {
		return fmt.Errorf("failed to delete tenant record: %w", err)
	}

	// Remove from tracked tenants
	for i, tracked := range tm.tenants {
		if tracked.ID == t.ID {
			tm.tenants = append(tm.tenants[:i], tm.tenants[i+1:]...)
			break
		}
	}

	return nil
}

// Cleanup drops all tenant schemas created by this manager.
// Call this in TestMain or test cleanup.
func (tm *TenantManager) Cleanup(ctx context.Context) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var lastErr error
	for _, t := range tm.tenants {
		_, err := tm.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", t.SchemaName))
		if err != nil {
			lastErr = err
		}
		_, err = tm.db.ExecContext(ctx, "DELETE FROM public.tenants WHERE id = $1", t.ID)
		if err != nil {
			lastErr = err
		}
	}

	tm.tenants = make([]TestTenant, 0)
	return lastErr
}

// WithTestTenant creates a context with tenant information for testing.
// This is the primary way to set up tenant context in tests.
func WithTestTenant(ctx context.Context, t *TestTenant) context.Context {
	return tenant.WithTenantContext(ctx, t.ID, t.Slug, t.SchemaName)
}

// WithTestTenantValues creates a context with custom tenant values.
// Useful for testing error cases or edge conditions.
func WithTestTenantValues(ctx context.Context, id, slug, schema string) context.Context {
	return tenant.WithTenantContext(ctx, id, slug, schema)
}

// TestTenantContext creates a context with a fake tenant for simple unit tests
// that don't need actual database isolation.
func TestTenantContext() context.Context {
	return tenant.WithTenantContext(
		context.Background(),
		"test-tenant-id",
		"test-tenant",
		"tenant_test",
	)
}


// EmployeeMigrations returns the employee table migrations for tests
func EmployeeMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_number VARCHAR(50) UNIQUE,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(50),
			job_title VARCHAR(255),
			department VARCHAR(100),
			hire_date DATE NOT NULL,
			termination_date DATE,
			status VARCHAR(50) NOT NULL DEFAULT 'active',
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			created_by UUID,
			updated_by UUID,
			CONSTRAINT employees_status_valid CHECK (status IN ('active', 'on_leave', 'suspended', 'terminated', 'pending'))
		)`,

		`CREATE INDEX IF NOT EXISTS idx_employees_number ON employees(employee_number) WHERE deleted_at IS NULL`,
		`CREATE INDEX IF NOT EXISTS idx_employees_status ON employees(status) WHERE deleted_at IS NULL`,
	}
}

// ScheduleMigrations returns the schedule table migrations for tests.
// These should be applied AFTER EmployeeMigrations (they reference employees).
func ScheduleMigrations() []string {
	return []string{
		// Per-weekday recurring schedules. Times are wall-clock HH:MM strings.
		`CREATE TABLE IF NOT EXISTS base_schedules (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			weekday INT NOT NULL,
			is_working_day BOOLEAN NOT NULL DEFAULT TRUE,
			start_time VARCHAR(5),
			end_time VARCHAR(5),
			break_start VARCHAR(5),
			break_end VARCHAR(5),
			is_split_shift BOOLEAN NOT NULL DEFAULT FALSE,
			morning_start VARCHAR(5),
			morning_end VARCHAR(5),
			afternoon_start VARCHAR(5),
			afternoon_end VARCHAR(5),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT base_schedules_weekday_range CHECK (weekday BETWEEN 0 AND 6),
			CONSTRAINT base_schedules_unique UNIQUE (employee_id, weekday)
		)`,

		`CREATE TABLE IF NOT EXISTS schedule_templates (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ,
			created_by UUID
		)`,

		`CREATE TABLE IF NOT EXISTS template_days (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			template_id UUID NOT NULL REFERENCES schedule_templates(id) ON DELETE CASCADE,
			weekday INT NOT NULL,
			start_time VARCHAR(5),
			end_time VARCHAR(5),
			break_start VARCHAR(5),
			break_end VARCHAR(5),
			is_split_shift BOOLEAN NOT NULL DEFAULT FALSE,
			morning_start VARCHAR(5),
			morning_end VARCHAR(5),
			afternoon_start VARCHAR(5),
			afternoon_end VARCHAR(5),
			CONSTRAINT template_days_weekday_range CHECK (weekday BETWEEN 0 AND 6),
			CONSTRAINT template_days_unique UNIQUE (template_id, weekday)
		)`,

		`CREATE TABLE IF NOT EXISTS weekly_schedule_assignments (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			template_id UUID NOT NULL REFERENCES schedule_templates(id) ON DELETE CASCADE,
			year INT NOT NULL,
			week_number INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by UUID,
			CONSTRAINT assignments_week_number_range CHECK (week_number BETWEEN 1 AND 53),
			CONSTRAINT assignments_unique UNIQUE (employee_id, year, week_number)
		)`,

		`CREATE TABLE IF NOT EXISTS daily_exceptions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			exception_date DATE NOT NULL,
			is_working_day BOOLEAN NOT NULL DEFAULT TRUE,
			start_time VARCHAR(5),
			end_time VARCHAR(5),
			break_start VARCHAR(5),
			break_end VARCHAR(5),
			is_split_shift BOOLEAN NOT NULL DEFAULT FALSE,
			morning_start VARCHAR(5),
			morning_end VARCHAR(5),
			afternoon_start VARCHAR(5),
			afternoon_end VARCHAR(5),
			reason TEXT,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by UUID,
			CONSTRAINT exceptions_unique UNIQUE (employee_id, exception_date)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_base_schedules_employee ON base_schedules(employee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_template_days_template ON template_days(template_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_employee_week ON weekly_schedule_assignments(employee_id, year, week_number)`,
		`CREATE INDEX IF NOT EXISTS idx_exceptions_employee_date ON daily_exceptions(employee_id, exception_date) WHERE is_active`,
	}
}

// AttendanceMigrations returns the attendance table migrations for tests.
// These should be applied AFTER EmployeeMigrations (they reference employees).
func AttendanceMigrations() []string {
	return []string{
		// Append-only punch log
		`CREATE TABLE IF NOT EXISTS attendance_records (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			employee_id UUID NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			record_type VARCHAR(10) NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			device_id UUID,
			location VARCHAR(255),
			is_manual BOOLEAN NOT NULL DEFAULT FALSE,
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_by UUID,
			CONSTRAINT attendance_record_type_valid CHECK (record_type IN ('checkin', 'checkout'))
		)`,

		`CREATE TABLE IF NOT EXISTS attendance_devices (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			location VARCHAR(255),
			secret_hash VARCHAR(255) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			last_seen_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_attendance_employee_time ON attendance_records(employee_id, recorded_at)`,
	}
}

// TimekeepingMigrations returns the full migration set for a tenant schema in tests
func TimekeepingMigrations() []string {
	migrations := EmployeeMigrations()
	migrations = append(migrations, ScheduleMigrations()...)
	migrations = append(migrations, AttendanceMigrations()...)
	return migrations
}
