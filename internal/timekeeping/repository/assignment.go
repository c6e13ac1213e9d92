package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shiftflow/shiftflow-backend/pkg/database"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/tenant"
)

// WeeklyScheduleAssignment binds a template to an employee for one ISO week.
// Year and WeekNumber follow ISO-8601 week numbering, so a date in early
// January can belong to the previous year's last week.
type WeeklyScheduleAssignment struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	TemplateID string    `db:"template_id" json:"template_id"`
	Year       int       `db:"year" json:"year"`
	WeekNumber int       `db:"week_number" json:"week_number"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
}

// AssignmentRepository handles weekly schedule assignment persistence
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Upsert assigns a template to an employee's week, replacing any existing
// assignment for the same (employee, year, week). The returned bool reports
// whether an existing assignment was replaced.
// TENANT-ISOLATED: Writes only into the tenant's schema
func (r *AssignmentRepository) Upsert(ctx context.Context, a *WeeklyScheduleAssignment) (bool, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return false, err // Fail-fast if tenant context missing
	}

	if a.ID == "" {
		a.ID = uuid.New().String()
	}

	var replaced bool

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		// xmax = 0 only for freshly inserted rows
		query := `
			INSERT INTO weekly_schedule_assignments (id, employee_id, template_id, year, week_number, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (employee_id, year, week_number)
			DO UPDATE SET template_id = $3, updated_at = NOW()
			RETURNING id, created_at, updated_at, (xmax <> 0) AS replaced
		`
		return r.db.QueryRowxContext(ctx, query,
			a.ID, a.EmployeeID, a.TemplateID, a.Year, a.WeekNumber, a.CreatedBy,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &replaced)
	})

	if err != nil {
		return false, err
	}

	return replaced, nil
}

// GetForWeek gets the assignment for an employee's ISO week.
// Returns (nil, nil) when no template is assigned to that week.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *AssignmentRepository) GetForWeek(ctx context.Context, employeeID string, year, weekNumber int) (*WeeklyScheduleAssignment, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var a WeeklyScheduleAssignment

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, template_id, year, week_number, created_at, updated_at, created_by
			FROM weekly_schedule_assignments
			WHERE employee_id = $1 AND year = $2 AND week_number = $3
		`
		return r.db.GetContext(ctx, &a, query, employeeID, year, weekNumber)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// ListForYear lists an employee's assignments for one ISO year, week order
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *AssignmentRepository) ListForYear(ctx context.Context, employeeID string, year int) ([]*WeeklyScheduleAssignment, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var assignments []*WeeklyScheduleAssignment

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, template_id, year, week_number, created_at, updated_at, created_by
			FROM weekly_schedule_assignments
			WHERE employee_id = $1 AND year = $2
			ORDER BY week_number
		`
		return r.db.SelectContext(ctx, &assignments, query, employeeID, year)
	})

	if err != nil {
		return nil, err
	}

	return assignments, nil
}

// Delete removes the assignment for an employee's ISO week
// TENANT-ISOLATED: Deletes only from the tenant's schema
func (r *AssignmentRepository) Delete(ctx context.Context, employeeID string, year, weekNumber int) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `DELETE FROM weekly_schedule_assignments WHERE employee_id = $1 AND year = $2 AND week_number = $3`
		result, err := r.db.ExecContext(ctx, query, employeeID, year, weekNumber)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("weekly schedule assignment")
		}

		return nil
	})
}
