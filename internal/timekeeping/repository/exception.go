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

// DailyException overrides an employee's schedule for a single date.
// An active exception wins over both weekly assignments and base schedules.
type DailyException struct {
	ID            string    `db:"id" json:"id"`
	EmployeeID    string    `db:"employee_id" json:"employee_id"`
	ExceptionDate time.Time `db:"exception_date" json:"exception_date"`

	// A non-working exception overrides the day to a day off; times are
	// absent in that case.
	IsWorkingDay bool    `db:"is_working_day" json:"is_working_day"`
	StartTime    *string `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string `db:"end_time" json:"end_time,omitempty"`
	BreakStart *string `db:"break_start" json:"break_start,omitempty"`
	BreakEnd   *string `db:"break_end" json:"break_end,omitempty"`

	IsSplitShift   bool    `db:"is_split_shift" json:"is_split_shift"`
	MorningStart   *string `db:"morning_start" json:"morning_start,omitempty"`
	MorningEnd     *string `db:"morning_end" json:"morning_end,omitempty"`
	AfternoonStart *string `db:"afternoon_start" json:"afternoon_start,omitempty"`
	AfternoonEnd   *string `db:"afternoon_end" json:"afternoon_end,omitempty"`

	Reason    *string   `db:"reason" json:"reason,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
}

// ExceptionRepository handles daily exception persistence
type ExceptionRepository struct {
	db *database.DB
}

// NewExceptionRepository creates a new exception repository
func NewExceptionRepository(db *database.DB) *ExceptionRepository {
	return &ExceptionRepository{db: db}
}

// Create creates an exception for an employee's date
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *ExceptionRepository) Create(ctx context.Context, ex *DailyException) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	if ex.ID == "" {
		ex.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO daily_exceptions (
				id, employee_id, exception_date, is_working_day, start_time, end_time, break_start, break_end,
				is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end,
				reason, is_active, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			ex.ID, ex.EmployeeID, ex.ExceptionDate, ex.IsWorkingDay, ex.StartTime, ex.EndTime, ex.BreakStart, ex.BreakEnd,
			ex.IsSplitShift, ex.MorningStart, ex.MorningEnd, ex.AfternoonStart, ex.AfternoonEnd,
			ex.Reason, ex.IsActive, ex.CreatedBy,
		).Scan(&ex.CreatedAt, &ex.UpdatedAt)
	})
}

// GetByID gets an exception by ID
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ExceptionRepository) GetByID(ctx context.Context, id string) (*DailyException, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var ex DailyException

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, exception_date, is_working_day, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end,
			       reason, is_active, created_at, updated_at, created_by
			FROM daily_exceptions
			WHERE id = $1
		`
		return r.db.GetContext(ctx, &ex, query, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("daily exception")
	}
	if err != nil {
		return nil, err
	}

	return &ex, nil
}

// GetActiveForDate gets the active exception for an employee's date.
// Returns (nil, nil) when no active exception exists. Inactive exceptions
// are invisible to schedule resolution.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ExceptionRepository) GetActiveForDate(ctx context.Context, employeeID string, date time.Time) (*DailyException, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var ex DailyException

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, exception_date, is_working_day, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end,
			       reason, is_active, created_at, updated_at, created_by
			FROM daily_exceptions
			WHERE employee_id = $1 AND exception_date = $2 AND is_active
		`
		return r.db.GetContext(ctx, &ex, query, employeeID, date.Format("2006-01-02"))
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ex, nil
}

// ListForRange lists an employee's exceptions within a date range, both bounds inclusive
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *ExceptionRepository) ListForRange(ctx context.Context, employeeID string, from, to time.Time) ([]*DailyException, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var exceptions []*DailyException

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, exception_date, is_working_day, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end,
			       reason, is_active, created_at, updated_at, created_by
			FROM daily_exceptions
			WHERE employee_id = $1 AND exception_date BETWEEN $2 AND $3
			ORDER BY exception_date
		`
		return r.db.SelectContext(ctx, &exceptions, query, employeeID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	})

	if err != nil {
		return nil, err
	}

	return exceptions, nil
}

// Update updates an exception
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *ExceptionRepository) Update(ctx context.Context, ex *DailyException) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE daily_exceptions SET
				is_working_day = $2, start_time = $3, end_time = $4, break_start = $5, break_end = $6,
				is_split_shift = $7, morning_start = $8, morning_end = $9,
				afternoon_start = $10, afternoon_end = $11,
				reason = $12, is_active = $13, updated_at = NOW()
			WHERE id = $1
		`
		result, err := r.db.ExecContext(ctx, query,
			ex.ID, ex.IsWorkingDay, ex.StartTime, ex.EndTime, ex.BreakStart, ex.BreakEnd,
			ex.IsSplitShift, ex.MorningStart, ex.MorningEnd,
			ex.AfternoonStart, ex.AfternoonEnd,
			ex.Reason, ex.IsActive,
		)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("daily exception")
		}

		return nil
	})
}

// Delete removes an exception
// TENANT-ISOLATED: Deletes only from the tenant's schema
func (r *ExceptionRepository) Delete(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `DELETE FROM daily_exceptions WHERE id = $1`
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("daily exception")
		}

		return nil
	})
}
