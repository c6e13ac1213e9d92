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

// BaseSchedule is an employee's recurring schedule for one weekday.
// Weekday uses ISO numbering shifted to zero: 0 = Monday .. 6 = Sunday.
// All times are wall-clock HH:MM strings without timezone.
type BaseSchedule struct {
	ID         string `db:"id" json:"id"`
	EmployeeID string `db:"employee_id" json:"employee_id"`
	Weekday    int    `db:"weekday" json:"weekday"`

	// A non-working weekday row means the employee explicitly does not
	// work that day; times are absent in that case.
	IsWorkingDay bool    `db:"is_working_day" json:"is_working_day"`
	StartTime    *string `db:"start_time" json:"start_time,omitempty"`
	EndTime      *string `db:"end_time" json:"end_time,omitempty"`
	BreakStart   *string `db:"break_start" json:"break_start,omitempty"`
	BreakEnd     *string `db:"break_end" json:"break_end,omitempty"`

	IsSplitShift   bool    `db:"is_split_shift" json:"is_split_shift"`
	MorningStart   *string `db:"morning_start" json:"morning_start,omitempty"`
	MorningEnd     *string `db:"morning_end" json:"morning_end,omitempty"`
	AfternoonStart *string `db:"afternoon_start" json:"afternoon_start,omitempty"`
	AfternoonEnd   *string `db:"afternoon_end" json:"afternoon_end,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// BaseScheduleRepository handles base schedule persistence
type BaseScheduleRepository struct {
	db *database.DB
}

// NewBaseScheduleRepository creates a new base schedule repository
func NewBaseScheduleRepository(db *database.DB) *BaseScheduleRepository {
	return &BaseScheduleRepository{db: db}
}

// Upsert creates or replaces the schedule for an employee's weekday
// TENANT-ISOLATED: Writes only into the tenant's schema
func (r *BaseScheduleRepository) Upsert(ctx context.Context, bs *BaseSchedule) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	if bs.ID == "" {
		bs.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO base_schedules (
				id, employee_id, weekday, is_working_day, start_time, end_time, break_start, break_end,
				is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (employee_id, weekday)
			DO UPDATE SET
				is_working_day = $4, start_time = $5, end_time = $6, break_start = $7, break_end = $8,
				is_split_shift = $9, morning_start = $10, morning_end = $11,
				afternoon_start = $12, afternoon_end = $13, updated_at = NOW()
			RETURNING id, created_at, updated_at
		`

		return r.db.QueryRowxContext(ctx, query,
			bs.ID, bs.EmployeeID, bs.Weekday, bs.IsWorkingDay, bs.StartTime, bs.EndTime, bs.BreakStart, bs.BreakEnd,
			bs.IsSplitShift, bs.MorningStart, bs.MorningEnd, bs.AfternoonStart, bs.AfternoonEnd,
		).Scan(&bs.ID, &bs.CreatedAt, &bs.UpdatedAt)
	})
}

// GetForWeekday gets an employee's schedule for one weekday.
// Returns (nil, nil) when no schedule is configured for that weekday.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *BaseScheduleRepository) GetForWeekday(ctx context.Context, employeeID string, weekday int) (*BaseSchedule, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var bs BaseSchedule

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, weekday, is_working_day, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end,
			       created_at, updated_at
			FROM base_schedules
			WHERE employee_id = $1 AND weekday = $2
		`
		return r.db.GetContext(ctx, &bs, query, employeeID, weekday)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &bs, nil
}

// ListForEmployee lists all configured weekdays for an employee, Monday first
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *BaseScheduleRepository) ListForEmployee(ctx context.Context, employeeID string) ([]*BaseSchedule, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var schedules []*BaseSchedule

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, weekday, is_working_day, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end,
			       created_at, updated_at
			FROM base_schedules
			WHERE employee_id = $1
			ORDER BY weekday
		`
		return r.db.SelectContext(ctx, &schedules, query, employeeID)
	})

	if err != nil {
		return nil, err
	}

	return schedules, nil
}

// Delete removes the schedule for an employee's weekday
// TENANT-ISOLATED: Deletes only from the tenant's schema
func (r *BaseScheduleRepository) Delete(ctx context.Context, employeeID string, weekday int) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `DELETE FROM base_schedules WHERE employee_id = $1 AND weekday = $2`
		result, err := r.db.ExecContext(ctx, query, employeeID, weekday)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("base schedule")
		}

		return nil
	})
}
