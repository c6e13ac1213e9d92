package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shiftflow/shiftflow-backend/pkg/database"
	"github.com/shiftflow/shiftflow-backend/pkg/tenant"
)

// Attendance record types
const (
	RecordTypeCheckIn  = "checkin"
	RecordTypeCheckOut = "checkout"
)

// AttendanceRecord is one punch in the append-only attendance log.
// Records are never updated or deleted; corrections are new manual records.
type AttendanceRecord struct {
	ID         string    `db:"id" json:"id"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	RecordType string    `db:"record_type" json:"record_type"` // checkin, checkout
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
	DeviceID   *string   `db:"device_id" json:"device_id,omitempty"`
	Location   *string   `db:"location" json:"location,omitempty"`
	IsManual   bool      `db:"is_manual" json:"is_manual"`
	Notes      *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
}

// AttendanceRepository handles attendance record persistence
type AttendanceRepository struct {
	db *database.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *database.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Create appends a record to the attendance log
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *AttendanceRepository) Create(ctx context.Context, rec *AttendanceRecord) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO attendance_records (
				id, employee_id, record_type, recorded_at, device_id, location, is_manual, notes, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING created_at
		`
		return r.db.QueryRowxContext(ctx, query,
			rec.ID, rec.EmployeeID, rec.RecordType, rec.RecordedAt,
			rec.DeviceID, rec.Location, rec.IsManual, rec.Notes, rec.CreatedBy,
		).Scan(&rec.CreatedAt)
	})
}

// ListForRange lists an employee's records with recorded_at in [from, to),
// ordered by recorded_at ascending. Callers that pair punches into work
// intervals rely on this ordering.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *AttendanceRepository) ListForRange(ctx context.Context, employeeID string, from, to time.Time) ([]*AttendanceRecord, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var records []*AttendanceRecord

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, record_type, recorded_at, device_id, location, is_manual, notes, created_at, created_by
			FROM attendance_records
			WHERE employee_id = $1 AND recorded_at >= $2 AND recorded_at < $3
			ORDER BY recorded_at, created_at
		`
		return r.db.SelectContext(ctx, &records, query, employeeID, from, to)
	})

	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetLastForEmployee gets an employee's most recent record before a point in time.
// Returns (nil, nil) when the employee has no records yet.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *AttendanceRepository) GetLastForEmployee(ctx context.Context, employeeID string, before time.Time) (*AttendanceRecord, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var rec AttendanceRecord
	found := false

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_id, record_type, recorded_at, device_id, location, is_manual, notes, created_at, created_by
			FROM attendance_records
			WHERE employee_id = $1 AND recorded_at < $2
			ORDER BY recorded_at DESC, created_at DESC
			LIMIT 1
		`
		var records []*AttendanceRecord
		if err := r.db.SelectContext(ctx, &records, query, employeeID, before); err != nil {
			return err
		}
		if len(records) > 0 {
			rec = *records[0]
			found = true
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return &rec, nil
}
