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

// AttendanceDevice is a physical terminal that records punches.
// Only the bcrypt hash of a device secret is stored; the plaintext is
// shown once at registration time.
type AttendanceDevice struct {
	ID         string     `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Location   *string    `db:"location" json:"location,omitempty"`
	SecretHash string     `db:"secret_hash" json:"-"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	LastSeenAt *time.Time `db:"last_seen_at" json:"last_seen_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// DeviceRepository handles attendance device persistence
type DeviceRepository struct {
	db *database.DB
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(db *database.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// Create registers a device
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *DeviceRepository) Create(ctx context.Context, dev *AttendanceDevice) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	if dev.ID == "" {
		dev.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO attendance_devices (id, name, location, secret_hash, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`
		return r.db.QueryRowxContext(ctx, query,
			dev.ID, dev.Name, dev.Location, dev.SecretHash, dev.IsActive,
		).Scan(&dev.CreatedAt, &dev.UpdatedAt)
	})
}

// GetByID gets a device by ID
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*AttendanceDevice, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var dev AttendanceDevice

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, name, location, secret_hash, is_active, last_seen_at, created_at, updated_at
			FROM attendance_devices
			WHERE id = $1
		`
		return r.db.GetContext(ctx, &dev, query, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFoundWithKey("attendance.device_not_found")
	}
	if err != nil {
		return nil, err
	}

	return &dev, nil
}

// List lists devices, newest first
// TENANT-ISOLATED: Returns only devices from the tenant's schema
func (r *DeviceRepository) List(ctx context.Context) ([]*AttendanceDevice, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var devices []*AttendanceDevice

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, name, location, secret_hash, is_active, last_seen_at, created_at, updated_at
			FROM attendance_devices
			ORDER BY created_at DESC
		`
		return r.db.SelectContext(ctx, &devices, query)
	})

	if err != nil {
		return nil, err
	}

	return devices, nil
}

// Deactivate marks a device inactive; its token stops working at next validation
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *DeviceRepository) Deactivate(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE attendance_devices SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFoundWithKey("attendance.device_not_found")
		}

		return nil
	})
}

// TouchLastSeen records that a device just authenticated or punched
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *DeviceRepository) TouchLastSeen(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE attendance_devices SET last_seen_at = NOW() WHERE id = $1`
		_, err := r.db.ExecContext(ctx, query, id)
		return err
	})
}
