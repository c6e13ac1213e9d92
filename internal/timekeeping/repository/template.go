package repository

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shiftflow/shiftflow-backend/pkg/database"
	"github.com/shiftflow/shiftflow-backend/pkg/errors"
	"github.com/shiftflow/shiftflow-backend/pkg/tenant"
)

// ScheduleTemplate is a named weekly pattern that can be assigned to
// employees for specific calendar weeks.
type ScheduleTemplate struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
	CreatedBy   *string    `db:"created_by" json:"created_by,omitempty"`

	// Loaded separately, not a table column
	Days []*TemplateDay `db:"-" json:"days,omitempty"`
}

// TemplateDay is one weekday's shift within a template.
// Weekday: 0 = Monday .. 6 = Sunday. Times are wall-clock HH:MM strings;
// a day carries either a single interval or, when IsSplitShift, the
// morning and afternoon blocks.
type TemplateDay struct {
	ID         string `db:"id" json:"id"`
	TemplateID string `db:"template_id" json:"template_id"`
	Weekday    int    `db:"weekday" json:"weekday"`

	StartTime  *string `db:"start_time" json:"start_time,omitempty"`
	EndTime    *string `db:"end_time" json:"end_time,omitempty"`
	BreakStart *string `db:"break_start" json:"break_start,omitempty"`
	BreakEnd   *string `db:"break_end" json:"break_end,omitempty"`

	IsSplitShift   bool    `db:"is_split_shift" json:"is_split_shift"`
	MorningStart   *string `db:"morning_start" json:"morning_start,omitempty"`
	MorningEnd     *string `db:"morning_end" json:"morning_end,omitempty"`
	AfternoonStart *string `db:"afternoon_start" json:"afternoon_start,omitempty"`
	AfternoonEnd   *string `db:"afternoon_end" json:"afternoon_end,omitempty"`
}

// TemplateRepository handles schedule template persistence
type TemplateRepository struct {
	db *database.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *database.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a template together with its days in one transaction
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *TemplateRepository) Create(ctx context.Context, tpl *ScheduleTemplate) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	if tpl.ID == "" {
		tpl.ID = uuid.New().String()
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO schedule_templates (id, name, description, is_active, created_by)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`
		err := r.db.QueryRowxContext(ctx, query,
			tpl.ID, tpl.Name, tpl.Description, tpl.IsActive, tpl.CreatedBy,
		).Scan(&tpl.CreatedAt, &tpl.UpdatedAt)
		if err != nil {
			return err
		}

		return r.insertDays(ctx, tpl.ID, tpl.Days)
	})
}

// GetByID gets a template with its days
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*ScheduleTemplate, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var tpl ScheduleTemplate

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, name, description, is_active, created_at, updated_at, created_by
			FROM schedule_templates
			WHERE id = $1 AND deleted_at IS NULL
		`
		if err := r.db.GetContext(ctx, &tpl, query, id); err != nil {
			return err
		}

		daysQuery := `
			SELECT id, template_id, weekday, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end
			FROM template_days
			WHERE template_id = $1
			ORDER BY weekday
		`
		return r.db.SelectContext(ctx, &tpl.Days, daysQuery, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("schedule template")
	}
	if err != nil {
		return nil, err
	}

	return &tpl, nil
}

// GetDay gets one weekday of a template.
// Returns (nil, nil) when the template has no shift for that weekday.
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *TemplateRepository) GetDay(ctx context.Context, templateID string, weekday int) (*TemplateDay, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var day TemplateDay

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, template_id, weekday, start_time, end_time, break_start, break_end,
			       is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end
			FROM template_days
			WHERE template_id = $1 AND weekday = $2
		`
		return r.db.GetContext(ctx, &day, query, templateID, weekday)
	})

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &day, nil
}

// List lists templates with pagination, without their days
// TENANT-ISOLATED: Returns only templates from the tenant's schema
func (r *TemplateRepository) List(ctx context.Context, page, perPage int) ([]*ScheduleTemplate, int64, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, 0, err // Fail-fast if tenant context missing
	}

	var total int64
	var templates []*ScheduleTemplate

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		countQuery := `SELECT COUNT(*) FROM schedule_templates WHERE deleted_at IS NULL`
		if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
			return err
		}

		offset := (page - 1) * perPage
		query := `
			SELECT id, name, description, is_active, created_at, updated_at, created_by
			FROM schedule_templates
			WHERE deleted_at IS NULL
			ORDER BY name
			LIMIT $1 OFFSET $2
		`
		return r.db.SelectContext(ctx, &templates, query, perPage, offset)
	})

	if err != nil {
		return nil, 0, err
	}

	return templates, total, nil
}

// Update updates a template and replaces its days
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *TemplateRepository) Update(ctx context.Context, tpl *ScheduleTemplate) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE schedule_templates SET
				name = $2, description = $3, is_active = $4, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`
		result, err := r.db.ExecContext(ctx, query, tpl.ID, tpl.Name, tpl.Description, tpl.IsActive)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("schedule template")
		}

		if _, err := r.db.ExecContext(ctx, `DELETE FROM template_days WHERE template_id = $1`, tpl.ID); err != nil {
			return err
		}

		return r.insertDays(ctx, tpl.ID, tpl.Days)
	})
}

// SoftDelete soft deletes a template.
// Fails with a conflict when the template is still assigned to any week.
// TENANT-ISOLATED: Soft deletes only in the tenant's schema
func (r *TemplateRepository) SoftDelete(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		var inUse bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM weekly_schedule_assignments WHERE template_id = $1)`
		if err := r.db.GetContext(ctx, &inUse, checkQuery, id); err != nil {
			return err
		}
		if inUse {
			return errors.NewWithKey("TEMPLATE_IN_USE", "schedule.template_in_use", http.StatusConflict)
		}

		query := `UPDATE schedule_templates SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("schedule template")
		}

		return nil
	})
}

func (r *TemplateRepository) insertDays(ctx context.Context, templateID string, days []*TemplateDay) error {
	for _, day := range days {
		if day.ID == "" {
			day.ID = uuid.New().String()
		}
		day.TemplateID = templateID

		query := `
			INSERT INTO template_days (
				id, template_id, weekday, start_time, end_time, break_start, break_end,
				is_split_shift, morning_start, morning_end, afternoon_start, afternoon_end
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`
		_, err := r.db.ExecContext(ctx, query,
			day.ID, day.TemplateID, day.Weekday, day.StartTime, day.EndTime, day.BreakStart, day.BreakEnd,
			day.IsSplitShift, day.MorningStart, day.MorningEnd, day.AfternoonStart, day.AfternoonEnd,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
