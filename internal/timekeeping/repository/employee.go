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

// Employee represents an employee tracked by the timekeeping system
type Employee struct {
	ID             string  `db:"id" json:"id"`
	EmployeeNumber *string `db:"employee_number" json:"employee_number,omitempty"`

	FirstName string  `db:"first_name" json:"first_name"`
	LastName  string  `db:"last_name" json:"last_name"`
	Email     *string `db:"email" json:"email,omitempty"`
	Phone     *string `db:"phone" json:"phone,omitempty"`

	JobTitle        *string    `db:"job_title" json:"job_title,omitempty"`
	Department      *string    `db:"department" json:"department,omitempty"`
	HireDate        time.Time  `db:"hire_date" json:"hire_date"`
	TerminationDate *time.Time `db:"termination_date" json:"termination_date,omitempty"`

	Status    string     `db:"status" json:"status"` // active, on_leave, suspended, terminated, pending
	Notes     *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
	CreatedBy *string    `db:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string    `db:"updated_by" json:"updated_by,omitempty"`
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create creates a new employee
// TENANT-ISOLATED: Inserts into the tenant's schema
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}
	if emp.Status == "" {
		emp.Status = "active"
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			INSERT INTO employees (
				id, employee_number, first_name, last_name, email, phone,
				job_title, department, hire_date, termination_date, status, notes, created_by
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
			) RETURNING created_at, updated_at
		`

		return r.db.QueryRowxContext(ctx, query,
			emp.ID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
			emp.JobTitle, emp.Department, emp.HireDate, emp.TerminationDate, emp.Status, emp.Notes, emp.CreatedBy,
		).Scan(&emp.CreatedAt, &emp.UpdatedAt)
	})
}

// GetByID gets an employee by ID
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var emp Employee

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_number, first_name, last_name, email, phone,
			       job_title, department, hire_date, termination_date, status, notes,
			       created_at, updated_at, created_by, updated_by
			FROM employees
			WHERE id = $1 AND deleted_at IS NULL
		`

		return r.db.GetContext(ctx, &emp, query, id)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// GetByNumber gets an employee by employee number
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *EmployeeRepository) GetByNumber(ctx context.Context, employeeNumber string) (*Employee, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, err // Fail-fast if tenant context missing
	}

	var emp Employee

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			SELECT id, employee_number, first_name, last_name, email, phone,
			       job_title, department, hire_date, termination_date, status, notes,
			       created_at, updated_at, created_by, updated_by
			FROM employees
			WHERE employee_number = $1 AND deleted_at IS NULL
		`

		return r.db.GetContext(ctx, &emp, query, employeeNumber)
	})

	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}

	return &emp, nil
}

// List lists employees with pagination
// TENANT-ISOLATED: Returns only employees from the tenant's schema
func (r *EmployeeRepository) List(ctx context.Context, page, perPage int) ([]*Employee, int64, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return nil, 0, err // Fail-fast if tenant context missing
	}

	var total int64
	var employees []*Employee

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		countQuery := `SELECT COUNT(*) FROM employees WHERE deleted_at IS NULL`
		if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
			return err
		}

		offset := (page - 1) * perPage
		query := `
			SELECT id, employee_number, first_name, last_name, email, phone,
			       job_title, department, hire_date, termination_date, status, notes,
			       created_at, updated_at, created_by, updated_by
			FROM employees
			WHERE deleted_at IS NULL
			ORDER BY last_name, first_name
			LIMIT $1 OFFSET $2
		`

		return r.db.SelectContext(ctx, &employees, query, perPage, offset)
	})

	if err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

// Update updates an employee
// TENANT-ISOLATED: Updates only in the tenant's schema
func (r *EmployeeRepository) Update(ctx context.Context, emp *Employee) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `
			UPDATE employees SET
				employee_number = $2, first_name = $3, last_name = $4, email = $5, phone = $6,
				job_title = $7, department = $8, hire_date = $9, termination_date = $10,
				status = $11, notes = $12, updated_by = $13, updated_at = NOW()
			WHERE id = $1 AND deleted_at IS NULL
		`

		result, err := r.db.ExecContext(ctx, query,
			emp.ID, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Email, emp.Phone,
			emp.JobTitle, emp.Department, emp.HireDate, emp.TerminationDate,
			emp.Status, emp.Notes, emp.UpdatedBy,
		)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("employee")
		}

		return nil
	})
}

// SoftDelete soft deletes an employee
// TENANT-ISOLATED: Soft deletes only in the tenant's schema
func (r *EmployeeRepository) SoftDelete(ctx context.Context, id string) error {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return err // Fail-fast if tenant context missing
	}

	return r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `UPDATE employees SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
		result, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, _ := result.RowsAffected()
		if affected == 0 {
			return errors.NotFound("employee")
		}

		return nil
	})
}

// Exists reports whether an employee exists and is not soft deleted
// TENANT-ISOLATED: Queries only the tenant's schema
func (r *EmployeeRepository) Exists(ctx context.Context, id string) (bool, error) {
	tenantSchema, err := tenant.TenantSchema(ctx)
	if err != nil {
		return false, err // Fail-fast if tenant context missing
	}

	var exists bool

	err = r.db.WithTenantSchema(ctx, tenantSchema, func(ctx context.Context) error {
		query := `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1 AND deleted_at IS NULL)`
		return r.db.GetContext(ctx, &exists, query, id)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}
