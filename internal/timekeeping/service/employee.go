package service

import (
	"context"

	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/events"
	"github.com/shiftflow/shiftflow-backend/internal/timekeeping/repository"
	"github.com/shiftflow/shiftflow-backend/pkg/logger"
)

// EmployeeService handles employee business logic
type EmployeeService struct {
	employeeRepo *repository.EmployeeRepository
	publisher    *events.TimekeepingEventPublisher
	logger       *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	employeeRepo *repository.EmployeeRepository,
	publisher *events.TimekeepingEventPublisher,
	log *logger.Logger,
) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		publisher:    publisher,
		logger:       log,
	}
}

// Create creates a new employee
func (s *EmployeeService) Create(ctx context.Context, emp *repository.Employee) error {
	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return err
	}

	// Publish event
	s.publisher.PublishEmployeeCreated(ctx, emp)

	return nil
}

// GetByID gets an employee by ID
func (s *EmployeeService) GetByID(ctx context.Context, id string) (*repository.Employee, error) {
	return s.employeeRepo.GetByID(ctx, id)
}

// GetByNumber gets an employee by their employee number
func (s *EmployeeService) GetByNumber(ctx context.Context, number string) (*repository.Employee, error) {
	return s.employeeRepo.GetByNumber(ctx, number)
}

// List lists employees with pagination
func (s *EmployeeService) List(ctx context.Context, page, perPage int) ([]*repository.Employee, int64, error) {
	return s.employeeRepo.List(ctx, page, perPage)
}

// Update updates an employee
func (s *EmployeeService) Update(ctx context.Context, emp *repository.Employee) error {
	if err := s.employeeRepo.Update(ctx, emp); err != nil {
		return err
	}

	// Publish event
	s.publisher.PublishEmployeeUpdated(ctx, emp)

	return nil
}

// Delete soft deletes an employee
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	if err := s.employeeRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	// Publish event
	s.publisher.PublishEmployeeDeleted(ctx, id)

	return nil
}
