package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/threedv/saiban/internal/modules/model"
	"github.com/threedv/saiban/internal/modules/repo"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterEmployeeInput struct {
	EmployeeID string
	Name       string
	Email      string
}

// UpdateEmployeeInput patches a directory entry. Nil fields are untouched.
type UpdateEmployeeInput struct {
	Name     *string
	Email    *string
	IsActive *bool
	Role     *string
}

type EmployeeService interface {
	// Authenticate checks credentials and returns the employee on success.
	Authenticate(ctx context.Context, employeeID, password string) (*model.Employee, error)
	// Register creates a directory entry with the employee id as the
	// initial password, bcrypt-hashed.
	Register(ctx context.Context, in RegisterEmployeeInput) (*model.Employee, error)
	Update(ctx context.Context, employeeID string, in UpdateEmployeeInput) (*model.Employee, error)
	ChangePassword(ctx context.Context, employeeID, current, next string) error
	List(ctx context.Context) ([]model.Employee, error)
}

type employeeService struct {
	employees repo.EmployeeRepo
}

func NewEmployeeService(employees repo.EmployeeRepo) EmployeeService {
	return &employeeService{employees: employees}
}

func (s *employeeService) Authenticate(ctx context.Context, employeeID, password string) (*model.Employee, error) {
	e, err := s.employees.FindActiveByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee %q: %w", employeeID, ErrEmployeeNotFound)
		}
		return nil, fmt.Errorf("lookup employee: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return e, nil
}

func (s *employeeService) Register(ctx context.Context, in RegisterEmployeeInput) (*model.Employee, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	name := strings.TrimSpace(in.Name)
	if employeeID == "" || name == "" {
		return nil, fmt.Errorf("employee id and name are required: %w", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(employeeID), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash initial password: %w", err)
	}

	e := &model.Employee{
		EmployeeID:   employeeID,
		Name:         name,
		Email:        in.Email,
		PasswordHash: string(hash),
		IsActive:     true,
		Role:         model.RoleUser,
	}

	if err := s.employees.Create(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("employee %q: %w", employeeID, ErrEmployeeExists)
		}
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return e, nil
}

func (s *employeeService) Update(ctx context.Context, employeeID string, in UpdateEmployeeInput) (*model.Employee, error) {
	e, err := s.employees.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("employee %q: %w", employeeID, ErrEmployeeNotFound)
		}
		return nil, fmt.Errorf("lookup employee: %w", err)
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("name must not be blank: %w", ErrValidation)
		}
		e.Name = *in.Name
	}
	if in.Email != nil {
		e.Email = *in.Email
	}
	if in.IsActive != nil {
		e.IsActive = *in.IsActive
	}
	if in.Role != nil {
		if *in.Role != model.RoleAdmin && *in.Role != model.RoleUser {
			return nil, fmt.Errorf("unknown role %q: %w", *in.Role, ErrValidation)
		}
		e.Role = *in.Role
	}

	if err := s.employees.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("update employee: %w", err)
	}
	return e, nil
}

func (s *employeeService) ChangePassword(ctx context.Context, employeeID, current, next string) error {
	if next == "" {
		return fmt.Errorf("new password must not be blank: %w", ErrValidation)
	}

	e, err := s.employees.FindActiveByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("employee %q: %w", employeeID, ErrEmployeeNotFound)
		}
		return fmt.Errorf("lookup employee: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(e.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	e.PasswordHash = string(hash)

	if err := s.employees.Update(ctx, e); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

func (s *employeeService) List(ctx context.Context) ([]model.Employee, error) {
	items, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return items, nil
}
