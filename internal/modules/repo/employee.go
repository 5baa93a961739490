package repo

import (
	"context"

	"github.com/threedv/saiban/internal/modules/model"
	"gorm.io/gorm"
)

type EmployeeRepo interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error)
	// FindActiveByEmployeeID ignores deactivated accounts; it is the lookup
	// the project creation path uses to resolve staff.
	FindActiveByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error)
	Create(ctx context.Context, e *model.Employee) error
	Update(ctx context.Context, e *model.Employee) error
	List(ctx context.Context) ([]model.Employee, error)
}

type employeeRepo struct{ db *gorm.DB }

func NewEmployeeRepo(db *gorm.DB) EmployeeRepo {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) FindByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) FindActiveByEmployeeID(ctx context.Context, employeeID string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND is_active = ?", employeeID, true).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *employeeRepo) Update(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	var items []model.Employee
	return items, r.db.WithContext(ctx).Order("employee_id ASC").Find(&items).Error
}
