package repo

import (
	"context"

	"github.com/threedv/saiban/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectRepo interface {
	// MaxNumberByPrefix returns the largest project number starting with the
	// 4-character year+category prefix, or "" when none exists. Numbers are
	// fixed-width zero-padded, so the lexicographic max is the numeric max.
	MaxNumberByPrefix(ctx context.Context, prefix string) (string, error)

	// CreateWithHistory inserts the project and its create audit row in one
	// transaction. A duplicate project number surfaces as
	// gorm.ErrDuplicatedKey.
	CreateWithHistory(ctx context.Context, p *model.Project, h *model.EditHistory) error

	// UpdateWithHistory saves the mutated project and appends its update
	// audit row in one transaction.
	UpdateWithHistory(ctx context.Context, p *model.Project, h *model.EditHistory) error

	GetByNumber(ctx context.Context, number string) (*model.Project, error)
	List(ctx context.Context, category, keyword string) ([]model.Project, error)
	DeleteByNumber(ctx context.Context, number string) error
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) MaxNumberByPrefix(ctx context.Context, prefix string) (string, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Where("project_number LIKE ?", prefix+"%").
		Order("project_number DESC").
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", err
	}
	return p.ProjectNumber, nil
}

func (r *projectRepo) CreateWithHistory(ctx context.Context, p *model.Project, h *model.EditHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(p).Error; err != nil {
			return err
		}
		h.ProjectID = p.ID
		return tx.Create(h).Error
	})
}

func (r *projectRepo) UpdateWithHistory(ctx context.Context, p *model.Project, h *model.EditHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Omit the association so preloaded history rows are not re-saved.
		if err := tx.Omit(clause.Associations).Save(p).Error; err != nil {
			return err
		}
		h.ProjectID = p.ID
		return tx.Create(h).Error
	})
}

func (r *projectRepo) GetByNumber(ctx context.Context, number string) (*model.Project, error) {
	var p model.Project
	err := r.db.WithContext(ctx).
		Preload("EditHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("edited_at ASC, id ASC")
		}).
		Where("project_number = ?", number).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) List(ctx context.Context, category, keyword string) ([]model.Project, error) {
	q := r.db.WithContext(ctx).Model(&model.Project{})

	if category != "" {
		q = q.Where("category = ?", category)
	}
	if keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where(
			"project_number LIKE ? OR project_name LIKE ? OR client_name LIKE ? OR staff_name LIKE ?",
			like, like, like, like,
		)
	}

	var items []model.Project
	return items, q.Order("created_at DESC").Find(&items).Error
}

func (r *projectRepo) DeleteByNumber(ctx context.Context, number string) error {
	// Idempotent: deleting an absent number is a no-op. History rows go with
	// the FK cascade; Select(EditHistory) covers databases migrated without
	// the constraint.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Project
		err := tx.Where("project_number = ?", number).First(&p).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if err := tx.Where("project_id = ?", p.ID).Delete(&model.EditHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&p).Error
	})
}
