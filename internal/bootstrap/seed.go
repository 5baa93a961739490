package bootstrap

import (
	"context"

	"github.com/threedv/saiban/internal/config"
	"github.com/threedv/saiban/internal/modules/model"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// EnsureAdminExists creates the seed admin account when the service starts,
// so a fresh database is never left without a login. The initial password is
// the admin's employee id.
func EnsureAdminExists(ctx context.Context, db *gorm.DB, cfg *config.Config, log *zap.Logger) error {
	adminID := cfg.Seed.AdminID
	if adminID == "" {
		return nil
	}

	var admin model.Employee
	err := db.WithContext(ctx).
		Where("employee_id = ?", adminID).
		First(&admin).Error

	switch err {
	case nil:
		// Existing account keeps its password; only the role is realigned.
		if admin.Role == model.RoleAdmin {
			log.Sugar().Infow("seed admin exists", "employee_id", adminID)
			return nil
		}
		if uErr := db.WithContext(ctx).Model(&admin).Update("role", model.RoleAdmin).Error; uErr != nil {
			return uErr
		}
		log.Sugar().Infow("seed admin role restored", "employee_id", adminID)
		return nil

	case gorm.ErrRecordNotFound:
		hash, hErr := bcrypt.GenerateFromPassword([]byte(adminID), bcrypt.DefaultCost)
		if hErr != nil {
			return hErr
		}

		admin = model.Employee{
			EmployeeID:   adminID,
			Name:         cfg.Seed.AdminName,
			Email:        cfg.Seed.AdminEmail,
			PasswordHash: string(hash),
			IsActive:     true,
			Role:         model.RoleAdmin,
		}
		if cErr := db.WithContext(ctx).Create(&admin).Error; cErr != nil {
			return cErr
		}
		log.Sugar().Infow("seed admin created", "employee_id", adminID)
		return nil

	default:
		return err
	}
}
