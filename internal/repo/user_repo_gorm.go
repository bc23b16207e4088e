package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-management-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// NormalizeEmail 邮箱唯一性大小写不敏感，统一小写落库
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	u.Email = NormalizeEmail(u.Email)
	return translate("create user", r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error)
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find user", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", NormalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find user by email", err)
	}
	return &u, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", NormalizeEmail(email)).Count(&n).Error
	return n > 0, translate("count users by email", err)
}

func (r *UserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users := make([]domain.User, 0)
	err := r.db.WithContext(ctx).Where("role = ?", role).Order("id").Find(&users).Error
	if err != nil {
		return nil, translate("list users", err)
	}
	return users, nil
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, translate("count users", err)
}

func (r *UserRepo) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return translate("update user status", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return translate("delete user enrollments", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return translate("delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("user not found")
		}
		return nil
	})
}

var _ domain.UserRepository = (*UserRepo)(nil)
