package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-management-api/internal/domain"
)

type EnrollmentRepo struct{ db *gorm.DB }

func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo { return &EnrollmentRepo{db: db} }

func (r *EnrollmentRepo) FindByPair(ctx context.Context, userID, courseID uint) (*domain.Enrollment, error) {
	var e domain.Enrollment
	err := r.db.WithContext(ctx).First(&e, "user_id = ? AND course_id = ?", userID, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find enrollment", err)
	}
	return &e, nil
}

func (r *EnrollmentRepo) Create(ctx context.Context, e *domain.Enrollment) error {
	return translate("create enrollment", r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (r *EnrollmentRepo) Reactivate(ctx context.Context, id uint, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("id = ? AND is_active = ?", id, false).
		Updates(map[string]any{"is_active": true, "enrolled_at": at})
	if res.Error != nil {
		return false, translate("reactivate enrollment", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *EnrollmentRepo) Deactivate(ctx context.Context, userID, courseID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_active = ?", userID, courseID, true).
		Update("is_active", false)
	if res.Error != nil {
		return false, translate("deactivate enrollment", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *EnrollmentRepo) CountActive(ctx context.Context, courseID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("course_id = ? AND is_active = ?", courseID, true).Count(&n).Error
	return n, translate("count enrollments", err)
}

func (r *EnrollmentRepo) CountByPair(ctx context.Context, userID, courseID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n).Error
	return n, translate("count enrollments", err)
}

var _ domain.EnrollmentRepository = (*EnrollmentRepo)(nil)
