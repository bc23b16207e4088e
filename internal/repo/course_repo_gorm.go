package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"course-management-api/internal/domain"
)

type CourseRepo struct{ db *gorm.DB }

func NewCourseRepo(db *gorm.DB) *CourseRepo { return &CourseRepo{db: db} }

// 选课人数读时现算：只数 active 行，没有选课时 COUNT 为 0
const courseViewColumns = "c.id, c.title, c.description, c.category, c.duration, " +
	"c.instructor_id, c.created_at, c.is_active, COALESCE(u.name, '') AS instructor, " +
	"(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.is_active = ?) AS enrollment_count"

func (r *CourseRepo) views(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("courses AS c").
		Select(courseViewColumns, true).
		Joins("LEFT JOIN users u ON u.id = c.instructor_id")
}

func scanViews(q *gorm.DB, op string) ([]domain.CourseView, error) {
	out := make([]domain.CourseView, 0)
	if err := q.Order("c.id").Scan(&out).Error; err != nil {
		return nil, translate(op, err)
	}
	return out, nil
}

func (r *CourseRepo) Create(ctx context.Context, c *domain.Course) error {
	return translate("create course", r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *CourseRepo) FindByID(ctx context.Context, id uint) (*domain.Course, error) {
	var c domain.Course
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate("find course", err)
	}
	return &c, nil
}

func (r *CourseRepo) Update(ctx context.Context, id uint, f domain.CourseFields) error {
	err := r.db.WithContext(ctx).Model(&domain.Course{}).Where("id = ?", id).Updates(map[string]any{
		"title":       f.Title,
		"description": f.Description,
		"category":    f.Category,
		"duration":    f.Duration,
	}).Error
	return translate("update course", err)
}

// SoftDelete 仅置 is_active=false，选课记录保留
func (r *CourseRepo) SoftDelete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&domain.Course{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return translate("archive course", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("course not found")
	}
	return nil
}

// HardDelete 同一事务内先删选课再删课程，任一步失败整体回滚
func (r *CourseRepo) HardDelete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return translate("delete course enrollments", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Course{})
		if res.Error != nil {
			return translate("delete course", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("course not found")
		}
		return nil
	})
}

func (r *CourseRepo) CountByInstructor(ctx context.Context, instructorID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Course{}).Where("instructor_id = ?", instructorID).Count(&n).Error
	return n, translate("count instructor courses", err)
}

// GetView 含已下架课程（讲师/管理员视图用）
func (r *CourseRepo) GetView(ctx context.Context, id uint) (*domain.CourseView, error) {
	vs, err := scanViews(r.views(ctx).Where("c.id = ?", id), "get course")
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, nil
	}
	return &vs[0], nil
}

func (r *CourseRepo) ListActive(ctx context.Context) ([]domain.CourseView, error) {
	return scanViews(r.views(ctx).Where("c.is_active = ?", true), "list courses")
}

func (r *CourseRepo) ListAll(ctx context.Context) ([]domain.CourseView, error) {
	return scanViews(r.views(ctx), "list all courses")
}

func (r *CourseRepo) ListByInstructor(ctx context.Context, instructorID uint, activeOnly bool) ([]domain.CourseView, error) {
	q := r.views(ctx).Where("c.instructor_id = ?", instructorID)
	if activeOnly {
		q = q.Where("c.is_active = ?", true)
	}
	return scanViews(q, "list instructor courses")
}

// ListAvailable 上架课程中去掉该用户 active 选课的
func (r *CourseRepo) ListAvailable(ctx context.Context, userID uint) ([]domain.CourseView, error) {
	q := r.views(ctx).Where(
		"c.is_active = ? AND c.id NOT IN (SELECT ae.course_id FROM enrollments ae WHERE ae.user_id = ? AND ae.is_active = ?)",
		true, userID, true,
	)
	return scanViews(q, "list available courses")
}

func (r *CourseRepo) ListEnrolled(ctx context.Context, userID uint) ([]domain.CourseView, error) {
	q := r.views(ctx).
		Joins("JOIN enrollments me ON me.course_id = c.id AND me.user_id = ? AND me.is_active = ?", userID, true).
		Where("c.is_active = ?", true)
	return scanViews(q, "list enrolled courses")
}

func (r *CourseRepo) Search(ctx context.Context, term string) ([]domain.CourseView, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return r.ListActive(ctx)
	}
	like := "%" + escapeLike(term) + "%"
	q := r.views(ctx).Where(
		"c.is_active = ? AND (LOWER(c.title) LIKE ? ESCAPE '!' OR LOWER(c.description) LIKE ? ESCAPE '!' OR LOWER(c.category) LIKE ? ESCAPE '!')",
		true, like, like, like,
	)
	return scanViews(q, "search courses")
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

var _ domain.CourseRepository = (*CourseRepo)(nil)
