package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
)

// EnrollmentService 选课状态机：Absent / Active / Inactive。
// 同一 (user, course) 的并发由存储层唯一索引与条件更新仲裁，这里不加锁。
type EnrollmentService struct {
	enrollments domain.EnrollmentRepository
	courses     domain.CourseRepository
	now         func() time.Time
	log         *zap.Logger
}

func NewEnrollmentService(enrollments domain.EnrollmentRepository, courses domain.CourseRepository, l *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		courses:     courses,
		now:         func() time.Time { return time.Now().UTC() },
		log:         nopIfNil(l),
	}
}

func (s *EnrollmentService) Enroll(ctx context.Context, id *auth.Identity, courseID uint) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return err
	}
	if c == nil || !c.IsActive {
		return domain.NotFound("Course not found")
	}

	e, err := s.enrollments.FindByPair(ctx, id.ID, courseID)
	if err != nil {
		return err
	}

	switch domain.StateOf(e) {
	case domain.StateActive:
		return domain.ErrAlreadyEnrolled

	case domain.StateInactive:
		ok, err := s.enrollments.Reactivate(ctx, e.ID, s.now())
		if err != nil {
			return err
		}
		if !ok {
			// 条件更新未命中：另一请求已先一步重新激活
			return domain.ErrAlreadyEnrolled
		}

	default:
		err := s.enrollments.Create(ctx, &domain.Enrollment{
			UserID:     id.ID,
			CourseID:   courseID,
			EnrolledAt: s.now(),
			IsActive:   true,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConstraint) {
				return s.collision(ctx, id.ID, courseID, err)
			}
			return err
		}
	}

	s.log.Info("enrolled", zap.Uint("uid", id.ID), zap.Uint("course_id", courseID))
	return nil
}

// collision 插入撞上约束：行已存在说明输给了并发的同对请求，否则是课程已被删除
func (s *EnrollmentService) collision(ctx context.Context, userID, courseID uint, cause error) error {
	e, err := s.enrollments.FindByPair(ctx, userID, courseID)
	if err != nil {
		return err
	}
	if e != nil {
		return domain.ErrAlreadyEnrolled
	}
	s.log.Warn("enroll constraint without existing row", zap.Uint("course_id", courseID), zap.Error(cause))
	return domain.NotFound("Course not found")
}

// Unenroll 只对 Active 生效；Absent / Inactive 都返回 NotFound
func (s *EnrollmentService) Unenroll(ctx context.Context, id *auth.Identity, courseID uint) error {
	if err := requireIdentity(id); err != nil {
		return err
	}
	ok, err := s.enrollments.Deactivate(ctx, id.ID, courseID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Enrollment not found")
	}
	s.log.Info("unenrolled", zap.Uint("uid", id.ID), zap.Uint("course_id", courseID))
	return nil
}

func (s *EnrollmentService) Status(ctx context.Context, id *auth.Identity, courseID uint) (bool, error) {
	if err := requireIdentity(id); err != nil {
		return false, err
	}
	e, err := s.enrollments.FindByPair(ctx, id.ID, courseID)
	if err != nil {
		return false, err
	}
	return domain.StateOf(e) == domain.StateActive, nil
}
