package service

import (
	"context"

	"go.uber.org/zap"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
)

type CourseService struct {
	courses domain.CourseRepository
	users   domain.UserRepository
	log     *zap.Logger
}

func NewCourseService(courses domain.CourseRepository, users domain.UserRepository, l *zap.Logger) *CourseService {
	return &CourseService{courses: courses, users: users, log: nopIfNil(l)}
}

type CourseInput struct {
	Title       string
	Description string
	Category    string
	Duration    string
}

func (in CourseInput) fields() (domain.CourseFields, error) {
	var (
		f   domain.CourseFields
		err error
	)
	if f.Title, err = field("Title", in.Title, 200); err != nil {
		return f, err
	}
	if f.Description, err = field("Description", in.Description, 1000); err != nil {
		return f, err
	}
	if f.Category, err = field("Category", in.Category, 100); err != nil {
		return f, err
	}
	if f.Duration, err = field("Duration", in.Duration, 50); err != nil {
		return f, err
	}
	return f, nil
}

func (s *CourseService) ListActive(ctx context.Context) ([]domain.CourseView, error) {
	return s.courses.ListActive(ctx)
}

// Get 公开接口只返回上架课程
func (s *CourseService) Get(ctx context.Context, courseID uint) (*domain.CourseView, error) {
	v, err := s.courses.GetView(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if v == nil || !v.IsActive {
		return nil, domain.NotFound("Course not found")
	}
	return v, nil
}

func (s *CourseService) Search(ctx context.Context, q string) ([]domain.CourseView, error) {
	return s.courses.Search(ctx, q)
}

func (s *CourseService) ListAll(ctx context.Context) ([]domain.CourseView, error) {
	return s.courses.ListAll(ctx)
}

// Create 课程归属固定为调用者
func (s *CourseService) Create(ctx context.Context, id *auth.Identity, in CourseInput) (*domain.CourseView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	f, err := in.fields()
	if err != nil {
		return nil, err
	}
	owner, err := s.users.FindByID(ctx, id.ID)
	if err != nil {
		return nil, err
	}
	if owner == nil || owner.Role != domain.RoleInstructor {
		return nil, domain.Forbidden("Only instructors can create courses")
	}

	c := &domain.Course{
		Title:        f.Title,
		Description:  f.Description,
		Category:     f.Category,
		Duration:     f.Duration,
		InstructorID: owner.ID,
		IsActive:     true,
	}
	if err := s.courses.Create(ctx, c); err != nil {
		return nil, err
	}
	s.log.Info("course created", zap.Uint("course_id", c.ID), zap.Uint("instructor_id", owner.ID))

	v, err := s.courses.GetView(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.NotFound("Course not found")
	}
	return v, nil
}

// owned 课程不存在 -> NotFound；不是自己的 -> Forbidden
func (s *CourseService) owned(ctx context.Context, id *auth.Identity, courseID uint) (*domain.Course, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	c, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("Course not found")
	}
	if c.InstructorID != id.ID {
		return nil, domain.Forbidden("You can only manage your own courses")
	}
	return c, nil
}

func (s *CourseService) Update(ctx context.Context, id *auth.Identity, courseID uint, in CourseInput) error {
	f, err := in.fields()
	if err != nil {
		return err
	}
	if _, err := s.owned(ctx, id, courseID); err != nil {
		return err
	}
	return s.courses.Update(ctx, courseID, f)
}

// Delete 硬删除，选课记录一并删除
func (s *CourseService) Delete(ctx context.Context, id *auth.Identity, courseID uint) error {
	if _, err := s.owned(ctx, id, courseID); err != nil {
		return err
	}
	if err := s.courses.HardDelete(ctx, courseID); err != nil {
		return err
	}
	s.log.Info("course deleted", zap.Uint("course_id", courseID), zap.Uint("instructor_id", id.ID))
	return nil
}

// Archive 下架，选课记录保留
func (s *CourseService) Archive(ctx context.Context, id *auth.Identity, courseID uint) error {
	if _, err := s.owned(ctx, id, courseID); err != nil {
		return err
	}
	return s.courses.SoftDelete(ctx, courseID)
}

func (s *CourseService) ListByInstructor(ctx context.Context, id *auth.Identity, instructorID uint) ([]domain.CourseView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	if id.ID != instructorID {
		return nil, domain.Forbidden("You can only view your own courses")
	}
	return s.courses.ListByInstructor(ctx, instructorID, true)
}

func (s *CourseService) ListOwn(ctx context.Context, id *auth.Identity) ([]domain.CourseView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.courses.ListByInstructor(ctx, id.ID, true)
}

func (s *CourseService) ListAvailable(ctx context.Context, id *auth.Identity) ([]domain.CourseView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.courses.ListAvailable(ctx, id.ID)
}

// ListEnrolled 仅含有效选课且课程仍上架
func (s *CourseService) ListEnrolled(ctx context.Context, id *auth.Identity) ([]domain.CourseView, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return s.courses.ListEnrolled(ctx, id.ID)
}
