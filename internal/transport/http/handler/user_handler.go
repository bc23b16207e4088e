package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
	"course-management-api/internal/policy"
	"course-management-api/internal/service"
	"course-management-api/internal/transport/http/ez"
	resp "course-management-api/internal/transport/http/response"
)

type UserHandler struct {
	users   *service.UserService
	courses *service.CourseService
}

func NewUserHandler(users *service.UserService, courses *service.CourseService) *UserHandler {
	return &UserHandler{users: users, courses: courses}
}

func (*UserHandler) Priority() int { return 30 }

type createInstructorReq struct {
	Name           string `json:"name"           binding:"required,max=100"`
	Email          string `json:"email"          binding:"required,email,max=100"`
	Specialization string `json:"specialization" binding:"required,max=100"`
}

func (h *UserHandler) MountAPI(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[none, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/profile",
		Op:     policy.GetProfile,
		Handler: func(c *gin.Context, id *auth.Identity, _ *none) (*domain.User, error) {
			return h.users.Profile(c.Request.Context(), id)
		},
	})

	// ---------- 管理员 ----------
	ez.RegisterAction(e, ez.Action[none, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users/instructors",
		Op:     policy.ListInstructors,
		Handler: func(c *gin.Context, _ *auth.Identity, _ *none) ([]domain.User, error) {
			return h.users.ListInstructors(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[createInstructorReq, *domain.User]{
		Method: http.MethodPost,
		Path:   "/users/instructors",
		Op:     policy.CreateInstructor,
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, _ *auth.Identity, in *createInstructorReq) (*domain.User, error) {
			return h.users.CreateInstructor(c.Request.Context(), service.CreateInstructorInput{
				Name: in.Name, Email: in.Email, Specialization: in.Specialization,
			})
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, *domain.User]{
		Method: http.MethodPut,
		Path:   "/users/instructors/:id/toggle-status",
		Op:     policy.ToggleInstructor,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, _ *auth.Identity, in *idURI) (*domain.User, error) {
			return h.users.ToggleInstructorStatus(c.Request.Context(), in.ID)
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/users/instructors/:id",
		Op:     policy.DeleteInstructor,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, _ *auth.Identity, in *idURI) (resp.Msg, error) {
			if err := h.users.DeleteInstructor(c.Request.Context(), in.ID); err != nil {
				return resp.Msg{}, err
			}
			return resp.OK("Instructor deleted"), nil
		},
	})
	ez.RegisterAction(e, ez.Action[none, []domain.User]{
		Method: http.MethodGet,
		Path:   "/users/students",
		Op:     policy.ListStudents,
		Handler: func(c *gin.Context, _ *auth.Identity, _ *none) ([]domain.User, error) {
			return h.users.ListStudents(c.Request.Context())
		},
	})

	// ---------- 本人视图 ----------
	enrolled := func(c *gin.Context, id *auth.Identity, _ *none) ([]domain.CourseView, error) {
		return h.courses.ListEnrolled(c.Request.Context(), id)
	}
	ez.RegisterAction(e, ez.Action[none, []domain.CourseView]{
		Method:  http.MethodGet,
		Path:    "/users/my-courses",
		Op:      policy.ListMyCourses,
		Handler: enrolled,
	})
	ez.RegisterAction(e, ez.Action[none, []domain.CourseView]{
		Method:  http.MethodGet,
		Path:    "/users/enrolled-courses",
		Op:      policy.ListEnrolledCourses,
		Handler: enrolled,
	})
	ez.RegisterAction(e, ez.Action[none, []domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/users/instructor-courses",
		Op:     policy.ListOwnCourses,
		Handler: func(c *gin.Context, id *auth.Identity, _ *none) ([]domain.CourseView, error) {
			return h.courses.ListOwn(c.Request.Context(), id)
		},
	})
}
