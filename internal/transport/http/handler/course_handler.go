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

type CourseHandler struct {
	courses     *service.CourseService
	enrollments *service.EnrollmentService
}

func NewCourseHandler(courses *service.CourseService, enrollments *service.EnrollmentService) *CourseHandler {
	return &CourseHandler{courses: courses, enrollments: enrollments}
}

func (*CourseHandler) Priority() int { return 20 }

type none struct{}

type idURI struct {
	ID uint `uri:"id" json:"-" binding:"required,min=1"`
}

type courseBody struct {
	Title       string `json:"title"       binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=1000"`
	Category    string `json:"category"    binding:"required,max=100"`
	Duration    string `json:"duration"    binding:"required,max=50"`
}

func (b courseBody) input() service.CourseInput {
	return service.CourseInput{Title: b.Title, Description: b.Description, Category: b.Category, Duration: b.Duration}
}

type updateCourseReq struct {
	idURI
	courseBody
}

type instructorURI struct {
	InstructorID uint `uri:"instructorId" binding:"required,min=1"`
}

type searchQuery struct {
	Q string `form:"q" binding:"max=200"`
}

type statusResp struct {
	IsEnrolled bool `json:"isEnrolled"`
}

func (h *CourseHandler) MountAPI(e ez.EZ) {
	// ---------- 公开 ----------
	ez.RegisterAction(e, ez.Action[none, []domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/courses",
		Op:     policy.ListCourses,
		Handler: func(c *gin.Context, _ *auth.Identity, _ *none) ([]domain.CourseView, error) {
			return h.courses.ListActive(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[searchQuery, []domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/courses/search",
		Op:     policy.SearchCourses,
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, _ *auth.Identity, in *searchQuery) ([]domain.CourseView, error) {
			return h.courses.Search(c.Request.Context(), in.Q)
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, *domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/courses/:id",
		Op:     policy.GetCourse,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, _ *auth.Identity, in *idURI) (*domain.CourseView, error) {
			return h.courses.Get(c.Request.Context(), in.ID)
		},
	})

	// ---------- 讲师 ----------
	ez.RegisterAction(e, ez.Action[courseBody, *domain.CourseView]{
		Method: http.MethodPost,
		Path:   "/courses",
		Op:     policy.CreateCourse,
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, id *auth.Identity, in *courseBody) (*domain.CourseView, error) {
			return h.courses.Create(c.Request.Context(), id, in.input())
		},
	})
	ez.RegisterAction(e, ez.Action[updateCourseReq, none]{
		Method: http.MethodPut,
		Path:   "/courses/:id",
		Op:     policy.UpdateCourse,
		Binder: ez.BindURI | ez.BindJSON,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, id *auth.Identity, in *updateCourseReq) (none, error) {
			return none{}, h.courses.Update(c.Request.Context(), id, in.ID, in.input())
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, none]{
		Method: http.MethodDelete,
		Path:   "/courses/:id",
		Op:     policy.DeleteCourse,
		Binder: ez.BindURI,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, id *auth.Identity, in *idURI) (none, error) {
			return none{}, h.courses.Delete(c.Request.Context(), id, in.ID)
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, none]{
		Method: http.MethodPut,
		Path:   "/courses/:id/archive",
		Op:     policy.ArchiveCourse,
		Binder: ez.BindURI,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, id *auth.Identity, in *idURI) (none, error) {
			return none{}, h.courses.Archive(c.Request.Context(), id, in.ID)
		},
	})
	ez.RegisterAction(e, ez.Action[instructorURI, []domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/courses/instructor/:instructorId",
		Op:     policy.ListCoursesByInstructor,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, id *auth.Identity, in *instructorURI) ([]domain.CourseView, error) {
			return h.courses.ListByInstructor(c.Request.Context(), id, in.InstructorID)
		},
	})

	// ---------- 学员 ----------
	ez.RegisterAction(e, ez.Action[idURI, resp.Msg]{
		Method: http.MethodPost,
		Path:   "/courses/:id/enroll",
		Op:     policy.Enroll,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, id *auth.Identity, in *idURI) (resp.Msg, error) {
			if err := h.enrollments.Enroll(c.Request.Context(), id, in.ID); err != nil {
				return resp.Msg{}, err
			}
			return resp.OK("Enrolled successfully"), nil
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, resp.Msg]{
		Method: http.MethodDelete,
		Path:   "/courses/:id/unenroll",
		Op:     policy.Unenroll,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, id *auth.Identity, in *idURI) (resp.Msg, error) {
			if err := h.enrollments.Unenroll(c.Request.Context(), id, in.ID); err != nil {
				return resp.Msg{}, err
			}
			return resp.OK("Unenrolled successfully"), nil
		},
	})
	ez.RegisterAction(e, ez.Action[idURI, statusResp]{
		Method: http.MethodGet,
		Path:   "/courses/:id/enrollment-status",
		Op:     policy.EnrollmentStatus,
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, id *auth.Identity, in *idURI) (statusResp, error) {
			on, err := h.enrollments.Status(c.Request.Context(), id, in.ID)
			return statusResp{IsEnrolled: on}, err
		},
	})
	ez.RegisterAction(e, ez.Action[none, []domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/courses/available",
		Op:     policy.ListAvailableCourses,
		Handler: func(c *gin.Context, id *auth.Identity, _ *none) ([]domain.CourseView, error) {
			return h.courses.ListAvailable(c.Request.Context(), id)
		},
	})

	// ---------- 管理员 ----------
	ez.RegisterAction(e, ez.Action[none, []domain.CourseView]{
		Method: http.MethodGet,
		Path:   "/courses/all",
		Op:     policy.ListAllCourses,
		Handler: func(c *gin.Context, _ *auth.Identity, _ *none) ([]domain.CourseView, error) {
			return h.courses.ListAll(c.Request.Context())
		},
	})
}
