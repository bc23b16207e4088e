package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/core/server"
	"course-management-api/internal/repo"
	"course-management-api/internal/service"
	"course-management-api/internal/transport/http/ez"
	"course-management-api/internal/transport/http/handler"
	mdw "course-management-api/internal/transport/http/middleware"
	resp "course-management-api/internal/transport/http/response"
)

type Limits struct {
	RPS            float64
	Burst          int
	MaxConcurrent  int64
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.MaxConcurrent <= 0 {
		l.MaxConcurrent = 300
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 1 << 20
	}
	if l.RequestTimeout <= 0 {
		l.RequestTimeout = 10 * time.Second
	}
	return l
}

type Deps struct {
	Log    *zap.Logger
	DB     *gorm.DB
	JWT    *auth.JWTer
	Redis  *redis.Client // 可空：为空时用进程内限速
	Server server.Options
	Limits Limits
	Auth   service.AuthOptions
	Users  service.UserOptions
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	lim := d.Limits.withDefaults()
	ez.RegisterValidators()

	r := server.NewRouter(d.Server)

	// 中间件
	limiter := mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst)
	if d.Redis != nil {
		limiter = mdw.RedisRateLimit(d.Redis, int(lim.RPS), lim.Burst, l)
	}
	r.Use(
		mdw.RequestID(),
		limiter,
		mdw.ConcurrencyLimit(lim.MaxConcurrent),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.RequestTimeout),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.AuthJWT(d.JWT),
	)

	// 运维
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, resp.Error(http.StatusServiceUnavailable, "database unavailable", nil))
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", mdw.MetricsHandler())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, resp.Error(http.StatusNotFound, "route not found", nil))
	})

	// 组装
	users := repo.NewUserRepo(d.DB)
	courses := repo.NewCourseRepo(d.DB)
	enrollments := repo.NewEnrollmentRepo(d.DB)

	authSvc := service.NewAuthService(users, d.JWT, d.Auth, l)
	courseSvc := service.NewCourseService(courses, users, l)
	enrollSvc := service.NewEnrollmentService(enrollments, courses, l)
	userSvc := service.NewUserService(users, courses, d.Users, l)

	var reg Registry
	reg.Register(
		handler.NewAuthHandler(authSvc),
		handler.NewCourseHandler(courseSvc, enrollSvc),
		handler.NewUserHandler(userSvc, courseSvc),
	)
	reg.MountAll(ez.New(r.Group("/api"), l))

	return r
}
