package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"course-management-api/internal/core/auth"
	"course-management-api/internal/domain"
	"course-management-api/internal/policy"
	mdw "course-management-api/internal/transport/http/middleware"
	resp "course-management-api/internal/transport/http/response"
)

// EZ 路由分组 + 日志，Action 注册入口
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Binder 可组合：URI|JSON
type Binder uint8

const (
	BindURI   Binder = 1 << iota // 路径参数 :id
	BindJSON                     // JSON body
	BindQuery                    // ?q=

	BindNone Binder = 0
)

// Action 一个接口：I 入参，O 出参。
// Op 决定需要的角色；资源归属由 Handler 调用的 service 判断。
type Action[I any, O any] struct {
	Method  string
	Path    string
	Op      policy.Operation
	Binder  Binder
	Status  int // 成功状态码，默认 200；204 时不写 body
	Handler func(c *gin.Context, id *auth.Identity, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		// 1) 鉴权：只认已校验 token 里的身份
		id := mdw.IdentityFrom(c)
		if err := policy.Authorize(id, a.Op); err != nil {
			if domain.KindOf(err) == domain.KindUnauthenticated {
				if reason := c.GetString(mdw.KeyAuthError); reason != "" {
					err = domain.Unauthenticated(reason)
				}
			}
			e.fail(c, err)
			return
		}

		// 2) 绑定入参
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			c.JSON(http.StatusBadRequest, resp.Error(http.StatusBadRequest, "Validation failed", ValidationDetails(err)))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, id, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// bind 按 Binder 依次填充，最后统一做一次 binding tag 校验
func bind(c *gin.Context, b Binder, in any) error {
	if b == BindNone {
		return nil
	}
	if b&BindURI != 0 {
		m := make(map[string][]string, len(c.Params))
		for _, p := range c.Params {
			m[p.Key] = []string{p.Value}
		}
		if err := binding.MapFormWithTag(in, m, "uri"); err != nil {
			return err
		}
	}
	if b&BindQuery != 0 {
		if err := binding.MapFormWithTag(in, c.Request.URL.Query(), "form"); err != nil {
			return err
		}
	}
	if b&BindJSON != 0 {
		if c.Request.Body == nil {
			return io.EOF
		}
		if err := json.NewDecoder(c.Request.Body).Decode(in); err != nil {
			return err
		}
	}
	return binding.Validator.ValidateStruct(in)
}

// StatusOf 错误分类到 HTTP 状态码的唯一映射点
func StatusOf(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindConstraint, domain.KindAlreadyEnrolled, domain.KindInvalidCredentials:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// fail 未分类错误只记日志，对外统一文案
func (e EZ) fail(c *gin.Context, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		e.log.Error("unhandled error",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, resp.Error(status, "", nil))
		return
	}

	var de *domain.Error
	details := any(nil)
	if errors.As(err, &de) {
		details = de.Kind.String()
	}
	c.JSON(status, resp.Error(status, err.Error(), details))
}
