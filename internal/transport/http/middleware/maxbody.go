package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "course-management-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；超限时 JSON 绑定失败，由 Action 返回 400
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, "")
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
