package response

import "github.com/gin-gonic/gin"

// Err 统一错误体：{success:false, message, details}
type Err struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

// Msg 无业务数据的成功体
type Msg struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func OK(msg string) Msg { return Msg{Success: true, Message: msg} }

// Error message 为空时取状态码默认提示；details 为空时回填 message
func Error(status int, msg string, details any) Err {
	if msg == "" {
		msg = StatusMsgMap[status]
	}
	if details == nil {
		details = msg
	}
	return Err{Success: false, Message: msg, Details: details}
}

// Abort 中间件里直接结束请求
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg, nil))
}
