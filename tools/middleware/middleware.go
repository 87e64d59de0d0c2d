package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一的返回结构
type Response struct {
	Success bool   `json:"success"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success 200 + {success: true, data}
func Success(data any, c *gin.Context) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// Failed 把 error 转成 {success: false, message}。
// 非 ApiException 统一按 500 处理。
func Failed(err error, c *gin.Context) {
	var apiErr *ApiException
	if !errors.As(err, &apiErr) {
		apiErr = ErrServerInternal("%s", err.Error())
	}

	httpCode := apiErr.HttpCode
	if httpCode == 0 {
		httpCode = http.StatusInternalServerError
	}

	c.JSON(httpCode, Response{Success: false, Code: apiErr.Code, Message: apiErr.Message})
	c.Abort()
}

func NewApiException(code int, message string) *ApiException {
	return &ApiException{
		Code:    code,
		Message: message,
	}
}

// ApiException 业务异常
type ApiException struct {
	// 业务异常的编码
	Code int `json:"code"`
	// 异常描述信息
	Message string `json:"message"`
	// 不会出现在 Body 里面, 用于设置 http 状态码
	HttpCode int `json:"-"`
}

func (e *ApiException) Error() string {
	return e.Message
}

func (e *ApiException) String() string {
	dj, _ := json.MarshalIndent(e, "", "  ")
	return string(dj)
}

func (e *ApiException) WithMessage(msg string) *ApiException {
	e.Message = msg
	return e
}

func (e *ApiException) WithHttpCode(httpCode int) *ApiException {
	e.HttpCode = httpCode
	return e
}

func ErrServerInternal(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     50000,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusInternalServerError,
	}
}

// ErrNotFound 查询无结果，前端按 400 处理
func ErrNotFound(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     404,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusBadRequest,
	}
}

func ErrValidateFailed(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     400,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusBadRequest,
	}
}

// ErrBadGateway 上游 CRM 调用失败
func ErrBadGateway(format string, a ...any) *ApiException {
	return &ApiException{
		Code:     50200,
		Message:  fmt.Sprintf(format, a...),
		HttpCode: http.StatusBadGateway,
	}
}
