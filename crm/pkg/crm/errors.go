package crm

import (
	"errors"
	"fmt"
)

// ErrNoResult 响应中缺少期望的 result 字段（软失败，已写入 error 日志）
var ErrNoResult = errors.New("crm: response has no result")

// TransportError 网络层错误
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPStatusError 非 200 响应。CRM 返回的 error / error_description 会一并带上
type HTTPStatusError struct {
	Method      string
	StatusCode  int
	Code        string
	Description string
}

func (e *HTTPStatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: HTTP %d: %s: %s", e.Method, e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Method, e.StatusCode)
}

// DecodeError 200 响应但 body 不是合法 JSON
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// CallError 重试用尽后返回给调用方，Err 为最后一次失败的原因
type CallError struct {
	Method   string
	Attempts int
	Err      error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("crm call %s failed after %d attempt(s): %v", e.Method, e.Attempts, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// failureReason 指标标签
func failureReason(err error) string {
	var (
		transport *TransportError
		status    *HTTPStatusError
		decode    *DecodeError
	)
	switch {
	case errors.As(err, &status):
		return "http_status"
	case errors.As(err, &decode):
		return "decode"
	case errors.As(err, &transport):
		return "transport"
	default:
		return "other"
	}
}
