package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// StartRequest 列表偏移，原样透传给 CRM
type StartRequest struct {
	Start int `json:"start" form:"start" query:"start"`
}

// NewStartRequestFromContext 从 ?start=N 读取偏移，缺省为 0
func NewStartRequestFromContext(c *gin.Context) (*StartRequest, error) {
	p := &StartRequest{}
	s := c.Query("start")
	if s == "" {
		return p, nil
	}

	start, err := strconv.Atoi(s)
	if err != nil || start < 0 {
		return nil, ErrValidateFailed("start must be a non-negative integer, got %q", s)
	}
	p.Start = start
	return p, nil
}
