package lookup

import (
	"errors"
	"fmt"
)

// ErrNotFound 按电话和 IIN 都没有找到客户
var ErrNotFound = errors.New("client not found")

// ValidationError 输入不合法，调用方可以直接返回给前端
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
