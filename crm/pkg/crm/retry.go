package crm

import (
	"context"
	"fmt"
	"time"
)

const (
	// DefaultMaxAttempts 单次调用的最大尝试次数
	DefaultMaxAttempts = 3
	// DefaultBackoff 两次尝试之间的固定等待
	DefaultBackoff = 500 * time.Millisecond
)

// RetryPolicy 固定间隔的重试策略
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Wait 为空时使用 timer 等待，可被 ctx 取消
	Wait func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy 3 次尝试，间隔 500ms
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Backoff: DefaultBackoff}
}

// Outcome 一次带重试的调用结果：要么 Value，要么 Err
type Outcome[T any] struct {
	Value    T
	Err      error
	Attempts int
}

// OK 调用是否成功
func (o Outcome[T]) OK() bool { return o.Err == nil }

// Retry 按策略执行 op。失败后等待 Backoff 再试，最后一次失败后不再等待。
// ctx 被取消时立即返回。
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context, attempt int) (T, error)) Outcome[T] {
	maxAttempts := policy.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	wait := policy.Wait
	if wait == nil {
		wait = Sleep
	}

	var out Outcome[T]
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out.Attempts = attempt
		value, err := op(ctx, attempt)
		if err == nil {
			out.Value = value
			out.Err = nil
			return out
		}
		out.Err = err

		if attempt == maxAttempts {
			break
		}
		if ctx.Err() != nil {
			out.Err = fmt.Errorf("%w (last error: %v)", ctx.Err(), err)
			break
		}
		if werr := wait(ctx, policy.Backoff); werr != nil {
			out.Err = fmt.Errorf("%w (last error: %v)", werr, err)
			break
		}
	}
	return out
}

// Sleep 可被 ctx 中断的等待
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
