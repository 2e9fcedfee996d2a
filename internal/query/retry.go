package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Attempt 执行一次带超时的页面加载
type Attempt func(ctx context.Context) (*Page, error)

// WithRetry 以单次超时执行 fn，失败后最多再重试 retries 次
// 父 context 被取消时立即返回，不再重试
func WithRetry(ctx context.Context, logger *slog.Logger, target string, retries int, timeout time.Duration, fn Attempt) (*Page, error) {
	var lastErr error

	for attempt := 0; attempt <= retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		page, err := fn(attemptCtx)
		cancel()

		if err == nil {
			if attempt > 0 {
				logger.Info("重试成功", slog.String("target", target), slog.Int("attempt", attempt+1))
			}
			return page, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			lastErr = fmt.Errorf("load timed out after %s: %w", timeout, err)
		}

		if attempt < retries {
			logger.Warn("加载失败，准备重试",
				slog.String("target", target),
				slog.Int("attempt", attempt+1),
				slog.Any("error", lastErr))
		}
	}

	return nil, fmt.Errorf("%d 次尝试后仍然失败: %w", retries+1, lastErr)
}
