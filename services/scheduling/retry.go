package scheduling

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"carebook/utils"
)

// RetryConfig bounds adapter calls: each attempt gets Timeout, and the whole
// operation gets MaxRetries additional attempts with exponential backoff.
// The zero value means the full defaults; a partially filled config is
// honored as written, so MaxRetries 0 with a Timeout set is a single attempt.
type RetryConfig struct {
	Timeout    time.Duration
	MaxRetries uint
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Timeout: 5 * time.Second, MaxRetries: 3}
}

// CallAdapter runs fn against an external collaborator with per-attempt
// timeouts and bounded exponential backoff. Exhausting the budget yields an
// AdapterUnavailable error; callers decide whether that is fatal or degrades
// scoring quality. fn may mark an error permanent with backoff.Permanent to
// stop retrying early.
func CallAdapter[T any](ctx context.Context, cfg RetryConfig, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	logger := utils.GetLogger()
	if cfg == (RetryConfig{}) {
		cfg = DefaultRetryConfig()
	} else if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRetryConfig().Timeout
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), uint64(cfg.MaxRetries))
	attempt := 0
	result, err := backoff.RetryWithData(func() (T, error) {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		v, err := fn(callCtx)
		if err != nil {
			logger.Warn("adapter call failed",
				zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
		}
		return v, err
	}, policy)
	if err != nil {
		return result, NewAdapterUnavailableError(op, err)
	}
	return result, nil
}
