package inference

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
)

// RetryConfig bounds the retries of a model call. MaxRetries 0 disables retrying.
type RetryConfig struct {
	MaxRetries   uint
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryConfig(maxRetries uint) RetryConfig {
	return RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Retry calls f until it succeeds, fails with an error that isn't retryable,
// or MaxRetries retries have been made, backing off exponentially in between.
func Retry(ctx context.Context, config RetryConfig, f func() (string, error)) (string, error) {
	var result string
	err := retry.Do(
		func() error {
			response, err := f()
			if err != nil {
				if !IsRetryable(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(config.MaxRetries+1),
		retry.Delay(config.InitialDelay),
		retry.MaxDelay(config.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if n >= config.MaxRetries {
				return
			}
			slog.Default().Warn("Model call failed, retrying",
				slog.Uint64("attempt", uint64(n+1)),
				slog.Uint64("maxRetries", uint64(config.MaxRetries)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		return "", err
	}
	return result, nil
}
