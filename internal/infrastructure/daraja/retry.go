package daraja

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds how an operation is re-attempted. Distinct policies are
// applied at each call site: token exchange retries more aggressively than
// payment submission because it is idempotent on the provider.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// TokenRetryPolicy retries every exchange failure: the call is side-effect-free.
func TokenRetryPolicy(maxAttempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Retryable:   func(error) bool { return true },
	}
}

// SubmitRetryPolicy retries only transport-level failures. Business
// rejections carry a non-zero response code and are terminal.
func SubmitRetryPolicy(maxAttempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Retryable:   IsTransportError,
	}
}

// Retry runs op under the given policy. The delay between attempts is fixed;
// ctx cancellation aborts both in-flight attempts and the inter-attempt wait.
func Retry[T any](ctx context.Context, p RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		resp, err := op(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return zero, err
		}

		if attempt < p.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(p.Delay):
			}
		}
	}

	return zero, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}
