package tululu

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

type Outcome uint8

const (
	OutcomeOk Outcome = iota
	OutcomeRetryable
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOk:
		return "ok"
	case OutcomeRetryable:
		return "retryable"
	case OutcomeFatal:
		return "fatal"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Result is what a single attempt of a step produced.
type Result[T any] struct {
	Outcome Outcome
	Value   T
	Err     error
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Outcome: OutcomeOk, Value: v}
}

// Failed classifies err: connection errors are retryable, everything else is fatal.
func Failed[T any](err error) Result[T] {
	if IsRetryable(err) {
		return Result[T]{Outcome: OutcomeRetryable, Err: err}
	}

	return Result[T]{Outcome: OutcomeFatal, Err: err}
}

type RetryPolicy struct {
	MaxAttempts int // total attempts including the first one
	Delay       time.Duration
}

// Retry runs attempt until it succeeds, fails fatally or the policy is exhausted.
// Only the wait between attempts watches ctx.
func Retry[T any](ctx context.Context, policy RetryPolicy, l *slog.Logger, attempt func(ctx context.Context) Result[T]) (T, error) {
	var zero T
	attempts := max(policy.MaxAttempts, 1)

	for n := 1; ; n++ {
		res := attempt(ctx)

		switch res.Outcome {
		case OutcomeOk:
			return res.Value, nil
		case OutcomeFatal:
			return zero, res.Err
		}

		if n >= attempts {
			return zero, fmt.Errorf("giving up after %d attempts: %w", n, res.Err)
		}

		l.WarnContext(ctx, fmt.Sprintf("Connection failed (attempt %d of %d), retrying in %s: %s",
			n, attempts, policy.Delay, res.Err.Error()))

		if err := sleep(ctx, policy.Delay); err != nil {
			return zero, err
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
