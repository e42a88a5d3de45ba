package tululu

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	connErr := &ConnectionError{Url: "https://tululu.org/b1/", Err: errors.New("connection reset by peer")}

	t.Run("succeeds after retryable failures", func(t *testing.T) {
		calls := 0
		v, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5}, discardLogger(), func(ctx context.Context) Result[int] {
			calls++
			if calls < 3 {
				return Failed[int](connErr)
			}
			return Ok(42)
		})

		require.NoError(t, err)
		assert.Equal(t, 42, v)
		assert.Equal(t, 3, calls)
	})

	t.Run("fatal stops immediately", func(t *testing.T) {
		calls := 0
		_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5}, discardLogger(), func(ctx context.Context) Result[int] {
			calls++
			return Failed[int](&StatusError{Url: "https://tululu.org/b1/", Code: 500})
		})

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, 1, calls)
	})

	t.Run("ceiling", func(t *testing.T) {
		calls := 0
		_, err := Retry(context.Background(), RetryPolicy{MaxAttempts: 4}, discardLogger(), func(ctx context.Context) Result[int] {
			calls++
			return Failed[int](connErr)
		})

		require.ErrorIs(t, err, connErr)
		assert.Equal(t, 4, calls)
	})

	t.Run("zero attempts still runs once", func(t *testing.T) {
		calls := 0
		_, _ = Retry(context.Background(), RetryPolicy{}, discardLogger(), func(ctx context.Context) Result[int] {
			calls++
			return Failed[int](connErr)
		})

		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		start := time.Now()
		_, err := Retry(ctx, RetryPolicy{MaxAttempts: 5, Delay: time.Hour}, discardLogger(), func(ctx context.Context) Result[int] {
			calls++
			cancel()
			return Failed[int](connErr)
		})

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
		assert.Less(t, time.Since(start), time.Minute)
	})
}

func TestFailedClassifies(t *testing.T) {
	assert.Equal(t, OutcomeRetryable, Failed[int](&ConnectionError{Url: "u", Err: errors.New("eof")}).Outcome)
	assert.Equal(t, OutcomeFatal, Failed[int](ErrRedirect).Outcome)
	assert.Equal(t, OutcomeFatal, Failed[int](&ExtractionError{What: "x", Reason: "y"}).Outcome)
	assert.Equal(t, "retryable", OutcomeRetryable.String())
}
