package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failFirst returns an operation that fails with err on its first n calls.
func failFirst(n int, err error, calls *int) func() error {
	return func() error {
		*calls++
		if *calls <= n {
			return err
		}
		return nil
	}
}

func TestRetryWithBackoff(t *testing.T) {
	backendDown := errors.New("backend down")

	tests := []struct {
		name         string
		failures     int
		err          error
		maxAttempts  int
		wantErr      error
		wantAttempts int
	}{
		{"first attempt succeeds", 0, nil, 3, nil, 1},
		{"recovers on third attempt", 2, backendDown, 5, nil, 3},
		{"gives up after max attempts", 10, backendDown, 3, backendDown, 3},
		{"open breaker is final", 10, fmt.Errorf("embed batch: %w", gobreaker.ErrOpenState), 5, gobreaker.ErrOpenState, 1},
		{"half-open breaker is final", 10, gobreaker.ErrTooManyRequests, 5, gobreaker.ErrTooManyRequests, 1},
		{"request deadline is final", 10, fmt.Errorf("request: %w", context.DeadlineExceeded), 5, context.DeadlineExceeded, 1},
		{"zero attempts rejected", 0, nil, 0, ErrInvalidMaxAttempts, 0},
		{"negative attempts rejected", 0, nil, -1, ErrInvalidMaxAttempts, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(context.Background(), failFirst(tt.failures, tt.err, &calls), tt.maxAttempts, time.Millisecond)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.wantAttempts, calls)
		})
	}
}

func TestRetryWithBackoff_CanceledBetweenAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	operation := func() error {
		calls++
		if calls == 2 {
			cancel()
		}
		return errors.New("backend down")
	}

	err := RetryWithBackoff(ctx, operation, 10, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_DeadlineDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	err := RetryWithBackoff(ctx, failFirst(100, errors.New("backend down"), &calls), 10, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls, "the first backoff outlives the deadline")
}

func TestRetryWithBackoff_DelayDoubles(t *testing.T) {
	var stamps []time.Time
	calls := 0
	operation := func() error {
		stamps = append(stamps, time.Now())
		calls++
		if calls < 4 {
			return errors.New("backend down")
		}
		return nil
	}

	require.NoError(t, RetryWithBackoff(context.Background(), operation, 5, 10*time.Millisecond))
	require.Len(t, stamps, 4)

	for i, want := range []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond} {
		assert.GreaterOrEqual(t, stamps[i+1].Sub(stamps[i]), want, "gap before attempt %d", i+2)
	}
}
