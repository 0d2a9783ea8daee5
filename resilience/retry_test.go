package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_FailsThenSucceeds(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 5, InitialDelay: time.Millisecond, NoJitter: true})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, NoJitter: true})

	wantErr := errors.New("permanent")
	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Errorf("Execute() error = %v, want last operation error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_UnboundedRetriesUntilSuccess(t *testing.T) {
	// MaxAttempts zero means no cap.
	r := NewRetry(RetryConfig{InitialDelay: time.Millisecond, MaxDelay: time.Millisecond})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 10 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if calls != 10 {
		t.Errorf("calls = %d, want 10", calls)
	}
}

func TestRetry_UnboundedStopsOnContextCancel(t *testing.T) {
	r := NewRetry(RetryConfig{InitialDelay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Execute(ctx, func(ctx context.Context) error {
		return errors.New("always failing")
	})

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Execute() error = %v, want context.DeadlineExceeded", err)
	}
}

func TestRetry_RetryIfStopsEarly(t *testing.T) {
	permanent := errors.New("permanent")
	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			return !errors.Is(err, permanent)
		},
	})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return permanent
	})

	if !errors.Is(err, permanent) {
		t.Errorf("Execute() error = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-retryable error)", calls)
	}
}

func TestRetry_OnRetryCallback(t *testing.T) {
	var attempts []int
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		NoJitter:     true,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
		},
	})

	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("fail")
	})

	if len(attempts) != 2 {
		t.Fatalf("OnRetry called %d times, want 2", len(attempts))
	}
	if attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestRetry_BackoffStrategies(t *testing.T) {
	tests := []struct {
		name     string
		strategy BackoffStrategy
		attempt  int
		want     time.Duration
	}{
		{"constant first", BackoffConstant, 1, 100 * time.Millisecond},
		{"constant third", BackoffConstant, 3, 100 * time.Millisecond},
		{"linear first", BackoffLinear, 1, 100 * time.Millisecond},
		{"linear third", BackoffLinear, 3, 300 * time.Millisecond},
		{"exponential first", BackoffExponential, 1, 100 * time.Millisecond},
		{"exponential third", BackoffExponential, 3, 400 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetry(RetryConfig{
				InitialDelay: 100 * time.Millisecond,
				Strategy:     tt.strategy,
				NoJitter:     true,
			})
			if got := r.calculateDelay(tt.attempt); got != tt.want {
				t.Errorf("calculateDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetry_DelayCappedAtMax(t *testing.T) {
	r := NewRetry(RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		NoJitter:     true,
	})

	// 100ms * 2^9 is far past the cap
	if got := r.calculateDelay(10); got != time.Second {
		t.Errorf("calculateDelay(10) = %v, want %v", got, time.Second)
	}
}

func TestRetry_DeepAttemptOverflowClamped(t *testing.T) {
	r := NewRetry(RetryConfig{
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		NoJitter:     true,
	})

	// Exponential growth overflows float64->Duration conversion well before
	// attempt 200; the delay must still land on MaxDelay.
	if got := r.calculateDelay(200); got != time.Second {
		t.Errorf("calculateDelay(200) = %v, want %v", got, time.Second)
	}
}

func TestRetry_DefaultsApplied(t *testing.T) {
	r := NewRetry(RetryConfig{})
	cfg := r.Config()

	if cfg.MaxAttempts != 0 {
		t.Errorf("MaxAttempts = %d, want 0 (unbounded)", cfg.MaxAttempts)
	}
	if cfg.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", cfg.InitialDelay)
	}
	if cfg.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", cfg.MaxDelay)
	}
	if cfg.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", cfg.Multiplier)
	}
}
