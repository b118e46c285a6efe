package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func retryAll(error) Verdict {
	return Verdict{Retry: true, CountAgainstBreaker: true}
}

func TestExecutorSingleAttemptByDefault(t *testing.T) {
	e := NewExecutor(Policy{})
	calls := 0
	err := e.Do(context.Background(), "op", retryAll, func(context.Context) error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", calls)
	}
}

func TestExecutorRetriesUntilSuccess(t *testing.T) {
	e := NewExecutor(Policy{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond})
	calls := 0
	err := e.Do(context.Background(), "op", retryAll, func(context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestExecutorStopsOnNonRetryable(t *testing.T) {
	e := NewExecutor(Policy{MaxAttempts: 5, InitialBackoff: time.Millisecond})
	calls := 0
	classify := func(error) Verdict { return Verdict{Retry: false, CountAgainstBreaker: true} }
	err := e.Do(context.Background(), "op", classify, func(context.Context) error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one attempt for non-retryable error, got %d", calls)
	}
}

func TestExecutorHonorsContextCancellation(t *testing.T) {
	e := NewExecutor(Policy{MaxAttempts: 10, InitialBackoff: 50 * time.Millisecond, MaxBackoff: 50 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := e.Do(ctx, "op", retryAll, func(context.Context) error {
		calls++
		cancel()
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected last attempt error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected retry loop to stop after cancel, got %d calls", calls)
	}
}

func TestExecutorBreakerOpensAfterFailures(t *testing.T) {
	e := NewExecutor(Policy{
		BreakerEnabled:     true,
		BreakerMinRequests: 3,
		BreakerThreshold:   0.5,
		BreakerCooldown:    time.Minute,
	})

	fail := func(context.Context) error { return errBoom }
	for i := 0; i < 3; i++ {
		_ = e.Do(context.Background(), "op", retryAll, fail)
	}

	err := e.Do(context.Background(), "op", retryAll, fail)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}

func TestExecutorBreakerIgnoresExcludedErrors(t *testing.T) {
	e := NewExecutor(Policy{
		BreakerEnabled:     true,
		BreakerMinRequests: 2,
		BreakerThreshold:   0.5,
		BreakerCooldown:    time.Minute,
	})
	classify := func(error) Verdict { return Verdict{CountAgainstBreaker: false} }

	fail := func(context.Context) error { return errBoom }
	for i := 0; i < 10; i++ {
		if err := e.Do(context.Background(), "op", classify, fail); IsCircuitOpen(err) {
			t.Fatalf("breaker must not trip on excluded errors (iteration %d)", i)
		}
	}
}

func TestPolicyPassthrough(t *testing.T) {
	if !(Policy{}).Passthrough() {
		t.Fatalf("zero policy must be passthrough")
	}
	if (Policy{MaxAttempts: 2}).Passthrough() {
		t.Fatalf("retrying policy is not passthrough")
	}
	if (Policy{BreakerEnabled: true}).Passthrough() {
		t.Fatalf("breaker policy is not passthrough")
	}
}
