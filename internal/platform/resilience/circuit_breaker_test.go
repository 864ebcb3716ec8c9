package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream 503")

func newTestBreaker(threshold, probes int) (*CircuitBreaker, *time.Time) {
	b := NewCircuitBreaker(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   probes,
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func fail() error { return errUpstream }
func ok() error   { return nil }

func TestCircuitBreaker_BasicTransitions(t *testing.T) {
	b, now := newTestBreaker(2, 1)

	_ = b.Execute(fail, nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	_ = b.Execute(fail, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	called := false
	err := b.Execute(func() error { called = true; return nil }, nil)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected open breaker to reject without calling fn, got %v", err)
	}

	*now = now.Add(6 * time.Second)
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open after cooldown, got %s", state)
	}
	if err := b.Execute(ok, nil); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b, now := newTestBreaker(1, 1)

	_ = b.Execute(fail, nil)
	*now = now.Add(6 * time.Second)
	if err := b.Execute(fail, nil); !errors.Is(err, errUpstream) {
		t.Fatalf("expected probe error, got %v", err)
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected reopened breaker, got %s", state)
	}
	*now = now.Add(time.Second)
	if err := b.Execute(ok, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("cooldown restarts on a failed probe, got %v", err)
	}
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	b, now := newTestBreaker(1, 1)

	_ = b.Execute(fail, nil)
	*now = now.Add(6 * time.Second)

	err := b.Execute(func() error {
		if inner := b.Execute(ok, nil); !errors.Is(inner, ErrCircuitOpen) {
			t.Fatalf("expected concurrent probe to be rejected, got %v", inner)
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("expected first probe to pass, got %v", err)
	}
}

func TestCircuitBreaker_ExecuteClassifiesFailures(t *testing.T) {
	b, _ := newTestBreaker(1, 1)
	errNotFound := errors.New("upstream 404")
	isFailure := func(err error) bool { return errors.Is(err, errUpstream) }

	if err := b.Execute(func() error { return errNotFound }, isFailure); !errors.Is(err, errNotFound) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("non-failure errors must not open the breaker, got %s", state)
	}

	_ = b.Execute(fail, isFailure)
	if err := b.Execute(ok, isFailure); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker to reject, got %v", err)
	}
}

func TestCircuitBreaker_Disabled(t *testing.T) {
	b := NewCircuitBreaker(CircuitBreakerConfig{Enabled: false, FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		_ = b.Execute(fail, nil)
	}
	if err := b.Execute(ok, nil); err != nil {
		t.Fatalf("disabled breaker should allow, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("disabled breaker should stay closed, got %s", state)
	}
}
