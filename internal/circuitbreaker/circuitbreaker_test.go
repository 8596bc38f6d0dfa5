package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New(Config{Name: "test-open", FailureThreshold: 3, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if err := cb.Call(func() error { return errUpstream }); !errors.Is(err, errUpstream) {
			t.Fatalf("expected upstream error, got %v", err)
		}
	}

	if cb.GetState() != StateOpen {
		t.Fatalf("expected open state after %d failures", 3)
	}
	if err := cb.Call(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen while open, got %v", err)
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(Config{Name: "test-reset", FailureThreshold: 3, Timeout: time.Hour})

	cb.Call(func() error { return errUpstream })
	cb.Call(func() error { return errUpstream })
	cb.Call(func() error { return nil })
	cb.Call(func() error { return errUpstream })
	cb.Call(func() error { return errUpstream })

	if cb.GetState() != StateClosed {
		t.Error("expected breaker to stay closed when failures are interleaved with successes")
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := New(Config{Name: "test-recover", FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})

	cb.Call(func() error { return errUpstream })
	if cb.GetState() != StateOpen {
		t.Fatal("expected open state")
	}

	time.Sleep(20 * time.Millisecond)

	// First call after the timeout transitions to half-open.
	if err := cb.Call(func() error { return nil }); err != nil {
		t.Fatalf("expected call to be allowed in half-open, got %v", err)
	}
	if cb.GetState() != StateHalfOpen {
		t.Fatal("expected half-open state after one success")
	}
	if err := cb.Call(func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Error("expected closed state after success threshold met")
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{Name: "test-reopen", FailureThreshold: 1, Timeout: 10 * time.Millisecond})

	cb.Call(func() error { return errUpstream })
	time.Sleep(20 * time.Millisecond)

	cb.Call(func() error { return errUpstream })
	if cb.GetState() != StateOpen {
		t.Error("expected failure in half-open to reopen the breaker")
	}
}
