package resilience

import (
	"errors"
	"testing"
	"time"
)

var errUpstream = errors.New("upstream 503")

func newTestBreaker(threshold int, openTimeout time.Duration, halfOpen int, now *time.Time, transitions *[]string) *CircuitBreaker {
	b := NewCircuitBreakerFromConfig(CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: threshold,
		OpenTimeout:      openTimeout,
		HalfOpenMaxReq:   halfOpen,
		OnStateChange: func(from, to CircuitState) {
			*transitions = append(*transitions, string(from)+"->"+string(to))
		},
	})
	b.now = func() time.Time { return *now }
	return b
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	now := time.Date(2015, 8, 22, 18, 0, 0, 0, time.UTC)
	var transitions []string
	b := newTestBreaker(2, 5*time.Second, 1, &now, &transitions)

	fail := func() error { return errUpstream }
	ok := func() error { return nil }

	_ = b.Do(fail, nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	_ = b.Do(fail, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}
	if err := b.Do(ok, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open once the timeout passed, got %s", state)
	}
	if err := b.Do(ok, nil); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}

	want := []string{"closed->open", "open->half_open", "half_open->closed"}
	if len(transitions) != len(want) {
		t.Fatalf("unexpected transitions: %v", transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("unexpected transitions: %v", transitions)
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Date(2015, 8, 22, 18, 0, 0, 0, time.UTC)
	var transitions []string
	b := newTestBreaker(1, time.Second, 1, &now, &transitions)

	_ = b.Do(func() error { return errUpstream }, nil)
	now = now.Add(2 * time.Second)
	if err := b.Do(func() error { return errUpstream }, nil); !errors.Is(err, errUpstream) {
		t.Fatalf("expected the probe to run, got %v", err)
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected a failed probe to reopen, got %s", state)
	}
}

func TestCircuitBreaker_DoSkipsUncountableErrors(t *testing.T) {
	b := NewCircuitBreakerFromConfig(CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute})
	errBadRequest := errors.New("bad request")
	countable := func(err error) bool { return errors.Is(err, errUpstream) }

	if err := b.Do(func() error { return errBadRequest }, countable); !errors.Is(err, errBadRequest) {
		t.Fatalf("expected passthrough error, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("uncountable error must not open breaker, got %s", state)
	}

	if err := b.Do(func() error { return errUpstream }, countable); !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if err := b.Do(func() error { return nil }, countable); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open breaker, got %v", err)
	}
}

func TestNewCircuitBreakerFromConfig_Disabled(t *testing.T) {
	b := NewCircuitBreakerFromConfig(CircuitBreakerConfig{Enabled: false})
	if b != nil {
		t.Fatalf("disabled config must not build a breaker")
	}

	calls := 0
	if err := b.Do(func() error { calls++; return nil }, nil); err != nil || calls != 1 {
		t.Fatalf("nil breaker must run fn: err=%v calls=%d", err, calls)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("nil breaker must report closed, got %s", state)
	}
}

func TestCircuitBreakerConfig_Defaults(t *testing.T) {
	cfg := CircuitBreakerConfig{Enabled: true}.normalized()
	if cfg.FailureThreshold != defaultFailureThreshold || cfg.OpenTimeout != defaultOpenTimeout || cfg.HalfOpenMaxReq != defaultHalfOpenMaxReq {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}
