package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker opens after FailureThreshold consecutive countable failures
// and lets HalfOpenMaxReq probes through once OpenTimeout has passed.
type CircuitBreaker struct {
	mu  sync.Mutex
	cfg CircuitBreakerConfig

	state     CircuitState
	failures  int
	openedAt  time.Time
	inFlight  int
	successes int
	now       func() time.Time
}

func newCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg:   cfg,
		state: CircuitStateClosed,
		now:   time.Now,
	}
}

// Do runs fn when the breaker allows it and records the outcome. Errors for
// which countable returns false count as successes. A nil breaker always runs fn.
func (b *CircuitBreaker) Do(fn func() error, countable func(error) bool) error {
	if b == nil {
		return fn()
	}
	if err := b.acquire(); err != nil {
		return err
	}

	err := fn()
	b.release(err != nil && (countable == nil || countable(err)))
	return err
}

func (b *CircuitBreaker) State() CircuitState {
	if b == nil {
		return CircuitStateClosed
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) acquire() error {
	b.mu.Lock()
	from := b.state
	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.cfg.OpenTimeout {
			b.mu.Unlock()
			return ErrCircuitOpen
		}
		b.moveLocked(CircuitStateHalfOpen)
	}
	if b.state == CircuitStateHalfOpen {
		if b.inFlight >= b.cfg.HalfOpenMaxReq {
			to := b.state
			b.mu.Unlock()
			b.notify(from, to)
			return ErrCircuitOpen
		}
		b.inFlight++
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
	return nil
}

func (b *CircuitBreaker) release(failed bool) {
	b.mu.Lock()
	from := b.state
	switch b.state {
	case CircuitStateClosed:
		if !failed {
			b.failures = 0
			break
		}
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.moveLocked(CircuitStateOpen)
		}
	case CircuitStateHalfOpen:
		if b.inFlight > 0 {
			b.inFlight--
		}
		if failed {
			b.moveLocked(CircuitStateOpen)
			break
		}
		b.successes++
		if b.successes >= b.cfg.HalfOpenMaxReq && b.inFlight == 0 {
			b.moveLocked(CircuitStateClosed)
		}
	case CircuitStateOpen:
		if failed {
			b.openedAt = b.now()
		}
	}
	to := b.state
	b.mu.Unlock()

	b.notify(from, to)
}

func (b *CircuitBreaker) moveLocked(to CircuitState) {
	b.state = to
	b.inFlight = 0
	b.successes = 0
	switch to {
	case CircuitStateClosed:
		b.failures = 0
		b.openedAt = time.Time{}
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) notify(from, to CircuitState) {
	if from != to && b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(from, to)
	}
}
