package resilience

import (
	"time"

	"github.com/riskibarqy/ultimate-scores/internal/platform/logging"
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// CircuitBreakerConfig guards one upstream, such as the feed API or QStash.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
	// OnStateChange runs after every transition, outside the breaker lock.
	OnStateChange func(from, to CircuitState)
}

func (cfg CircuitBreakerConfig) normalized() CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return cfg
}

// LogTransitions chains a hook that logs every transition for upstream.
// Opening logs at warn, everything else at info.
func (cfg CircuitBreakerConfig) LogTransitions(logger *logging.Logger, upstream string) CircuitBreakerConfig {
	if logger == nil {
		return cfg
	}
	prev := cfg.OnStateChange
	cfg.OnStateChange = func(from, to CircuitState) {
		if to == CircuitStateOpen {
			logger.Warn("circuit breaker opened", "upstream", upstream, "from", string(from))
		} else {
			logger.Info("circuit breaker state changed", "upstream", upstream, "from", string(from), "to", string(to))
		}
		if prev != nil {
			prev(from, to)
		}
	}
	return cfg
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled. A nil
// breaker runs every call.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	return newCircuitBreaker(cfg.normalized())
}
