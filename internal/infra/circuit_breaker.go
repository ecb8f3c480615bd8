package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Circuit Breaker ───────────────────────────────────────────────────────────
// Guards calls to the SMTP relay. After FailureThreshold consecutive failures
// the breaker opens and invoice e-mails fail fast instead of holding the HTTP
// request for a full dial timeout. After OpenTimeout one trial request is let through.

type CBState int

const (
	CBClosed CBState = iota
	CBOpen
	CBHalfOpen
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreakerConfig struct {
	FailureThreshold int
	OpenTimeout      time.Duration
}

func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{FailureThreshold: 3, OpenTimeout: 30 * time.Second}
}

type CircuitBreaker struct {
	mu          sync.Mutex
	state       CBState
	failures    int
	openedAt    time.Time
	threshold   int
	openTimeout time.Duration
	now         func() time.Time
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{
		threshold:   cfg.FailureThreshold,
		openTimeout: cfg.OpenTimeout,
		now:         time.Now,
	}
}

// State reports the current state, moving open → half-open once the timeout elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) stateLocked() CBState {
	if cb.state == CBOpen && cb.now().Sub(cb.openedAt) >= cb.openTimeout {
		cb.state = CBHalfOpen
	}
	return cb.state
}

// Execute runs fn unless the breaker is open. In half-open state only one
// trial request runs at a time; concurrent callers get ErrCircuitOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	cb.mu.Lock()
	switch cb.stateLocked() {
	case CBOpen:
		cb.mu.Unlock()
		return ErrCircuitOpen
	case CBHalfOpen:
		// claim the trial slot
		cb.state = CBOpen
		cb.openedAt = cb.now()
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.failures++
		if cb.failures >= cb.threshold || cb.state == CBOpen {
			cb.state = CBOpen
			cb.openedAt = cb.now()
		}
		return err
	}
	cb.failures = 0
	cb.state = CBClosed
	return nil
}
