// Package router holds the health-tracking primitives shared by the
// routing strategies: per-provider stats and a small circuit breaker.
package router

import (
	"sync"
	"sync/atomic"
	"time"
)

type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 30 * time.Second
)

// ProviderStats tracks health and latency for a single provider.
type ProviderStats struct {
	mu sync.RWMutex

	avgTTFT       time.Duration // time to first event
	totalRequests int64
	totalFailures int64

	inflight atomic.Int64

	state               CircuitState
	consecutiveFailures int
	lastFailure         time.Time
}

func NewProviderStats() *ProviderStats {
	return &ProviderStats{
		state:   CircuitClosed,
		avgTTFT: time.Second, // initial estimate
	}
}

// IsAvailable reports whether the provider may serve a request, and
// transitions Open to HalfOpen once the recovery timeout has passed. A
// half-open circuit admits a single probe request at a time.
func (s *ProviderStats) IsAvailable(recoveryTimeout time.Duration) bool {
	s.mu.RLock()
	state := s.state
	lastFailure := s.lastFailure
	s.mu.RUnlock()

	switch state {
	case CircuitOpen:
		if time.Since(lastFailure) < recoveryTimeout {
			return false
		}

		s.mu.Lock()

		if s.state == CircuitOpen {
			s.state = CircuitHalfOpen
		}

		s.mu.Unlock()

		return true

	case CircuitHalfOpen:
		return s.inflight.Load() == 0

	default:
		return true
	}
}

func (s *ProviderStats) Metrics() (state CircuitState, avgTTFT time.Duration, totalRequests, totalFailures, inflight int64) {
	s.mu.RLock()
	state = s.state
	avgTTFT = s.avgTTFT
	totalRequests = s.totalRequests
	totalFailures = s.totalFailures
	s.mu.RUnlock()

	inflight = s.inflight.Load()
	return
}

// RecordSuccess resets the failure streak, folds the observed time to first
// event into the moving average, and closes a half-open circuit.
func (s *ProviderStats) RecordSuccess(ttft time.Duration, latencyAlpha float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.consecutiveFailures = 0

	if s.totalRequests == 1 {
		s.avgTTFT = ttft
	} else {
		s.avgTTFT = time.Duration(float64(ttft)*latencyAlpha + float64(s.avgTTFT)*(1-latencyAlpha))
	}

	if s.state == CircuitHalfOpen {
		s.state = CircuitClosed
	}
}

// RecordFailure counts the failure and opens the circuit once the streak
// reaches the threshold. A failed half-open probe reopens immediately.
func (s *ProviderStats) RecordFailure(failureThreshold int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRequests++
	s.totalFailures++
	s.consecutiveFailures++
	s.lastFailure = time.Now()

	if s.state == CircuitHalfOpen || s.consecutiveFailures >= failureThreshold {
		s.state = CircuitOpen
	}
}

func (s *ProviderStats) LastFailure() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastFailure
}

func (s *ProviderStats) SetHalfOpen() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = CircuitHalfOpen
}

func (s *ProviderStats) AddInflight(delta int64) int64 {
	return s.inflight.Add(delta)
}

func (s *ProviderStats) Inflight() int64 {
	return s.inflight.Load()
}
