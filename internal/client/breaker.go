package client

import (
	"context"
	"errors"
	"net/http"

	"applytrack/internal/config"
	applytrackErrors "applytrack/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// Breaker wraps backend calls with the circuit breaker pattern. It only ever
// fails fast; a rejected call is not retried.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[any]
}

// NewBreaker creates a breaker from cfg, or nil when the breaker is disabled.
// A nil *Breaker passes every call straight through.
func NewBreaker(name string, cfg config.CircuitBreakerConfig, logger *applytrackErrors.Logger) *Breaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: isBackendHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[any](settings)}
}

// isBackendHealthy counts only server side failures against the backend.
// Client errors and caller cancellations say nothing about its health.
func isBackendHealthy(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// Execute runs fn with circuit breaker protection
func (b *Breaker) Execute(fn func() (any, error)) (any, error) {
	if b == nil || b.cb == nil {
		return fn()
	}

	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, applytrackErrors.NewNetworkError(applytrackErrors.ErrCodeAPIUnavailable,
			"tracking API unavailable, circuit breaker is "+b.cb.State().String(), err)
	}
	return v, err
}

// GetStats returns circuit breaker statistics
func (b *Breaker) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{
			"enabled": false,
		}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (b *Breaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
