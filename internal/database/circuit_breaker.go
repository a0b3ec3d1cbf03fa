// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/metrics"
	"github.com/tomtom215/rocksky-relay/internal/models"
)

const defaultBreakerTimeout = 30 * time.Second

// TrackReader is the read surface enrichment needs from the catalog.
type TrackReader interface {
	TrackByFingerprint(ctx context.Context, fingerprint string) (*models.Track, error)
	IsLoved(ctx context.Context, did, fingerprint string) (bool, error)
	Ping(ctx context.Context) error
}

// CircuitBreakerStore wraps a TrackReader with a circuit breaker so a stalled
// or failing catalog fails enrichment fast instead of stacking up queries on
// every connection.
//
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - Opens after 60% failure rate with minimum 10 requests
type CircuitBreakerStore struct {
	store TrackReader
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

// NewCircuitBreakerStore wraps store. A zero timeout uses 30 seconds.
func NewCircuitBreakerStore(store TrackReader, timeout time.Duration) *CircuitBreakerStore {
	if timeout <= 0 {
		timeout = defaultBreakerTimeout
	}
	cbName := "duckdb-track-store"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		// Caller cancellation says nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerStore{store: store, cb: cb, name: cbName}
}

func (s *CircuitBreakerStore) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := s.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
			counts := s.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(0)
	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// TrackByFingerprint implements TrackReader.
func (s *CircuitBreakerStore) TrackByFingerprint(ctx context.Context, fingerprint string) (*models.Track, error) {
	return castResult[*models.Track](s.execute(func() (interface{}, error) {
		return s.store.TrackByFingerprint(ctx, fingerprint)
	}))
}

// IsLoved implements TrackReader.
func (s *CircuitBreakerStore) IsLoved(ctx context.Context, did, fingerprint string) (bool, error) {
	return castResult[bool](s.execute(func() (interface{}, error) {
		return s.store.IsLoved(ctx, did, fingerprint)
	}))
}

// Ping bypasses the breaker so readiness reflects the store itself.
func (s *CircuitBreakerStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// State returns the current breaker state as a string.
func (s *CircuitBreakerStore) State() string {
	return stateToString(s.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
