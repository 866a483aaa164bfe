// Package resilience provides retry-with-backoff and circuit breaking for
// calls to flaky dependencies (queue, remote API).
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Classification tells the executor how to treat an error.
type Classification struct {
	Retryable     bool
	RecordFailure bool
}

// Classifier inspects an error and classifies it. A nil classifier treats
// every error as fatal.
type Classifier func(err error) Classification

// Config tunes retry and breaker behavior.
type Config struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64

	BreakerEnabled      bool
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		Multiplier:     2.0,

		BreakerEnabled:      true,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

func (c Config) normalize() Config {
	def := DefaultConfig()
	out := c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = def.InitialBackoff
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.Multiplier < 1.0 {
		out.Multiplier = def.Multiplier
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = def.BreakerMinRequests
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = def.BreakerOpenTimeout
	}
	return out
}

// Executor runs operations with retry and a per-operation circuit breaker.
type Executor struct {
	cfg Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// NewExecutor returns an Executor with normalized config.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		cfg:      cfg.normalize(),
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Execute runs fn under the named operation's breaker with retries.
func (e *Executor) Execute(ctx context.Context, operation string, fn func(context.Context) error, classifier Classifier) error {
	if fn == nil {
		return fmt.Errorf("resilience: operation callback is nil")
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	if classifier == nil {
		classifier = func(error) Classification {
			return Classification{Retryable: false, RecordFailure: true}
		}
	}

	if !e.cfg.BreakerEnabled {
		return e.retry(ctx, op, fn, classifier)
	}

	breaker := e.breaker(op, classifier)
	_, err := breaker.Execute(func() (any, error) {
		return nil, e.retry(ctx, op, fn, classifier)
	})
	return err
}

func (e *Executor) retry(ctx context.Context, operation string, fn func(context.Context) error, classifier Classifier) error {
	backoff := e.cfg.InitialBackoff

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		class := classifier(err)
		if !class.Retryable || attempt == e.cfg.MaxAttempts {
			return err
		}

		slog.Warn("retry_attempt",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.cfg.MaxAttempts,
			"backoff_ms", backoff.Milliseconds(),
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * e.cfg.Multiplier)
		if backoff > e.cfg.MaxBackoff {
			backoff = e.cfg.MaxBackoff
		}
	}
	return nil
}

func (e *Executor) breaker(operation string, classifier Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if b, ok := e.breakers[operation]; ok {
		return b
	}

	settings := gobreaker.Settings{
		Name:    operation,
		Timeout: e.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.cfg.BreakerMinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.cfg.BreakerFailureRatio
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return !classifier(err).RecordFailure
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit_breaker_state_change", "operation", name, "from", from.String(), "to", to.String())
		},
	}

	b := gobreaker.NewCircuitBreaker[any](settings)
	e.breakers[operation] = b
	return b
}

// IsCircuitOpen reports whether err came from an open breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
