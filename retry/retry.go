// Package retry runs calls against external systems with a bounded number
// of attempts, exponential backoff with jitter and an optional circuit
// breaker shared by every call made through the same Policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/mycok/coursesearch/metrics"
)

// ErrExhausted is returned by Do when every attempt failed or the circuit
// breaker refused the call.
var ErrExhausted = errors.New("retries exhausted")

// Permanent marks err as non-retryable. Do returns the wrapped error
// immediately and the circuit breaker does not count it as a failure.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Config defines the retry behaviour of a Policy.
type Config struct {
	// Name identifies the remote system in logs, metrics and breaker state.
	Name string

	// Maximum number of attempts per call. Defaults to 3.
	MaxAttempts int

	// Delay before the second attempt. Defaults to 100ms.
	InitialInterval time.Duration

	// Upper bound of a single delay. Defaults to 5s.
	MaxInterval time.Duration

	// Consecutive failed calls that open the breaker. Zero disables the
	// breaker.
	BreakerThreshold uint32

	// How long the breaker stays open before letting a trial request through.
	// Defaults to 30s.
	BreakerTimeout time.Duration

	// Clock used for sleeping between attempts. Defaults to the wall clock.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Name == "" {
		err = multierror.Append(err, fmt.Errorf("policy name not provided"))
	}

	if config.MaxAttempts < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for max attempts, must be >= 0"))
	}

	if config.MaxAttempts == 0 {
		config.MaxAttempts = 3
	}

	if config.InitialInterval <= 0 {
		config.InitialInterval = 100 * time.Millisecond
	}

	if config.MaxInterval <= 0 {
		config.MaxInterval = 5 * time.Second
	}

	if config.MaxInterval < config.InitialInterval {
		err = multierror.Append(err, fmt.Errorf("max interval must not be lower than initial interval"))
	}

	if config.BreakerTimeout <= 0 {
		config.BreakerTimeout = 30 * time.Second
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Policy executes operations under a retry configuration.
type Policy struct {
	config  Config
	breaker *gobreaker.CircuitBreaker
}

// New returns a Policy for the provided configuration.
func New(config Config) (*Policy, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("retry policy: config validation failed: %w", err)
	}

	p := &Policy{config: config}

	if config.BreakerThreshold > 0 {
		threshold := config.BreakerThreshold
		logger := config.Logger

		p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    config.Name,
			Timeout: config.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				var perm *backoff.PermanentError

				return err == nil || errors.As(err, &perm)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("circuit breaker state changed")
			},
		})
	}

	return p, nil
}

// Do calls op until it succeeds, returns a permanent error, the attempt
// budget runs out or ctx is cancelled. Exhaustion is reported as an error
// wrapping ErrExhausted and the last failure. A nil Policy calls op once.
func (p *Policy) Do(ctx context.Context, op func(context.Context) error) error {
	if p == nil {
		err := op(ctx)

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}

		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.config.InitialInterval
	b.MaxInterval = p.config.MaxInterval
	b.MaxElapsedTime = 0
	b.Reset()

	for attempt := 1; ; attempt++ {
		err := p.call(ctx, op)
		if err == nil {
			return nil
		}

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return perm.Err
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w: %w", p.config.Name, ErrExhausted, err)
		}

		if attempt >= p.config.MaxAttempts {
			return fmt.Errorf("%s: %w after %d attempts: %w", p.config.Name, ErrExhausted, attempt, err)
		}

		wait := b.NextBackOff()
		p.config.Logger.WithFields(logrus.Fields{
			"target":  p.config.Name,
			"attempt": attempt,
			"wait":    wait.String(),
			"err":     err,
		}).Debug("retrying failed call")
		metrics.RetriesTotal.WithLabelValues(p.config.Name).Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.config.Clock.After(wait):
		}
	}
}

func (p *Policy) call(ctx context.Context, op func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return backoff.Permanent(err)
	}

	if p.breaker == nil {
		return op(ctx)
	}

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, op(ctx)
	})

	return err
}
