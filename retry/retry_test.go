package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	check "gopkg.in/check.v1"
)

var _ = check.Suite(new(retryTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type retryTestSuite struct{}

func (s *retryTestSuite) TestConfigValidation(c *check.C) {
	config := Config{Name: "engine"}
	c.Assert(config.validate(), check.IsNil)
	c.Assert(config.MaxAttempts, check.Equals, 3)
	c.Assert(config.Clock, check.Not(check.IsNil), check.Commentf("default clock was not assigned"))
	c.Assert(config.Logger, check.Not(check.IsNil), check.Commentf("default logger was not assigned"))

	config = Config{}
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*policy name not provided.*")

	config = Config{Name: "engine", MaxAttempts: -1}
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*invalid value for max attempts.*")

	config = Config{Name: "engine", InitialInterval: time.Second, MaxInterval: time.Millisecond}
	c.Assert(config.validate(), check.ErrorMatches, "(?ms).*max interval must not be lower.*")
}

func (s *retryTestSuite) TestSucceedsAfterTransientFailures(c *check.C) {
	p := s.policy(c, Config{MaxAttempts: 3})

	var calls int
	err := p.Do(context.TODO(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}

		return nil
	})

	c.Assert(err, check.IsNil)
	c.Assert(calls, check.Equals, 3)
}

func (s *retryTestSuite) TestExhaustedAttempts(c *check.C) {
	p := s.policy(c, Config{MaxAttempts: 2})
	transient := errors.New("connection refused")

	var calls int
	err := p.Do(context.TODO(), func(context.Context) error {
		calls++

		return transient
	})

	c.Assert(calls, check.Equals, 2)
	c.Assert(errors.Is(err, ErrExhausted), check.Equals, true)
	c.Assert(errors.Is(err, transient), check.Equals, true)
}

func (s *retryTestSuite) TestPermanentErrorStopsImmediately(c *check.C) {
	p := s.policy(c, Config{MaxAttempts: 5})
	badRequest := errors.New("mapper_parsing_exception")

	var calls int
	err := p.Do(context.TODO(), func(context.Context) error {
		calls++

		return Permanent(badRequest)
	})

	c.Assert(calls, check.Equals, 1)
	c.Assert(err, check.Equals, badRequest)
}

func (s *retryTestSuite) TestBreakerOpensAfterThreshold(c *check.C) {
	p := s.policy(c, Config{MaxAttempts: 1, BreakerThreshold: 2, BreakerTimeout: time.Hour})
	failing := func(context.Context) error { return errors.New("timeout") }

	for i := 0; i < 2; i++ {
		err := p.Do(context.TODO(), failing)
		c.Assert(errors.Is(err, ErrExhausted), check.Equals, true)
	}

	var calls int
	err := p.Do(context.TODO(), func(context.Context) error {
		calls++

		return nil
	})

	c.Assert(calls, check.Equals, 0, check.Commentf("open breaker must not let calls through"))
	c.Assert(errors.Is(err, ErrExhausted), check.Equals, true)
}

func (s *retryTestSuite) TestCancellationWhileWaiting(c *check.C) {
	clk := testclock.NewClock(time.Now())
	p := s.policy(c, Config{MaxAttempts: 5, InitialInterval: time.Minute, MaxInterval: time.Minute, Clock: clk})

	ctx, cancel := context.WithCancel(context.TODO())
	errCh := make(chan error, 1)

	go func() {
		errCh <- p.Do(ctx, func(context.Context) error { return errors.New("unreachable") })
	}()

	// Wait until the policy sleeps on the test clock, then cancel.
	c.Assert(clk.WaitAdvance(0, time.Second, 1), check.IsNil)
	cancel()

	select {
	case err := <-errCh:
		c.Assert(errors.Is(err, context.Canceled), check.Equals, true)
	case <-time.After(5 * time.Second):
		c.Fatal("timed out waiting for cancelled retry loop")
	}
}

func (s *retryTestSuite) policy(c *check.C, config Config) *Policy {
	config.Name = "test"
	if config.InitialInterval == 0 {
		config.InitialInterval = time.Millisecond
		config.MaxInterval = 2 * time.Millisecond
	}

	p, err := New(config)
	c.Assert(err, check.IsNil)

	return p
}

func (s *retryTestSuite) TestNilPolicyCallsOnce(c *check.C) {
	var p *Policy
	notFound := errors.New("not found")

	var calls int
	err := p.Do(context.TODO(), func(context.Context) error {
		calls++

		return Permanent(notFound)
	})

	c.Assert(calls, check.Equals, 1)
	c.Assert(err, check.Equals, notFound)
}
