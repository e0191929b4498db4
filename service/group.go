// Package service runs the long-lived parts of the course search
// application side by side.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Service is a long-running component of the application.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service until its work is done, the context gets
	// cancelled or an error occurs.
	Run(context.Context) error
}

// Group runs a set of services concurrently.
type Group struct {
	services []Service
	logger   *logrus.Entry
}

// NewGroup returns a Group for services. A nil logger discards output.
func NewGroup(logger *logrus.Entry, services ...Service) *Group {
	if logger == nil {
		logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return &Group{services: services, logger: logger}
}

// Add appends svc to the group. It must be called before Run.
func (g *Group) Add(svc Service) {
	g.services = append(g.services, svc)
}

// Run starts every service and returns once all of them have exited. The
// first failure cancels the context passed to the remaining services; the
// failures of all services are aggregated. A service that stops with the
// error of the already cancelled parent context counts as a clean exit.
func (g *Group) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	eg, runCtx := errgroup.WithContext(ctx)

	var (
		mu   sync.Mutex
		errs error
	)

	for _, svc := range g.services {
		svc := svc
		eg.Go(func() error {
			logger := g.logger.WithField("service", svc.Name())
			logger.Debug("starting service")

			err := svc.Run(runCtx)
			if err == nil || (ctx.Err() != nil && errors.Is(err, ctx.Err())) {
				logger.Debug("service exited")
				return nil
			}

			err = fmt.Errorf("%s: %w", svc.Name(), err)
			logger.WithField("err", err).Error("service failed")

			mu.Lock()
			errs = multierror.Append(errs, err)
			mu.Unlock()

			return err
		})
	}

	_ = eg.Wait()

	return errs
}
