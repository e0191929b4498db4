// Package metrics provides a service that exposes the application's
// Prometheus metrics over HTTP.
package metrics

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	appmetrics "github.com/mycok/coursesearch/metrics"
)

// Config defines the settings of the metrics service.
type Config struct {
	// Address to listen on, ie :9090.
	ListenAddr string

	// Path the metrics are served under. Defaults to /metrics.
	Path string

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.ListenAddr == "" {
		err = multierror.Append(err, fmt.Errorf("listen address not provided"))
	}

	if config.Path == "" {
		config.Path = "/metrics"
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Service serves the registered metrics. It satisfies the service.Service
// interface.
type Service struct {
	config Config
	mux    *http.ServeMux
}

// New creates and returns a fully configured metrics service.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("metrics service: config validation failed: %w", err)
	}

	appmetrics.Register()

	mux := http.NewServeMux()
	mux.Handle(config.Path, promhttp.Handler())

	return &Service{config: config, mux: mux}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "metrics" }

// Handler returns the HTTP handler of the service.
func (svc *Service) Handler() http.Handler { return svc.mux }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.config.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:              svc.config.ListenAddr,
		Handler:           svc.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFn()

		_ = srv.Shutdown(shutdownCtx)
	}()

	svc.config.Logger.WithField("addr", l.Addr().String()).Info("listening for metrics requests")

	if err = srv.Serve(l); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
