// Package indexer walks every content item of a course, turns the items the
// search engine can use into documents and submits them.
package indexer

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/coursesearch/searchindex/index Engine
//go:generate mockgen -package mocks -destination mocks/store_mocks.go github.com/mycok/coursesearch/content Store,ItemIterator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/pipeline"
	"github.com/mycok/coursesearch/searchindex/index"
)

// DefaultBatchSize is the number of documents per bulk request when the
// config does not set one.
const DefaultBatchSize = 100

// Builder turns a content item into a search document.
type Builder interface {
	Build(ctx context.Context, item *content.Item, kind extract.Kind) (*index.Document, error)
}

// Config encapsulates the settings for configuring the orchestrator.
type Config struct {
	// Content store to read items from.
	Store content.Store

	// Search engine to submit documents to.
	Engine index.Engine

	// Builds documents out of items.
	Builder Builder

	// Documents per bulk request. Defaults to DefaultBatchSize.
	BatchSize int

	// Number of items built concurrently. Defaults to 1.
	Workers int

	// Index HTML pages that link PDF assets into the document partition.
	EnableDocuments bool

	// A clock instance for measuring run times. If not specified, the
	// default wall-clock will be used instead.
	Clock clock.Clock

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Store == nil {
		err = multierror.Append(err, fmt.Errorf("content store not provided"))
	}

	if cfg.Engine == nil {
		err = multierror.Append(err, fmt.Errorf("search engine not provided"))
	}

	if cfg.Builder == nil {
		err = multierror.Append(err, fmt.Errorf("document builder not provided"))
	}

	if cfg.BatchSize < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for batch size, must be >= 0"))
	} else if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}

	if cfg.Workers < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for workers, must be >= 0"))
	} else if cfg.Workers == 0 {
		cfg.Workers = 1
	}

	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Stats summarizes a single indexing run.
type Stats struct {
	mu sync.Mutex

	// Items read from the store.
	Seen int
	// Documents accepted by the engine.
	Submitted int
	// Documents dropped because one or more fields were empty.
	Incomplete int
	// Items of a category that is not indexed.
	Unsupported int
	// Items that could not be built or submitted.
	Failed int
}

func (s *Stats) add(field *int, n int) {
	s.mu.Lock()
	*field += n
	s.mu.Unlock()
}

// Orchestrator indexes whole courses.
type Orchestrator struct {
	cfg Config
}

// New returns a configured Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("indexer: config validation failed: %w", err)
	}

	return &Orchestrator{cfg: cfg}, nil
}

// IndexCollection indexes every item of course. Failures of individual
// items are logged and counted in the returned stats; an error is returned
// only when the items of the course cannot be read or ctx is cancelled.
func (o *Orchestrator) IndexCollection(ctx context.Context, course string) (*Stats, error) {
	logger := o.cfg.Logger.WithFields(logrus.Fields{
		"run_id": uuid.New().String(),
		"course": course,
	})
	logger.Info("indexing course")

	startedAt := o.cfg.Clock.Now()
	stats := new(Stats)

	it, err := o.cfg.Store.Items(ctx, course)
	if err != nil {
		return stats, fmt.Errorf("index collection %q: %w", course, err)
	}
	defer func() { _ = it.Close() }()

	sink := &batchingSink{
		engine:    o.cfg.Engine,
		batchSize: o.cfg.BatchSize,
		stats:     stats,
		logger:    logger,
	}

	p := pipeline.New(
		pipeline.NewFIFO(&router{documents: o.cfg.EnableDocuments, stats: stats, logger: logger}),
		pipeline.NewFixedWorkerPool(&docBuilder{builder: o.cfg.Builder, stats: stats, logger: logger}, o.cfg.Workers),
	)

	if err = p.Execute(ctx, &itemSource{it: it, stats: stats}, sink); err != nil {
		return stats, fmt.Errorf("index collection %q: %w", course, err)
	}

	if err = ctx.Err(); err != nil {
		logger.WithError(err).Warn("indexing interrupted")
		return stats, err
	}

	sink.flush(ctx)

	logger.WithFields(logrus.Fields{
		"seen":         stats.Seen,
		"submitted":    stats.Submitted,
		"incomplete":   stats.Incomplete,
		"unsupported":  stats.Unsupported,
		"failed":       stats.Failed,
		"elapsed_time": o.cfg.Clock.Now().Sub(startedAt).String(),
	}).Info("indexed course")

	return stats, nil
}
