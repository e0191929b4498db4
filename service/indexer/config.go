package indexer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"

	orchestrator "github.com/mycok/coursesearch/indexer"
	"github.com/mycok/coursesearch/service/partition"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/mycok/coursesearch/service/indexer CollectionIndexer

// CollectionIndexer indexes every item of a course.
type CollectionIndexer interface {
	IndexCollection(ctx context.Context, course string) (*orchestrator.Stats, error)
}

// Config defines the settings of the periodic indexing service.
type Config struct {
	// Indexes a single course.
	Indexer CollectionIndexer

	// Courses to keep indexed.
	Courses []string

	// An API for detecting the share of Courses owned by this instance.
	// If not specified, the instance owns every course.
	PartitionDetector partition.Detector

	// A clock instance for generating time-related events. If not
	// specified, the default wall-clock will be used instead.
	Clock clock.Clock

	// The time between subsequent indexing passes.
	UpdateInterval time.Duration

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (config *Config) validate() error {
	var err error

	if config.Indexer == nil {
		err = multierror.Append(err, fmt.Errorf("collection indexer not provided"))
	}

	if len(config.Courses) == 0 {
		err = multierror.Append(err, fmt.Errorf("course list not provided"))
	}

	if config.PartitionDetector == nil {
		config.PartitionDetector = partition.Fixed{}
	}

	if config.Clock == nil {
		config.Clock = clock.WallClock
	}

	if config.UpdateInterval <= 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for update interval"))
	}

	if config.Logger == nil {
		config.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}
