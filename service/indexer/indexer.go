// Package indexer provides a service that keeps a list of courses indexed
// by reindexing them periodically.
package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/service/partition"
)

// Service reindexes the configured courses every update interval. It
// satisfies the service.Service interface.
type Service struct {
	config Config
}

// New creates and returns a fully configured indexing service.
func New(config Config) (*Service, error) {
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("indexer service: config validation failed: %w", err)
	}

	return &Service{config: config}, nil
}

// Name returns the name of the service.
func (svc *Service) Name() string { return "indexer" }

// Run executes the service and blocks until the context gets cancelled
// or an error occurs.
func (svc *Service) Run(ctx context.Context) error {
	svc.config.Logger.WithField(
		"update_interval", svc.config.UpdateInterval.String(),
	).Info("starting service")
	defer svc.config.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.config.Clock.After(svc.config.UpdateInterval):
			curr, n, err := svc.config.PartitionDetector.PartitionInfo()
			if err != nil {
				if errors.Is(err, partition.ErrNoPartitionDataAvailableYet) {
					svc.config.Logger.Warn("deferring indexing pass: partition data not yet available")
					continue
				}

				return err
			}

			if err := svc.indexCourses(ctx, curr, n); err != nil {
				return err
			}
		}
	}
}

// indexCourses runs one pass over the courses owned by partition curr. A
// course that fails is logged and the pass moves on.
func (svc *Service) indexCourses(ctx context.Context, curr, n int) error {
	courses, err := partition.Assign(svc.config.Courses, curr, n)
	if err != nil {
		return fmt.Errorf("indexer service: %w", err)
	}

	svc.config.Logger.WithFields(logrus.Fields{
		"partition":         curr,
		"num_of_partitions": n,
		"courses":           len(courses),
	}).Info("starting indexing pass")

	startedAt := svc.config.Clock.Now()

	var indexed, submitted int
	for _, course := range courses {
		stats, err := svc.config.Indexer.IndexCollection(ctx, course)
		if ctx.Err() != nil {
			return nil
		}

		if err != nil {
			svc.config.Logger.WithField("course", course).WithError(err).Error("indexing pass failed for course")
			continue
		}

		indexed++
		if stats != nil {
			submitted += stats.Submitted
		}
	}

	svc.config.Logger.WithFields(logrus.Fields{
		"indexed_courses":     indexed,
		"submitted_documents": submitted,
		"elapsed_time":        svc.config.Clock.Now().Sub(startedAt).String(),
	}).Info("completed indexing pass")

	return nil
}
