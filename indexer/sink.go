package indexer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/metrics"
	"github.com/mycok/coursesearch/pipeline"
	"github.com/mycok/coursesearch/searchindex/index"
)

var _ pipeline.Sink = (*batchingSink)(nil)

// batchingSink collects documents and ships them to the engine in batches.
// A batch size of one writes every document on its own.
type batchingSink struct {
	engine    index.Engine
	batchSize int
	stats     *Stats
	logger    *logrus.Entry

	pending []index.Action
}

func (s *batchingSink) Consume(ctx context.Context, p pipeline.Payload) error {
	payload := p.(*itemPayload)
	s.pending = append(s.pending, index.Action{Partition: payload.Partition, Doc: payload.Doc})

	if len(s.pending) >= s.batchSize {
		s.flush(ctx)
	}

	return nil
}

// flush submits the pending documents. Engine failures are logged and
// counted; they never abort the run.
func (s *batchingSink) flush(ctx context.Context) {
	if len(s.pending) == 0 {
		return
	}

	batch := s.pending
	s.pending = nil

	var err error
	if len(batch) == 1 {
		err = s.engine.IndexOne(ctx, batch[0].Partition, batch[0].Doc)
	} else {
		err = s.engine.Submit(ctx, batch)
	}

	if err != nil {
		s.stats.add(&s.stats.Failed, len(batch))
		metrics.ItemsTotal.WithLabelValues("failed").Add(float64(len(batch)))
		s.logger.WithError(err).WithField("count", len(batch)).Error("unable to submit documents")

		return
	}

	s.stats.add(&s.stats.Submitted, len(batch))
	metrics.ItemsTotal.WithLabelValues("submitted").Add(float64(len(batch)))
}
