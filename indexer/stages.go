package indexer

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/metrics"
	"github.com/mycok/coursesearch/pipeline"
)

type router struct {
	documents bool
	stats     *Stats
	logger    *logrus.Entry
}

func (r *router) Process(_ context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*itemPayload)

	payload.Kind, payload.Partition = Route(payload.Item, r.documents)
	if payload.Kind == extract.Unsupported {
		r.stats.add(&r.stats.Unsupported, 1)
		metrics.ItemsTotal.WithLabelValues("unsupported").Inc()
		r.logger.WithField("location", payload.Item.Location.String()).Debug("skipping unsupported item")

		return nil, nil
	}

	return payload, nil
}

type docBuilder struct {
	builder Builder
	stats   *Stats
	logger  *logrus.Entry
}

// Process never fails the pipeline: a broken item is logged and dropped so
// the rest of the course still gets indexed.
func (b *docBuilder) Process(ctx context.Context, p pipeline.Payload) (pipeline.Payload, error) {
	payload := p.(*itemPayload)
	logger := b.logger.WithField("location", payload.Item.Location.String())

	doc, err := b.builder.Build(ctx, payload.Item, payload.Kind)
	if err != nil {
		b.stats.add(&b.stats.Failed, 1)
		metrics.ItemsTotal.WithLabelValues("failed").Inc()
		logger.WithError(err).Error("unable to build search document")

		return nil, nil
	}

	if !doc.Complete() {
		b.stats.add(&b.stats.Incomplete, 1)
		metrics.ItemsTotal.WithLabelValues("incomplete").Inc()
		logger.Debug("dropping incomplete document")

		return nil, nil
	}

	payload.Doc = doc

	return payload, nil
}
