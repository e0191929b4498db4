package indexer

import (
	"context"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/pipeline"
)

var _ pipeline.Source = (*itemSource)(nil)

type itemSource struct {
	it    content.ItemIterator
	stats *Stats
}

// Next stops early once ctx is done so a cancelled run does not pull the
// rest of the course from the store.
func (s *itemSource) Next(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}

	return s.it.Next()
}

func (s *itemSource) Payload() pipeline.Payload {
	s.stats.add(&s.stats.Seen, 1)

	p := payloadPool.Get().(*itemPayload)
	p.Item = s.it.Item()

	return p
}

func (s *itemSource) Error() error {
	return s.it.Error()
}
