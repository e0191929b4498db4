package indexer

import (
	"sync"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/pipeline"
	"github.com/mycok/coursesearch/searchindex/index"
)

var (
	_ pipeline.Payload = (*itemPayload)(nil)

	payloadPool = sync.Pool{
		New: func() interface{} {
			return new(itemPayload)
		},
	}
)

type itemPayload struct {
	Item      *content.Item   // populated by the source.
	Kind      extract.Kind    // populated by the router.
	Partition index.Partition // populated by the router.
	Doc       *index.Document // populated by the builder.
}

func (p *itemPayload) MarkAsProcessed() {
	p.Item = nil
	p.Kind = extract.Unsupported
	p.Partition = ""
	p.Doc = nil

	payloadPool.Put(p)
}
