package indexer

import (
	"strings"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/searchindex/index"
)

// Route returns the extraction kind and the target partition for item.
// Items the indexer does not handle map to extract.Unsupported and an empty
// partition. HTML pages that link a PDF asset are routed to the document
// partition only when documents is set.
func Route(item *content.Item, documents bool) (extract.Kind, index.Partition) {
	switch strings.ToLower(strings.TrimSpace(item.Location.Category)) {
	case "video":
		return extract.Transcript, index.TranscriptPartition
	case "problem":
		return extract.Problem, index.ProblemPartition
	case "html":
		if _, ok := extract.AssetName(item.Data); documents && ok {
			return extract.Document, index.DocumentPartition
		}
	}

	return extract.Unsupported, ""
}
