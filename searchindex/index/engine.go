package index

import "context"

// Action pairs a document with the partition it is written to.
type Action struct {
	Partition Partition
	Doc       *Document
}

// Engine should be implemented by objects that can store and search
// documents.
type Engine interface {
	// Submit writes a batch of documents using the bulk wire format. A
	// document that already exists under the same partition, type and key
	// is replaced.
	Submit(ctx context.Context, actions []Action) error

	// IndexOne writes a single document.
	IndexOne(ctx context.Context, partition Partition, doc *Document) error

	// DeletePartition drops a partition and every document in it.
	DeletePartition(ctx context.Context, partition Partition) error

	// Search runs q and returns the raw engine response. The response
	// carries a hits.hits list whose entries expose _score and _source.
	Search(ctx context.Context, q Query) ([]byte, error)
}

// Query defines the properties of a search request.
type Query struct {
	// Free-text search expression.
	Expression string

	// Partitions to search. All known partitions when empty.
	Partitions []Partition

	// Restricts results to a single course when set.
	CourseID string

	// Pagination.
	Offset uint64
	Size   uint64
}

// DefaultPageSize is used when a query does not specify a size.
const DefaultPageSize = 20

// Normalize fills in query defaults.
func (q Query) Normalize() Query {
	if len(q.Partitions) == 0 {
		q.Partitions = Partitions
	}

	if q.Size == 0 {
		q.Size = DefaultPageSize
	}

	return q
}
