package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/search/query"

	"github.com/mycok/coursesearch/searchindex/index"
)

// Static and compile-time check to ensure InMemoryEngine implements
// index.Engine.
var _ index.Engine = (*InMemoryEngine)(nil)

type bleveDoc struct {
	DisplayName    string `json:"display_name"`
	SearchableText string `json:"searchable_text"`
}

type entry struct {
	partition index.Partition
	doc       *index.Document
}

// InMemoryEngine is an index.Engine implementation backed by an in-memory
// bleve index. Writes go through the same bulk wire format the remote
// engine receives.
type InMemoryEngine struct {
	mu   sync.RWMutex
	docs map[string]entry
	idx  bleve.Index
}

// NewInMemoryEngine returns an empty in-memory engine.
func NewInMemoryEngine() (*InMemoryEngine, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, err
	}

	return &InMemoryEngine{
		idx:  idx,
		docs: make(map[string]entry),
	}, nil
}

// Close releases the bleve index.
func (e *InMemoryEngine) Close() error {
	return e.idx.Close()
}

// Submit implements index.Engine.
func (e *InMemoryEngine) Submit(ctx context.Context, actions []index.Action) error {
	for i, a := range actions {
		if a.Doc == nil || !a.Doc.Complete() {
			return fmt.Errorf("submit: action %d: %w", i, index.ErrIncompleteDocument)
		}
	}

	body, err := index.BulkBody(actions)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	decoded, err := index.DecodeBulk(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range decoded {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.put(a.Partition, a.Doc); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
	}

	return nil
}

// IndexOne implements index.Engine.
func (e *InMemoryEngine) IndexOne(_ context.Context, partition index.Partition, doc *index.Document) error {
	if doc == nil || !doc.Complete() {
		return fmt.Errorf("index one: %w", index.ErrIncompleteDocument)
	}

	dCopy := *doc

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.put(partition, &dCopy); err != nil {
		return fmt.Errorf("index one: %w", err)
	}

	return nil
}

// DeletePartition implements index.Engine.
func (e *InMemoryEngine) DeletePartition(_ context.Context, partition index.Partition) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	batch := e.idx.NewBatch()
	for key, ent := range e.docs {
		if ent.partition != partition {
			continue
		}

		batch.Delete(key)
		delete(e.docs, key)
	}

	if err := e.idx.Batch(batch); err != nil {
		return fmt.Errorf("delete partition: %w", err)
	}

	return nil
}

// Search implements index.Engine. The response follows the remote
// engine's hits.hits layout.
func (e *InMemoryEngine) Search(_ context.Context, q index.Query) ([]byte, error) {
	q = q.Normalize()

	var bq query.Query
	if q.Expression == "" {
		bq = bleve.NewMatchAllQuery()
	} else {
		mq := bleve.NewMatchQuery(q.Expression)
		mq.SetFuzziness(1)
		bq = mq
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	req := bleve.NewSearchRequest(bq)
	// Partition and course restrictions are applied after scoring so the
	// whole match set is fetched.
	req.Size = len(e.docs) + 1

	sr, err := e.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	wanted := make(map[index.Partition]bool, len(q.Partitions))
	for _, p := range q.Partitions {
		wanted[p] = true
	}

	var hits []index.Hit
	for _, match := range sr.Hits {
		ent, exists := e.docs[match.ID]
		if !exists || !wanted[ent.partition] {
			continue
		}

		if q.CourseID != "" && ent.doc.CourseID != q.CourseID {
			continue
		}

		hits = append(hits, index.Hit{
			Partition: ent.partition,
			Type:      ent.doc.TypeHash,
			ID:        ent.doc.Hash,
			Score:     match.Score,
			Source:    *ent.doc,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	res := index.SearchResponse{
		Took: sr.Took.Milliseconds(),
		Hits: index.Hits{Total: index.Total{Value: uint64(len(hits)), Relation: "eq"}},
	}

	if len(hits) > 0 {
		res.Hits.MaxScore = hits[0].Score
	}

	res.Hits.Hits = page(hits, q.Offset, q.Size)

	return json.Marshal(res)
}

// put must be called while holding the write lock.
func (e *InMemoryEngine) put(partition index.Partition, doc *index.Document) error {
	key := docKey(partition, doc)

	err := e.idx.Index(key, bleveDoc{
		DisplayName:    doc.DisplayName,
		SearchableText: doc.SearchableText,
	})
	if err != nil {
		return err
	}

	e.docs[key] = entry{partition: partition, doc: doc}

	return nil
}

func docKey(partition index.Partition, doc *index.Document) string {
	return fmt.Sprintf("%s/%s/%s", partition, doc.TypeHash, doc.Hash)
}

func page(hits []index.Hit, offset, size uint64) []index.Hit {
	if offset >= uint64(len(hits)) {
		return []index.Hit{}
	}

	end := offset + size
	if end > uint64(len(hits)) {
		end = uint64(len(hits))
	}

	return hits[offset:end]
}
