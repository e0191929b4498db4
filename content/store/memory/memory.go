package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mycok/coursesearch/content"
)

// Static and compile-time check to ensure InMemoryStore implements
// content.Store interface.
var _ content.Store = (*InMemoryStore)(nil)

// InMemoryStore is a content store that keeps items and assets in memory
// and can be accessed concurrently by multiple clients.
type InMemoryStore struct {
	mu sync.RWMutex

	// Items keyed by their serialized location.
	items map[string]*content.Item

	// Course name -> serialized locations of the items that belong to it.
	courseIndex map[string][]string

	// Assets keyed by file name.
	assets map[string]*content.Asset
}

// NewInMemoryStore creates an empty in-memory content store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		items:       make(map[string]*content.Item),
		courseIndex: make(map[string][]string),
		assets:      make(map[string]*content.Asset),
	}
}

// UpsertItem inserts a new item or replaces an existing one with the same
// location.
func (s *InMemoryStore) UpsertItem(_ context.Context, item *content.Item) error {
	if item.Location.Course == "" {
		return fmt.Errorf("upsert item: %w", content.ErrMissingCourse)
	}

	key := item.Location.Serialize()
	iCopy := new(content.Item)
	*iCopy = *item

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[key]; !exists {
		course := item.Location.Course
		s.courseIndex[course] = append(s.courseIndex[course], key)
	}

	s.items[key] = iCopy

	return nil
}

// UpsertAsset inserts a new asset or replaces an existing one with the same
// file name.
func (s *InMemoryStore) UpsertAsset(_ context.Context, asset *content.Asset) error {
	aCopy := copyAsset(asset)

	s.mu.Lock()
	s.assets[asset.Name] = aCopy
	s.mu.Unlock()

	return nil
}

// FindAsset returns the asset whose file name exactly matches name.
func (s *InMemoryStore) FindAsset(_ context.Context, name string) (*content.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a, exists := s.assets[name]; exists && a.Category == "asset" {
		return copyAsset(a), nil
	}

	return nil, fmt.Errorf("find asset: %w", content.ErrNotFound)
}

// FindChunk returns the first binary chunk whose file name contains the
// provided fragment. Names are compared in lexical order so the result is
// deterministic.
func (s *InMemoryStore) FindChunk(_ context.Context, fragment string) (*content.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.assets))
	for name := range s.assets {
		if strings.Contains(name, fragment) {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("find chunk: %w", content.ErrNotFound)
	}

	sort.Strings(names)

	return copyAsset(s.assets[names[0]]), nil
}

// Items returns an iterator over every item that belongs to course.
func (s *InMemoryStore) Items(_ context.Context, course string) (content.ItemIterator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.courseIndex[course]
	items := make([]*content.Item, 0, len(keys))
	for _, key := range keys {
		items = append(items, s.items[key])
	}

	return &itemIterator{store: s, items: items}, nil
}

// CourseRecord returns the canonical course item for course.
func (s *InMemoryStore) CourseRecord(_ context.Context, course string) (*content.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.courseIndex[course] {
		if item := s.items[key]; item.Location.Category == content.CourseCategory {
			iCopy := new(content.Item)
			*iCopy = *item

			return iCopy, nil
		}
	}

	return nil, fmt.Errorf("course record: %w", content.ErrNotFound)
}

func copyAsset(a *content.Asset) *content.Asset {
	aCopy := new(content.Asset)
	*aCopy = *a
	aCopy.Data = append([]byte(nil), a.Data...)

	return aCopy
}
