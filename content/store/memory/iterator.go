package memory

import "github.com/mycok/coursesearch/content"

// Static and compile-time check to ensure itemIterator implements
// content.ItemIterator interface.
var _ content.ItemIterator = (*itemIterator)(nil)

// itemIterator is a content.ItemIterator implementation for the in-memory
// store.
type itemIterator struct {
	// Used to access the store's mutex while copying items out.
	store        *InMemoryStore
	items        []*content.Item
	currentIndex int
}

// Next loads the next item, returns false when no more items are available.
func (i *itemIterator) Next() bool {
	if i.currentIndex >= len(i.items) {
		return false
	}

	i.currentIndex++

	return true
}

// Error returns the last error encountered by the iterator.
func (i *itemIterator) Error() error {
	return nil
}

// Close releases any resources allocated to the iterator.
func (i *itemIterator) Close() error {
	return nil
}

// Item returns a copy of the currently fetched item.
func (i *itemIterator) Item() *content.Item {
	i.store.mu.RLock()
	defer i.store.mu.RUnlock()

	item := new(content.Item)
	*item = *i.items[i.currentIndex-1]

	return item
}
