package pg

import (
	"database/sql"
	"fmt"

	"github.com/mycok/coursesearch/content"
)

// Static and compile-time check to ensure itemIterator implements
// content.ItemIterator interface.
var _ content.ItemIterator = (*itemIterator)(nil)

// itemIterator wraps the sql.Rows returned by a course items query.
type itemIterator struct {
	rows    *sql.Rows
	lastErr error
	item    *content.Item
}

// Next loads the next item, returns false when no more items are available
// or when an error occurs.
func (i *itemIterator) Next() bool {
	if i.lastErr != nil || !i.rows.Next() {
		return false
	}

	item := new(content.Item)
	if i.lastErr = scanItem(i.rows, item); i.lastErr != nil {
		return false
	}

	i.item = item

	return true
}

// Error returns the last error encountered by the iterator.
func (i *itemIterator) Error() error {
	if i.lastErr != nil {
		return i.lastErr
	}

	return i.rows.Err()
}

// Close releases any resources allocated to the iterator.
func (i *itemIterator) Close() error {
	if err := i.rows.Close(); err != nil {
		return fmt.Errorf("item iterator: %w", err)
	}

	return nil
}

// Item returns the currently fetched item.
func (i *itemIterator) Item() *content.Item {
	return i.item
}
