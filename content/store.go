package content

import "context"

// CourseCategory is the category of the canonical record of a course.
const CourseCategory = "course"

// Store should be implemented by objects that provide read access to the
// course content document store.
type Store interface {
	// FindAsset returns the asset whose file name exactly matches name.
	FindAsset(ctx context.Context, name string) (*Asset, error)

	// FindChunk returns the first binary chunk whose file name contains
	// the provided fragment.
	FindChunk(ctx context.Context, fragment string) (*Asset, error)

	// Items returns an iterator over every item that belongs to course.
	Items(ctx context.Context, course string) (ItemIterator, error)

	// CourseRecord returns the canonical course item for course.
	CourseRecord(ctx context.Context, course string) (*Item, error)
}

// ItemIterator should be implemented by objects that can iterate over
// content items.
type ItemIterator interface {
	// Next advances the iterator. It returns false when no more items are
	// available or an error occurs.
	Next() bool

	// Error returns the last error encountered by the iterator.
	Error() error

	// Close releases any resources associated with the iterator.
	Close() error

	// Item returns the currently fetched item.
	Item() *Item
}
