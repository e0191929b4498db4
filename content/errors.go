package content

import "errors"

var (
	// ErrNotFound is returned by a store when a lookup does not match any
	// record.
	ErrNotFound = errors.New("not found")

	// ErrMissingCourse is returned when a store is asked to persist an item
	// with no course in its location.
	ErrMissingCourse = errors.New("item has missing course")
)
