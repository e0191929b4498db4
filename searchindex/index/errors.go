package index

import "errors"

var (
	// ErrUnavailable is returned when the engine could not be reached after
	// every retry attempt. Callers treat it as "nothing was written".
	ErrUnavailable = errors.New("search engine unavailable")

	// ErrIncompleteDocument is returned when a document with one or more
	// empty fields is submitted.
	ErrIncompleteDocument = errors.New("document has one or more empty fields")

	// ErrMalformedBulk is returned when a bulk payload does not follow the
	// action/data line format.
	ErrMalformedBulk = errors.New("malformed bulk payload")
)
