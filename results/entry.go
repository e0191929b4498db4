package results

import (
	"fmt"
	"strings"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/searchindex/index"
)

// Entry is a single displayable search hit.
type Entry struct {
	// The indexed document.
	Doc index.Document

	// Every string field of the hit's source, keyed by field name.
	Fields map[string]string

	// Relevance score assigned by the engine.
	Score float64

	// Courseware URL of the item. Empty when the document identifier
	// cannot be parsed.
	URL string

	// Thumbnail in a form a browser can render directly.
	Thumbnail string

	// Excerpt of the searchable text with query terms highlighted.
	Snippet string

	// Position in the engine's response.
	rank int
}

// Field returns the named source field, or an empty string when the source
// does not carry it.
func (e *Entry) Field(name string) string {
	return e.Fields[name]
}

// JumpToURL returns the courseware URL of the item identified by a
// serialized location within courseID.
func JumpToURL(courseID, serializedID string) (string, error) {
	loc, err := content.ParseLocation(serializedID)
	if err != nil {
		return "", err
	}

	// Navigation URLs always point at the latest revision.
	loc.Revision = ""

	return fmt.Sprintf("/courses/%s/jump_to/%s", courseID, loc.String()), nil
}

// PresentThumbnail turns a stored thumbnail into something usable as an
// image source. URLs and inline SVG markup are returned unchanged; anything
// else is a base64 JPEG and becomes a data URI.
func PresentThumbnail(thumbnail string) string {
	switch {
	case thumbnail == "":
		return ""
	case strings.HasPrefix(thumbnail, "http://"), strings.HasPrefix(thumbnail, "https://"):
		return thumbnail
	case strings.HasPrefix(thumbnail, "<svg"):
		return thumbnail
	default:
		return "data:image/jpeg;base64," + thumbnail
	}
}
