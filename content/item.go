package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Location is the hierarchical identifier of a content item within the
// document store.
type Location struct {
	// Legacy location tag, normally "i4x".
	Tag string `json:"tag"`

	// Organization that owns the course.
	Org string `json:"org"`

	// Course (collection) the item belongs to.
	Course string `json:"course"`

	// Category of the item, ie video, problem, html, course.
	Category string `json:"category"`

	// Item name, unique within org/course/category.
	Name string `json:"name"`

	// Optional revision of the item.
	Revision string `json:"revision,omitempty"`
}

// Serialize returns the stable JSON form of the location. It is used both
// as the document identifier stored in the search index and as the input to
// the document key digest, so the field order must never change.
func (l Location) Serialize() string {
	b, err := json.Marshal(l)
	if err != nil {
		// A struct of plain strings always marshals.
		panic(fmt.Sprintf("[BUG]::unable to serialize location: %v", err))
	}

	return string(b)
}

// ParseLocation decodes a location previously produced by Serialize.
func ParseLocation(serialized string) (Location, error) {
	var l Location
	if err := json.Unmarshal([]byte(serialized), &l); err != nil {
		return Location{}, fmt.Errorf("parse location: %w", err)
	}

	return l, nil
}

// String renders the location in its URL form: tag://org/course/category/name
// with an optional @revision suffix.
func (l Location) String() string {
	var sb strings.Builder

	tag := l.Tag
	if tag == "" {
		tag = "i4x"
	}

	sb.WriteString(tag)
	sb.WriteString("://")
	sb.WriteString(strings.Join([]string{l.Org, l.Course, l.Category, l.Name}, "/"))

	if l.Revision != "" {
		sb.WriteByte('@')
		sb.WriteString(l.Revision)
	}

	return sb.String()
}

// Item is a read-only snapshot of a single piece of course content.
type Item struct {
	// Identifier of the item.
	Location Location

	// Raw definition payload. For videos this holds the speed:id list (or
	// the video markup carrying it), for problems the problem markup and
	// for html items the page markup.
	Data string

	// Human readable name, taken from the item metadata (may be empty).
	DisplayName string
}

// Asset is a binary blob stored alongside course content, ie an uploaded
// PDF or a transcript chunk.
type Asset struct {
	// File name the asset was uploaded with.
	Name string

	// Asset category, ie "asset".
	Category string

	// Raw binary content.
	Data []byte
}
