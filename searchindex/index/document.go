package index

import (
	"crypto/sha1"
	"encoding/hex"
)

// Partition is the engine's top-level namespace grouping documents by the
// kind of content they were extracted from.
type Partition string

// Known partitions.
const (
	TranscriptPartition Partition = "transcript-index"
	ProblemPartition    Partition = "problem-index"
	DocumentPartition   Partition = "pdf-index"
)

// Partitions lists every known partition.
var Partitions = []Partition{TranscriptPartition, ProblemPartition, DocumentPartition}

// Document is the normalized unit written to the search engine.
type Document struct {
	// Serialized location of the content item.
	ID string `json:"id"`

	// Digest of ID, used as the document key within its type.
	Hash string `json:"hash"`

	// Name shown in search results.
	DisplayName string `json:"display_name"`

	// org/course/offering.
	CourseID string `json:"course_id"`

	// Extracted plain text the engine searches over.
	SearchableText string `json:"searchable_text"`

	// Image URL, base64 image data or inline SVG markup.
	Thumbnail string `json:"thumbnail"`

	// Digest of CourseID, used as the type key within a partition.
	TypeHash string `json:"type_hash"`
}

// Digest returns the hex encoded SHA-1 digest of s. Document keys are
// derived from identity fields with it so re-indexing the same item
// replaces the existing document.
func Digest(s string) string {
	sum := sha1.Sum([]byte(s))

	return hex.EncodeToString(sum[:])
}

// Complete reports whether every field of the document is non-empty.
// Incomplete documents must never be submitted to the engine.
func (d *Document) Complete() bool {
	return d.ID != "" && d.Hash != "" && d.DisplayName != "" &&
		d.CourseID != "" && d.SearchableText != "" && d.Thumbnail != "" &&
		d.TypeHash != ""
}
