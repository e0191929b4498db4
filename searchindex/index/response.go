package index

import (
	"bytes"
	"encoding/json"
)

// SearchResponse is the subset of an engine search response consumed by
// this module.
type SearchResponse struct {
	Took int64 `json:"took"`
	Hits Hits  `json:"hits"`
}

// Hits holds the total match count and the current page of hits.
type Hits struct {
	Total    Total   `json:"total"`
	MaxScore float64 `json:"max_score"`
	Hits     []Hit   `json:"hits"`
}

// Total is the number of documents matching a query.
type Total struct {
	Value    uint64 `json:"value"`
	Relation string `json:"relation,omitempty"`
}

// UnmarshalJSON accepts both the object form and the plain number sent by
// older engine versions.
func (t *Total) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] != '{' {
		if bytes.Equal(b, []byte("null")) {
			return nil
		}
		*t = Total{}
		return json.Unmarshal(b, &t.Value)
	}

	type total Total
	var v total
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = Total(v)

	return nil
}

// Hit is a single scored search result.
type Hit struct {
	Partition Partition `json:"_index"`
	Type      string    `json:"_type,omitempty"`
	ID        string    `json:"_id"`
	Score     float64   `json:"_score"`
	Source    Document  `json:"_source"`
}
