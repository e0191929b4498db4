// Package results turns a raw search engine response into the ordered,
// filtered set of entries presented to the user.
package results

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mycok/coursesearch/searchindex/index"
	"github.com/mycok/coursesearch/snippet"
)

// Mode controls how multiple filters combine.
type Mode int

const (
	// An entry passes when it matches any filter.
	MatchAny Mode = iota

	// An entry passes only when it matches every filter.
	MatchAll
)

// Filters maps a document field name to the value it must contain.
type Filters map[string]string

// Option customizes Build.
type Option func(*Set)

// WithMode sets how filters combine.
func WithMode(m Mode) Option {
	return func(s *Set) { s.mode = m }
}

// WithSnippetOptions passes options through to snippet rendering.
func WithSnippetOptions(opts ...snippet.Option) Option {
	return func(s *Set) { s.snippetOpts = append(s.snippetOpts, opts...) }
}

// Set is the collection of entries answering one query.
type Set struct {
	Query   string
	Sort    Sort
	Filters Filters

	// Total number of matches reported by the engine.
	Total uint64

	entries     []*Entry
	mode        Mode
	snippetOpts []snippet.Option
}

type rawResponse struct {
	Hits struct {
		Total index.Total `json:"total"`
		Hits  []rawHit    `json:"hits"`
	} `json:"hits"`
}

type rawHit struct {
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// Build parses a raw engine response and creates one entry per hit, in
// response order. Snippets are rendered concurrently, once per entry.
func Build(raw []byte, query string, sort Sort, filters Filters, opts ...Option) (*Set, error) {
	var res rawResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("build results: %w", err)
	}

	s := &Set{
		Query:   query,
		Sort:    sort,
		Filters: filters,
		Total:   res.Hits.Total.Value,
		entries: make([]*Entry, len(res.Hits.Hits)),
	}

	for _, opt := range opts {
		opt(s)
	}

	for i, hit := range res.Hits.Hits {
		entry, err := newEntry(hit, i)
		if err != nil {
			return nil, fmt.Errorf("build results: hit %d: %w", i, err)
		}

		s.entries[i] = entry
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, entry := range s.entries {
		entry := entry
		g.Go(func() error {
			entry.Snippet = snippet.Render(entry.Doc.SearchableText, query, s.snippetOpts...)
			return nil
		})
	}

	_ = g.Wait()

	return s, nil
}

func newEntry(hit rawHit, rank int) (*Entry, error) {
	entry := &Entry{Score: hit.Score, rank: rank}

	if err := json.Unmarshal(hit.Source, &entry.Doc); err != nil {
		return nil, err
	}

	var source map[string]interface{}
	if err := json.Unmarshal(hit.Source, &source); err != nil {
		return nil, err
	}

	entry.Fields = make(map[string]string, len(source))
	for k, v := range source {
		if str, ok := v.(string); ok {
			entry.Fields[k] = str
		}
	}

	entry.URL, _ = JumpToURL(entry.Doc.CourseID, entry.Doc.ID)
	entry.Thumbnail = PresentThumbnail(entry.Doc.Thumbnail)

	return entry, nil
}

// Len returns the number of entries currently in the set.
func (s *Set) Len() int {
	return len(s.entries)
}

// Entries returns the current entries in order.
func (s *Set) Entries() []*Entry {
	return s.entries
}

// Filter returns the entries whose field contains value, ignoring case and
// punctuation. An empty value matches every entry.
func (s *Set) Filter(field, value string) []*Entry {
	var out []*Entry
	for _, e := range s.entries {
		if matches(e, field, value) {
			out = append(out, e)
		}
	}

	return out
}

// FilterAndSort applies the set's filters then its sort order. Without
// filters every entry is kept.
// Slices previously returned by Entries are left untouched.
func (s *Set) FilterAndSort() {
	kept := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if len(s.Filters) == 0 || s.pass(e) {
			kept = append(kept, e)
		}
	}

	sortEntries(kept, s.Sort)
	s.entries = kept
}

func (s *Set) pass(e *Entry) bool {
	for field, value := range s.Filters {
		ok := matches(e, field, value)
		if ok && s.mode == MatchAny {
			return true
		}

		if !ok && s.mode == MatchAll {
			return false
		}
	}

	return s.mode == MatchAll
}

// Counter returns a histogram of the lower-cased values of field across the
// current entries.
func (s *Set) Counter(field string) map[string]int {
	counts := make(map[string]int)
	for _, e := range s.entries {
		counts[strings.ToLower(e.Field(field))]++
	}

	return counts
}

func matches(e *Entry, field, value string) bool {
	return strings.Contains(normalize(e.Field(field)), normalize(value))
}

func normalize(s string) string {
	return strings.ToLower(snippet.StripPunctuation(s))
}
