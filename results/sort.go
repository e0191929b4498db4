package results

import (
	"sort"
	"strings"
)

// Sort selects the order of a result set.
type Sort string

// Supported sort orders.
const (
	// Highest score first. Ties keep the engine's order.
	SortRelevance Sort = "relevance"

	// Display name, A to Z.
	SortAlphabetical Sort = "alphabetical"

	// Display name, Z to A.
	SortReverseAlphabetical Sort = "reverse-alphabetical"
)

// ParseSort maps a client supplied sort name to a Sort. Unknown and empty
// names fall back to relevance.
func ParseSort(name string) Sort {
	switch s := Sort(strings.ToLower(strings.TrimSpace(name))); s {
	case SortAlphabetical, SortReverseAlphabetical:
		return s
	default:
		return SortRelevance
	}
}

func sortEntries(entries []*Entry, by Sort) {
	var less func(a, b *Entry) bool

	switch by {
	case SortAlphabetical:
		less = func(a, b *Entry) bool {
			return strings.ToLower(a.Doc.DisplayName) < strings.ToLower(b.Doc.DisplayName)
		}
	case SortReverseAlphabetical:
		less = func(a, b *Entry) bool {
			return strings.ToLower(a.Doc.DisplayName) > strings.ToLower(b.Doc.DisplayName)
		}
	default:
		less = func(a, b *Entry) bool { return a.Score > b.Score }
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if less(a, b) {
			return true
		}

		if less(b, a) {
			return false
		}

		return a.rank < b.rank
	})
}
