package snippet

import (
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// ASCII punctuation removed from words before they are compared.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Markup wrapped around highlighted words.
const (
	highlightOpen  = "<b class=highlight>"
	highlightClose = "</b>"
)

// StripPunctuation removes ASCII punctuation from s.
func StripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x80 && strings.ContainsRune(punctuation, r) {
			return -1
		}

		return r
	}, s)
}

// Match reports whether two lower case words are close enough to count as
// the same term: one contains the other and their lengths differ by less
// than a sixth of their combined length. Words are also compared by their
// stems so that inflections such as "histories" and "history" match.
func Match(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	if near(a, b) {
		return true
	}

	sa, sb := porterstemmer.StemString(a), porterstemmer.StemString(b)

	return near(sa, sb)
}

func near(a, b string) bool {
	contained := strings.Contains(a, b) || strings.Contains(b, a)
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}

	return contained && diff < (len(a)+len(b))/6
}

// Highlight wraps every word of text that matches a query term in
// highlight markup. Every word, highlighted or not, is followed by a single
// space.
func Highlight(query, text string) string {
	terms := queryTerms(query)

	var sb strings.Builder
	sb.Grow(len(text) + len(text)/4)

	for _, word := range strings.Fields(text) {
		if matchesAny(terms, StripPunctuation(strings.ToLower(word))) {
			sb.WriteString(highlightOpen)
			sb.WriteString(word)
			sb.WriteString(highlightClose)
		} else {
			sb.WriteString(word)
		}

		sb.WriteByte(' ')
	}

	return sb.String()
}

func matchesAny(terms []string, word string) bool {
	for _, term := range terms {
		if Match(term, word) {
			return true
		}
	}

	return false
}

// queryTerms returns the distinct lower case words of query.
func queryTerms(query string) []string {
	seen := make(map[string]bool)

	var terms []string
	for _, w := range strings.Fields(strings.ToLower(query)) {
		if !seen[w] {
			seen[w] = true
			terms = append(terms, w)
		}
	}

	return terms
}
