// Package snippet renders the excerpt of a search result's text shown under
// the result, starting at the first sentence that mentions the query.
package snippet

import "strings"

// Defaults used by Render.
const (
	// Word count after which no further full sentences are added.
	DefaultSoftMax = 50

	// Words of the overflowing sentence kept past the soft maximum.
	DefaultWordMargin = 25
)

type options struct {
	softMax    int
	wordMargin int
	highlight  bool
}

// Option customizes Render.
type Option func(*options)

// WithSoftMax sets the soft maximum word count.
func WithSoftMax(n int) Option {
	return func(o *options) { o.softMax = n }
}

// WithWordMargin sets the number of words kept from the sentence that
// crosses the soft maximum.
func WithWordMargin(n int) Option {
	return func(o *options) { o.wordMargin = n }
}

// WithoutHighlight disables highlight markup.
func WithoutHighlight() Option {
	return func(o *options) { o.highlight = false }
}

// Render returns the snippet of text for query.
//
// The snippet starts at the first sentence containing a query term and
// accumulates whole sentences while the word count stays under the soft
// maximum; the sentence that would cross it contributes only its first
// word-margin words. When no sentence mentions a term, which happens for
// fuzzy matches, the snippet starts at the first sentence instead.
func Render(text, query string, opts ...Option) string {
	o := options{
		softMax:    DefaultSoftMax,
		wordMargin: DefaultWordMargin,
		highlight:  true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.softMax < 0 {
		o.softMax = 0
	}

	if o.wordMargin < 0 {
		o.wordMargin = 0
	}

	sentences := Sentences(text)
	terms := strings.Fields(strings.ToLower(query))

	start := -1
	for i, s := range sentences {
		if containsAny(strings.ToLower(s), terms) {
			start = i
			break
		}
	}

	var words []string
	if start >= 0 {
		words = strings.Fields(sentences[start])
		words = accumulate(words, sentences[start+1:], o)
	} else {
		words = accumulate(nil, sentences, o)
	}

	snippet := strings.Join(words, " ")
	if o.highlight {
		return Highlight(query, snippet)
	}

	return snippet
}

func accumulate(words []string, sentences []string, o options) []string {
	for _, s := range sentences {
		next := strings.Fields(s)
		if len(words)+len(next) < o.softMax {
			words = append(words, next...)
			continue
		}

		if len(next) > o.wordMargin {
			next = next[:o.wordMargin]
		}

		return append(words, next...)
	}

	return words
}

func containsAny(sentence string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(sentence, t) {
			return true
		}
	}

	return false
}
