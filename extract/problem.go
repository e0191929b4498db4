package extract

import (
	"context"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mycok/coursesearch/content"
)

var (
	paragraphRegex = regexp.MustCompile(`<p>(.*?)</p>`)
	textTagRegex   = regexp.MustCompile(`<text>(.*?)</text>`)
	// Inline math delimited by backslashes, ie \(x^2\).
	escapedSpanRegex = regexp.MustCompile(`\\.*?\\`)
	simpleTagRegex   = regexp.MustCompile(`<[a-zA-Z0-9/.= "'_-]+>`)
)

// Paragraph body used by authoring tools as a placeholder.
const explanationPlaceholder = "Explanation"

// Characters repeated at least this many times in a row are dropped.
const repetitionLimit = 5

const (
	svgOpen  = "<svg xmlns='http://www.w3.org/2000/svg' width=200 height=200><foreignObject width='100%' height='100%'>"
	svgClose = "</foreignObject></svg>"
)

var policyPool = sync.Pool{
	New: func() interface{} {
		return bluemonday.StrictPolicy()
	},
}

type problemHandler struct{}

func (problemHandler) Text(_ context.Context, item *content.Item) Result {
	return Result{Value: ProblemText(item.Data)}
}

// Thumbnail wraps the problem markup in a fixed-size SVG so that clients
// can rasterize it consistently.
func (problemHandler) Thumbnail(_ context.Context, item *content.Item) Result {
	return Result{Value: svgOpen + item.Data + svgClose}
}

// ProblemText returns the searchable text of problem markup: the bodies of
// paragraph and text tags with inline math, markup and junk runs removed.
func ProblemText(markup string) string {
	var paragraphs, texts []string

	for _, m := range paragraphRegex.FindAllStringSubmatch(markup, -1) {
		if m[1] != explanationPlaceholder {
			paragraphs = append(paragraphs, m[1])
		}
	}

	for _, m := range textTagRegex.FindAllStringSubmatch(markup, -1) {
		texts = append(texts, m[1])
	}

	text := strings.Join(paragraphs, " ") + " " + strings.Join(texts, " ")
	text = escapedSpanRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, `\`, "")
	text = simpleTagRegex.ReplaceAllString(text, "")

	policy := policyPool.Get().(*bluemonday.Policy)
	text = html.UnescapeString(policy.Sanitize(text))
	policyPool.Put(policy)

	return strings.TrimSpace(dropRepetitions(text, repetitionLimit))
}

// dropRepetitions removes every run of limit or more identical characters.
func dropRepetitions(s string, limit int) string {
	runes := []rune(s)

	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}

		if j-i < limit {
			sb.WriteString(string(runes[i:j]))
		}

		i = j
	}

	return sb.String()
}
