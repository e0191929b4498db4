package results_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/results"
	"github.com/mycok/coursesearch/schema"
	"github.com/mycok/coursesearch/searchindex/index"
	"github.com/mycok/coursesearch/searchindex/index/indextest"
	"github.com/mycok/coursesearch/searchindex/store/memory"
	"github.com/mycok/coursesearch/snippet"
)

var _ = check.Suite(new(ResultsTestSuite))

type ResultsTestSuite struct{}

func Test(t *testing.T) { check.TestingT(t) }

type hit struct {
	Score  float64                `json:"_score"`
	Source map[string]interface{} `json:"_source"`
}

func response(c *check.C, hits ...hit) []byte {
	var body struct {
		Hits struct {
			Total index.Total `json:"total"`
			Hits  []hit       `json:"hits"`
		} `json:"hits"`
	}

	body.Hits.Total.Value = uint64(len(hits))
	body.Hits.Hits = hits

	raw, err := json.Marshal(body)
	c.Assert(err, check.IsNil)

	return raw
}

func source(name, category, thumbnail string) map[string]interface{} {
	return map[string]interface{}{
		"id":              `{"tag":"i4x","org":"MITx","course":"6.002x","category":"problem","name":"` + name + `"}`,
		"hash":            "h-" + name,
		"display_name":    name,
		"course_id":       "MITx/6.002x/2013_Spring",
		"searchable_text": "Intro sentence. The " + name + " circuit is explained here.",
		"thumbnail":       thumbnail,
		"type_hash":       "t",
		"category":        category,
	}
}

func (s *ResultsTestSuite) TestBuild(c *check.C) {
	raw := response(c,
		hit{Score: 2.5, Source: source("Beta", "PROBLEM TYPE A", "http://img.youtube.com/vi/x/0.jpg")},
		hit{Score: 1.0, Source: source("Alpha", "video", "aGVsbG8=")},
	)

	set, err := results.Build(raw, "circuit", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	c.Assert(set.Len(), check.Equals, 2)
	c.Assert(set.Total, check.Equals, uint64(2))

	first := set.Entries()[0]
	c.Assert(first.Score, check.Equals, 2.5)
	c.Assert(first.Doc.DisplayName, check.Equals, "Beta")
	c.Assert(first.Field("category"), check.Equals, "PROBLEM TYPE A")
	c.Assert(first.URL, check.Equals, "/courses/MITx/6.002x/2013_Spring/jump_to/i4x://MITx/6.002x/problem/Beta")
	c.Assert(first.Thumbnail, check.Equals, "http://img.youtube.com/vi/x/0.jpg")
	c.Assert(first.Snippet, check.Equals, "The Beta <b class=highlight>circuit</b> is explained here. ")

	c.Assert(set.Entries()[1].Thumbnail, check.Equals, "data:image/jpeg;base64,aGVsbG8=")
}

func (s *ResultsTestSuite) TestBuildWithSnippetOptions(c *check.C) {
	raw := response(c, hit{Score: 1, Source: source("Alpha", "video", "x")})

	set, err := results.Build(raw, "circuit", results.SortRelevance, nil,
		results.WithSnippetOptions(snippet.WithoutHighlight()))
	c.Assert(err, check.IsNil)
	c.Assert(set.Entries()[0].Snippet, check.Equals, "The Alpha circuit is explained here.")
}

func (s *ResultsTestSuite) TestBuildRejectsMalformedResponse(c *check.C) {
	_, err := results.Build([]byte("{"), "q", results.SortRelevance, nil)
	c.Assert(err, check.ErrorMatches, "(?ms).*build results.*")
}

func (s *ResultsTestSuite) TestBuildAcceptsNumericTotal(c *check.C) {
	hits, err := json.Marshal([]hit{{Score: 1, Source: source("Alpha", "video", "x")}})
	c.Assert(err, check.IsNil)

	raw := []byte(`{"took":3,"hits":{"total":7,"max_score":1,"hits":` + string(hits) + `}}`)

	set, err := results.Build(raw, "circuit", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	c.Assert(set.Total, check.Equals, uint64(7))
	c.Assert(names(set), check.DeepEquals, []string{"Alpha"})
}

func (s *ResultsTestSuite) TestBuildWithoutTotal(c *check.C) {
	raw := []byte(`{"hits":{"hits":[]}}`)

	set, err := results.Build(raw, "q", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	c.Assert(set.Total, check.Equals, uint64(0))
	c.Assert(set.Len(), check.Equals, 0)
}

func (s *ResultsTestSuite) TestUnparsableIdentifierLeavesURLEmpty(c *check.C) {
	src := source("Alpha", "video", "x")
	src["id"] = "not json"

	set, err := results.Build(response(c, hit{Score: 1, Source: src}), "q", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	c.Assert(set.Entries()[0].URL, check.Equals, "")
}

func (s *ResultsTestSuite) TestFilterIgnoresCaseAndPunctuation(c *check.C) {
	raw := response(c,
		hit{Score: 1, Source: source("Alpha", "PROBLEM TYPE A", "x")},
		hit{Score: 1, Source: source("Beta", "video", "x")},
	)

	set, err := results.Build(raw, "q", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)

	got := set.Filter("category", "Problem")
	c.Assert(got, check.HasLen, 1)
	c.Assert(got[0].Doc.DisplayName, check.Equals, "Alpha")

	got = set.Filter("category", "pro-blem!")
	c.Assert(got, check.HasLen, 1)

	c.Assert(set.Filter("category", ""), check.HasLen, 2)
	c.Assert(set.Filter("missing", "x"), check.HasLen, 0)
}

func (s *ResultsTestSuite) TestFilterAndSortModes(c *check.C) {
	raw := response(c,
		hit{Score: 3, Source: source("Charlie", "problem", "x")},
		hit{Score: 2, Source: source("Alpha", "video", "x")},
		hit{Score: 1, Source: source("Beta", "problem", "x")},
	)

	filters := results.Filters{"category": "problem", "display_name": "alpha"}

	set, err := results.Build(raw, "q", results.SortAlphabetical, filters)
	c.Assert(err, check.IsNil)
	set.FilterAndSort()
	c.Assert(names(set), check.DeepEquals, []string{"Alpha", "Beta", "Charlie"})

	set, err = results.Build(raw, "q", results.SortRelevance, filters, results.WithMode(results.MatchAll))
	c.Assert(err, check.IsNil)
	set.FilterAndSort()
	c.Assert(set.Len(), check.Equals, 0)

	set, err = results.Build(raw, "q", results.SortRelevance, results.Filters{"category": "problem"}, results.WithMode(results.MatchAll))
	c.Assert(err, check.IsNil)
	set.FilterAndSort()
	c.Assert(names(set), check.DeepEquals, []string{"Charlie", "Beta"})
}

func (s *ResultsTestSuite) TestSortWithoutFilters(c *check.C) {
	raw := response(c,
		hit{Score: 1, Source: source("Beta", "problem", "x")},
		hit{Score: 3, Source: source("alpha", "video", "x")},
		hit{Score: 1, Source: source("Charlie", "problem", "x")},
	)

	set, err := results.Build(raw, "q", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	set.FilterAndSort()
	c.Assert(names(set), check.DeepEquals, []string{"alpha", "Beta", "Charlie"})

	set, err = results.Build(raw, "q", results.SortReverseAlphabetical, nil)
	c.Assert(err, check.IsNil)
	set.FilterAndSort()
	c.Assert(names(set), check.DeepEquals, []string{"Charlie", "Beta", "alpha"})
}

func (s *ResultsTestSuite) TestFilterAndSortKeepsEarlierEntries(c *check.C) {
	raw := response(c,
		hit{Score: 3, Source: source("Charlie", "problem", "x")},
		hit{Score: 2, Source: source("Alpha", "video", "x")},
		hit{Score: 1, Source: source("Beta", "problem", "x")},
	)

	set, err := results.Build(raw, "q", results.SortAlphabetical, results.Filters{"category": "problem"})
	c.Assert(err, check.IsNil)

	before := set.Entries()
	set.FilterAndSort()
	c.Assert(names(set), check.DeepEquals, []string{"Beta", "Charlie"})

	var got []string
	for _, e := range before {
		got = append(got, e.Doc.DisplayName)
	}
	c.Assert(got, check.DeepEquals, []string{"Charlie", "Alpha", "Beta"})
}

func (s *ResultsTestSuite) TestParseSort(c *check.C) {
	c.Assert(results.ParseSort(" Alphabetical "), check.Equals, results.SortAlphabetical)
	c.Assert(results.ParseSort("reverse-alphabetical"), check.Equals, results.SortReverseAlphabetical)
	c.Assert(results.ParseSort(""), check.Equals, results.SortRelevance)
	c.Assert(results.ParseSort("bogus"), check.Equals, results.SortRelevance)
}

func (s *ResultsTestSuite) TestCounter(c *check.C) {
	raw := response(c,
		hit{Score: 1, Source: source("A", "Problem", "x")},
		hit{Score: 1, Source: source("B", "problem", "x")},
		hit{Score: 1, Source: source("C", "video", "x")},
	)

	set, err := results.Build(raw, "q", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	c.Assert(set.Counter("category"), check.DeepEquals, map[string]int{"problem": 2, "video": 1})
}

func (s *ResultsTestSuite) TestPresentThumbnail(c *check.C) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"http://img.youtube.com/vi/a/0.jpg", "http://img.youtube.com/vi/a/0.jpg"},
		{"https://example.com/t.jpg", "https://example.com/t.jpg"},
		{"<svg><text>q</text></svg>", "<svg><text>q</text></svg>"},
		{"/9j/4AAQ", "data:image/jpeg;base64,/9j/4AAQ"},
	}

	for index, tc := range testCases {
		c.Logf("case %d", index)
		c.Assert(results.PresentThumbnail(tc.input), check.Equals, tc.expected)
	}
}

func (s *ResultsTestSuite) TestJumpToURLDropsRevision(c *check.C) {
	url, err := results.JumpToURL("MITx/6.002x/2013_Spring",
		`{"tag":"i4x","org":"MITx","course":"6.002x","category":"video","name":"intro","revision":"draft"}`)
	c.Assert(err, check.IsNil)
	c.Assert(url, check.Equals, "/courses/MITx/6.002x/2013_Spring/jump_to/i4x://MITx/6.002x/video/intro")
}

func (s *ResultsTestSuite) TestRoundTripThroughEngine(c *check.C) {
	engine, err := memory.NewInMemoryEngine()
	c.Assert(err, check.IsNil)
	defer func() { _ = engine.Close() }()

	doc := indextest.Doc("6.002x", "lecture", "Resistors dissipate power. Ohm's law relates voltage & current <in> circuits.")
	doc.CourseID = schema.CourseID("MITx", "6.002x", "2013_Spring")
	doc.DisplayName = schema.DisplayName("Lecture 1", "6.002x")
	doc.TypeHash = index.Digest(doc.CourseID)

	err = engine.Submit(context.TODO(), []index.Action{{Partition: index.TranscriptPartition, Doc: doc}})
	c.Assert(err, check.IsNil)

	raw, err := engine.Search(context.TODO(), index.Query{Expression: "voltage"})
	c.Assert(err, check.IsNil)

	set, err := results.Build(raw, "voltage", results.SortRelevance, nil)
	c.Assert(err, check.IsNil)
	c.Assert(set.Len(), check.Equals, 1)

	got := set.Entries()[0]
	c.Assert(got.Doc.DisplayName, check.Equals, doc.DisplayName)
	c.Assert(got.Doc.CourseID, check.Equals, doc.CourseID)
	c.Assert(got.Doc.SearchableText, check.Equals, doc.SearchableText)
	c.Assert(got.URL, check.Equals, "/courses/MITx/6.002x/2013_Spring/jump_to/i4x://MITx/6.002x/video/lecture")
	c.Assert(strings.Contains(got.Snippet, "<b class=highlight>voltage</b>"), check.Equals, true)
}

func names(set *results.Set) []string {
	var out []string
	for _, e := range set.Entries() {
		out = append(out, e.Doc.DisplayName)
	}

	return out
}
