package indextest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/searchindex/index"
)

// BaseSuite defines a set of re-usable engine related tests that can be
// executed against any concrete type that implements index.Engine.
type BaseSuite struct {
	engine index.Engine
}

// SetEngine sets the engine under test.
func (s *BaseSuite) SetEngine(e index.Engine) {
	s.engine = e
}

// TestSubmitAndSearch verifies that documents written through the bulk
// path are returned by a search.
func (s *BaseSuite) TestSubmitAndSearch(c *check.C) {
	ctx := context.Background()
	docs := []index.Action{
		{Partition: index.TranscriptPartition, Doc: Doc("course-a", "intro", "ohm law relates voltage and current")},
		{Partition: index.ProblemPartition, Doc: Doc("course-a", "hw1", "compute the voltage across the resistor")},
		{Partition: index.ProblemPartition, Doc: Doc("course-b", "hw2", "sorting algorithms and complexity")},
	}

	c.Assert(s.engine.Submit(ctx, docs), check.IsNil)

	res := s.search(c, index.Query{Expression: "voltage"})
	c.Assert(ids(res), check.DeepEquals, map[string]bool{
		docs[0].Doc.ID: true,
		docs[1].Doc.ID: true,
	})

	for _, hit := range res.Hits.Hits {
		c.Assert(hit.Score > 0, check.Equals, true)
	}
}

// TestSearchByPartitionAndCourse verifies the partition and course
// restrictions of a query.
func (s *BaseSuite) TestSearchByPartitionAndCourse(c *check.C) {
	ctx := context.Background()
	docs := []index.Action{
		{Partition: index.TranscriptPartition, Doc: Doc("course-c", "lecture", "capacitor charging curve")},
		{Partition: index.ProblemPartition, Doc: Doc("course-c", "quiz", "capacitor energy storage")},
		{Partition: index.ProblemPartition, Doc: Doc("course-d", "quiz", "capacitor in series")},
	}

	c.Assert(s.engine.Submit(ctx, docs), check.IsNil)

	res := s.search(c, index.Query{
		Expression: "capacitor",
		Partitions: []index.Partition{index.ProblemPartition},
	})
	c.Assert(ids(res), check.DeepEquals, map[string]bool{
		docs[1].Doc.ID: true,
		docs[2].Doc.ID: true,
	})

	res = s.search(c, index.Query{
		Expression: "capacitor",
		CourseID:   docs[2].Doc.CourseID,
	})
	c.Assert(ids(res), check.DeepEquals, map[string]bool{docs[2].Doc.ID: true})
}

// TestResubmitIsIdempotent verifies that submitting the same document
// twice replaces rather than duplicates it.
func (s *BaseSuite) TestResubmitIsIdempotent(c *check.C) {
	ctx := context.Background()
	doc := Doc("course-e", "week1", "inductors store magnetic energy")
	actions := []index.Action{{Partition: index.TranscriptPartition, Doc: doc}}

	c.Assert(s.engine.Submit(ctx, actions), check.IsNil)
	c.Assert(s.engine.Submit(ctx, actions), check.IsNil)

	res := s.search(c, index.Query{Expression: "inductors", CourseID: doc.CourseID})
	c.Assert(res.Hits.Hits, check.HasLen, 1)
	c.Assert(res.Hits.Hits[0].Source, check.DeepEquals, *doc)

	updated := *doc
	updated.SearchableText = "inductors resist changes in current"
	c.Assert(s.engine.IndexOne(ctx, index.TranscriptPartition, &updated), check.IsNil)

	res = s.search(c, index.Query{Expression: "inductors", CourseID: doc.CourseID})
	c.Assert(res.Hits.Hits, check.HasLen, 1)
	c.Assert(res.Hits.Hits[0].Source.SearchableText, check.Equals, updated.SearchableText)
}

// TestIncompleteDocumentsAreRejected verifies that partial documents never
// reach the engine.
func (s *BaseSuite) TestIncompleteDocumentsAreRejected(c *check.C) {
	ctx := context.Background()
	doc := Doc("course-f", "broken", "transistor")
	doc.Thumbnail = ""

	err := s.engine.Submit(ctx, []index.Action{{Partition: index.ProblemPartition, Doc: doc}})
	c.Assert(errors.Is(err, index.ErrIncompleteDocument), check.Equals, true)

	err = s.engine.IndexOne(ctx, index.ProblemPartition, doc)
	c.Assert(errors.Is(err, index.ErrIncompleteDocument), check.Equals, true)

	res := s.search(c, index.Query{Expression: "transistor", CourseID: doc.CourseID})
	c.Assert(res.Hits.Hits, check.HasLen, 0)
}

// TestDeletePartition verifies that dropping a partition removes its
// documents and leaves the other partitions untouched.
func (s *BaseSuite) TestDeletePartition(c *check.C) {
	ctx := context.Background()
	docs := []index.Action{
		{Partition: index.DocumentPartition, Doc: Doc("course-g", "handout", "diode forward bias")},
		{Partition: index.ProblemPartition, Doc: Doc("course-g", "lab", "diode reverse bias")},
	}

	c.Assert(s.engine.Submit(ctx, docs), check.IsNil)
	c.Assert(s.engine.DeletePartition(ctx, index.DocumentPartition), check.IsNil)

	res := s.search(c, index.Query{Expression: "diode", CourseID: docs[0].Doc.CourseID})
	c.Assert(ids(res), check.DeepEquals, map[string]bool{docs[1].Doc.ID: true})

	// Dropping a partition that holds nothing is not an error.
	c.Assert(s.engine.DeletePartition(ctx, index.DocumentPartition), check.IsNil)
}

func (s *BaseSuite) search(c *check.C, q index.Query) index.SearchResponse {
	raw, err := s.engine.Search(context.Background(), q)
	c.Assert(err, check.IsNil)

	var res index.SearchResponse
	c.Assert(json.Unmarshal(raw, &res), check.IsNil, check.Commentf("raw response: %s", raw))

	return res
}

// Doc returns a complete document for course and name.
func Doc(course, name, text string) *index.Document {
	id := fmt.Sprintf(`{"tag":"i4x","org":"MITx","course":%q,"category":"video","name":%q}`, course, name)
	courseID := "MITx/" + course + "/2013_Spring"

	return &index.Document{
		ID:             id,
		Hash:           index.Digest(id),
		DisplayName:    name + " (" + course + ")",
		CourseID:       courseID,
		SearchableText: text,
		Thumbnail:      "http://img.youtube.com/vi/" + name + "/0.jpg",
		TypeHash:       index.Digest(courseID),
	}
}

func ids(res index.SearchResponse) map[string]bool {
	out := make(map[string]bool)
	for _, hit := range res.Hits.Hits {
		out[hit.Source.ID] = true
	}

	return out
}
