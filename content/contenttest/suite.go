package contenttest

import (
	"context"
	"errors"
	"sort"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/content"
)

// Store is implemented by content stores that can also be written to. The
// write methods only exist so that tests can seed data.
type Store interface {
	content.Store

	UpsertItem(ctx context.Context, item *content.Item) error
	UpsertAsset(ctx context.Context, asset *content.Asset) error
}

// BaseSuite defines a set of re-usable store tests that can be executed
// against any type that implements the Store interface.
type BaseSuite struct {
	store Store
}

// SetStore sets the store under test.
func (s *BaseSuite) SetStore(store Store) {
	s.store = store
}

// TestItemsForCourse verifies that iteration is scoped to one course and
// that re-upserting an item replaces it.
func (s *BaseSuite) TestItemsForCourse(c *check.C) {
	ctx := context.Background()

	seed := []*content.Item{
		{Location: loc("MITx", "6.002x", "video", "intro"), Data: "0.75:a,1.0:b", DisplayName: "Intro"},
		{Location: loc("MITx", "6.002x", "problem", "hw1"), Data: "<problem/>", DisplayName: "HW 1"},
		{Location: loc("MITx", "6.002x", "course", "2012_Fall"), DisplayName: "Circuits"},
		{Location: loc("MITx", "3.091x", "video", "other"), Data: "0.75:c,1.0:d"},
	}

	for _, item := range seed {
		c.Assert(s.store.UpsertItem(ctx, item), check.IsNil)
	}

	updated := *seed[1]
	updated.DisplayName = "Homework 1"
	c.Assert(s.store.UpsertItem(ctx, &updated), check.IsNil)

	it, err := s.store.Items(ctx, "6.002x")
	c.Assert(err, check.IsNil)

	var names []string
	for it.Next() {
		item := it.Item()
		c.Assert(item.Location.Course, check.Equals, "6.002x")
		names = append(names, item.Location.Name)

		if item.Location.Name == "hw1" {
			c.Assert(item.DisplayName, check.Equals, "Homework 1")
		}
	}
	c.Assert(it.Error(), check.IsNil)
	c.Assert(it.Close(), check.IsNil)

	sort.Strings(names)
	c.Assert(names, check.DeepEquals, []string{"2012_Fall", "hw1", "intro"})

	err = s.store.UpsertItem(ctx, &content.Item{Location: content.Location{Name: "orphan"}})
	c.Assert(errors.Is(err, content.ErrMissingCourse), check.Equals, true)
}

// TestCourseRecord verifies the lookup of a course's canonical record.
func (s *BaseSuite) TestCourseRecord(c *check.C) {
	ctx := context.Background()

	c.Assert(s.store.UpsertItem(ctx, &content.Item{Location: loc("MITx", "8.01x", "video", "v1")}), check.IsNil)
	c.Assert(s.store.UpsertItem(ctx, &content.Item{Location: loc("MITx", "8.01x", "course", "2013_Spring")}), check.IsNil)

	rec, err := s.store.CourseRecord(ctx, "8.01x")
	c.Assert(err, check.IsNil)
	c.Assert(rec.Location.Name, check.Equals, "2013_Spring")

	_, err = s.store.CourseRecord(ctx, "unknown")
	c.Assert(errors.Is(err, content.ErrNotFound), check.Equals, true)
}

// TestAssetLookups verifies exact asset lookups and fragment chunk lookups.
func (s *BaseSuite) TestAssetLookups(c *check.C) {
	ctx := context.Background()

	c.Assert(s.store.UpsertAsset(ctx, &content.Asset{Name: "notes.pdf", Category: "asset", Data: []byte("%PDF")}), check.IsNil)
	c.Assert(s.store.UpsertAsset(ctx, &content.Asset{Name: "subs_dJvsFg10JY.srt.sjson", Category: "asset", Data: []byte(`{"text":["hi"]}`)}), check.IsNil)

	a, err := s.store.FindAsset(ctx, "notes.pdf")
	c.Assert(err, check.IsNil)
	c.Assert(string(a.Data), check.Equals, "%PDF")

	_, err = s.store.FindAsset(ctx, "notes")
	c.Assert(errors.Is(err, content.ErrNotFound), check.Equals, true)

	chunk, err := s.store.FindChunk(ctx, "dJvsFg10JY")
	c.Assert(err, check.IsNil)
	c.Assert(chunk.Name, check.Equals, "subs_dJvsFg10JY.srt.sjson")

	_, err = s.store.FindChunk(ctx, "missing-id")
	c.Assert(errors.Is(err, content.ErrNotFound), check.Equals, true)
}

func loc(org, course, category, name string) content.Location {
	return content.Location{Tag: "i4x", Org: org, Course: course, Category: category, Name: name}
}
