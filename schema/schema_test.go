package schema

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/content/store/memory"
	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/searchindex/index"
)

var _ = check.Suite(new(SchemaTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

type SchemaTestSuite struct {
	store *countingStore
}

func (s *SchemaTestSuite) SetUpTest(c *check.C) {
	mem := memory.NewInMemoryStore()
	err := mem.UpsertItem(context.Background(), &content.Item{
		Location: content.Location{Tag: "i4x", Org: "MITx", Course: "6.002x", Category: "course", Name: "2012_Fall"},
	})
	c.Assert(err, check.IsNil)

	s.store = &countingStore{Store: mem}
}

func (s *SchemaTestSuite) TestBuild(c *check.C) {
	b := s.builder(c)
	item := &content.Item{
		Location:    content.Location{Tag: "i4x", Org: "MITx", Course: "6.002x", Category: "video", Name: "intro"},
		Data:        "0.75:a,1.0:b",
		DisplayName: "Welcome",
	}

	doc, err := b.Build(context.Background(), item, extract.Transcript)
	c.Assert(err, check.IsNil)

	id := item.Location.Serialize()
	c.Assert(doc, check.DeepEquals, &index.Document{
		ID:             id,
		Hash:           index.Digest(id),
		DisplayName:    "Welcome (6.002x)",
		CourseID:       "MITx/6.002x/2012_Fall",
		SearchableText: "text of transcript",
		Thumbnail:      "thumb of transcript",
		TypeHash:       index.Digest("MITx/6.002x/2012_Fall"),
	})

	// Rebuilding the same item yields the same keys.
	again, err := b.Build(context.Background(), item, extract.Transcript)
	c.Assert(err, check.IsNil)
	c.Assert(again.Hash, check.Equals, doc.Hash)
	c.Assert(again.TypeHash, check.Equals, doc.TypeHash)
}

func (s *SchemaTestSuite) TestBuildKeepsEmptyFields(c *check.C) {
	b, err := NewBuilder(Config{
		Extractor: fakeExtractor{empty: true},
		Names:     NewCourseNameCache(s.store),
	})
	c.Assert(err, check.IsNil)

	doc, err := b.Build(context.Background(), &content.Item{
		Location: content.Location{Org: "MITx", Course: "6.002x", Category: "problem", Name: "p1"},
	}, extract.Problem)
	c.Assert(err, check.IsNil)
	c.Assert(doc.SearchableText, check.Equals, "")
	c.Assert(doc.Complete(), check.Equals, false)
}

func (s *SchemaTestSuite) TestUnknownCourse(c *check.C) {
	b := s.builder(c)

	_, err := b.Build(context.Background(), &content.Item{
		Location: content.Location{Org: "HarvardX", Course: "CS50", Category: "video", Name: "v"},
	}, extract.Transcript)
	c.Assert(errors.Is(err, content.ErrNotFound), check.Equals, true)
}

func (s *SchemaTestSuite) TestUnknownCourseIsLogged(c *check.C) {
	logger, hook := logtest.NewNullLogger()
	b, err := NewBuilder(Config{
		Extractor: fakeExtractor{},
		Names:     NewCourseNameCache(s.store),
		Logger:    logrus.NewEntry(logger),
	})
	c.Assert(err, check.IsNil)

	_, err = b.Build(context.Background(), &content.Item{
		Location: content.Location{Org: "HarvardX", Course: "CS50", Category: "video", Name: "v"},
	}, extract.Transcript)
	c.Assert(err, check.NotNil)

	entry := hook.LastEntry()
	c.Assert(entry, check.NotNil)
	c.Assert(entry.Level, check.Equals, logrus.WarnLevel)
	c.Assert(entry.Data["course"], check.Equals, "CS50")
}

func (s *SchemaTestSuite) TestCacheLooksUpEachCourseOnce(c *check.C) {
	cache := NewCourseNameCache(s.store)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := cache.Name(context.Background(), "6.002x")
			c.Check(err, check.IsNil)
			c.Check(name, check.Equals, "2012_Fall")
		}()
	}
	wg.Wait()

	c.Assert(atomic.LoadInt32(&s.store.lookups), check.Equals, int32(1))
	c.Assert(cache.Len(), check.Equals, 1)
}

func (s *SchemaTestSuite) TestFailedLookupIsNotCached(c *check.C) {
	cache := NewCourseNameCache(s.store)

	_, err := cache.Name(context.Background(), "CS50")
	c.Assert(err, check.NotNil)
	_, err = cache.Name(context.Background(), "CS50")
	c.Assert(err, check.NotNil)

	c.Assert(atomic.LoadInt32(&s.store.lookups), check.Equals, int32(2))
	c.Assert(cache.Len(), check.Equals, 0)
}

func (s *SchemaTestSuite) TestConfigValidation(c *check.C) {
	_, err := NewBuilder(Config{})
	c.Assert(err, check.ErrorMatches, "(?s).*extractor not provided.*course name cache not provided.*")
}

func (s *SchemaTestSuite) builder(c *check.C) *Builder {
	b, err := NewBuilder(Config{
		Extractor: fakeExtractor{},
		Names:     NewCourseNameCache(s.store),
	})
	c.Assert(err, check.IsNil)

	return b
}

type countingStore struct {
	content.Store
	lookups int32
}

func (s *countingStore) CourseRecord(ctx context.Context, course string) (*content.Item, error) {
	atomic.AddInt32(&s.lookups, 1)
	return s.Store.CourseRecord(ctx, course)
}

type fakeExtractor struct {
	empty bool
}

func (f fakeExtractor) Text(_ context.Context, _ *content.Item, kind extract.Kind) extract.Result {
	if f.empty {
		return extract.Result{}
	}

	return extract.Result{Value: "text of " + kind.String()}
}

func (f fakeExtractor) Thumbnail(_ context.Context, _ *content.Item, kind extract.Kind) extract.Result {
	return extract.Result{Value: "thumb of " + kind.String()}
}
