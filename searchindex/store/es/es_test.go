package es

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/retry"
	"github.com/mycok/coursesearch/searchindex/index"
	"github.com/mycok/coursesearch/searchindex/index/indextest"
)

var _ = check.Suite(new(esEngineTestSuite))
var _ = check.Suite(new(esWireTestSuite))

func Test(t *testing.T) {
	check.TestingT(t)
}

// esEngineTestSuite runs the shared engine conformance tests against a live
// elasticsearch cluster.
type esEngineTestSuite struct {
	engine *ElasticsearchEngine
	indextest.BaseSuite
}

func (s *esEngineTestSuite) SetUpSuite(c *check.C) {
	nodeList := os.Getenv("ES_NODES")
	if nodeList == "" {
		c.Skip("Missing ES_NODES envvar: skipping elasticsearch engine test suite")
	}

	engine, err := NewElasticsearchEngine(context.Background(), Config{
		Nodes:      strings.Split(nodeList, ","),
		SyncWrites: true,
	})
	c.Assert(err, check.IsNil)

	s.SetEngine(engine)
	s.engine = engine
}

func (s *esEngineTestSuite) SetUpTest(c *check.C) {
	for _, p := range index.Partitions {
		c.Assert(s.engine.DeletePartition(context.Background(), p), check.IsNil)
	}
}

// esWireTestSuite drives the engine against a fake node to verify request
// paths, payloads and retry behaviour.
type esWireTestSuite struct {
	srv *httptest.Server

	mu        sync.Mutex
	requests  []string
	bodies    []string
	failFirst int
	status    int
	errBody   string
}

func (s *esWireTestSuite) SetUpTest(c *check.C) {
	s.requests, s.bodies = nil, nil
	s.failFirst, s.status, s.errBody = 0, 0, ""

	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
}

func (s *esWireTestSuite) TearDownTest(c *check.C) {
	s.srv.Close()
}

func (s *esWireTestSuite) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.bodies = append(s.bodies, string(body))
	fail := s.failFirst > 0
	if fail {
		s.failFirst--
	}
	s.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	if fail {
		w.WriteHeader(s.status)
		_, _ = io.WriteString(w, s.errBody)

		return
	}

	switch {
	case r.URL.Path == "/_bulk":
		_, _ = io.WriteString(w, `{"took":1,"errors":false,"items":[]}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":0},"hits":[]}}`)
	default:
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	}
}

func (s *esWireTestSuite) engine(c *check.C, partitions map[index.Partition][]byte) *ElasticsearchEngine {
	policy, err := retry.New(retry.Config{
		Name:            "elasticsearch",
		MaxAttempts:     3,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})
	c.Assert(err, check.IsNil)

	engine, err := NewElasticsearchEngine(context.Background(), Config{
		Nodes:      []string{s.srv.URL},
		Partitions: partitions,
		Retry:      policy,
	})
	c.Assert(err, check.IsNil)

	return engine
}

func (s *esWireTestSuite) TestBulkPayload(c *check.C) {
	doc := indextest.Doc("wire", "intro", "kirchhoff laws")
	engine := s.engine(c, nil)

	err := engine.Submit(context.Background(), []index.Action{{Partition: index.TranscriptPartition, Doc: doc}})
	c.Assert(err, check.IsNil)

	c.Assert(s.requests, check.DeepEquals, []string{"POST /_bulk"})

	actions, err := index.DecodeBulk(strings.NewReader(s.bodies[0]))
	c.Assert(err, check.IsNil)
	c.Assert(actions, check.DeepEquals, []index.Action{{Partition: index.TranscriptPartition, Doc: doc}})
}

func (s *esWireTestSuite) TestIndexOnePath(c *check.C) {
	doc := indextest.Doc("wire", "quiz", "thevenin equivalent")
	engine := s.engine(c, nil)

	c.Assert(engine.IndexOne(context.Background(), index.ProblemPartition, doc), check.IsNil)
	c.Assert(s.requests, check.DeepEquals, []string{
		"POST /problem-index/" + doc.TypeHash + "/" + doc.Hash,
	})
}

func (s *esWireTestSuite) TestTransientFailuresAreRetried(c *check.C) {
	s.failFirst, s.status = 2, http.StatusServiceUnavailable
	s.errBody = `{"error":{"type":"unavailable_shards_exception","reason":"busy"},"status":503}`
	engine := s.engine(c, nil)

	err := engine.Submit(context.Background(), []index.Action{
		{Partition: index.ProblemPartition, Doc: indextest.Doc("wire", "hw", "norton")},
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.requests, check.HasLen, 3)
}

func (s *esWireTestSuite) TestExhaustedRetriesReportUnavailable(c *check.C) {
	s.failFirst, s.status = 10, http.StatusBadGateway
	engine := s.engine(c, nil)

	err := engine.DeletePartition(context.Background(), index.DocumentPartition)
	c.Assert(errors.Is(err, index.ErrUnavailable), check.Equals, true, check.Commentf("%v", err))
	c.Assert(s.requests, check.HasLen, 3)
}

func (s *esWireTestSuite) TestClientErrorsAreNotRetried(c *check.C) {
	s.failFirst, s.status = 1, http.StatusBadRequest
	s.errBody = `{"error":{"type":"mapper_parsing_exception","reason":"bad field"},"status":400}`
	engine := s.engine(c, nil)

	err := engine.IndexOne(context.Background(), index.ProblemPartition, indextest.Doc("wire", "hw", "mesh"))
	c.Assert(err, check.NotNil)
	c.Assert(errors.Is(err, index.ErrUnavailable), check.Equals, false)
	c.Assert(strings.Contains(err.Error(), "mapper_parsing_exception"), check.Equals, true)
	c.Assert(s.requests, check.HasLen, 1)
}

func (s *esWireTestSuite) TestUnreachableNodeReportsUnavailable(c *check.C) {
	engine := s.engine(c, nil)
	s.srv.Close()

	_, err := engine.Search(context.Background(), index.Query{Expression: "anything"})
	c.Assert(errors.Is(err, index.ErrUnavailable), check.Equals, true, check.Commentf("%v", err))
}

func (s *esWireTestSuite) TestExistingPartitionIsNotAnError(c *check.C) {
	s.failFirst, s.status = 1, http.StatusBadRequest
	s.errBody = `{"error":{"type":"resource_already_exists_exception","reason":"exists"},"status":400}`

	s.engine(c, map[index.Partition][]byte{index.ProblemPartition: []byte(`{"settings":{}}`)})

	c.Assert(s.requests, check.DeepEquals, []string{"PUT /problem-index"})
	c.Assert(s.bodies[0], check.Equals, `{"settings":{}}`)
}

func (s *esWireTestSuite) TestMissingPartitionDeleteIsNotAnError(c *check.C) {
	s.failFirst, s.status = 1, http.StatusNotFound
	s.errBody = `{"error":{"type":"index_not_found_exception","reason":"no such index"},"status":404}`
	engine := s.engine(c, nil)

	c.Assert(engine.DeletePartition(context.Background(), index.DocumentPartition), check.IsNil)
}

func (s *esWireTestSuite) TestSearchRestrictsByCourse(c *check.C) {
	engine := s.engine(c, nil)

	_, err := engine.Search(context.Background(), index.Query{
		Expression: "ohm",
		Partitions: []index.Partition{index.ProblemPartition},
		CourseID:   "MITx/6.002x/2012_Fall",
	})
	c.Assert(err, check.IsNil)
	c.Assert(s.requests, check.DeepEquals, []string{"POST /problem-index/_search"})
	c.Assert(strings.Contains(s.bodies[0], index.Digest("MITx/6.002x/2012_Fall")), check.Equals, true)
}

func (s *esWireTestSuite) TestValidation(c *check.C) {
	_, err := NewElasticsearchEngine(context.Background(), Config{})
	c.Assert(err, check.ErrorMatches, "(?s).*node list not provided.*")
}
