package index_test

import (
	"encoding/json"

	check "gopkg.in/check.v1"

	"github.com/mycok/coursesearch/searchindex/index"
)

var _ = check.Suite(new(ResponseTestSuite))

type ResponseTestSuite struct{}

func (s *ResponseTestSuite) TestDecodeTotal(c *check.C) {
	specs := []struct {
		descr string
		raw   string
		exp   index.Total
		err   bool
	}{
		{descr: "object", raw: `{"value":12,"relation":"gte"}`, exp: index.Total{Value: 12, Relation: "gte"}},
		{descr: "number", raw: `12`, exp: index.Total{Value: 12}},
		{descr: "null", raw: `null`},
		{descr: "string", raw: `"12"`, err: true},
	}

	for i, spec := range specs {
		c.Logf("case %d: %s", i, spec.descr)

		var got index.Total
		err := json.Unmarshal([]byte(spec.raw), &got)
		if spec.err {
			c.Assert(err, check.NotNil)
			continue
		}
		c.Assert(err, check.IsNil)
		c.Assert(got, check.DeepEquals, spec.exp)
	}
}

func (s *ResponseTestSuite) TestDecodeLegacyResponse(c *check.C) {
	raw := `{"took":1,"hits":{"total":1,"max_score":2,"hits":[{"_index":"courses","_type":"MITx/6.002x/2013_Spring","_id":"a","_score":2,"_source":{"id":"a","display_name":"Intro (6.002x)"}}]}}`

	var res index.SearchResponse
	c.Assert(json.Unmarshal([]byte(raw), &res), check.IsNil)
	c.Assert(res.Hits.Total.Value, check.Equals, uint64(1))
	c.Assert(res.Hits.Hits, check.HasLen, 1)
	c.Assert(res.Hits.Hits[0].Source.DisplayName, check.Equals, "Intro (6.002x)")
}
