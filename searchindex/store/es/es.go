package es

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/metrics"
	"github.com/mycok/coursesearch/retry"
	"github.com/mycok/coursesearch/searchindex/index"
)

// Static and compile-time check to ensure ElasticsearchEngine implements
// index.Engine.
var _ index.Engine = (*ElasticsearchEngine)(nil)

// Fields searched by free-text queries, with the display name boosted.
var searchFields = []string{"display_name^2", "searchable_text"}

type esErrorRes struct {
	Error  esError `json:"error"`
	Status int     `json:"status"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Status int    `json:"-"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// transient reports whether the engine may accept the same request later.
func (e esError) transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

type esBulkRes struct {
	Errors bool                           `json:"errors"`
	Items  []map[string]esBulkItemOutcome `json:"items"`
}

type esBulkItemOutcome struct {
	ID     string   `json:"_id"`
	Status int      `json:"status"`
	Error  *esError `json:"error,omitempty"`
}

// Config encapsulates the settings for configuring the elasticsearch
// engine.
type Config struct {
	// Elasticsearch node addresses.
	Nodes []string

	// Creation body (settings and mappings) per partition. Every partition
	// listed here is created when the engine is instantiated.
	Partitions map[index.Partition][]byte

	// Make writes visible to searches before returning.
	SyncWrites bool

	// Retry policy applied to every request. A nil policy performs a
	// single attempt.
	Retry *retry.Policy

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if len(cfg.Nodes) == 0 {
		err = multierror.Append(err, fmt.Errorf("elasticsearch node list not provided"))
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// ElasticsearchEngine is an index.Engine implementation that writes to and
// searches an elasticsearch cluster over its HTTP API.
type ElasticsearchEngine struct {
	cfg     Config
	client  *elasticsearch.Client
	refresh string
}

// NewElasticsearchEngine creates a client for the configured nodes and
// bootstraps every configured partition. A partition that already exists is
// left untouched.
func NewElasticsearchEngine(ctx context.Context, cfg Config) (*ElasticsearchEngine, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("elasticsearch engine: config validation failed: %w", err)
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Nodes,
		// Retries are driven by cfg.Retry.
		DisableRetry: true,
	})
	if err != nil {
		return nil, err
	}

	e := &ElasticsearchEngine{
		cfg:     cfg,
		client:  client,
		refresh: "false",
	}

	if cfg.SyncWrites {
		e.refresh = "true"
	}

	for partition, body := range cfg.Partitions {
		if err := e.createPartition(ctx, partition, body); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Submit implements index.Engine.
func (e *ElasticsearchEngine) Submit(ctx context.Context, actions []index.Action) error {
	if len(actions) == 0 {
		return nil
	}

	for i, a := range actions {
		if a.Doc == nil || !a.Doc.Complete() {
			return fmt.Errorf("submit: action %d: %w", i, index.ErrIncompleteDocument)
		}
	}

	body, err := index.BulkBody(actions)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	var res esBulkRes
	err = e.call(ctx, "bulk", func(ctx context.Context) (*esapi.Response, error) {
		req := esapi.BulkRequest{
			Body:    bytes.NewReader(body),
			Refresh: e.refresh,
		}

		return req.Do(ctx, e.client)
	}, &res)
	if err != nil {
		return e.mapErr("submit", err)
	}

	if res.Errors {
		return fmt.Errorf("submit: %w", bulkItemErrors(res))
	}

	e.cfg.Logger.WithField("count", len(actions)).Debug("bulk submitted")

	return nil
}

// IndexOne implements index.Engine. The document is posted to
// /{partition}/{type}/{id}.
func (e *ElasticsearchEngine) IndexOne(ctx context.Context, partition index.Partition, doc *index.Document) error {
	if doc == nil || !doc.Complete() {
		return fmt.Errorf("index one: %w", index.ErrIncompleteDocument)
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("index one: %w", err)
	}

	target := fmt.Sprintf("/%s/%s/%s?refresh=%s",
		url.PathEscape(string(partition)),
		url.PathEscape(doc.TypeHash),
		url.PathEscape(doc.Hash),
		e.refresh,
	)

	err = e.call(ctx, "index", func(ctx context.Context) (*esapi.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err != nil {
			return nil, retry.Permanent(err)
		}

		req.Header.Set("Content-Type", "application/json")

		res, err := e.client.Perform(req)
		if err != nil {
			return nil, err
		}

		return &esapi.Response{StatusCode: res.StatusCode, Header: res.Header, Body: res.Body}, nil
	}, nil)
	if err != nil {
		return e.mapErr("index one", err)
	}

	return nil
}

// DeletePartition implements index.Engine. Dropping a partition that does
// not exist is not an error.
func (e *ElasticsearchEngine) DeletePartition(ctx context.Context, partition index.Partition) error {
	err := e.call(ctx, "delete", func(ctx context.Context) (*esapi.Response, error) {
		req := esapi.IndicesDeleteRequest{Index: []string{string(partition)}}

		return req.Do(ctx, e.client)
	}, nil)

	var esErr esError
	if errors.As(err, &esErr) && esErr.Type == "index_not_found_exception" {
		return nil
	}

	if err != nil {
		return e.mapErr("delete partition", err)
	}

	e.cfg.Logger.WithField("partition", partition).Info("partition deleted")

	return nil
}

// Search implements index.Engine.
func (e *ElasticsearchEngine) Search(ctx context.Context, q index.Query) ([]byte, error) {
	q = q.Normalize()

	body, err := json.Marshal(searchBody(q))
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	partitions := make([]string, 0, len(q.Partitions))
	for _, p := range q.Partitions {
		partitions = append(partitions, string(p))
	}

	var raw json.RawMessage
	err = e.call(ctx, "search", func(ctx context.Context) (*esapi.Response, error) {
		ignore, allowNone := true, true
		req := esapi.SearchRequest{
			Index:             partitions,
			Body:              bytes.NewReader(body),
			IgnoreUnavailable: &ignore,
			AllowNoIndices:    &allowNone,
		}

		return req.Do(ctx, e.client)
	}, &raw)
	if err != nil {
		return nil, e.mapErr("search", err)
	}

	return raw, nil
}

func searchBody(q index.Query) map[string]interface{} {
	var must interface{}
	if q.Expression == "" {
		must = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.Expression,
				"fields":    searchFields,
				"fuzziness": "AUTO",
			},
		}
	}

	boolQuery := map[string]interface{}{"must": must}
	if q.CourseID != "" {
		boolQuery["filter"] = []interface{}{
			map[string]interface{}{
				"term": map[string]interface{}{"type_hash": index.Digest(q.CourseID)},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  q.Offset,
		"size":  q.Size,
	}
}

func (e *ElasticsearchEngine) createPartition(ctx context.Context, partition index.Partition, body []byte) error {
	err := e.call(ctx, "create", func(ctx context.Context) (*esapi.Response, error) {
		req := esapi.IndicesCreateRequest{Index: string(partition)}
		if len(body) != 0 {
			req.Body = bytes.NewReader(body)
		}

		return req.Do(ctx, e.client)
	}, nil)

	var esErr esError
	if errors.As(err, &esErr) && esErr.Type == "resource_already_exists_exception" {
		return nil
	}

	if err != nil {
		return fmt.Errorf("create partition %q: %w", partition, err)
	}

	e.cfg.Logger.WithField("partition", partition).Info("partition created")

	return nil
}

// call runs fn through the retry policy and decodes a successful response
// body into into, when into is not nil.
func (e *ElasticsearchEngine) call(
	ctx context.Context, op string, fn func(context.Context) (*esapi.Response, error), into interface{},
) error {
	timer := time.Now()
	defer func() {
		metrics.EngineRequestDuration.WithLabelValues(op).Observe(time.Since(timer).Seconds())
	}()

	return e.cfg.Retry.Do(ctx, func(ctx context.Context) error {
		res, err := fn(ctx)
		if err != nil {
			// Transport level failure.
			return err
		}

		return unmarshalResponse(res, into)
	})
}

// mapErr turns errors that mean the engine could not be reached into
// index.ErrUnavailable.
func (e *ElasticsearchEngine) mapErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var esErr esError
	if errors.As(err, &esErr) && !esErr.transient() {
		return fmt.Errorf("%s: %w", op, err)
	}

	e.cfg.Logger.WithError(err).WithField("op", op).Error("search engine unavailable")

	return fmt.Errorf("%s: %w: %v", op, index.ErrUnavailable, err)
}

func unmarshalResponse(res *esapi.Response, into interface{}) error {
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			errRes.Error = esError{Type: "http_error", Reason: res.Status()}
		}

		errRes.Error.Status = res.StatusCode
		if errRes.Error.transient() {
			return errRes.Error
		}

		return retry.Permanent(errRes.Error)
	}

	if into == nil {
		_, err := io.Copy(io.Discard, res.Body)
		return err
	}

	if err := json.NewDecoder(res.Body).Decode(into); err != nil {
		return retry.Permanent(err)
	}

	return nil
}

func bulkItemErrors(res esBulkRes) error {
	var err error
	for _, item := range res.Items {
		for _, outcome := range item {
			if outcome.Error == nil {
				continue
			}

			err = multierror.Append(err, fmt.Errorf("document %s: %w", outcome.ID, *outcome.Error))
		}
	}

	if err == nil {
		err = errors.New("bulk request reported errors")
	}

	return err
}
