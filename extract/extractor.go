package extract

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/metrics"
)

// Handler derives searchable text and a thumbnail for one kind of content.
type Handler interface {
	Text(ctx context.Context, item *content.Item) Result
	Thumbnail(ctx context.Context, item *content.Item) Result
}

// Config encapsulates the settings for configuring the extractor.
type Config struct {
	// Store used to resolve assets and transcript chunks.
	Store content.Store

	// Renders the first page of a PDF. If not defined, PDF thumbnails are
	// rendered with pdftoppm.
	Renderer PageRenderer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Store == nil {
		err = multierror.Append(err, fmt.Errorf("content store not provided"))
	}

	if cfg.Renderer == nil {
		cfg.Renderer = NewCommandRenderer(nil)
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Extractor dispatches extraction to the handler registered for an item's
// kind.
type Extractor struct {
	handlers map[Kind]Handler
	logger   *logrus.Entry
}

// New returns an Extractor with a handler for every supported kind.
func New(cfg Config) (*Extractor, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("extractor: config validation failed: %w", err)
	}

	return &Extractor{
		handlers: map[Kind]Handler{
			Document:   &documentHandler{store: cfg.Store, renderer: cfg.Renderer},
			Problem:    problemHandler{},
			Transcript: &transcriptHandler{store: cfg.Store},
		},
		logger: cfg.Logger,
	}, nil
}

// Text returns the searchable text of item.
func (e *Extractor) Text(ctx context.Context, item *content.Item, kind Kind) Result {
	h, ok := e.handlers[kind]
	if !ok {
		return Result{Reason: ErrUnsupportedKind}
	}

	res := h.Text(ctx, item)
	e.report(item, kind, "text", res)

	return res
}

// Thumbnail returns the thumbnail reference of item.
func (e *Extractor) Thumbnail(ctx context.Context, item *content.Item, kind Kind) Result {
	h, ok := e.handlers[kind]
	if !ok {
		return Result{Reason: ErrUnsupportedKind}
	}

	res := h.Thumbnail(ctx, item)
	e.report(item, kind, "thumbnail", res)

	return res
}

func (e *Extractor) report(item *content.Item, kind Kind, field string, res Result) {
	if res.Reason == nil {
		return
	}

	entry := e.logger.WithFields(logrus.Fields{
		"location": item.Location.String(),
		"kind":     kind.String(),
		"field":    field,
	}).WithError(res.Reason)

	if absent(res.Reason) {
		entry.Debug("extraction yielded no value")
		return
	}

	metrics.ExtractionFailuresTotal.WithLabelValues(kind.String(), field).Inc()
	entry.Warn("extraction failed, continuing")
}
