package schema

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/searchindex/index"
)

// Extractor derives the searchable text and thumbnail of a content item.
type Extractor interface {
	Text(ctx context.Context, item *content.Item, kind extract.Kind) extract.Result
	Thumbnail(ctx context.Context, item *content.Item, kind extract.Kind) extract.Result
}

// Config encapsulates the settings for configuring the schema builder.
type Config struct {
	Extractor Extractor
	Names     *CourseNameCache

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.Extractor == nil {
		err = multierror.Append(err, fmt.Errorf("extractor not provided"))
	}

	if cfg.Names == nil {
		err = multierror.Append(err, fmt.Errorf("course name cache not provided"))
	}

	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: io.Discard})
	}

	return err
}

// Builder turns content items into search documents.
type Builder struct {
	cfg Config
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("schema builder: config validation failed: %w", err)
	}

	return &Builder{cfg: cfg}, nil
}

// Build returns the search document for item. The document may have empty
// fields; callers decide whether it is complete enough to submit. An error
// is returned only when the owning course cannot be resolved.
func (b *Builder) Build(ctx context.Context, item *content.Item, kind extract.Kind) (*index.Document, error) {
	loc := item.Location

	offering, err := b.cfg.Names.Name(ctx, loc.Course)
	if err != nil {
		b.cfg.Logger.WithFields(logrus.Fields{
			"course": loc.Course,
			"item":   loc.String(),
			"err":    err,
		}).Warn("unable to resolve course offering")

		return nil, fmt.Errorf("build %s: %w", loc, err)
	}

	text := b.cfg.Extractor.Text(ctx, item, kind)
	thumb := b.cfg.Extractor.Thumbnail(ctx, item, kind)
	for field, res := range map[string]extract.Result{"searchable_text": text, "thumbnail": thumb} {
		if res.Reason != nil {
			b.cfg.Logger.WithFields(logrus.Fields{
				"item":  loc.String(),
				"field": field,
				"err":   res.Reason,
			}).Debug("field left empty or degraded")
		}
	}

	id := loc.Serialize()
	courseID := CourseID(loc.Org, loc.Course, offering)

	return &index.Document{
		ID:             id,
		Hash:           index.Digest(id),
		DisplayName:    DisplayName(item.DisplayName, loc.Course),
		CourseID:       courseID,
		SearchableText: text.Value,
		Thumbnail:      thumb.Value,
		TypeHash:       index.Digest(courseID),
	}, nil
}

// CourseID composes the org/course/offering identifier of a course.
func CourseID(org, course, offering string) string {
	return strings.Join([]string{org, course, offering}, "/")
}

// DisplayName labels an item name with its course.
func DisplayName(name, course string) string {
	return name + " (" + course + ")"
}
