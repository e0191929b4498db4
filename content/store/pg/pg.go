package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/retry"
)

var (
	createSchemaQuery = `
		CREATE TABLE IF NOT EXISTS content_items (
			key          TEXT PRIMARY KEY,
			tag          TEXT NOT NULL DEFAULT 'i4x',
			org          TEXT NOT NULL,
			course       TEXT NOT NULL,
			category     TEXT NOT NULL,
			name         TEXT NOT NULL,
			revision     TEXT NOT NULL DEFAULT '',
			data         TEXT NOT NULL DEFAULT '',
			display_name TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS content_items_course_idx ON content_items (course, category);
		CREATE TABLE IF NOT EXISTS content_assets (
			name     TEXT PRIMARY KEY,
			category TEXT NOT NULL,
			data     BYTEA NOT NULL
		);
		`

	upsertItemQuery = `
		INSERT INTO content_items (key, tag, org, course, category, name, revision, data, display_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key)
		DO UPDATE SET data=$8, display_name=$9
		`

	upsertAssetQuery = `
		INSERT INTO content_assets (name, category, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (name)
		DO UPDATE SET category=$2, data=$3
		`

	courseItemsQuery = `
		SELECT tag, org, course, category, name, revision, data, display_name
		FROM content_items WHERE course=$1
		`

	courseRecordQuery = `
		SELECT tag, org, course, category, name, revision, data, display_name
		FROM content_items WHERE course=$1 AND category=$2
		ORDER BY name LIMIT 1
		`

	findAssetQuery = "SELECT name, category, data FROM content_assets WHERE name=$1 AND category='asset'"

	findChunkQuery = `
		SELECT name, category, data FROM content_assets
		WHERE strpos(name, $1) > 0
		ORDER BY name LIMIT 1
		`
)

// Static and compile-time check to ensure PostgresStore implements
// content.Store interface.
var _ content.Store = (*PostgresStore)(nil)

// PostgresStore implements a content store backed by a PostgreSQL database.
type PostgresStore struct {
	db     *sql.DB
	policy *retry.Policy
}

// NewPostgresStore opens a connection to the database at dsn and makes
// sure the content tables exist. Reads go through policy when one is
// provided.
func NewPostgresStore(dsn string, policy *retry.Policy) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	if _, err := db.ExecContext(ctx, createSchemaQuery); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{db: db, policy: policy}, nil
}

// Close terminates the connection to the database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// UpsertItem inserts a new item or updates the payload of an existing one.
func (s *PostgresStore) UpsertItem(ctx context.Context, item *content.Item) error {
	if item.Location.Course == "" {
		return fmt.Errorf("upsert item: %w", content.ErrMissingCourse)
	}

	l := item.Location
	_, err := s.db.ExecContext(
		ctx, upsertItemQuery, l.Serialize(), tagOrDefault(l.Tag), l.Org, l.Course,
		l.Category, l.Name, l.Revision, item.Data, item.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	return nil
}

// UpsertAsset inserts a new asset or replaces an existing one.
func (s *PostgresStore) UpsertAsset(ctx context.Context, asset *content.Asset) error {
	if _, err := s.db.ExecContext(ctx, upsertAssetQuery, asset.Name, asset.Category, asset.Data); err != nil {
		return fmt.Errorf("upsert asset: %w", err)
	}

	return nil
}

// FindAsset returns the asset whose file name exactly matches name.
func (s *PostgresStore) FindAsset(ctx context.Context, name string) (*content.Asset, error) {
	a, err := s.queryAsset(ctx, findAssetQuery, name)
	if err != nil {
		return nil, fmt.Errorf("find asset: %w", err)
	}

	return a, nil
}

// FindChunk returns the first chunk whose file name contains fragment.
func (s *PostgresStore) FindChunk(ctx context.Context, fragment string) (*content.Asset, error) {
	a, err := s.queryAsset(ctx, findChunkQuery, fragment)
	if err != nil {
		return nil, fmt.Errorf("find chunk: %w", err)
	}

	return a, nil
}

// Items returns an iterator over every item that belongs to course.
func (s *PostgresStore) Items(ctx context.Context, course string) (content.ItemIterator, error) {
	var rows *sql.Rows

	err := s.do(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.db.QueryContext(ctx, courseItemsQuery, course)

		return classify(err)
	})
	if err != nil {
		return nil, fmt.Errorf("items: %w", err)
	}

	return &itemIterator{rows: rows}, nil
}

// CourseRecord returns the canonical course item for course.
func (s *PostgresStore) CourseRecord(ctx context.Context, course string) (*content.Item, error) {
	item := new(content.Item)

	err := s.do(ctx, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, courseRecordQuery, course, content.CourseCategory)

		return classify(scanItem(row, item))
	})
	if err != nil {
		return nil, fmt.Errorf("course record: %w", err)
	}

	return item, nil
}

func (s *PostgresStore) queryAsset(ctx context.Context, query, arg string) (*content.Asset, error) {
	a := new(content.Asset)

	err := s.do(ctx, func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx, query, arg)

		return classify(row.Scan(&a.Name, &a.Category, &a.Data))
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

func (s *PostgresStore) do(ctx context.Context, op func(context.Context) error) error {
	return s.policy.Do(ctx, op)
}

// classify maps database errors onto the store's error contract. Missing
// rows and errors reported by the server itself are not worth retrying;
// everything else (dropped connections, timeouts) is.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return retry.Permanent(content.ErrNotFound)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return retry.Permanent(err)
	}

	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row scanner, item *content.Item) error {
	l := &item.Location

	return row.Scan(
		&l.Tag, &l.Org, &l.Course, &l.Category, &l.Name, &l.Revision,
		&item.Data, &item.DisplayName,
	)
}

func tagOrDefault(tag string) string {
	if tag == "" {
		return "i4x"
	}

	return tag
}
