package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/juju/clock"

	"github.com/mycok/coursesearch/config"
	"github.com/mycok/coursesearch/content"
	"github.com/mycok/coursesearch/content/store/memory"
	"github.com/mycok/coursesearch/content/store/pg"
	"github.com/mycok/coursesearch/extract"
	"github.com/mycok/coursesearch/indexer"
	"github.com/mycok/coursesearch/schema"
	"github.com/mycok/coursesearch/searchindex/index"
	"github.com/mycok/coursesearch/searchindex/store/es"
	memindex "github.com/mycok/coursesearch/searchindex/store/memory"
	"github.com/mycok/coursesearch/service/partition"
)

// backends holds the connections shared by every command.
type backends struct {
	settings *config.Settings
	store    content.Store
	engine   index.Engine
	closers  []io.Closer
}

func (b *backends) Close() {
	for _, c := range b.closers {
		_ = c.Close()
	}
}

// openBackends loads the settings file and connects to the content store
// and the search index. A missing or invalid settings file is fatal.
func openBackends(ctx context.Context, settingsFile, storeURI, indexURI string) (*backends, error) {
	b := new(backends)

	var err error
	if settingsFile == "" {
		logger.Info("no settings file provided, using default engine settings")
		b.settings = config.Default()
	} else if b.settings, err = config.Load(settingsFile); err != nil {
		return nil, err
	}

	if b.store, err = getContentStore(storeURI, b); err != nil {
		b.Close()
		return nil, err
	}

	if b.engine, err = getSearchEngine(ctx, indexURI, b); err != nil {
		b.Close()
		return nil, err
	}

	return b, nil
}

func getContentStore(storeURI string, b *backends) (content.Store, error) {
	if storeURI == "" {
		return nil, fmt.Errorf("content store URI must be specified with --content-store-uri")
	}

	url, err := url.Parse(storeURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse content store URI: %w", err)
	}

	switch url.Scheme {
	case "in-memory":
		logger.Info("using in-memory content store")

		return memory.NewInMemoryStore(), nil
	case "postgresql", "postgres":
		logger.Info("using PostgreSQL content store")

		policy, err := b.settings.RetryPolicy("postgres", clock.WallClock, logger.WithField("component", "content-store"))
		if err != nil {
			return nil, err
		}

		store, err := pg.NewPostgresStore(storeURI, policy)
		if err != nil {
			return nil, err
		}

		b.closers = append(b.closers, store)

		return store, nil
	default:
		return nil, fmt.Errorf("unsupported content store URI scheme: %q", url.Scheme)
	}
}

func getSearchEngine(ctx context.Context, indexURI string, b *backends) (index.Engine, error) {
	if indexURI == "" {
		return nil, fmt.Errorf("search index URI must be specified with --search-index-uri")
	}

	url, err := url.Parse(indexURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search index URI: %w", err)
	}

	switch url.Scheme {
	case "in-memory":
		logger.Info("using in-memory search index")

		engine, err := memindex.NewInMemoryEngine()
		if err != nil {
			return nil, err
		}

		b.closers = append(b.closers, engine)

		return engine, nil
	case "es":
		nodes := strings.Split(url.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}

		logger.Info("using ES search index")

		bodies, err := b.settings.CreateBodies()
		if err != nil {
			return nil, err
		}

		engineLogger := logger.WithField("component", "search-index")

		policy, err := b.settings.RetryPolicy("elasticsearch", clock.WallClock, engineLogger)
		if err != nil {
			return nil, err
		}

		return es.NewElasticsearchEngine(ctx, es.Config{
			Nodes:      nodes,
			Partitions: bodies,
			Retry:      policy,
			Logger:     engineLogger,
		})
	default:
		return nil, fmt.Errorf("unsupported search index URI scheme: %q", url.Scheme)
	}
}

// newOrchestrator wires the extractor, schema builder and orchestrator on
// top of the opened backends.
func newOrchestrator(b *backends, batchSize, workers int, documents bool) (*indexer.Orchestrator, error) {
	extractor, err := extract.New(extract.Config{
		Store:  b.store,
		Logger: logger.WithField("component", "extractor"),
	})
	if err != nil {
		return nil, err
	}

	builder, err := schema.NewBuilder(schema.Config{
		Extractor: extractor,
		Names:     schema.NewCourseNameCache(b.store),
		Logger:    logger.WithField("component", "schema-builder"),
	})
	if err != nil {
		return nil, err
	}

	return indexer.New(indexer.Config{
		Store:           b.store,
		Engine:          b.engine,
		Builder:         builder,
		BatchSize:       batchSize,
		Workers:         workers,
		EnableDocuments: documents,
		Logger:          logger.WithField("component", "indexer"),
	})
}

func getPartitionDetector(mode string) (partition.Detector, error) {
	switch {
	case mode == "single":
		return partition.Fixed{Partition: 0, NumOfPartitions: 1}, nil
	case strings.HasPrefix(mode, "dns="):
		tokens := strings.SplitN(mode, "=", 2)
		return partition.DetectFromSRVRecords(tokens[1]), nil
	default:
		return nil, fmt.Errorf("unsupported partition detector mode: %q", mode)
	}
}
