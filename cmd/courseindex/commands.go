package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mycok/coursesearch/results"
	"github.com/mycok/coursesearch/searchindex/index"
	"github.com/mycok/coursesearch/service"
	indexersvc "github.com/mycok/coursesearch/service/indexer"
	metricssvc "github.com/mycok/coursesearch/service/metrics"
)

func runIndex(appCtx *cli.Context) error {
	ctx, cancelFn := signalContext()
	defer cancelFn()

	b, err := openBackends(ctx, appCtx.String("settings-file"), appCtx.String("content-store-uri"), appCtx.String("search-index-uri"))
	if err != nil {
		return err
	}
	defer b.Close()

	orchestrator, err := newOrchestrator(b, appCtx.Int("batch-size"), appCtx.Int("workers"), appCtx.Bool("enable-documents"))
	if err != nil {
		return err
	}

	for _, course := range appCtx.StringSlice("course") {
		stats, err := orchestrator.IndexCollection(ctx, course)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"course":    course,
			"seen":      stats.Seen,
			"submitted": stats.Submitted,
			"failed":    stats.Failed,
		}).Info("course indexed")
	}

	return nil
}

// resultView is the printed form of a search result entry.
type resultView struct {
	DisplayName string  `json:"display_name"`
	CourseID    string  `json:"course_id"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	Thumbnail   string  `json:"thumbnail"`
	Snippet     string  `json:"snippet"`
}

func runSearch(appCtx *cli.Context) error {
	ctx, cancelFn := signalContext()
	defer cancelFn()

	b, err := openBackends(ctx, appCtx.String("settings-file"), appCtx.String("content-store-uri"), appCtx.String("search-index-uri"))
	if err != nil {
		return err
	}
	defer b.Close()

	filters, err := parseFilters(appCtx.StringSlice("filter"))
	if err != nil {
		return err
	}

	q := index.Query{
		Expression: appCtx.String("query"),
		CourseID:   appCtx.String("course-id"),
		Offset:     appCtx.Uint64("offset"),
		Size:       appCtx.Uint64("size"),
	}

	for _, p := range appCtx.StringSlice("partition") {
		q.Partitions = append(q.Partitions, index.Partition(p))
	}

	raw, err := b.engine.Search(ctx, q)
	if err != nil {
		return err
	}

	var opts []results.Option
	if appCtx.Bool("match-all-filters") {
		opts = append(opts, results.WithMode(results.MatchAll))
	}

	set, err := results.Build(raw, q.Expression, results.ParseSort(appCtx.String("sort")), filters, opts...)
	if err != nil {
		return err
	}

	set.FilterAndSort()

	views := make([]resultView, 0, set.Len())
	for _, e := range set.Entries() {
		views = append(views, resultView{
			DisplayName: e.Doc.DisplayName,
			CourseID:    e.Doc.CourseID,
			URL:         e.URL,
			Score:       e.Score,
			Thumbnail:   e.Thumbnail,
			Snippet:     e.Snippet,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	return enc.Encode(views)
}

func parseFilters(specs []string) (results.Filters, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	filters := make(results.Filters, len(specs))
	for _, spec := range specs {
		field, value, found := strings.Cut(spec, "=")
		if !found || field == "" {
			return nil, fmt.Errorf("invalid filter %q, expected field=value", spec)
		}

		filters[field] = value
	}

	return filters, nil
}

func runDropPartition(appCtx *cli.Context) error {
	ctx, cancelFn := signalContext()
	defer cancelFn()

	b, err := openBackends(ctx, appCtx.String("settings-file"), appCtx.String("content-store-uri"), appCtx.String("search-index-uri"))
	if err != nil {
		return err
	}
	defer b.Close()

	p := index.Partition(appCtx.String("partition"))
	if err = b.engine.DeletePartition(ctx, p); err != nil {
		return err
	}

	logger.WithField("partition", p).Info("partition dropped")

	return nil
}

func runServe(appCtx *cli.Context) error {
	ctx, cancelFn := signalContext()
	defer cancelFn()

	b, err := openBackends(ctx, appCtx.String("settings-file"), appCtx.String("content-store-uri"), appCtx.String("search-index-uri"))
	if err != nil {
		return err
	}
	defer b.Close()

	orchestrator, err := newOrchestrator(b, appCtx.Int("batch-size"), appCtx.Int("workers"), appCtx.Bool("enable-documents"))
	if err != nil {
		return err
	}

	partDet, err := getPartitionDetector(appCtx.String("partition-detection-mode"))
	if err != nil {
		return err
	}

	svcGroup := service.NewGroup(logger)

	indexerSvc, err := indexersvc.New(indexersvc.Config{
		Indexer:           orchestrator,
		Courses:           appCtx.StringSlice("course"),
		PartitionDetector: partDet,
		UpdateInterval:    appCtx.Duration("reindex-interval"),
		Logger:            logger.WithField("service", "indexer"),
	})
	if err != nil {
		return err
	}
	svcGroup.Add(indexerSvc)

	metricsSvc, err := metricssvc.New(metricssvc.Config{
		ListenAddr: appCtx.String("metrics-addr"),
		Logger:     logger.WithField("service", "metrics"),
	})
	if err != nil {
		return err
	}
	svcGroup.Add(metricsSvc)

	if err = svcGroup.Run(ctx); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}
