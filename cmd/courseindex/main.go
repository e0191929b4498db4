package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	appName = "courseindex"
	appSHA  = "latest-app-git-sha" // Populated by the compiler at the linking stage.
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSHA,
		"host": host,
	})

	if err := configureAppEnv().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to an error")
		_ = os.Stderr.Sync()

		os.Exit(1)
	}
}

func configureAppEnv() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSHA
	app.Usage = "index course content and query the search index"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "content-store-uri",
			Value:   "in-memory://",
			EnvVars: []string{"CONTENT_STORE_URI"},
			Usage:   "URI for connecting to the content store (supported URI's: in-memory://, postgresql://user@host:5432/content?sslmode=disable)",
		},
		&cli.StringFlag{
			Name:    "search-index-uri",
			Value:   "in-memory://",
			EnvVars: []string{"SEARCH_INDEX_URI"},
			Usage:   "URI for connecting to the search index (supported URI's: in-memory://, es://node1:9200,...,nodeN:9200)",
		},
		&cli.StringFlag{
			Name:    "settings-file",
			EnvVars: []string{"SETTINGS_FILE"},
			Usage:   "YAML file with per-partition engine settings and retry settings",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			EnvVars: []string{"LOG_LEVEL"},
			Usage:   "Minimum level of logged entries (debug, info, warn, error)",
		},
	}

	app.Before = func(appCtx *cli.Context) error {
		level, err := logrus.ParseLevel(appCtx.String("log-level"))
		if err != nil {
			return err
		}

		logger.Logger.SetLevel(level)

		return nil
	}

	app.Commands = []*cli.Command{
		{
			Name:   "index",
			Usage:  "index every item of one or more courses",
			Flags:  indexFlags(),
			Action: runIndex,
		},
		{
			Name:  "search",
			Usage: "run a query and print the rendered results",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true, Usage: "Search expression"},
				&cli.StringFlag{Name: "course-id", Usage: "Restrict results to a course (org/course/offering)"},
				&cli.StringSliceFlag{Name: "partition", Usage: "Partitions to search. Defaults to all of them"},
				&cli.StringFlag{Name: "sort", Value: "relevance", Usage: "relevance, alphabetical or reverse-alphabetical"},
				&cli.StringSliceFlag{Name: "filter", Usage: "field=value filter, may be repeated"},
				&cli.BoolFlag{Name: "match-all-filters", Usage: "Keep only results matching every filter"},
				&cli.Uint64Flag{Name: "offset", Usage: "Number of results to skip"},
				&cli.Uint64Flag{Name: "size", Value: 20, Usage: "Number of results to return"},
			},
			Action: runSearch,
		},
		{
			Name:  "drop-partition",
			Usage: "delete every document of a partition",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "partition", Required: true, Usage: "transcript-index, problem-index or pdf-index"},
			},
			Action: runDropPartition,
		},
		{
			Name:  "serve",
			Usage: "reindex courses periodically and expose metrics",
			Flags: append(indexFlags(),
				&cli.DurationFlag{
					Name:    "reindex-interval",
					Value:   time.Hour,
					EnvVars: []string{"REINDEX_INTERVAL"},
					Usage:   "Time between subsequent indexing passes",
				},
				&cli.StringFlag{
					Name:    "metrics-addr",
					Value:   ":9090",
					EnvVars: []string{"METRICS_ADDR"},
					Usage:   "Address for exposing Prometheus metrics",
				},
				&cli.StringFlag{
					Name:    "partition-detection-mode",
					Value:   "single",
					EnvVars: []string{"PARTITION_DETECTION_MODE"},
					Usage:   "The partition detection mode to use. Supported values are 'dns=HEADLESS_SERVICE_NAME' (k8s) and 'single' (local dev mode)",
				},
			),
			Action: runServe,
		},
	}

	return app
}

func indexFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     "course",
			EnvVars:  []string{"COURSES"},
			Required: true,
			Usage:    "Course to index, may be repeated",
		},
		&cli.IntFlag{
			Name:    "batch-size",
			Value:   100,
			EnvVars: []string{"BATCH_SIZE"},
			Usage:   "Documents per bulk request",
		},
		&cli.IntFlag{
			Name:    "workers",
			Value:   runtime.NumCPU(),
			EnvVars: []string{"WORKERS"},
			Usage:   "Number of items built concurrently",
		},
		&cli.BoolFlag{
			Name:    "enable-documents",
			EnvVars: []string{"ENABLE_DOCUMENTS"},
			Usage:   "Index PDF documents linked from html items",
		},
	}
}

// signalContext returns a context cancelled on SIGINT or SIGHUP.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancelFn := context.WithCancel(context.Background())

	go func() {
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, syscall.SIGINT, syscall.SIGHUP)
		defer signal.Stop(signalChan)

		select {
		case s := <-signalChan:
			logger.WithField("signal", s.String()).Info("shutting down due to signal")
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return ctx, cancelFn
}
