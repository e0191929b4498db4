// Package config loads the search engine settings file: per-partition
// shard, replica and mapping settings plus the retry behaviour of engine
// calls.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mycok/coursesearch/retry"
	"github.com/mycok/coursesearch/searchindex/index"
)

// Settings is the content of the engine settings file.
type Settings struct {
	Partitions map[index.Partition]PartitionSettings `yaml:"partitions"`
	Retry      RetrySettings                         `yaml:"retry"`
}

// PartitionSettings configures a single search engine partition.
type PartitionSettings struct {
	Shards   int                    `yaml:"shards"`
	Replicas int                    `yaml:"replicas"`
	Mappings map[string]interface{} `yaml:"mappings"`
}

// RetrySettings configures retries of search engine calls.
type RetrySettings struct {
	MaxAttempts      int           `yaml:"max_attempts"`
	InitialInterval  time.Duration `yaml:"initial_interval"`
	MaxInterval      time.Duration `yaml:"max_interval"`
	BreakerThreshold uint32        `yaml:"breaker_threshold"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout"`
}

// Load reads and validates the settings file at path. A missing or
// unparsable file is an error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes and validates settings. References of the form ${VAR} and
// ${VAR:-default} are replaced with environment values first.
func Parse(data []byte) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(expandEnvVars(data), &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}

	s.ApplyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return &s, nil
}

// Default returns the settings used when no settings file is given.
func Default() *Settings {
	var s Settings
	s.ApplyDefaults()

	return &s
}

// ApplyDefaults adds every known partition that is not configured, with a
// single shard and no replicas.
func (s *Settings) ApplyDefaults() {
	if s.Partitions == nil {
		s.Partitions = make(map[index.Partition]PartitionSettings, len(index.Partitions))
	}

	for _, p := range index.Partitions {
		ps := s.Partitions[p]
		if ps.Shards == 0 {
			ps.Shards = 1
		}

		s.Partitions[p] = ps
	}
}

// Validate reports every problem with the settings.
func (s *Settings) Validate() error {
	var err error

	known := make(map[index.Partition]bool, len(index.Partitions))
	for _, p := range index.Partitions {
		known[p] = true
	}

	for _, p := range s.sortedPartitions() {
		ps := s.Partitions[p]

		if !known[p] {
			err = multierror.Append(err, fmt.Errorf("unknown partition %q", p))
		}

		if ps.Shards < 1 {
			err = multierror.Append(err, fmt.Errorf("invalid value for %s shards, must be >= 1", p))
		}

		if ps.Replicas < 0 {
			err = multierror.Append(err, fmt.Errorf("invalid value for %s replicas, must be >= 0", p))
		}
	}

	if s.Retry.MaxAttempts < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for retry max attempts, must be >= 0"))
	}

	if s.Retry.InitialInterval < 0 || s.Retry.MaxInterval < 0 || s.Retry.BreakerTimeout < 0 {
		err = multierror.Append(err, fmt.Errorf("invalid value for retry intervals, must be >= 0"))
	}

	return err
}

// CreateBodies renders the index creation request body of every partition.
func (s *Settings) CreateBodies() (map[index.Partition][]byte, error) {
	bodies := make(map[index.Partition][]byte, len(s.Partitions))

	for p, ps := range s.Partitions {
		body := map[string]interface{}{
			"settings": map[string]interface{}{
				"number_of_shards":   ps.Shards,
				"number_of_replicas": ps.Replicas,
			},
		}

		if len(ps.Mappings) > 0 {
			body["mappings"] = ps.Mappings
		}

		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("render %s settings: %w", p, err)
		}

		bodies[p] = b
	}

	return bodies, nil
}

// RetryPolicy builds the retry policy for calls to the named system.
func (s *Settings) RetryPolicy(name string, clk clock.Clock, logger *logrus.Entry) (*retry.Policy, error) {
	return retry.New(retry.Config{
		Name:             name,
		MaxAttempts:      s.Retry.MaxAttempts,
		InitialInterval:  s.Retry.InitialInterval,
		MaxInterval:      s.Retry.MaxInterval,
		BreakerThreshold: s.Retry.BreakerThreshold,
		BreakerTimeout:   s.Retry.BreakerTimeout,
		Clock:            clk,
		Logger:           logger,
	})
}

func (s *Settings) sortedPartitions() []index.Partition {
	out := make([]index.Partition, 0, len(s.Partitions))
	for p := range s.Partitions {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		name, fallback, hasFallback := strings.Cut(expr, ":-")

		val := os.Getenv(name)
		if val == "" && hasFallback {
			val = fallback
		}

		return []byte(val)
	})
}
