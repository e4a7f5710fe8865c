// Package config loads the converter configuration from YAML files.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/obo2rdf/internal/emit"
	"github.com/aleksaelezovic/obo2rdf/internal/obo"
)

// Config is the complete converter configuration
type Config struct {
	// Detail is min, min+ or max
	Detail string `yaml:"detail"`
	// Release is the Bio2RDF release number in dataset graph IRIs
	Release string `yaml:"release"`
	// EmptySubject is drop or emit
	EmptySubject string `yaml:"empty_subject"`
	// SynonymCustomLabelExceptions lists term ids whose synonym type labels are ignored
	SynonymCustomLabelExceptions []string `yaml:"synonym_custom_label_exceptions"`

	Input    InputConfig      `yaml:"input"`
	Output   OutputConfig     `yaml:"output"`
	Store    StoreConfig      `yaml:"store"`
	Kafka    emit.KafkaConfig `yaml:"kafka"`
	Bucket   BucketConfig     `yaml:"bucket"`
	Prefixes PrefixConfig     `yaml:"prefixes"`

	Workers  int    `yaml:"workers"`
	LogLevel string `yaml:"log_level"`
}

// InputConfig selects the ontology files to convert
type InputConfig struct {
	Dir string `yaml:"dir"`
	// Include holds glob patterns relative to Dir; ** matches any depth
	Include []string `yaml:"include"`
	// Exclude lists ontology abbreviations to skip
	Exclude []string `yaml:"exclude,omitempty"`
	// ContinueFrom skips every ontology sorted before this abbreviation
	ContinueFrom string `yaml:"continue_from"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
	// Gzip is nil until a layer sets it
	Gzip *bool `yaml:"gzip,omitempty"`
}

// Compressed reports whether outputs are gzipped
func (o OutputConfig) Compressed() bool {
	return o.Gzip != nil && *o.Gzip
}

// StoreConfig enables the quad store sink when Path is set
type StoreConfig struct {
	Path string `yaml:"path"`
}

// BucketConfig enables publishing outputs when Backend is set
type BucketConfig struct {
	// Backend is filesystem or memory
	Backend   string `yaml:"backend"`
	Directory string `yaml:"directory"`
	Prefix    string `yaml:"prefix"`
}

const (
	BucketFilesystem = "filesystem"
	BucketMemory     = "memory"
)

// PrefixConfig adds namespace bases to the resolver
type PrefixConfig struct {
	// File is a YAML map of namespace to base IRI
	File string            `yaml:"file"`
	Map  map[string]string `yaml:"map,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Detail:                       "max",
		Release:                      "5",
		EmptySubject:                 "drop",
		SynonymCustomLabelExceptions: []string{"mondo:0008484"},
		Input: InputConfig{
			Dir:     ".",
			Include: []string{"**/*.obo", "**/*.obo.gz"},
		},
		Output: OutputConfig{
			Dir:    ".",
			Format: string(emit.FormatNQuads),
		},
		Kafka: emit.KafkaConfig{
			BatchSize: emit.DefaultKafkaBatchSize,
		},
		Workers:  runtime.GOMAXPROCS(0),
		LogLevel: "info",
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if _, err := obo.ParseDetail(c.Detail); err != nil {
		return errors.Wrap(err, "detail")
	}
	if _, err := obo.ParseEmptySubjectPolicy(c.EmptySubject); err != nil {
		return errors.Wrap(err, "empty_subject")
	}
	if _, err := emit.ParseFormat(c.Output.Format); err != nil {
		return errors.Wrap(err, "output.format")
	}
	if len(c.Input.Include) == 0 {
		return errors.New("input.include needs at least one pattern")
	}
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errors.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.Bucket.Backend {
	case "", BucketMemory:
	case BucketFilesystem:
		if c.Bucket.Directory == "" {
			return errors.New("bucket.directory is required for the filesystem backend")
		}
	default:
		return errors.Errorf("unknown bucket backend %q", c.Bucket.Backend)
	}
	if err := c.Kafka.Validate(); err != nil {
		return errors.Wrap(err, "kafka")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on fs, on top of the defaults
func LoadFromFile(fs afero.Fs, path string) (*Config, error) {
	return decodeFile(fs, path, DefaultConfig())
}

// decodeFile unmarshals the file at path into config
func decodeFile(fs afero.Fs, path string, config *Config) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	return config, nil
}

// SaveToFile writes the configuration as YAML, creating parent directories
func (c *Config) SaveToFile(fs afero.Fs, path string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	return errors.Wrap(afero.WriteFile(fs, path, data, os.FileMode(0o644)), "failed to write config file")
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Detail != "" {
		c.Detail = other.Detail
	}
	if other.Release != "" {
		c.Release = other.Release
	}
	if other.EmptySubject != "" {
		c.EmptySubject = other.EmptySubject
	}
	if len(other.SynonymCustomLabelExceptions) > 0 {
		c.SynonymCustomLabelExceptions = other.SynonymCustomLabelExceptions
	}

	// Input
	if other.Input.Dir != "" {
		c.Input.Dir = other.Input.Dir
	}
	if len(other.Input.Include) > 0 {
		c.Input.Include = other.Input.Include
	}
	if len(other.Input.Exclude) > 0 {
		c.Input.Exclude = other.Input.Exclude
	}
	if other.Input.ContinueFrom != "" {
		c.Input.ContinueFrom = other.Input.ContinueFrom
	}

	// Output
	if other.Output.Dir != "" {
		c.Output.Dir = other.Output.Dir
	}
	if other.Output.Format != "" {
		c.Output.Format = other.Output.Format
	}
	if other.Output.Gzip != nil {
		gzip := *other.Output.Gzip
		c.Output.Gzip = &gzip
	}

	if other.Store.Path != "" {
		c.Store.Path = other.Store.Path
	}

	// Kafka
	if len(other.Kafka.Brokers) > 0 {
		c.Kafka.Brokers = other.Kafka.Brokers
	}
	if other.Kafka.Topic != "" {
		c.Kafka.Topic = other.Kafka.Topic
	}
	if other.Kafka.ClientID != "" {
		c.Kafka.ClientID = other.Kafka.ClientID
	}
	if other.Kafka.BatchSize != 0 {
		c.Kafka.BatchSize = other.Kafka.BatchSize
	}

	// Bucket
	if other.Bucket.Backend != "" {
		c.Bucket.Backend = other.Bucket.Backend
	}
	if other.Bucket.Directory != "" {
		c.Bucket.Directory = other.Bucket.Directory
		if c.Bucket.Backend == "" {
			c.Bucket.Backend = BucketFilesystem
		}
	}
	if other.Bucket.Prefix != "" {
		c.Bucket.Prefix = other.Bucket.Prefix
	}

	// Prefixes are merged per namespace
	if other.Prefixes.File != "" {
		c.Prefixes.File = other.Prefixes.File
	}
	for ns, base := range other.Prefixes.Map {
		if c.Prefixes.Map == nil {
			c.Prefixes.Map = make(map[string]string, len(other.Prefixes.Map))
		}
		c.Prefixes.Map[ns] = base
	}

	if other.Workers != 0 {
		c.Workers = other.Workers
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
