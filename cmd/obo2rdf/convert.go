package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/aleksaelezovic/obo2rdf/internal/config"
	"github.com/aleksaelezovic/obo2rdf/internal/emit"
	"github.com/aleksaelezovic/obo2rdf/internal/pipeline"
)

// convertFlags hold the command line overrides of convert
type convertFlags struct {
	inputDir     string
	include      []string
	exclude      []string
	continueFrom string
	outputDir    string
	format       string
	gzip         bool
	gzipSet      bool
	detail       string
	release      string
	emptySubject string
	storePath    string
	kafkaBrokers []string
	kafkaTopic   string
	bucketDir    string
	workers      int
	metricsOut   string
}

func convertCmd(g *globalFlags) *cobra.Command {
	var f convertFlags

	cmd := &cobra.Command{
		Use:   "convert [patterns...]",
		Short: "Convert the ontologies under the input directory",
		Long: `Convert every OBO file under the input directory that matches the include
patterns. Patterns given as arguments replace the configured ones; they are
relative to the input directory and ** matches any number of directories.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.gzipSet = cmd.Flags().Changed("gzip")
			overrides := f.overrides(args)
			return runConvert(cmd.Context(), g, overrides, f.metricsOut)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.inputDir, "input-dir", "", "Directory holding the ontology files")
	flags.StringSliceVar(&f.include, "include", nil, "Include glob patterns (default **/*.obo, **/*.obo.gz)")
	flags.StringSliceVar(&f.exclude, "exclude", nil, "Ontology abbreviations to skip")
	flags.StringVar(&f.continueFrom, "continue-from", "", "Ontology abbreviation to restart from")
	flags.StringVar(&f.outputDir, "output-dir", "", "Directory for the converted files")
	flags.StringVar(&f.format, "format", "", "Output format (nq, nt)")
	flags.BoolVar(&f.gzip, "gzip", false, "Compress the output files")
	flags.StringVar(&f.detail, "detail", "", "Detail level (min, min+, max)")
	flags.StringVar(&f.release, "release", "", "Bio2RDF release number used in dataset graph IRIs")
	flags.StringVar(&f.emptySubject, "empty-subject", "", "Statements before a stanza id (drop, emit)")
	flags.StringVar(&f.storePath, "store", "", "Also load statements into the quad store at this path")
	flags.StringSliceVar(&f.kafkaBrokers, "kafka-brokers", nil, "Also publish statements to these Kafka brokers")
	flags.StringVar(&f.kafkaTopic, "kafka-topic", "", "Kafka topic for published statements")
	flags.StringVar(&f.bucketDir, "bucket-dir", "", "Publish outputs to a filesystem bucket at this directory")
	flags.IntVar(&f.workers, "workers", 0, "Number of files converted in parallel")
	flags.StringVar(&f.metricsOut, "metrics-out", "", "Write the run's metrics in Prometheus text format to this file")

	return cmd
}

// overrides turns the flags that were set into a partial config
func (f *convertFlags) overrides(args []string) *config.Config {
	o := &config.Config{
		Detail:       f.detail,
		Release:      f.release,
		EmptySubject: f.emptySubject,
		Input: config.InputConfig{
			Dir:          f.inputDir,
			Include:      f.include,
			Exclude:      f.exclude,
			ContinueFrom: f.continueFrom,
		},
		Output: config.OutputConfig{
			Dir:    f.outputDir,
			Format: f.format,
		},
		Store:   config.StoreConfig{Path: f.storePath},
		Kafka:   emit.KafkaConfig{Brokers: f.kafkaBrokers, Topic: f.kafkaTopic},
		Bucket:  config.BucketConfig{Directory: f.bucketDir},
		Workers: f.workers,
	}
	if f.gzipSet {
		gzip := f.gzip
		o.Output.Gzip = &gzip
	}
	if len(args) > 0 {
		o.Input.Include = args
	}
	return o
}

func runConvert(ctx context.Context, g *globalFlags, overrides *config.Config, metricsOut string) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := afero.NewOsFs()
	cfg, logger, err := loadConfig(fs, g, overrides)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	if metricsOut != "" {
		defer func() {
			err = multierr.Append(err, writeMetrics(fs, metricsOut, reg))
		}()
	}

	res, err := newResolver(fs, cfg.Prefixes)
	if err != nil {
		return err
	}

	var sinks pipeline.Sinks
	if cfg.Store.Path != "" {
		ts, openErr := openStore(cfg.Store.Path, logger)
		if openErr != nil {
			return openErr
		}
		defer func() { err = multierr.Append(err, ts.Close()) }()
		sinks.Store = ts
	}
	if cfg.Kafka.Enabled() {
		producer, kafkaErr := emit.NewKafkaEmitter(ctx, cfg.Kafka, logger, reg)
		if kafkaErr != nil {
			return kafkaErr
		}
		defer func() { err = multierr.Append(err, producer.Close()) }()
		sinks.Stream = producer
	}
	bucket, err := pipeline.NewBucket(cfg.Bucket)
	if err != nil {
		return err
	}
	if bucket != nil {
		defer func() { err = multierr.Append(err, bucket.Close()) }()
		sinks.Bucket = bucket
	}

	p, err := pipeline.New(cfg, fs, res, sinks, logger, reg)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := p.Run(ctx)

	var statements, size int64
	for _, r := range results {
		statements += int64(r.Stats.Statements)
		size += r.Bytes
	}
	level.Info(logger).Log("msg", "conversion summary", "files", len(results),
		"statements", humanize.Comma(statements), "size", humanize.Bytes(uint64(size)),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return err
}
