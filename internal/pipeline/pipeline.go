// Package pipeline converts a directory of OBO ontologies into RDF files,
// one Translator per file, and records a dataset description for the run.
package pipeline

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/afero"
	"github.com/thanos-io/objstore"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/aleksaelezovic/obo2rdf/internal/config"
	"github.com/aleksaelezovic/obo2rdf/internal/emit"
	"github.com/aleksaelezovic/obo2rdf/internal/obo"
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
	"github.com/aleksaelezovic/obo2rdf/pkg/store"
)

const (
	outcomeConverted = "converted"
	outcomeFailed    = "failed"
)

// Sinks are the optional destinations shared by every file of a run
type Sinks struct {
	// Store receives every statement; each dataset graph is replaced on reconversion
	Store *store.TripleStore
	// Stream receives every statement, e.g. a Kafka producer. It is not closed by the pipeline.
	Stream obo.Emitter
	// Bucket receives the output files and the dataset description
	Bucket objstore.Bucket
}

// Pipeline converts the files selected by its configuration
type Pipeline struct {
	cfg      *config.Config
	inputFs  afero.Fs
	outputFs afero.Fs
	resolver obo.Resolver
	sinks    Sinks
	logger   log.Logger

	detail       obo.Detail
	emptySubject obo.EmptySubjectPolicy
	format       emit.Format

	metrics    *obo.Metrics
	filesTotal *prometheus.CounterVec

	now func() time.Time
}

// New creates a pipeline reading cfg.Input.Dir and writing cfg.Output.Dir on fs.
// Metrics are registered on reg when it is not nil.
func New(cfg *config.Config, fs afero.Fs, resolver obo.Resolver, sinks Sinks, logger log.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}

	// Validate guarantees these parse
	detail, _ := obo.ParseDetail(cfg.Detail)
	emptySubject, _ := obo.ParseEmptySubjectPolicy(cfg.EmptySubject)
	format, _ := emit.ParseFormat(cfg.Output.Format)

	inputDir, err := absDir(fs, cfg.Input.Dir)
	if err != nil {
		return nil, err
	}
	outputDir, err := absDir(fs, cfg.Output.Dir)
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", outputDir)
	}

	return &Pipeline{
		cfg:          cfg,
		inputFs:      afero.NewReadOnlyFs(afero.NewBasePathFs(fs, inputDir)),
		outputFs:     afero.NewBasePathFs(fs, outputDir),
		resolver:     resolver,
		sinks:        sinks,
		logger:       logger,
		detail:       detail,
		emptySubject: emptySubject,
		format:       format,
		metrics:      obo.NewMetrics(reg),
		filesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "obo2rdf_files_total",
			Help: "Total number of ontology files processed, by outcome.",
		}, []string{"outcome"}),
		now: time.Now,
	}, nil
}

// absDir makes dir absolute for the host filesystem; in-memory filesystems
// take the path as given.
func absDir(fs afero.Fs, dir string) (string, error) {
	if _, ok := fs.(*afero.OsFs); !ok || filepath.IsAbs(dir) {
		return dir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", dir)
	}
	return abs, nil
}

// Result describes one converted file
type Result struct {
	Source Source
	// Output is the name of the written file relative to the output directory
	Output   string
	Bytes    int64
	Stats    obo.Stats
	Duration time.Duration
	Created  time.Time
}

// Discover lists the sources selected by the configuration
func (p *Pipeline) Discover() ([]Source, error) {
	return Discover(p.inputFs, Selection{
		Include:      p.cfg.Input.Include,
		Exclude:      p.cfg.Input.Exclude,
		ContinueFrom: p.cfg.Input.ContinueFrom,
	})
}

// Run converts every selected source with up to cfg.Workers files in flight.
// A failing file does not stop the others; the failures are returned
// together once the run is over. The dataset description lists the files
// that were converted.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	sources, err := p.Discover()
	if err != nil {
		return nil, err
	}
	level.Info(p.logger).Log("msg", "discovered ontologies", "files", len(sources), "workers", p.cfg.Workers)

	var (
		mu       sync.Mutex
		results  = make([]*Result, len(sources))
		failures error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := p.Convert(gctx, src)
			if err != nil {
				p.filesTotal.WithLabelValues(outcomeFailed).Inc()
				level.Error(p.logger).Log("msg", "conversion failed", "file", src.Path, "err", err)
				mu.Lock()
				failures = multierr.Append(failures, errors.Wrapf(err, "convert %s", src.Path))
				mu.Unlock()
				return nil
			}
			p.filesTotal.WithLabelValues(outcomeConverted).Inc()
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	converted := make([]Result, 0, len(results))
	var statements int64
	for _, r := range results {
		if r != nil {
			converted = append(converted, *r)
			statements += int64(r.Stats.Statements)
		}
	}

	if len(converted) > 0 {
		if err := p.writeDescription(ctx, converted); err != nil {
			failures = multierr.Append(failures, err)
		}
	}

	level.Info(p.logger).Log("msg", "run finished", "converted", len(converted), "failed", len(multierr.Errors(failures)),
		"statements", humanize.Comma(statements))
	return converted, failures
}

// Convert translates one source into its output file and the shared sinks
func (p *Pipeline) Convert(ctx context.Context, src Source) (res Result, err error) {
	start := p.now()
	logger := log.With(p.logger, "ontology", src.Abbreviation)

	in, err := p.inputFs.Open(src.Path)
	if err != nil {
		return res, errors.Wrap(err, "open source")
	}
	defer in.Close()

	var r io.Reader = in
	if src.Compressed {
		gz, err := gzip.NewReader(in)
		if err != nil {
			return res, errors.Wrap(err, "open gzip stream")
		}
		defer gz.Close()
		r = gz
	}

	tr := obo.NewTranslator(p.resolver, obo.Options{
		Abbreviation:                 src.Abbreviation,
		Release:                      p.cfg.Release,
		Detail:                       p.detail,
		EmptySubject:                 p.emptySubject,
		SynonymCustomLabelExceptions: p.cfg.SynonymCustomLabelExceptions,
		Logger:                       p.logger,
		Metrics:                      p.metrics,
	})

	outName := src.Abbreviation + p.format.Extension(p.cfg.Output.Compressed())
	out, err := p.outputFs.Create(outName)
	if err != nil {
		return res, errors.Wrap(err, "create output")
	}
	writer := emit.NewNQuadsWriter(out, p.format, p.cfg.Output.Compressed())

	emitters := []obo.Emitter{writer}
	if p.sinks.Store != nil {
		se := emit.NewStoreEmitter(p.sinks.Store, 0)
		// The default graph is shared by every dataset and is never cleared
		if graph, ok := tr.Graph().(*rdf.NamedNode); ok {
			removed, err := se.ReplaceGraph(graph)
			if err != nil {
				_ = out.Close()
				return res, err
			}
			if removed > 0 {
				level.Info(logger).Log("msg", "replaced stored dataset graph", "removed", humanize.Comma(removed))
			}
		}
		emitters = append(emitters, se)
	}
	if p.sinks.Stream != nil {
		// Wrapped so that closing this file's sinks leaves the shared stream open
		emitters = append(emitters, obo.EmitterFunc(p.sinks.Stream.Emit))
	}
	tee := emit.NewTee(emitters...)

	stats, err := tr.Translate(r, tee)
	err = multierr.Combine(err, tee.Close(), out.Close())
	if err != nil {
		return res, err
	}

	info, err := p.outputFs.Stat(outName)
	if err != nil {
		return res, errors.Wrap(err, "stat output")
	}

	res = Result{
		Source:   src,
		Output:   outName,
		Bytes:    info.Size(),
		Stats:    stats,
		Duration: p.now().Sub(start),
		Created:  p.now(),
	}

	if err := p.upload(ctx, outName); err != nil {
		return res, err
	}

	level.Info(logger).Log("msg", "converted", "file", src.Path, "output", outName,
		"statements", humanize.Comma(int64(stats.Statements)), "size", humanize.Bytes(uint64(res.Bytes)),
		"dropped", stats.Dropped, "duration", res.Duration)
	return res, nil
}

// upload copies an output file to the bucket, if one is configured
func (p *Pipeline) upload(ctx context.Context, name string) error {
	if p.sinks.Bucket == nil {
		return nil
	}
	f, err := p.outputFs.Open(name)
	if err != nil {
		return errors.Wrap(err, "open output for upload")
	}
	defer f.Close()

	object := path.Join(p.cfg.Bucket.Prefix, name)
	if err := p.sinks.Bucket.Upload(ctx, object, f); err != nil {
		return errors.Wrapf(err, "upload %s", object)
	}
	return nil
}
