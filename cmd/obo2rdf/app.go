package main

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/afero"

	"github.com/aleksaelezovic/obo2rdf/internal/config"
	"github.com/aleksaelezovic/obo2rdf/internal/encoding"
	"github.com/aleksaelezovic/obo2rdf/internal/resolver"
	"github.com/aleksaelezovic/obo2rdf/internal/storage"
	"github.com/aleksaelezovic/obo2rdf/pkg/store"
)

// newLogger returns a logfmt logger writing to w that drops lines below levelName
func newLogger(w io.Writer, levelName string) log.Logger {
	var opt level.Option
	switch levelName {
	case "debug":
		opt = level.AllowDebug()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		opt = level.AllowInfo()
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, opt)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// loadConfig loads the layered configuration with overrides applied last and
// returns it with a logger at the configured level.
func loadConfig(fs afero.Fs, g *globalFlags, overrides *config.Config) (*config.Config, log.Logger, error) {
	if g.logLevel != "" {
		overrides.LogLevel = g.logLevel
	}

	bootstrap := newLogger(os.Stderr, "warn")
	cfg, err := config.NewLoader(fs, bootstrap).Load(g.configPath, overrides)
	if err != nil {
		return nil, nil, err
	}
	return cfg, newLogger(os.Stderr, cfg.LogLevel), nil
}

// newResolver builds the qname resolver from the prefix file and inline map;
// inline entries win.
func newResolver(fs afero.Fs, cfg config.PrefixConfig) (*resolver.Registry, error) {
	prefixes := make(map[string]string)
	if cfg.File != "" {
		loaded, err := resolver.LoadPrefixFile(fs, cfg.File)
		if err != nil {
			return nil, err
		}
		for ns, base := range loaded {
			prefixes[ns] = base
		}
	}
	for ns, base := range cfg.Map {
		prefixes[ns] = base
	}
	return resolver.New(prefixes, resolver.DefaultCacheSize)
}

// openStore opens the badger quad store at path
func openStore(path string, logger log.Logger) (*store.TripleStore, error) {
	badgerStorage, err := storage.NewBadgerStorage(path, logger)
	if err != nil {
		return nil, err
	}
	return store.NewTripleStore(badgerStorage, encoding.NewTermEncoder(), encoding.NewTermDecoder()), nil
}

// writeMetrics dumps every metric family of g in the text exposition format
func writeMetrics(fs afero.Fs, path string, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}

	f, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, "create metrics file")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			_ = f.Close()
			return errors.Wrap(err, "write metrics")
		}
	}
	return errors.Wrap(f.Close(), "close metrics file")
}
