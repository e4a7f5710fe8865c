package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/aleksaelezovic/obo2rdf/internal/config"
	"github.com/aleksaelezovic/obo2rdf/internal/obo"
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
	"github.com/aleksaelezovic/obo2rdf/pkg/store"
)

func describeCmd(g *globalFlags) *cobra.Command {
	var (
		storePath string
		incoming  bool
	)

	cmd := &cobra.Command{
		Use:   "describe <qname-or-iri>",
		Short: "Print the stored statements about a term",
		Long: `Print every statement in the quad store whose subject is the given term,
as N-Quads. The term is an IRI or a qname such as GO:0005634, expanded the
same way the converter expands it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ts, res, err := openConfiguredStore(g, storePath)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, ts.Close()) }()

			term := subjectTerm(res, args[0])
			n, err := describe(cmd.OutOrStdout(), ts, &store.Pattern{Subject: term})
			if err != nil {
				return err
			}
			if incoming {
				m, err := describe(cmd.OutOrStdout(), ts, &store.Pattern{Object: term})
				if err != nil {
					return err
				}
				n += m
			}
			if n == 0 {
				return errors.Errorf("no statements about %s", term)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "Path of the quad store (default: store.path from the config)")
	cmd.Flags().BoolVar(&incoming, "incoming", false, "Also print statements that have the term as object")
	return cmd
}

func graphsCmd(g *globalFlags) *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "List the dataset graphs in the quad store with their statement counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ts, _, err := openConfiguredStore(g, storePath)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, ts.Close()) }()

			counts, err := ts.GraphCounts()
			if err != nil {
				return err
			}
			return printGraphCounts(cmd.OutOrStdout(), counts)
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "Path of the quad store (default: store.path from the config)")
	return cmd
}

// openConfiguredStore opens the store named by the flag or the configuration
func openConfiguredStore(g *globalFlags, storePath string) (*store.TripleStore, obo.Resolver, error) {
	fs := afero.NewOsFs()
	cfg, logger, err := loadConfig(fs, g, &config.Config{Store: config.StoreConfig{Path: storePath}})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.Path == "" {
		return nil, nil, errors.New("no quad store configured; pass --store or set store.path")
	}

	res, err := newResolver(fs, cfg.Prefixes)
	if err != nil {
		return nil, nil, err
	}
	ts, err := openStore(cfg.Store.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	return ts, res, nil
}

// subjectTerm reads arg as an absolute IRI or as a qname
func subjectTerm(res obo.Resolver, arg string) *rdf.NamedNode {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return rdf.NewNamedNode(arg)
	}
	return rdf.NewNamedNode(res.IRI(res.ParseQName(arg)))
}

// describe writes the statements matching pattern as N-Quads and returns how many there were
func describe(w io.Writer, ts *store.TripleStore, pattern *store.Pattern) (n int, err error) {
	it, err := ts.Query(pattern)
	if err != nil {
		return 0, errors.Wrap(err, "query store")
	}
	defer func() { err = multierr.Append(err, it.Close()) }()

	var line strings.Builder
	for it.Next() {
		quad, err := it.Quad()
		if err != nil {
			return n, errors.Wrap(err, "decode statement")
		}
		line.Reset()
		rdf.WriteQuadCanonical(&line, quad)
		if _, err := io.WriteString(w, line.String()); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func printGraphCounts(w io.Writer, counts map[string]int64) error {
	graphs := make([]string, 0, len(counts))
	for g := range counts {
		graphs = append(graphs, g)
	}
	sort.Strings(graphs)

	for _, g := range graphs {
		name := "<" + g + ">"
		if g == "" {
			name = "DEFAULT"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n", humanize.Comma(counts[g]), name); err != nil {
			return err
		}
	}
	return nil
}
