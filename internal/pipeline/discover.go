package pipeline

import (
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/aleksaelezovic/obo2rdf/internal/obo"
)

// Source is one ontology file found under the input directory
type Source struct {
	// Path is slash-separated and relative to the input directory
	Path string
	// Abbreviation is the dataset name derived from the file name
	Abbreviation string
	Compressed   bool
}

// Selection narrows the discovered files
type Selection struct {
	Include      []string
	Exclude      []string
	ContinueFrom string
}

// Discover matches the include patterns against fs, which is rooted at the
// input directory, and returns the selected sources sorted by abbreviation.
// A file matched by several patterns is returned once.
func Discover(fs afero.Fs, sel Selection) ([]Source, error) {
	fsys := afero.NewIOFS(fs)

	seen := make(map[string]bool)
	var sources []Source
	for _, pattern := range sel.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Errorf("invalid include pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "match %q", pattern)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			sources = append(sources, newSource(m))
		}
	}

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Abbreviation != sources[j].Abbreviation {
			return sources[i].Abbreviation < sources[j].Abbreviation
		}
		return sources[i].Path < sources[j].Path
	})

	return sel.apply(sources)
}

func newSource(p string) Source {
	name := path.Base(p)
	compressed := strings.HasSuffix(name, ".gz")
	name = strings.TrimSuffix(name, ".gz")
	name = strings.TrimSuffix(name, path.Ext(name))
	return Source{
		Path:         p,
		Abbreviation: obo.DatasetName(name),
		Compressed:   compressed,
	}
}

// apply drops excluded sources and everything sorted before ContinueFrom
func (sel Selection) apply(sources []Source) ([]Source, error) {
	exclude := make(map[string]bool, len(sel.Exclude))
	for _, abbv := range sel.Exclude {
		exclude[obo.DatasetName(abbv)] = true
	}
	from := obo.DatasetName(sel.ContinueFrom)

	started := from == ""
	out := sources[:0]
	for _, s := range sources {
		if !started && s.Abbreviation == from {
			started = true
		}
		if !started || exclude[s.Abbreviation] {
			continue
		}
		out = append(out, s)
	}
	if !started {
		return nil, errors.Errorf("continue_from %q matches no discovered ontology", sel.ContinueFrom)
	}
	return out, nil
}
