// Package resolver turns qualified names into IRIs following the Bio2RDF
// naming convention: any namespace without a registered base expands to
// http://bio2rdf.org/<ns>:<id>.
package resolver

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// DefaultCacheSize bounds the number of memoized expansions.
const DefaultCacheSize = 1 << 16

// wellKnown namespaces expand to their W3C/DC base IRI rather than to bio2rdf.org.
var wellKnown = map[string]string{
	"rdf":     rdf.RDFNamespace,
	"rdfs":    rdf.RDFSNamespace,
	"owl":     rdf.OWLNamespace,
	"xsd":     rdf.XSDNamespace,
	"dc":      rdf.DCNamespace,
	"dcterms": rdf.DCNamespace,
	"void":    rdf.VoIDNamespace,
}

// Registry resolves qualified names. It is safe for concurrent use.
type Registry struct {
	prefixes map[string]string
	cache    *lru.Cache[string, string]
}

// New returns a Registry with the well-known prefixes plus overrides.
// Override keys are matched case-insensitively.
func New(overrides map[string]string, cacheSize int) (*Registry, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "create expansion cache")
	}

	prefixes := make(map[string]string, len(wellKnown)+len(overrides))
	for ns, base := range wellKnown {
		prefixes[ns] = base
	}
	for ns, base := range overrides {
		ns = strings.ToLower(strings.TrimSpace(ns))
		if ns == "" || base == "" {
			return nil, errors.Errorf("invalid prefix mapping %q -> %q", ns, base)
		}
		prefixes[ns] = base
	}

	return &Registry{prefixes: prefixes, cache: cache}, nil
}

// LoadPrefixFile reads a flat YAML mapping of namespace to base IRI.
func LoadPrefixFile(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "read prefix file %s", path)
	}

	var prefixes map[string]string
	if err := yaml.Unmarshal(data, &prefixes); err != nil {
		return nil, errors.Wrapf(err, "parse prefix file %s", path)
	}
	return prefixes, nil
}

// ParseQName splits qname at its first colon. The namespace is lowercased;
// a qname without a colon yields an empty namespace and the whole input as id.
func (r *Registry) ParseQName(qname string) (string, string) {
	qname = strings.TrimSpace(qname)
	ns, id, ok := strings.Cut(qname, ":")
	if !ok {
		return "", qname
	}
	return strings.ToLower(strings.TrimSpace(ns)), strings.TrimSpace(id)
}

// IRI expands ns:id. Absolute http(s) IRIs that were split as qnames are
// passed through unchanged.
func (r *Registry) IRI(ns, id string) string {
	key := ns + ":" + id
	if iri, ok := r.cache.Get(key); ok {
		return iri
	}

	var iri string
	switch base, ok := r.prefixes[ns]; {
	case (ns == "http" || ns == "https") && strings.HasPrefix(id, "//"):
		iri = key
	case ok:
		iri = base + id
	default:
		iri = rdf.Bio2RDFNamespace + key
	}

	r.cache.Add(key, iri)
	return iri
}

// Base returns the registered base IRI for ns, if any.
func (r *Registry) Base(ns string) (string, bool) {
	base, ok := r.prefixes[strings.ToLower(ns)]
	return base, ok
}
