package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/aleksaelezovic/obo2rdf/internal/emit"
	"github.com/aleksaelezovic/obo2rdf/internal/obo"
	"github.com/aleksaelezovic/obo2rdf/pkg/rdf"
)

// DescriptionFile lists every source and output file of a run
const DescriptionFile = "bio2rdf-bioportal.nq"

const (
	bioportalDownload = "http://data.bioontology.org/ontologies/%s/download"
	bio2rdfDownload   = "http://download.bio2rdf.org/release/%s/bioportal/%s"
	sourcePublisher   = "http://www.bioontology.org"
	sourceLicense     = "http://www.bioontology.org/terms"
	outputPublisher   = "http://bio2rdf.org"
	outputLicense     = "http://creativecommons.org/licenses/by/3.0/"
	identifiersOrg    = "http://identifiers.org/"
)

// Describe returns the statements describing one converted file: the
// BioPortal source it came from and the Bio2RDF output it produced.
func Describe(res Result, release string, format emit.Format, compressed bool) []*rdf.Quad {
	graph := rdf.NewDefaultGraph()
	abbv := res.Source.Abbreviation

	source := rdf.NewNamedNode(fmt.Sprintf(bioportalDownload, strings.ToUpper(abbv)))
	output := rdf.NewNamedNode(fmt.Sprintf(bio2rdfDownload, release, res.Output))

	quads := []*rdf.Quad{
		rdf.NewQuad(source, rdf.DCTitle, rdf.NewLiteral(abbv), graph),
		rdf.NewQuad(source, rdf.DCFormat, rdf.NewLiteral("obo"), graph),
		rdf.NewQuad(source, rdf.DCPublisher, rdf.NewNamedNode(sourcePublisher), graph),
		rdf.NewQuad(source, rdf.DCLicense, rdf.NewNamedNode(sourceLicense), graph),
		rdf.NewQuad(source, rdf.DCIdentifier, rdf.NewNamedNode(identifiersOrg+abbv), graph),

		rdf.NewQuad(output, rdf.RDFType, rdf.VoIDDataset, graph),
		rdf.NewQuad(output, rdf.DCTitle, rdf.NewLiteral(fmt.Sprintf("Bio2RDF v%s RDF version of %s", release, abbv)), graph),
		rdf.NewQuad(output, rdf.DCSource, source, graph),
		rdf.NewQuad(output, rdf.DCCreated,
			rdf.NewLiteralWithDatatype(res.Created.UTC().Format("2006-01-02T15:04:05Z"), rdf.XSDDateTime), graph),
		rdf.NewQuad(output, rdf.DCPublisher, rdf.NewNamedNode(outputPublisher), graph),
		rdf.NewQuad(output, rdf.DCLicense, rdf.NewNamedNode(outputLicense), graph),
		rdf.NewQuad(output, rdf.VoIDTriples, rdf.NewIntegerLiteral(int64(res.Stats.Statements)), graph),
	}

	if compressed {
		quads = append(quads, rdf.NewQuad(output, rdf.DCFormat, rdf.NewLiteral("application/gzip"), graph))
	}
	mediaType := "application/n-quads"
	if format == emit.FormatNTriples {
		mediaType = "application/n-triples"
	}
	quads = append(quads,
		rdf.NewQuad(output, rdf.DCFormat, rdf.NewLiteral(mediaType), graph),
		rdf.NewQuad(output, rdf.DCIdentifier, rdf.NewNamedNode(obo.OntologyIRI(abbv)), graph),
	)
	return quads
}

// writeDescription writes the description of every converted file and uploads it
func (p *Pipeline) writeDescription(ctx context.Context, results []Result) error {
	f, err := p.outputFs.Create(DescriptionFile)
	if err != nil {
		return errors.Wrap(err, "create dataset description")
	}

	w := emit.NewNQuadsWriter(f, emit.FormatNQuads, false)
	for _, res := range results {
		if err := w.Emit(Describe(res, p.cfg.Release, p.format, p.cfg.Output.Compressed())); err != nil {
			_ = f.Close()
			return errors.Wrap(err, "write dataset description")
		}
	}
	if err := multierr.Combine(w.Close(), f.Close()); err != nil {
		return errors.Wrap(err, "write dataset description")
	}

	return p.upload(ctx, DescriptionFile)
}
