package rdf

// Namespace IRIs used by the OBO translation
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	DCNamespace   = "http://purl.org/dc/terms/"
	VoIDNamespace = "http://rdfs.org/ns/void#"

	// Bio2RDFNamespace is the base for every qname that has no registered prefix
	Bio2RDFNamespace = "http://bio2rdf.org/"
)

// Well-known predicates and classes
var (
	RDFType = NewNamedNode(RDFNamespace + "type")

	RDFSLabel       = NewNamedNode(RDFSNamespace + "label")
	RDFSSubClassOf  = NewNamedNode(RDFSNamespace + "subClassOf")
	RDFSSubPropOf   = NewNamedNode(RDFSNamespace + "subPropertyOf")
	RDFSSeeAlso     = NewNamedNode(RDFSNamespace + "seeAlso")
	RDFSIsDefinedBy = NewNamedNode(RDFSNamespace + "isDefinedBy")

	OWLOntology        = NewNamedNode(OWLNamespace + "Ontology")
	OWLClass           = NewNamedNode(OWLNamespace + "Class")
	OWLDeprecatedClass = NewNamedNode(OWLNamespace + "DeprecatedClass")
	OWLEquivalentClass = NewNamedNode(OWLNamespace + "equivalentClass")
	OWLIntersectionOf  = NewNamedNode(OWLNamespace + "intersectionOf")
	OWLOnProperty      = NewNamedNode(OWLNamespace + "onProperty")
	OWLSomeValuesFrom  = NewNamedNode(OWLNamespace + "someValuesFrom")

	DCTitle       = NewNamedNode(DCNamespace + "title")
	DCDescription = NewNamedNode(DCNamespace + "description")
	DCIdentifier  = NewNamedNode(DCNamespace + "identifier")
	DCSource      = NewNamedNode(DCNamespace + "source")
	DCFormat      = NewNamedNode(DCNamespace + "format")
	DCCreated     = NewNamedNode(DCNamespace + "created")
	DCPublisher   = NewNamedNode(DCNamespace + "publisher")
	DCLicense     = NewNamedNode(DCNamespace + "license")

	VoIDDataset = NewNamedNode(VoIDNamespace + "Dataset")
	VoIDTriples = NewNamedNode(VoIDNamespace + "triples")
)
