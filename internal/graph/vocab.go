package graph

// Namespace IRIs for the vocabularies the query builder relies on.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
)

// Well-known predicate IRIs.
const (
	// PredType is the rdf:type predicate.
	PredType = RDFNamespace + "type"

	// PredLabel is the rdfs:label predicate, the default label source.
	PredLabel = RDFSNamespace + "label"

	// PredSubClassOf links a class to its superclass.
	PredSubClassOf = RDFSNamespace + "subClassOf"

	// PredSeeAlso points to related resources.
	PredSeeAlso = RDFSNamespace + "seeAlso"

	// PredSameAs links equivalent entities across datasets.
	PredSameAs = OWLNamespace + "sameAs"
)

// SchemaPredicates are the schema-level connectors used as a predicate
// allowlist when a caller wants bounded expansion over high-value links
// instead of the full neighborhood.
var SchemaPredicates = []string{
	PredType,
	PredSubClassOf,
	PredSeeAlso,
	PredSameAs,
}

// DefaultPrefixes maps the prefix names accepted in label-path expressions
// to their namespace IRIs.
var DefaultPrefixes = map[string]string{
	"rdf":  RDFNamespace,
	"rdfs": RDFSNamespace,
	"owl":  OWLNamespace,
}
