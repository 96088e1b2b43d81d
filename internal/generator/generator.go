// Package generator produces synthetic scholarly knowledge graphs used as
// exploration fixtures: people author works, works cite works, and both
// attach to subjects and organizations.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tanviarora/kgexplore/internal/graph"
)

// Base namespaces of the generated graph.
const (
	BaseIRI   = "http://kgexplore.dev/resource/"
	VocabIRI  = "http://kgexplore.dev/vocab/"
	LabelPred = "http://www.w3.org/2000/01/rdf-schema#label"
	TypePred  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
)

// Vocabulary predicates and classes.
const (
	PredAuthoredBy     = VocabIRI + "authoredBy"
	PredCites          = VocabIRI + "cites"
	PredAbout          = VocabIRI + "about"
	PredAffiliatedWith = VocabIRI + "affiliatedWith"
	ClassPerson        = VocabIRI + "Person"
	ClassWork          = VocabIRI + "Work"
	ClassSubject       = VocabIRI + "Subject"
	ClassOrganization  = VocabIRI + "Organization"
)

// Config tunes dataset size and connectivity.
type Config struct {
	NumPeople        int
	NumWorks         int
	NumSubjects      int
	NumOrganizations int

	// AffiliationChance is the probability that a person joins an existing
	// organization rather than staying unaffiliated.
	AffiliationChance float64
	// CitationChance is the per-work probability of citing an earlier work.
	CitationChance float64

	Seed int64
}

// DefaultConfig returns generation defaults sized for local exploration.
func DefaultConfig() Config {
	return Config{
		NumPeople:         50,
		NumWorks:          120,
		NumSubjects:       12,
		NumOrganizations:  8,
		AffiliationChance: 0.7,
		CitationChance:    0.5,
	}
}

// Dataset contains the generated statements plus the label of every entity.
// Labels are kept out of Triples so the triple set stays IRI-to-IRI; the
// writer re-emits them as literal statements.
type Dataset struct {
	Triples []graph.Triple
	Labels  map[string]string
}

// Generator produces synthetic graph data aligned with the exploration
// vocabulary.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumPeople <= 0 {
		cfg.NumPeople = def.NumPeople
	}
	if cfg.NumWorks <= 0 {
		cfg.NumWorks = def.NumWorks
	}
	if cfg.NumSubjects <= 0 {
		cfg.NumSubjects = def.NumSubjects
	}
	if cfg.NumOrganizations <= 0 {
		cfg.NumOrganizations = def.NumOrganizations
	}
	if cfg.AffiliationChance <= 0 {
		cfg.AffiliationChance = def.AffiliationChance
	}
	if cfg.CitationChance <= 0 {
		cfg.CitationChance = def.CitationChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises the dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	ds := Dataset{Labels: make(map[string]string)}

	subjects := make([]string, g.cfg.NumSubjects)
	for i := range subjects {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		iri := fmt.Sprintf("%ssubject/%03d", BaseIRI, i+1)
		subjects[i] = iri
		ds.add(iri, TypePred, ClassSubject)
		ds.label(iri, g.fragments.subjects[i%len(g.fragments.subjects)])
	}

	orgs := make([]string, g.cfg.NumOrganizations)
	for i := range orgs {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		iri := fmt.Sprintf("%sorg/%03d", BaseIRI, i+1)
		orgs[i] = iri
		ds.add(iri, TypePred, ClassOrganization)
		ds.label(iri, g.randomOrgName())
	}

	people := make([]string, g.cfg.NumPeople)
	for i := range people {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		iri := fmt.Sprintf("%sperson/%04d", BaseIRI, i+1)
		people[i] = iri
		ds.add(iri, TypePred, ClassPerson)
		ds.label(iri, g.randomFullName())
		if g.rand.Float64() < g.cfg.AffiliationChance {
			ds.add(iri, PredAffiliatedWith, orgs[g.rand.Intn(len(orgs))])
		}
	}

	works := make([]string, g.cfg.NumWorks)
	for i := range works {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		iri := fmt.Sprintf("%swork/%05d", BaseIRI, i+1)
		works[i] = iri
		ds.add(iri, TypePred, ClassWork)
		ds.label(iri, g.randomTitle())

		authors := 1 + g.rand.Intn(3)
		for a := 0; a < authors; a++ {
			ds.add(iri, PredAuthoredBy, people[g.rand.Intn(len(people))])
		}

		topics := 1 + g.rand.Intn(2)
		for t := 0; t < topics; t++ {
			ds.add(iri, PredAbout, subjects[g.rand.Intn(len(subjects))])
		}

		if i > 0 && g.rand.Float64() < g.cfg.CitationChance {
			ds.add(iri, PredCites, works[g.rand.Intn(i)])
		}
	}

	return ds, nil
}

func (d *Dataset) add(s, p, o string) {
	if s == o {
		return
	}
	d.Triples = append(d.Triples, graph.Triple{S: s, P: p, O: o})
}

func (d *Dataset) label(iri, text string) {
	d.Labels[iri] = text
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s",
		g.fragments.first[g.rand.Intn(len(g.fragments.first))],
		g.fragments.last[g.rand.Intn(len(g.fragments.last))])
}

func (g *Generator) randomOrgName() string {
	return fmt.Sprintf("%s %s",
		g.fragments.orgPrefix[g.rand.Intn(len(g.fragments.orgPrefix))],
		g.fragments.orgSuffix[g.rand.Intn(len(g.fragments.orgSuffix))])
}

func (g *Generator) randomTitle() string {
	return fmt.Sprintf("%s %s of %s",
		g.fragments.titleLead[g.rand.Intn(len(g.fragments.titleLead))],
		g.fragments.titleNoun[g.rand.Intn(len(g.fragments.titleNoun))],
		g.fragments.subjects[g.rand.Intn(len(g.fragments.subjects))])
}

type nameFragments struct {
	first     []string
	last      []string
	subjects  []string
	orgPrefix []string
	orgSuffix []string
	titleLead []string
	titleNoun []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:     []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:      []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		subjects:  []string{"Graph Theory", "Machine Learning", "Topology", "Number Theory", "Linguistics", "Astronomy", "Genomics", "Cryptography", "Robotics", "Economics", "Climatology", "Neuroscience"},
		orgPrefix: []string{"Institute of", "University of", "Center for", "Laboratory for", "Academy of"},
		orgSuffix: []string{"Applied Sciences", "Advanced Studies", "Computation", "Natural Philosophy", "Systems Research"},
		titleLead: []string{"A Survey", "Foundations", "Applications", "A Theory", "Methods", "Principles"},
		titleNoun: []string{"and Analysis", "and Practice", "and Structure", "and Inference", "and Computation"},
	}
}
