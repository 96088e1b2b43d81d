package domain

import "strings"

// Path is an ordered sequence of edges connecting Source to Target exactly,
// with its final aggregate relevance score. Immutable once constructed.
type Path struct {
	Source string
	Target string
	Edges  []Edge
	Score  float64
}

// Hops returns the path length in edge traversals.
func (p Path) Hops() int {
	return len(p.Edges)
}

// Entities returns the entity sequence from Source to Target inclusive.
func (p Path) Entities() []string {
	entities := make([]string, 0, len(p.Edges)+1)
	entities = append(entities, p.Source)
	for _, e := range p.Edges {
		entities = append(entities, e.To)
	}
	return entities
}

// HasEntity reports whether ref appears anywhere on the path.
func (p Path) HasEntity(ref string) bool {
	if p.Source == ref {
		return true
	}
	for _, e := range p.Edges {
		if e.To == ref {
			return true
		}
	}
	return false
}

// CycleFree reports whether no entity repeats along the path.
func (p Path) CycleFree() bool {
	seen := make(map[string]struct{}, len(p.Edges)+1)
	for _, ref := range p.Entities() {
		if _, ok := seen[ref]; ok {
			return false
		}
		seen[ref] = struct{}{}
	}
	return true
}

// Signature is a stable identity for de-duplication: the full entity,
// predicate and direction sequence joined into one string.
func (p Path) Signature() string {
	var b strings.Builder
	b.WriteString(p.Source)
	for _, e := range p.Edges {
		b.WriteString("|")
		b.WriteString(string(e.Direction))
		b.WriteString("|")
		b.WriteString(e.Predicate)
		b.WriteString("|")
		b.WriteString(e.To)
	}
	return b.String()
}

// EntityKey is the lexicographic comparison key used for deterministic
// tie-breaking between equally scored, equally long paths.
func (p Path) EntityKey() string {
	return strings.Join(p.Entities(), "|")
}
