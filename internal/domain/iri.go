package domain

import "strings"

// LocalName returns the fragment or last path segment of an IRI, the part
// that usually reads as a human word ("authoredBy", "subClassOf"). Falls
// back to the full string when no separator is present.
func LocalName(iri string) string {
	trimmed := strings.TrimRight(iri, "/#")
	if idx := strings.LastIndexAny(trimmed, "/#"); idx >= 0 && idx+1 < len(trimmed) {
		return trimmed[idx+1:]
	}
	return trimmed
}
