// Package pathexpr resolves dotted property-path expressions such as
// "kg:authoredBy.rdfs:label" into the ordered predicate segments and
// chained triple-pattern fragments needed to traverse them in one query.
package pathexpr

import (
	"fmt"
	"regexp"
	"strings"
)

// MalformedPathError reports a path expression that cannot be parsed.
type MalformedPathError struct {
	Expr   string
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed property path %q: %s", e.Expr, e.Reason)
}

// Resolved is the immutable result of resolving one path expression.
// ID is the whitespace-stripped original expression and serves as the
// memoization key within a single exploration.
type Resolved struct {
	Segments  []string
	FinalVar  string
	Fragments []string
	ID        string
}

var (
	localNameRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	prefixRegex    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// Resolve parses a dotted path expression into predicate segments plus the
// triple-pattern fragments chaining them together. Pure and deterministic;
// no network or side effects.
//
// Grammar: segments separated by "."; each segment is a bracket-delimited
// absolute identifier ("<...>"), a prefix:localName pair, or a bare
// identifier. A bare identifier is only legal as the final segment, where
// it aliases the final variable instead of adding a predicate hop.
func Resolve(expr string) (Resolved, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Resolved{}, &MalformedPathError{Expr: expr, Reason: "empty expression"}
	}

	raw, err := splitSegments(trimmed)
	if err != nil {
		return Resolved{}, err
	}

	var (
		segments []string
		alias    string
	)
	for i, seg := range raw {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			return Resolved{}, &MalformedPathError{Expr: expr, Reason: "dangling separator"}
		}

		switch {
		case strings.HasPrefix(seg, "<"):
			if !strings.HasSuffix(seg, ">") || len(seg) < 3 {
				return Resolved{}, &MalformedPathError{Expr: expr, Reason: "unterminated bracket identifier"}
			}
			segments = append(segments, seg)
		case strings.Contains(seg, ":"):
			prefix, local, _ := strings.Cut(seg, ":")
			if !prefixRegex.MatchString(prefix) {
				return Resolved{}, &MalformedPathError{Expr: expr, Reason: fmt.Sprintf("invalid prefix %q", prefix)}
			}
			if !localNameRegex.MatchString(local) {
				return Resolved{}, &MalformedPathError{Expr: expr, Reason: fmt.Sprintf("invalid local name %q", local)}
			}
			segments = append(segments, seg)
		default:
			if !localNameRegex.MatchString(seg) {
				return Resolved{}, &MalformedPathError{Expr: expr, Reason: fmt.Sprintf("invalid identifier %q", seg)}
			}
			if i != len(raw)-1 {
				return Resolved{}, &MalformedPathError{Expr: expr, Reason: fmt.Sprintf("bare identifier %q before end of path", seg)}
			}
			alias = seg
		}
	}

	if len(segments) == 0 {
		return Resolved{}, &MalformedPathError{Expr: expr, Reason: "expression contains no predicate segment"}
	}

	finalVar := "?" + finalVarName(segments[len(segments)-1], alias)
	resolved := Resolved{
		Segments: segments,
		FinalVar: finalVar,
		ID:       stripWhitespace(expr),
	}
	resolved.Fragments = resolved.Patterns("?node")
	return resolved, nil
}

// Patterns builds the triple-pattern fragments anchored at the given
// subject variable, chaining one fresh intermediate variable per segment.
// The last fragment binds FinalVar.
func (r Resolved) Patterns(subjectVar string) []string {
	fragments := make([]string, 0, len(r.Segments))
	current := subjectVar
	for i, seg := range r.Segments {
		next := fmt.Sprintf("?pp%d", i+1)
		if i == len(r.Segments)-1 {
			next = r.FinalVar
		}
		fragments = append(fragments, fmt.Sprintf("%s %s %s .", current, seg, next))
		current = next
	}
	return fragments
}

// splitSegments splits on top-level dots, leaving dots inside <...> intact.
func splitSegments(expr string) ([]string, error) {
	var (
		segments  []string
		current   strings.Builder
		inBracket bool
	)
	for _, r := range expr {
		switch {
		case r == '<':
			if inBracket {
				return nil, &MalformedPathError{Expr: expr, Reason: "nested bracket identifier"}
			}
			inBracket = true
			current.WriteRune(r)
		case r == '>':
			inBracket = false
			current.WriteRune(r)
		case r == '.' && !inBracket:
			segments = append(segments, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	if inBracket {
		return nil, &MalformedPathError{Expr: expr, Reason: "unterminated bracket identifier"}
	}
	segments = append(segments, current.String())
	return segments, nil
}

func finalVarName(lastSegment, alias string) string {
	if alias != "" {
		return alias
	}
	name := lastSegment
	if strings.HasPrefix(name, "<") {
		name = strings.Trim(name, "<>")
		if idx := strings.LastIndexAny(name, "/#"); idx >= 0 && idx+1 < len(name) {
			name = name[idx+1:]
		}
	} else if _, local, ok := strings.Cut(name, ":"); ok {
		name = local
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "value"
	}
	return b.String()
}

func stripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
