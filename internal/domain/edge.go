package domain

// Direction records how a predicate was traversed relative to path order.
type Direction string

const (
	// DirectionForward means the predicate points From -> To.
	DirectionForward Direction = "forward"
	// DirectionBackward means the predicate points To -> From.
	DirectionBackward Direction = "backward"
)

// Edge is one directed, typed relation discovered from a single query row.
// From and To are in traversal order; the Direction tag preserves which way
// the predicate actually points, so rendering and de-duplication stay
// uniform regardless of which side of the search discovered the edge.
type Edge struct {
	From      string
	To        string
	Predicate string
	Label     string
	Direction Direction
}

// Reversed returns the edge as seen when walking the path the other way.
func (e Edge) Reversed() Edge {
	dir := DirectionForward
	if e.Direction == DirectionForward {
		dir = DirectionBackward
	}
	return Edge{
		From:      e.To,
		To:        e.From,
		Predicate: e.Predicate,
		Label:     e.Label,
		Direction: dir,
	}
}
