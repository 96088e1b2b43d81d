// Package render turns a selected path set into the deterministic
// human-readable path tree shown to callers.
package render

import (
	"fmt"
	"strings"

	"github.com/tanviarora/kgexplore/internal/domain"
)

// treeNode groups paths by their shared entity-sequence prefix. Children
// keep first-seen order, which is the selection order of the input paths.
type treeNode struct {
	key      string
	step     string
	entity   string
	label    string
	children []*treeNode

	terminal bool
	score    float64
	hops     int
}

// Tree renders paths rooted at source as an indented tree with a summary
// header. total is the number of candidate paths before result selection.
// An empty path set yields the explicit no-path message.
func Tree(paths []domain.Path, total int, source, target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Path Tree: %s -> %s\n", display(source), display(target))

	if len(paths) == 0 {
		b.WriteString("No paths found\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Showing %d of %d paths\n\n", len(paths), total)

	root := &treeNode{entity: source}
	for _, p := range paths {
		insert(root, p)
	}

	b.WriteString(display(root.entity))
	b.WriteString(suffix(root))
	b.WriteString("\n")
	writeChildren(&b, root, "")
	return b.String()
}

func insert(root *treeNode, p domain.Path) {
	cur := root
	for _, e := range p.Edges {
		key := string(e.Direction) + "|" + e.Predicate + "|" + e.To
		var next *treeNode
		for _, c := range cur.children {
			if c.key == key {
				next = c
				break
			}
		}
		if next == nil {
			next = &treeNode{
				key:    key,
				step:   step(e),
				entity: e.To,
				label:  e.Label,
			}
			cur.children = append(cur.children, next)
		}
		cur = next
	}
	if !cur.terminal || p.Score > cur.score {
		cur.terminal = true
		cur.score = p.Score
		cur.hops = p.Hops()
	}
}

func writeChildren(b *strings.Builder, n *treeNode, prefix string) {
	for i, c := range n.children {
		last := i == len(n.children)-1
		branch, extend := "├─ ", "│  "
		if last {
			branch, extend = "└─ ", "   "
		}
		b.WriteString(prefix)
		b.WriteString(branch)
		b.WriteString(c.step)
		b.WriteString(" ")
		b.WriteString(display(c.entity))
		if c.label != "" {
			fmt.Fprintf(b, " %q", c.label)
		}
		b.WriteString(suffix(c))
		b.WriteString("\n")
		writeChildren(b, c, prefix+extend)
	}
}

// step renders one traversal arrow, preserving which way the predicate
// points.
func step(e domain.Edge) string {
	pred := domain.LocalName(e.Predicate)
	if e.Direction == domain.DirectionBackward {
		return "<-[" + pred + "]-"
	}
	return "-[" + pred + "]->"
}

func suffix(n *treeNode) string {
	if !n.terminal {
		return ""
	}
	unit := "hops"
	if n.hops == 1 {
		unit = "hop"
	}
	return fmt.Sprintf("  (score %.2f, %d %s)", n.score, n.hops, unit)
}

func display(ref string) string {
	return domain.LocalName(ref)
}
