package explore

import (
	"container/heap"

	"github.com/tanviarora/kgexplore/internal/domain"
)

// node is one frontier entry: an entity plus the best-known path from the
// frontier's origin to it. Owned exclusively by one in-progress search.
type node struct {
	entity   string
	depth    int
	path     []domain.Edge
	scoreSum float64
}

// avgScore is the running average of per-hop relevance scores. Origin
// nodes score a perfect average so they always expand first.
func (n *node) avgScore() float64 {
	if n.depth == 0 {
		return 1
	}
	return n.scoreSum / float64(n.depth)
}

// nodeHeap is a max-heap ordered by average score, then shallower depth,
// then entity for determinism.
type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	si, sj := h[i].avgScore(), h[j].avgScore()
	if si != sj {
		return si > sj
	}
	if h[i].depth != h[j].depth {
		return h[i].depth < h[j].depth
	}
	return h[i].entity < h[j].entity
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// frontier is one side of the bidirectional search: a best-first queue plus
// the visited-set discipline for that origin. The two frontiers of a search
// keep independent visited sets; revisiting an entity from the opposite
// direction is the success condition, not a duplicate.
type frontier struct {
	origin    string
	queue     nodeHeap
	visited   map[string]*node
	exhausted bool
}

func newFrontier(origin string) *frontier {
	root := &node{entity: origin}
	f := &frontier{
		origin:  origin,
		visited: map[string]*node{origin: root},
	}
	heap.Push(&f.queue, root)
	return f
}

// add enqueues the node unless the entity was already visited on this
// frontier at an equal or shallower depth. Returns whether it was accepted.
func (f *frontier) add(n *node) bool {
	if existing, ok := f.visited[n.entity]; ok && existing.depth <= n.depth {
		return false
	}
	f.visited[n.entity] = n
	heap.Push(&f.queue, n)
	return true
}

// popBatch removes up to limit expandable nodes below the depth cap,
// skipping entries superseded by a shallower rediscovery.
func (f *frontier) popBatch(limit, depthCap int) []*node {
	var batch []*node
	for len(batch) < limit && f.queue.Len() > 0 {
		n := heap.Pop(&f.queue).(*node)
		if current, ok := f.visited[n.entity]; !ok || current != n {
			continue
		}
		if n.depth >= depthCap {
			continue
		}
		batch = append(batch, n)
	}
	return batch
}

// peek returns the most promising queued node without removing it,
// discarding entries superseded by a shallower rediscovery.
func (f *frontier) peek() (*node, bool) {
	for f.queue.Len() > 0 {
		n := f.queue[0]
		if current, ok := f.visited[n.entity]; !ok || current != n {
			heap.Pop(&f.queue)
			continue
		}
		return n, true
	}
	return nil, false
}

func (f *frontier) done() bool {
	return f.exhausted || f.queue.Len() == 0
}
