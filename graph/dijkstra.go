package graph

import (
	"container/heap"
	"math"
)

// Dijkstra computes the shortest-path distance from source to every node
// in the map, along with a predecessor map for path reconstruction.
// Unreachable nodes have distance +Inf and no predecessor entry. A source
// with no neighbors (or one absent from the map) gets its own zero
// distance, with every other node in the map left at +Inf.
func (a Adjacency) Dijkstra(source string) (map[string]float64, map[string]string) {
	dists := make(map[string]float64, len(a))
	prev := make(map[string]string)
	for key := range a {
		dists[key] = math.Inf(1)
	}
	dists[source] = 0

	pq := &distQueue{{key: source, dist: 0}}
	visited := make(map[string]bool, len(a))

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(distEntry)
		if visited[cur.key] {
			continue
		}
		visited[cur.key] = true

		for neighbor, weight := range a[cur.key] {
			if visited[neighbor] {
				continue
			}
			if d := cur.dist + weight; d < dists[neighbor] {
				dists[neighbor] = d
				prev[neighbor] = cur.key
				heap.Push(pq, distEntry{key: neighbor, dist: d})
			}
		}
	}
	return dists, prev
}

// BestSource runs Dijkstra from every node and picks the node whose sum of
// finite distances to all other nodes is smallest. Infinite distances
// contribute nothing to a node's total, so an unreachable straggler (which
// should not exist once the graph is reduced to one component) cannot
// poison an otherwise good source. Ties go to the smallest key.
//
// Every per-source distance map is returned alongside the best key, since
// computing them is the dominant cost and callers typically want them.
func (a Adjacency) BestSource() (string, map[string]map[string]float64) {
	all := make(map[string]map[string]float64, len(a))
	best := ""
	bestTotal := math.Inf(1)

	for _, source := range a.Keys() {
		dists, _ := a.Dijkstra(source)
		all[source] = dists

		total := 0.0
		for _, d := range dists {
			if !math.IsInf(d, 1) {
				total += d
			}
		}
		if total < bestTotal {
			bestTotal = total
			best = source
		}
	}
	return best, all
}

// Path reconstructs the node sequence from a Dijkstra source to target
// using the predecessor map. The source is the first element and target
// the last; an unreachable target yields a path containing only itself.
func Path(prev map[string]string, target string) []string {
	var rev []string
	cur, ok := target, true
	for ok {
		rev = append(rev, cur)
		cur, ok = prev[cur]
	}
	path := make([]string, len(rev))
	for i, key := range rev {
		path[len(rev)-1-i] = key
	}
	return path
}

// PathWeight sums the edge weights along the given node sequence. A pair
// of consecutive nodes with no edge between them contributes +Inf. For a
// path reconstructed with Path, the sum equals the Dijkstra distance of
// the path's endpoint.
func (a Adjacency) PathWeight(path []string) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		w, ok := a.Weight(path[i], path[i+1])
		if !ok {
			return math.Inf(1)
		}
		total += w
	}
	return total
}

type distEntry struct {
	key  string
	dist float64
}

// distQueue is a min-heap of tentative distances for Dijkstra. Stale
// entries are left in the heap and skipped when popped.
type distQueue []distEntry

func (q distQueue) Len() int            { return len(q) }
func (q distQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q distQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *distQueue) Push(x interface{}) { *q = append(*q, x.(distEntry)) }

func (q *distQueue) Pop() interface{} {
	old := *q
	n := len(old)
	entry := old[n-1]
	*q = old[:n-1]
	return entry
}
