/*
Package graph provides the weighted interaction graph over mer keys: a
symmetric adjacency map, connected component analysis, and single-source
shortest paths with best-source selection.

Edge weights are reciprocals of positive bond affinities, so they are
always positive and finite. An infinite distance means "unreachable" and
is an ordinary value, not an error.
*/
package graph

import "sort"

// WarnFunc receives recoverable diagnostics (for example, a bond that
// references a mer missing from the parsed structure). A nil WarnFunc
// discards them.
type WarnFunc func(format string, v ...interface{})

// Adjacency maps a mer key to its neighbors and the edge weight to each.
// It is symmetric by construction: every edge is written in both
// directions with the identical weight.
type Adjacency map[string]map[string]float64

// AddEdge records an undirected edge between u and v. The weight is
// written for both directions so that the map stays symmetric.
func (a Adjacency) AddEdge(u, v string, weight float64) {
	if a[u] == nil {
		a[u] = make(map[string]float64)
	}
	if a[v] == nil {
		a[v] = make(map[string]float64)
	}
	a[u][v] = weight
	a[v][u] = weight
}

// Weight returns the weight of the edge between u and v, if it exists.
func (a Adjacency) Weight(u, v string) (float64, bool) {
	w, ok := a[u][v]
	return w, ok
}

// Keys returns every node key in lexicographic order.
func (a Adjacency) Keys() []string {
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Components partitions the nodes into connected components via
// breadth-first traversal. Components are discovered in sorted key order
// and each component's keys are sorted, so the partition is deterministic.
func (a Adjacency) Components() [][]string {
	var components [][]string
	visited := make(map[string]bool, len(a))

	for _, start := range a.Keys() {
		if visited[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for neighbor := range a[cur] {
				if !visited[neighbor] {
					visited[neighbor] = true
					queue = append(queue, neighbor)
				}
			}
		}
		sort.Strings(comp)
		components = append(components, comp)
	}
	return components
}

// LargestComponent returns a new adjacency map restricted to the connected
// component with the most nodes, along with a flag that is true when the
// graph had more than one component (i.e. nodes were discarded). Ties
// between equally large components go to the first one discovered, which
// is the one containing the smallest key.
func (a Adjacency) LargestComponent() (Adjacency, bool) {
	components := a.Components()

	var largest []string
	for _, comp := range components {
		if len(comp) > len(largest) {
			largest = comp
		}
	}

	reduced := make(Adjacency, len(largest))
	for _, key := range largest {
		neighbors := make(map[string]float64, len(a[key]))
		for neighbor, weight := range a[key] {
			neighbors[neighbor] = weight
		}
		reduced[key] = neighbors
	}
	return reduced, len(components) > 1
}
