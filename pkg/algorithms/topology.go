package algorithms

import (
	"errors"
	"sort"
)

// ErrCycle is returned by TopologicalSort for graphs that are not DAGs.
var ErrCycle = errors.New("graph contains cycles, cannot perform topological sort")

// IsDAG checks if the graph is a directed acyclic graph
func IsDAG(adj Adjacency) bool {
	return !HasCycle(adj)
}

// TopologicalSort returns node ids in topological order using Kahn's
// algorithm: for every edge u->v, u comes before v. Ties are broken by id
// so the order is deterministic.
func TopologicalSort(adj Adjacency) ([]string, error) {
	nodes := adj.Nodes()

	inDegree := make(map[string]int, len(nodes))
	for _, id := range nodes {
		inDegree[id] = 0
	}
	for _, targets := range adj {
		for _, t := range targets {
			inDegree[t]++
		}
	}

	queue := make([]string, 0)
	for _, id := range nodes {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sorted := make([]string, 0, len(nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)

		var ready []string
		for _, t := range adj[current] {
			inDegree[t]--
			if inDegree[t] == 0 {
				ready = append(ready, t)
			}
		}
		sort.Strings(ready)
		queue = append(queue, ready...)
	}

	if len(sorted) != len(nodes) {
		return nil, ErrCycle
	}
	return sorted, nil
}
