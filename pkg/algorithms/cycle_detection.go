package algorithms

// Cycle is a detected cycle as a sequence of node ids.
type Cycle []string

type visit uint8

const (
	unvisited visit = iota
	onStack         // currently on the DFS stack
	finished        // all descendants explored
)

// frame is one level of the explicit DFS stack: the node and the index of
// the next outgoing edge to follow.
type frame struct {
	node string
	next int
}

// walk runs an iterative depth-first search from start. onBack is called
// for every back edge (an edge into a node still on the stack); returning
// true stops the walk, and walk then returns true.
func walk(adj Adjacency, start string, state map[string]visit, parent map[string]string, onBack func(from, to string) bool) bool {
	stack := []frame{{node: start}}
	state[start] = onStack

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		targets := adj[top.node]

		if top.next >= len(targets) {
			state[top.node] = finished
			stack = stack[:len(stack)-1]
			continue
		}

		from := top.node
		to := targets[top.next]
		top.next++

		switch state[to] {
		case unvisited:
			state[to] = onStack
			if parent != nil {
				parent[to] = from
			}
			stack = append(stack, frame{node: to})
		case onStack:
			if onBack(from, to) {
				return true
			}
		}
	}
	return false
}

// HasCycleFrom reports whether a cycle is reachable from start.
func HasCycleFrom(adj Adjacency, start string) bool {
	state := make(map[string]visit)
	return walk(adj, start, state, nil, func(string, string) bool { return true })
}

// WouldCreateCycle reports whether adding from -> to to adj closes a
// directed cycle. The search starts at from over adj plus the new edge.
func WouldCreateCycle(adj Adjacency, from, to string) bool {
	if from == to {
		return true
	}
	return HasCycleFrom(adj.With(from, to), from)
}

// HasCycle checks if the graph contains any cycle.
func HasCycle(adj Adjacency) bool {
	state := make(map[string]visit)
	for _, id := range adj.Nodes() {
		if state[id] != unvisited {
			continue
		}
		if walk(adj, id, state, nil, func(string, string) bool { return true }) {
			return true
		}
	}
	return false
}

// DetectCycles finds cycles with three-colour DFS, one per back edge.
// Disconnected components are all visited.
func DetectCycles(adj Adjacency) []Cycle {
	state := make(map[string]visit)
	parent := make(map[string]string)
	cycles := make([]Cycle, 0)

	for _, id := range adj.Nodes() {
		if state[id] != unvisited {
			continue
		}
		walk(adj, id, state, parent, func(from, to string) bool {
			cycles = append(cycles, extractCycle(to, from, parent))
			return false
		})
	}
	return cycles
}

// extractCycle walks parent pointers back from end to start, given a back
// edge end -> start.
func extractCycle(start, end string, parent map[string]string) Cycle {
	cycle := Cycle{start}
	current := end
	for current != start {
		cycle = append(cycle, current)
		p, ok := parent[current]
		if !ok {
			break
		}
		current = p
	}
	return cycle
}

// CycleStats summarises detected cycles.
type CycleStats struct {
	TotalCycles   int
	ShortestCycle int
	LongestCycle  int
	AverageLength float64
	SelfLoops     int
}

// AnalyzeCycles computes statistics about detected cycles
func AnalyzeCycles(cycles []Cycle) CycleStats {
	if len(cycles) == 0 {
		return CycleStats{}
	}

	stats := CycleStats{
		TotalCycles:   len(cycles),
		ShortestCycle: len(cycles[0]),
		LongestCycle:  len(cycles[0]),
	}

	total := 0
	for _, c := range cycles {
		n := len(c)
		total += n
		if n == 1 {
			stats.SelfLoops++
		}
		if n < stats.ShortestCycle {
			stats.ShortestCycle = n
		}
		if n > stats.LongestCycle {
			stats.LongestCycle = n
		}
	}

	stats.AverageLength = float64(total) / float64(len(cycles))
	return stats
}
