package algorithms

import "sort"

// tarjanState holds per-node state during Tarjan's DFS.
type tarjanState struct {
	index   int
	lowlink int
	onStack bool
}

// StronglyConnectedComponents finds all SCCs using Tarjan's algorithm in
// O(V+E) time. Members of each component and the component list are sorted.
func StronglyConnectedComponents(adj Adjacency) [][]string {
	state := make(map[string]*tarjanState, len(adj))
	var stack []string
	counter := 0
	var components [][]string

	var strongconnect func(u string)
	strongconnect = func(u string) {
		state[u] = &tarjanState{index: counter, lowlink: counter, onStack: true}
		counter++
		stack = append(stack, u)

		for _, v := range adj[u] {
			if _, seen := state[v]; !seen {
				strongconnect(v)
				state[u].lowlink = min(state[u].lowlink, state[v].lowlink)
			} else if state[v].onStack {
				state[u].lowlink = min(state[u].lowlink, state[v].index)
			}
		}

		if state[u].lowlink != state[u].index {
			return
		}
		var members []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			state[w].onStack = false
			members = append(members, w)
			if w == u {
				break
			}
		}
		sort.Strings(members)
		components = append(components, members)
	}

	for _, id := range adj.Nodes() {
		if _, seen := state[id]; !seen {
			strongconnect(id)
		}
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })
	return components
}

// FeedbackLoops returns the components that contain a cycle: every SCC
// with more than one node, plus single nodes wired to themselves.
func FeedbackLoops(adj Adjacency) [][]string {
	var loops [][]string
	for _, c := range StronglyConnectedComponents(adj) {
		if len(c) > 1 || selfLoop(adj, c[0]) {
			loops = append(loops, c)
		}
	}
	return loops
}

func selfLoop(adj Adjacency, id string) bool {
	for _, t := range adj[id] {
		if t == id {
			return true
		}
	}
	return false
}
