package schema

import (
	"fmt"
	"strings"
)

// EmbeddingCycle is a set of classes that embed each other by value.
type EmbeddingCycle struct {
	Path    []string `json:"path"` // ["A", "B", "A"]
	Message string   `json:"message"`
}

// AnalyzeEmbeddingCycles finds classes that contain themselves through
// embedded (non-array) struct properties. Such classes have no finite
// layout. Struct arrays hold separate instances and never form cycles.
//
// The algorithm:
//  1. Build class -> embedded struct class graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Classes are visited in declaration order so results are deterministic.
func AnalyzeEmbeddingCycles(s *Schema) []EmbeddingCycle {
	graph, order := buildEmbeddingGraph(s)

	var cycles []EmbeddingCycle
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	return cycles
}

// embeddingGraph maps class name -> embedded struct class names.
type embeddingGraph map[string][]string

func buildEmbeddingGraph(s *Schema) (embeddingGraph, []string) {
	graph := make(embeddingGraph)
	order := make([]string, 0, len(s.Classes))
	for _, c := range s.Classes {
		if _, seen := graph[c.Name]; seen {
			continue
		}
		order = append(order, c.Name)
		graph[c.Name] = []string{}
	}
	for _, c := range s.Classes {
		for _, p := range c.Properties {
			if p.Kind != PropertyKindStruct {
				continue
			}
			if _, known := graph[p.StructClass]; !known {
				continue
			}
			graph[c.Name] = append(graph[c.Name], p.StructClass)
		}
	}
	return graph, order
}

func hasSelfLoop(node string, graph embeddingGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
func tarjanSCC(graph embeddingGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToCycle(scc []string, graph embeddingGraph) EmbeddingCycle {
	if len(scc) == 1 {
		name := scc[0]
		return EmbeddingCycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("struct %s embeds itself", name),
		}
	}
	path := reconstructCyclePath(scc, graph)
	return EmbeddingCycle{
		Path:    path,
		Message: fmt.Sprintf("embedded struct cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath follows edges inside the SCC from its root (the first
// class visited) until it returns to the start.
func reconstructCyclePath(scc []string, graph embeddingGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[len(scc)-1]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}
