package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Cycle is a set of models whose fields reference each other, directly or
// through other models. Build defines each model after the models it
// references, since a nested field needs the referenced model's defined
// type, so a cycle has no definition order and is rejected.
type Cycle struct {
	Path    []string `json:"path"`    // e.g. ["A", "B", "A"]
	Message string   `json:"message"` // human-readable description
}

// referenceGraph maps a model name to the declared models its fields
// refer to. References to names outside the graph are left out.
type referenceGraph map[string][]string

func buildReferenceGraph(specs []SchemaSpec) referenceGraph {
	graph := make(referenceGraph, len(specs))
	for _, spec := range specs {
		graph[spec.Name] = []string{}
	}
	for _, spec := range specs {
		for _, ref := range spec.References() {
			if _, declared := graph[ref]; declared {
				graph[spec.Name] = append(graph[spec.Name], ref)
			}
		}
	}
	return graph
}

// FindCycles reports every reference cycle among specs. A DAG returns an
// empty list.
func FindCycles(specs []SchemaSpec) []Cycle {
	graph := buildReferenceGraph(specs)

	cycles := []Cycle{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	return cycles
}

// dependencyOrder returns the model names so that every model comes after
// the models it references. The graph must be acyclic.
func dependencyOrder(graph referenceGraph) []string {
	var order []string
	for _, scc := range tarjanSCC(graph) {
		order = append(order, scc...)
	}
	return order
}

func hasSelfLoop(node string, graph referenceGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Components are emitted after every component reachable from them, so the
// result lists dependencies first. Nodes are visited in name order to keep
// the result deterministic.
func tarjanSCC(graph referenceGraph) [][]string {
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

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToCycle(scc []string, graph referenceGraph) Cycle {
	if len(scc) == 1 {
		name := scc[0]
		return Cycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("model %s references itself", name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return Cycle{
		Path:    path,
		Message: fmt.Sprintf("model reference cycle: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath walks edges inside the SCC from its smallest name
// until it returns to the start.
func reconstructCyclePath(scc []string, graph referenceGraph) []string {
	members := make(map[string]bool, len(scc))
	start := scc[0]
	for _, node := range scc {
		members[node] = true
		if node < start {
			start = node
		}
	}

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
