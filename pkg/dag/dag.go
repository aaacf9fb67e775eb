package dag

import (
	"fmt"

	"github.com/aladdin-tools/build-components/pkg/component"
)

// Graph is the directed dependency graph of components. Nodes keep their insertion order.
type Graph struct {
	nodes []*Node
	index map[string]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: map[string]*Node{}}
}

// Build creates the graph of the given components from their declarations.
// Declared dependencies that are not part of components are added as well, along with
// their own dependencies, so that the graph holds the full transitive closure.
func Build(components []string, loader component.Loader) (*Graph, error) {
	graph := New()
	for _, name := range components {
		graph.AddNode(name)
	}

	loaded := make(map[string]bool)
	queue := append([]string(nil), components...)

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		if loaded[name] {
			continue
		}
		loaded[name] = true

		cfg, err := loader.Load(name)
		if err != nil {
			return nil, fmt.Errorf("could not load dependencies of %s: %w", name, err)
		}

		for _, dependency := range cfg.Dependencies() {
			graph.AddEdge(dependency, name)
			if !loaded[dependency] {
				queue = append(queue, dependency)
			}
		}
	}

	return graph, nil
}

// AddNode adds a node to the graph if it does not exist yet, and returns it.
func (g *Graph) AddNode(name string) *Node {
	if g.index == nil {
		g.index = map[string]*Node{}
	}
	if node, ok := g.index[name]; ok {
		return node
	}

	node := NewNode(name)
	node.index = len(g.nodes)
	g.nodes = append(g.nodes, node)
	g.index[name] = node

	return node
}

// AddEdge adds an edge from a dependency to a dependent, creating missing nodes.
func (g *Graph) AddEdge(dependency, dependent string) {
	g.AddNode(dependency).AddChild(g.AddNode(dependent))
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	node, ok := g.index[name]
	return node, ok
}

// Nodes returns every node, in insertion order.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Roots returns the nodes without dependencies, in insertion order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, node := range g.nodes {
		if len(node.parents) == 0 {
			roots = append(roots, node)
		}
	}

	return roots
}

// Edges returns every edge of the graph.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, node := range g.nodes {
		for _, child := range node.children {
			edges = append(edges, Edge{From: node.Name, To: child.Name})
		}
	}

	return edges
}

// ValidateAcyclic returns a CycleError describing a cycle, if the graph has any.
func (g *Graph) ValidateAcyclic() error {
	if cycle := g.findCycle(); cycle != nil {
		return &CycleError{Edges: cycle}
	}

	return nil
}

const (
	unvisited = iota
	inProgress
	done
)

// findCycle runs a depth-first search and returns the edges of the first cycle found.
func (g *Graph) findCycle() []Edge {
	state := make(map[*Node]int, len(g.nodes))
	var stack []*Node

	var visit func(node *Node) []Edge
	visit = func(node *Node) []Edge {
		state[node] = inProgress
		stack = append(stack, node)

		for _, child := range node.children {
			switch state[child] {
			case inProgress:
				start := len(stack) - 1
				for stack[start] != child {
					start--
				}
				cycle := stack[start:]

				edges := make([]Edge, 0, len(cycle))
				for i, from := range cycle {
					to := cycle[(i+1)%len(cycle)]
					edges = append(edges, Edge{From: from.Name, To: to.Name})
				}
				return edges
			case unvisited:
				if edges := visit(child); edges != nil {
					return edges
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[node] = done
		return nil
	}

	for _, node := range g.nodes {
		if state[node] != unvisited {
			continue
		}
		if edges := visit(node); edges != nil {
			return edges
		}
	}

	return nil
}

// TopologicalOrder returns the names of all nodes so that every dependency comes before
// its dependents. Among nodes ready at the same time, the earliest inserted comes first.
// Nodes on a cycle are never ready and are left out, so call ValidateAcyclic first.
func (g *Graph) TopologicalOrder() []string {
	pending := make(map[*Node]int, len(g.nodes))
	for _, node := range g.nodes {
		pending[node] = len(node.parents)
	}

	order := make([]string, 0, len(g.nodes))
	emitted := make([]bool, len(g.nodes))

	for len(order) < len(g.nodes) {
		var next *Node
		for _, node := range g.nodes {
			if !emitted[node.index] && pending[node] == 0 {
				next = node
				break
			}
		}
		if next == nil {
			break
		}

		emitted[next.index] = true
		order = append(order, next.Name)
		for _, child := range next.children {
			pending[child]--
		}
	}

	return order
}

// AncestorsOf returns every node having a path to the given one, i.e. its transitive dependencies.
func (g *Graph) AncestorsOf(name string) map[string]struct{} {
	ancestors := make(map[string]struct{})

	node, ok := g.index[name]
	if !ok {
		return ancestors
	}

	queue := append([]*Node(nil), node.parents...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, seen := ancestors[current.Name]; seen {
			continue
		}
		ancestors[current.Name] = struct{}{}
		queue = append(queue, current.parents...)
	}

	return ancestors
}

// TransitiveDependencyOrder returns the ancestors of the given node in topological order,
// followed by the node itself: everything to build, in order, before and including it.
func (g *Graph) TransitiveDependencyOrder(name string) []string {
	ancestors := g.AncestorsOf(name)

	order := make([]string, 0, len(ancestors)+1)
	for _, candidate := range g.TopologicalOrder() {
		if _, ok := ancestors[candidate]; ok {
			order = append(order, candidate)
		}
	}

	return append(order, name)
}

// Walk applies the visitor func to every node, dependencies first.
func (g *Graph) Walk(visitor NodeVisitorFunc) {
	for _, name := range g.TopologicalOrder() {
		visitor(g.index[name])
	}
}

// WalkErr applies the visitor func to every node, dependencies first.
// If an error occurs, it stops traversing the graph and returns the error immediately.
func (g *Graph) WalkErr(visitor NodeVisitorFuncErr) error {
	for _, name := range g.TopologicalOrder() {
		if err := visitor(g.index[name]); err != nil {
			return err
		}
	}

	return nil
}
