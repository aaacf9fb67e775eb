package dag

import (
	"fmt"
	"strings"
)

// Edge goes from a dependency to a component depending on it.
type Edge struct {
	From string
	To   string
}

func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.From, e.To)
}

// CycleError is returned when the dependency graph contains a cycle.
type CycleError struct {
	// Edges forms the cycle: the To of each edge is the From of the next, and the
	// To of the last one is the From of the first.
	Edges []Edge
}

func (e *CycleError) Error() string {
	if len(e.Edges) == 0 {
		return "cycle found in component dependency graph"
	}

	path := make([]string, 0, len(e.Edges)+1)
	for _, edge := range e.Edges {
		path = append(path, edge.From)
	}
	path = append(path, e.Edges[len(e.Edges)-1].To)

	return "cycle found in component dependency graph: " + strings.Join(path, " -> ")
}

// Components returns the names of the components involved in the cycle.
func (e *CycleError) Components() []string {
	names := make([]string, 0, len(e.Edges))
	for _, edge := range e.Edges {
		names = append(names, edge.From)
	}

	return names
}
