// Package dag provides the dependency graph of the components of a project.
//
// Nodes are component names, and an edge goes from a dependency to each component
// depending on it. The main functionalities include:
// - Building the graph from component declarations.
// - Detecting cycles.
// - Computing a deterministic topological order, ancestors and transitive dependencies.
// - Walking and printing the graph.
package dag
