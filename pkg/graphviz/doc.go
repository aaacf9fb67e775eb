// Package graphviz renders the component dependency graph with Graphviz.
//
// The graph is exported as DOT text, and rendered to PNG with go-graphviz.
package graphviz
