package graphviz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aladdin-tools/build-components/pkg/dag"
	"github.com/goccy/go-graphviz"
)

const (
	// GraphDot is the name of the file containing the raw graphviz dot language representation of the graph.
	GraphDot = "components.dot"

	// GraphPng is the name of the rendered graph.
	GraphPng = "components.png"
)

// GenerateGraph writes the dot representation of the graph and its png rendering in dir.
// Highlighted components are filled in red.
func GenerateGraph(ctx context.Context, graph *dag.Graph, highlight []string, dir string) error {
	rawGraphvizOutput := GenerateRawOutput(graph, highlight)

	graphvizFile := filepath.Join(dir, GraphDot)
	pngFile := filepath.Join(dir, GraphPng)

	err := os.WriteFile(graphvizFile, []byte(rawGraphvizOutput), 0o644) //nolint:gosec
	if err != nil {
		return err
	}

	g, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("failed to create graphviz: %w", err)
	}

	defer func() {
		_ = g.Close()
	}()

	parsed, err := graphviz.ParseBytes([]byte(rawGraphvizOutput))
	if err != nil {
		return fmt.Errorf("failed to parse graphviz: %w", err)
	}

	defer func() {
		_ = parsed.Close()
	}()

	err = g.RenderFilename(ctx, parsed, graphviz.PNG, pngFile)
	if err != nil {
		return fmt.Errorf("failed to render graph: %w", err)
	}

	return nil
}

// GenerateRawOutput generates the raw graphviz dot language from the given graph.
// Edges go from a dependency to its dependents.
func GenerateRawOutput(graph *dag.Graph, highlight []string) string {
	highlighted := make(map[string]struct{}, len(highlight))
	for _, name := range highlight {
		highlighted[name] = struct{}{}
	}

	rawGraphvizDotLang := []string{
		"digraph components {\n",
		"  rankdir = \"LR\";\n",
		"  node[fontsize=10, shape=cds, height=0.4];\n",
		"  edge[fontsize=10, arrowhead=vee];\n",
		"\n",
	}

	if graph != nil {
		graph.Walk(func(node *dag.Node) {
			color := "white"
			if _, ok := highlighted[node.Name]; ok {
				color = "red"
			}

			rawGraphvizDotLang = append(rawGraphvizDotLang, fmt.Sprintf(
				"  \"%s\" [fillcolor=%s, style=filled];\n",
				node.Name,
				color,
			))

			for _, child := range node.Children() {
				rawGraphvizDotLang = append(rawGraphvizDotLang, fmt.Sprintf(
					"  \"%s\" -> \"%s\" [dir=forward];\n",
					node.Name,
					child.Name,
				))
			}
		})
	}

	rawGraphvizDotLang = append(rawGraphvizDotLang, "}\n")

	return strings.Join(rawGraphvizDotLang, "")
}
