package dag

import (
	"cmp"
	"io"
	"slices"
	"strings"

	"github.com/pterm/pterm"
)

var defaultPrinter = GraphPrinter{
	TopRightCornerString: "└",
	TopRightDownString:   "├",
	HorizontalString:     "─",
	VerticalString:       "│",
	RightDownLeftString:  "┬",
	Indent:               3,
}

// GraphPrinter renders the graph as a tree, dependencies above their dependents.
// A component with several dependencies appears under each of them.
type GraphPrinter struct {
	Title                string
	Roots                []*Node
	TreeStyle            *pterm.Style
	TextStyle            *pterm.Style
	TopRightCornerString string
	TopRightDownString   string
	HorizontalString     string
	VerticalString       string
	RightDownLeftString  string
	Indent               int
	Writer               io.Writer
	// Label returns the text printed for a node, its name when nil.
	Label func(*Node) string
}

// WithRoots returns a new GraphPrinter rendering the given root nodes.
func (p GraphPrinter) WithRoots(title string, roots []*Node) *GraphPrinter {
	p.Title = title
	p.Roots = roots
	return &p
}

// Render prints the graph to the printer writer.
func (p GraphPrinter) Render() error {
	pterm.Fprintln(p.Writer, p.Srender())

	return nil
}

// Srender renders the graph as a string.
func (p GraphPrinter) Srender() string {
	if p.TreeStyle == nil {
		p.TreeStyle = pterm.NewStyle()
	}
	if p.TextStyle == nil {
		p.TextStyle = pterm.NewStyle()
	}
	if p.Label == nil {
		p.Label = func(node *Node) string { return node.Name }
	}

	var result string
	if p.Title != "" {
		result += p.TextStyle.Sprint(p.Title) + "\n"
	}
	result += walkOverTree(sortedNodes(p.Roots), p, "")
	return result
}

func walkOverTree(nodes []*Node, printer GraphPrinter, prefix string) string {
	var res string
	for nodeIndex, node := range nodes {
		txt := printer.Label(node) + "\n"
		children := sortedNodes(node.Children())
		last := nodeIndex == len(nodes)-1

		branch := printer.TopRightDownString
		childPrefix := prefix + printer.TreeStyle.Sprint(printer.VerticalString) + strings.Repeat(" ", printer.Indent-1)
		if last {
			branch = printer.TopRightCornerString
			childPrefix = prefix + strings.Repeat(" ", printer.Indent)
		}

		res += prefix + printer.TreeStyle.Sprint(branch)
		if len(children) == 0 {
			res += strings.Repeat(printer.TreeStyle.Sprint(printer.HorizontalString), printer.Indent) +
				printer.TextStyle.Sprint(txt)
			continue
		}

		res += strings.Repeat(printer.TreeStyle.Sprint(printer.HorizontalString), printer.Indent-1) +
			printer.TreeStyle.Sprint(printer.RightDownLeftString) +
			printer.TextStyle.Sprint(txt)
		res += walkOverTree(children, printer, childPrefix)
	}
	return res
}

func sortedNodes(nodes []*Node) []*Node {
	sorted := slices.Clone(nodes)
	slices.SortFunc(sorted, func(a, b *Node) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})

	return sorted
}

// Sprint renders the graph as a tree under the given title.
func (g *Graph) Sprint(title string) string {
	return defaultPrinter.WithRoots(title, g.Roots()).Srender()
}

// Printer returns a GraphPrinter for the graph, to customize labels or output.
func (g *Graph) Printer(title string) *GraphPrinter {
	return defaultPrinter.WithRoots(title, g.Roots())
}
