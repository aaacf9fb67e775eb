package dag

// NodeVisitorFunc visits a node of the graph.
type NodeVisitorFunc func(*Node)

// NodeVisitorFuncErr visits a node of the graph, and can return an error.
type NodeVisitorFuncErr func(*Node) error

// Node represents a component in the graph.
type Node struct {
	Name string

	// index is the insertion position of the node in its graph, used to break ties.
	index int

	parents  []*Node
	children []*Node
}

// NewNode creates a new detached instance of a Node.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddChild adds a child node and adds the current node to its parents.
// Adding the same child twice is a no-op.
func (n *Node) AddChild(node *Node) {
	for _, child := range n.children {
		if child == node {
			return
		}
	}

	n.children = append(n.children, node)
	node.parents = append(node.parents, n)
}

// Children returns the direct dependents of the node.
func (n *Node) Children() []*Node {
	return n.children
}

// Parents returns the direct dependencies of the node.
func (n *Node) Parents() []*Node {
	return n.parents
}
