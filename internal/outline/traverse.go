package outline

// Flatten returns the nodes in document order: depth-first, parent before
// children, sibling order preserved. Every other component's notion of
// "follows" is defined by this sequence.
func Flatten(t *Tree) []*Node {
	var out []*Node
	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return out
}

// Context locates a node together with enough surrounding structure to
// mutate its position. ParentNode is nil for root-level nodes, in which case
// ParentList is the root sequence.
type Context struct {
	Node       *Node
	ParentNode *Node
	ParentList *[]*Node
	Index      int
}

// FindContext resolves an ID to its context, or nil if the ID is not live
// (deleted, or stale from a previous session).
func FindContext(t *Tree, id NodeID) *Context {
	return findIn(&t.Roots, nil, id)
}

func findIn(list *[]*Node, parent *Node, id NodeID) *Context {
	for i, n := range *list {
		if n.ID == id {
			return &Context{Node: n, ParentNode: parent, ParentList: list, Index: i}
		}
		if ctx := findIn(&n.Children, n, id); ctx != nil {
			return ctx
		}
	}
	return nil
}

// Contains reports whether id names the given node or any of its
// descendants. Relocation uses it to refuse moves that would make a node a
// descendant of its own subtree.
func Contains(n *Node, id NodeID) bool {
	if n.ID == id {
		return true
	}
	for _, c := range n.Children {
		if Contains(c, id) {
			return true
		}
	}
	return false
}

// CountDescendants returns the number of nodes strictly below n.
func CountDescendants(n *Node) int {
	count := 0
	for _, c := range n.Children {
		count += 1 + CountDescendants(c)
	}
	return count
}
