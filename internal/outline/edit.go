package outline

import "strings"

// Position selects where Insert splices a new node.
type Position string

const (
	RootEnd Position = "root-end" // append to the root sequence
	Before  Position = "before"   // sibling before target
	After   Position = "after"    // sibling after target
	Child   Position = "child"    // last child of target
)

// Insert splices node into the tree relative to target. target is ignored
// for RootEnd and required otherwise; a missing target yields ErrNoSelection
// (the operation needs a selection to be meaningful, but the session itself
// stays intact).
func Insert(t *Tree, node *Node, target NodeID, pos Position) error {
	if pos == RootEnd {
		t.Roots = append(t.Roots, node)
		return nil
	}

	ctx := FindContext(t, target)
	if ctx == nil {
		return ErrNoSelection
	}

	switch pos {
	case Before:
		splice(ctx.ParentList, ctx.Index, node)
	case After:
		splice(ctx.ParentList, ctx.Index+1, node)
	case Child:
		ctx.Node.Children = append(ctx.Node.Children, node)
		ctx.Node.Expanded = true
	default:
		return ErrNoSelection
	}
	return nil
}

// splice inserts n into list at index i, shifting the tail right.
func splice(list *[]*Node, i int, n *Node) {
	*list = append(*list, nil)
	copy((*list)[i+1:], (*list)[i:])
	(*list)[i] = n
}

// DeleteSubtree removes target and its whole subtree from the tree,
// returning the descendant count (the number of nodes removed beyond the
// target itself, for confirmation prompts). A stale ID removes nothing and
// returns -1.
func DeleteSubtree(t *Tree, target NodeID) int {
	ctx := FindContext(t, target)
	if ctx == nil {
		return -1
	}
	descendants := CountDescendants(ctx.Node)
	removeAt(ctx.ParentList, ctx.Index)
	return descendants
}

func removeAt(list *[]*Node, i int) {
	copy((*list)[i:], (*list)[i+1:])
	(*list)[len(*list)-1] = nil
	*list = (*list)[:len(*list)-1]
}

// Edit updates a node's title and page. Rejections (blank title, page < 1,
// page beyond pageCount when pageCount is known) leave the node untouched.
// On success it reports whether anything actually changed, so a no-op edit
// does not dirty the session.
func Edit(n *Node, title string, page, pageCount int) (changed bool, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return false, ErrEmptyTitle
	}
	if page < 1 || (pageCount > 0 && page > pageCount) {
		return false, &PageRangeError{Page: page, PageCount: pageCount}
	}
	if n.Title == title && n.Page == page {
		return false, nil
	}
	n.Title = title
	n.Page = page
	return true, nil
}
