// Package outline implements the outline tree editing engine: the in-memory
// model of a document's table of contents, its structural mutations, the
// cascading page-renumber, and the dirty/save discipline around them.
package outline

import "strings"

// NodeID identifies a live node within one editing session. IDs are never
// persisted and never reused; a reload produces a fresh set.
type NodeID int64

// Zero NodeID means "no node".
const NoNode NodeID = 0

// Node is one entry in the table of contents.
type Node struct {
	ID       NodeID
	Title    string
	Page     int
	Children []*Node
	Expanded bool // presentation only, not part of the persisted shape
}

// Tree is an ordered forest of root-level nodes.
type Tree struct {
	Roots []*Node
}

// External is the identity-free shape exchanged with persistence and
// collaborators: {title, page, children}, depth unbounded.
type External struct {
	Title    string     `json:"title"`
	Page     int        `json:"page"`
	Children []External `json:"children"`
}

// Chapter is a top-level {title, page} pair, consumed by the chapter
// splitter.
type Chapter struct {
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// DefaultTitle is substituted for blank titles on hydration.
const DefaultTitle = "Untitled"

// Allocator issues session-scoped node IDs. Not safe for concurrent use;
// the session serializes all access to it along with the tree.
type Allocator struct {
	next NodeID
}

func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Allocate returns an ID distinct from every previous allocation.
func (a *Allocator) Allocate() NodeID {
	id := a.next
	a.next++
	return id
}

// Hydrate converts external outline data into a Tree, assigning fresh IDs.
// Malformed input degrades to defaults: blank titles become DefaultTitle,
// pages below 1 are floored to 1. Hydrate never fails.
func Hydrate(ext []External, alloc *Allocator) *Tree {
	t := &Tree{}
	for i := range ext {
		t.Roots = append(t.Roots, hydrateNode(&ext[i], alloc))
	}
	return t
}

func hydrateNode(e *External, alloc *Allocator) *Node {
	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = DefaultTitle
	}
	page := e.Page
	if page < 1 {
		page = 1
	}
	n := &Node{
		ID:    alloc.Allocate(),
		Title: title,
		Page:  page,
	}
	for i := range e.Children {
		n.Children = append(n.Children, hydrateNode(&e.Children[i], alloc))
	}
	n.Expanded = len(n.Children) > 0
	return n
}

// Serialize projects the tree back to its external shape, stripping IDs and
// the expanded flag. It is the right inverse of Hydrate for valid input.
func Serialize(t *Tree) []External {
	out := make([]External, 0, len(t.Roots))
	for _, n := range t.Roots {
		out = append(out, serializeNode(n))
	}
	return out
}

func serializeNode(n *Node) External {
	e := External{Title: n.Title, Page: n.Page}
	for _, c := range n.Children {
		e.Children = append(e.Children, serializeNode(c))
	}
	return e
}

// NodeView is the projection served to editing clients. Unlike External it
// carries the session-scoped ID (so clients can address nodes) and the
// expanded flag.
type NodeView struct {
	ID       NodeID     `json:"id"`
	Title    string     `json:"title"`
	Page     int        `json:"page"`
	Expanded bool       `json:"expanded"`
	Children []NodeView `json:"children"`
}

// View projects the tree for clients, IDs included.
func View(t *Tree) []NodeView {
	out := make([]NodeView, 0, len(t.Roots))
	for _, n := range t.Roots {
		out = append(out, viewNode(n))
	}
	return out
}

func viewNode(n *Node) NodeView {
	v := NodeView{ID: n.ID, Title: n.Title, Page: n.Page, Expanded: n.Expanded}
	for _, c := range n.Children {
		v.Children = append(v.Children, viewNode(c))
	}
	return v
}

// Chapters returns the first-level {title, page} pairs in order. The chapter
// splitter uses each page as a start boundary and the next entry's page as
// the exclusive end.
func Chapters(t *Tree) []Chapter {
	out := make([]Chapter, 0, len(t.Roots))
	for _, n := range t.Roots {
		out = append(out, Chapter{Title: n.Title, Page: n.Page})
	}
	return out
}

// ClampPages floors every page into [1, pageCount] and returns how many
// nodes were altered. A pageCount below 1 clamps only the lower bound.
func ClampPages(t *Tree, pageCount int) int {
	changed := 0
	for _, n := range Flatten(t) {
		p := n.Page
		if p < 1 {
			p = 1
		}
		if pageCount >= 1 && p > pageCount {
			p = pageCount
		}
		if p != n.Page {
			n.Page = p
			changed++
		}
	}
	return changed
}
