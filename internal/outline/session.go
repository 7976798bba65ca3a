package outline

import (
	"context"
	"sync"
)

// Source hydrates an outline for a document; an empty slice means "no
// outline yet".
type Source interface {
	LoadOutline(ctx context.Context, docPath string) ([]External, error)
}

// Sink replaces the document's persisted outline with the given tree.
type Sink interface {
	StoreOutline(ctx context.Context, docPath string, ext []External) error
}

// Session is the mutable editing session around exactly one tree. All
// mutations are serialized by its lock; the tree is never aliased outside
// the session, and callers refer to nodes only by ID.
type Session struct {
	mu sync.Mutex

	docPath   string
	alloc     *Allocator
	tree      *Tree
	selected  NodeID
	dirty     bool
	saving    bool
	pageCount int

	source Source
	sink   Sink
}

// NewSession hydrates a session from the persistence source. A source error
// is surfaced; an absent outline yields an empty, clean session.
func NewSession(ctx context.Context, docPath string, pageCount int, source Source, sink Sink) (*Session, error) {
	ext, err := source.LoadOutline(ctx, docPath)
	if err != nil {
		return nil, err
	}
	s := &Session{
		docPath:   docPath,
		alloc:     NewAllocator(),
		pageCount: pageCount,
		source:    source,
		sink:      sink,
	}
	s.tree = Hydrate(ext, s.alloc)
	ClampPages(s.tree, pageCount)
	return s, nil
}

// Outline returns the serialized tree; the copy shares nothing with session
// state.
func (s *Session) Outline() []External {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Serialize(s.tree)
}

// View returns the ID-bearing client projection of the tree.
func (s *Session) View() []NodeView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View(s.tree)
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageCount
}

// Select records the node subsequent operations anchor on. Selecting a
// stale ID clears the selection.
func (s *Session) Select(id NodeID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id != NoNode && FindContext(s.tree, id) == nil {
		s.selected = NoNode
		return false
	}
	s.selected = id
	return true
}

func (s *Session) Selected() NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Insert creates a node and splices it relative to the current selection
// (or the root end). The new node's ID becomes the selection.
func (s *Session) Insert(title string, page int, pos Position) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return NoNode, err
	}

	n := &Node{ID: s.alloc.Allocate()}
	if _, err := Edit(n, title, page, s.pageCount); err != nil {
		return NoNode, err
	}
	if pos != RootEnd && s.selected == NoNode {
		return NoNode, ErrNoSelection
	}
	if err := Insert(s.tree, n, s.selected, pos); err != nil {
		return NoNode, err
	}
	s.selected = n.ID
	s.dirty = true
	return n.ID, nil
}

// Delete removes the node and its subtree, returning the descendant count.
// ok is false for a stale ID (nothing removed, session unchanged).
func (s *Session) Delete(id NodeID) (descendants int, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return 0, false, err
	}

	count := DeleteSubtree(s.tree, id)
	if count < 0 {
		return 0, false, nil
	}
	if s.selected != NoNode && FindContext(s.tree, s.selected) == nil {
		s.selected = NoNode
	}
	s.dirty = true
	return count, true, nil
}

// Edit updates one node's title and page.
func (s *Session) Edit(id NodeID, title string, page int) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return false, err
	}

	ctx := FindContext(s.tree, id)
	if ctx == nil {
		return false, ErrNoSelection
	}
	changed, err = Edit(ctx.Node, title, page, s.pageCount)
	if err != nil {
		return false, err
	}
	if changed {
		s.dirty = true
	}
	return changed, nil
}

// Relocate commits a drag of dragged next to target.
func (s *Session) Relocate(dragged, target NodeID, pos Position) (RejectReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return RejectNone, err
	}

	reason := Relocate(s.tree, dragged, target, pos)
	if reason == RejectNone {
		s.dirty = true
	}
	return reason, nil
}

// RelocateToRootEnd drops dragged at the end of the top level.
func (s *Session) RelocateToRootEnd(dragged NodeID) (RejectReason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return RejectNone, err
	}

	moved, reason := RelocateToRootEnd(s.tree, dragged)
	if moved {
		s.dirty = true
	}
	return reason, nil
}

// ProposeDrop answers whether a drop would be accepted. Pure query.
func (s *Session) ProposeDrop(dragged, target NodeID) RejectReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProposeDrop(s.tree, dragged, target)
}

// Cascade shifts the selection's pre-order suffix by delta.
func (s *Session) Cascade(delta int) (CascadeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return CascadeResult{}, err
	}

	res := ShiftFrom(s.tree, s.selected, delta, s.pageCount)
	if res.Changed > 0 {
		s.dirty = true
	}
	return res, nil
}

// SetPageCount installs a new document page count and re-clamps every page
// against it. Called when the underlying document changed.
func (s *Session) SetPageCount(pageCount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCount = pageCount
	changed := ClampPages(s.tree, pageCount)
	if changed > 0 {
		s.dirty = true
	}
	return changed
}

// Adopt replaces the whole tree with an externally produced outline (e.g. a
// completed recognition job), re-hydrating with fresh IDs.
func (s *Session) Adopt(ext []External) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mutableLocked(); err != nil {
		return err
	}

	s.tree = Hydrate(ext, s.alloc)
	ClampPages(s.tree, s.pageCount)
	s.selected = NoNode
	s.dirty = true
	return nil
}

// Chapters returns the top-level projection for the chapter splitter.
func (s *Session) Chapters() []Chapter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Chapters(s.tree)
}

// Save flushes the serialized tree to the sink. It is single-flight: a save
// already in flight rejects the new attempt rather than racing two flushes.
// On sink failure the session stays dirty.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	s.saving = true
	ext := Serialize(s.tree)
	path := s.docPath
	s.mu.Unlock()

	err := s.sink.StoreOutline(ctx, path, ext)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Reload discards local state and re-hydrates from the source. A dirty
// session refuses unless discard is set; the confirmation prompt is the
// caller's concern. On source failure the previous state survives.
func (s *Session) Reload(ctx context.Context, discard bool) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInFlight
	}
	if s.dirty && !discard {
		s.mu.Unlock()
		return ErrDirty
	}
	s.saving = true // block mutation while the load is in flight
	path := s.docPath
	s.mu.Unlock()

	ext, err := s.source.LoadOutline(ctx, path)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	if err != nil {
		return err
	}
	s.tree = Hydrate(ext, s.alloc)
	ClampPages(s.tree, s.pageCount)
	s.selected = NoNode
	s.dirty = false
	return nil
}

// mutableLocked rejects structural mutation while a flush is in flight.
func (s *Session) mutableLocked() error {
	if s.saving {
		return ErrSaveInFlight
	}
	return nil
}
