package outline

// Relocate moves the dragged node (with its subtree) next to target.
// pos must be Before or After. The returned reason is RejectNone when the
// move happened, or names why it was refused. Every refusal is a no-op.
//
// A missing target is not a refusal: the dragged node falls back to the end
// of the root sequence, matching the UI's "drop to top level" affordance
// when the target vanished mid-drag.
func Relocate(t *Tree, dragged, target NodeID, pos Position) RejectReason {
	if dragged == target {
		return RejectSelfTarget
	}

	dragCtx := FindContext(t, dragged)
	if dragCtx == nil {
		return RejectNotFound
	}

	targetCtx := FindContext(t, target)
	if targetCtx == nil {
		removeAt(dragCtx.ParentList, dragCtx.Index)
		t.Roots = append(t.Roots, dragCtx.Node)
		return RejectNone
	}

	// The one correctness-critical check: a node must not become a
	// descendant of its own subtree.
	if Contains(dragCtx.Node, target) {
		return RejectOwnDescendant
	}

	removeAt(dragCtx.ParentList, dragCtx.Index)

	// Re-resolve the target: if dragged and target shared a parent list the
	// removal shifted the target's index.
	targetCtx = FindContext(t, target)
	idx := targetCtx.Index
	if pos == After {
		idx++
	}
	splice(targetCtx.ParentList, idx, dragCtx.Node)
	return RejectNone
}

// RelocateToRootEnd moves the dragged node to the end of the root sequence.
// Already-last root nodes are left alone so the session is not dirtied.
func RelocateToRootEnd(t *Tree, dragged NodeID) (moved bool, reason RejectReason) {
	ctx := FindContext(t, dragged)
	if ctx == nil {
		return false, RejectNotFound
	}
	if ctx.ParentNode == nil && ctx.Index == len(t.Roots)-1 {
		return false, RejectNone
	}
	removeAt(ctx.ParentList, ctx.Index)
	t.Roots = append(t.Roots, ctx.Node)
	return true, RejectNone
}

// ProposeDrop is the query half of the two-phase drag protocol: it answers
// whether Relocate(dragged, target, pos) would be accepted, without touching
// the tree. The UI calls it repeatedly for hover feedback, so it must stay
// pure.
func ProposeDrop(t *Tree, dragged, target NodeID) RejectReason {
	if dragged == target {
		return RejectSelfTarget
	}
	dragCtx := FindContext(t, dragged)
	if dragCtx == nil {
		return RejectNotFound
	}
	if FindContext(t, target) == nil {
		// Commit would fall back to a root-end drop.
		return RejectNone
	}
	if Contains(dragCtx.Node, target) {
		return RejectOwnDescendant
	}
	return RejectNone
}
