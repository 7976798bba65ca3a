package outline

// CascadeResult reports what a page shift touched. Clamped counts entries
// that hit a document boundary, for a user-facing "N entries pinned" note.
type CascadeResult struct {
	Changed int `json:"changed"`
	Clamped int `json:"clamped"`
}

// ShiftFrom adds delta to the page of the selected node and every node that
// follows it in document order, at any depth. Pages clamp to
// [1, pageCount]. A zero delta or a stale selection shifts nothing.
//
// Chapters get reflowed wholesale (a new foreword pushes everything after it
// by a constant), so the anchor-plus-suffix shape saves editing each entry
// by hand.
func ShiftFrom(t *Tree, selected NodeID, delta, pageCount int) CascadeResult {
	var res CascadeResult
	if delta == 0 || selected == NoNode {
		return res
	}

	flat := Flatten(t)
	start := -1
	for i, n := range flat {
		if n.ID == selected {
			start = i
			break
		}
	}
	if start < 0 {
		return res
	}

	for _, n := range flat[start:] {
		candidate := n.Page + delta
		clamped := candidate
		if clamped < 1 {
			clamped = 1
		}
		if pageCount >= 1 && clamped > pageCount {
			clamped = pageCount
		}
		if clamped != candidate {
			res.Clamped++
		}
		if clamped != n.Page {
			n.Page = clamped
			res.Changed++
		}
	}
	return res
}
