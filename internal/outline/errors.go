package outline

import (
	"errors"
	"fmt"
)

// Validation rejections: reported to the caller, never mutate state.
var (
	ErrEmptyTitle   = errors.New("title must not be empty")
	ErrNoSelection  = errors.New("no node selected")
	ErrSaveInFlight = errors.New("a save is already in flight")
	ErrDirty        = errors.New("unsaved changes; pass discard to reload")
)

// PageRangeError reports an edit whose page falls outside the document.
type PageRangeError struct {
	Page      int
	PageCount int
}

func (e *PageRangeError) Error() string {
	if e.PageCount > 0 {
		return fmt.Sprintf("page %d outside valid range 1-%d", e.Page, e.PageCount)
	}
	return fmt.Sprintf("page %d must be at least 1", e.Page)
}

// RejectReason explains why a structural operation did not happen. These are
// ordinary outcomes of UI races (a node deleted mid-drag, a drop onto one's
// own subtree), so they are results, not errors.
type RejectReason string

const (
	RejectNone          RejectReason = ""
	RejectSelfTarget    RejectReason = "node dropped onto itself"
	RejectNotFound      RejectReason = "node no longer exists"
	RejectOwnDescendant RejectReason = "cannot move a node into its own subtree"
)
