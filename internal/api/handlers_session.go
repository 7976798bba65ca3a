package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/pagemark/pagemark/internal/outline"
	"github.com/pagemark/pagemark/internal/pdfdoc"
	"github.com/pagemark/pagemark/internal/pipeline"
	"github.com/pagemark/pagemark/internal/split"
)

// handleOpenDocument resolves a library-relative path, opens the PDF, and
// starts an editing session hydrated from its sidecar outline.
func (s *Server) handleOpenDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}
	if !decode(w, r, &req) {
		return
	}

	abs, err := pdfdoc.Resolve(s.cfg.LibraryDir, req.Path)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !pdfdoc.IsPDF(abs) {
		jsonError(w, "not a pdf file: "+req.Path, http.StatusBadRequest)
		return
	}

	doc, err := s.reader.Open(abs)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	sess, err := outline.NewSession(r.Context(), abs, doc.PageCount, s.store, s.store)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	entry := &SessionEntry{
		ID:      pipeline.NewULID(),
		RelPath: req.Path,
		AbsPath: abs,
		Doc:     doc,
		Session: sess,
	}
	s.sessions.Put(entry)

	if err := s.recent.Touch(req.Path); err != nil {
		s.log.Warn("last-opened registry update failed", "path", req.Path, "error", err)
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": entry.ID,
		"path":       entry.RelPath,
		"page_count": doc.PageCount,
		"outline":    sess.View(),
	})
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	s.sessions.Delete(entry.ID)
	writeJSON(w, http.StatusOK, map[string]any{"closed": true, "dirty": entry.Session.Dirty()})
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	sess := entry.Session
	writeJSON(w, http.StatusOK, map[string]any{
		"outline":    sess.View(),
		"selected":   sess.Selected(),
		"dirty":      sess.Dirty(),
		"page_count": sess.PageCount(),
	})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		ID outline.NodeID `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	ok := entry.Session.Select(req.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"selected": entry.Session.Selected(),
		"found":    ok,
	})
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		Title    string `json:"title"`
		Page     int    `json:"page"`
		Position string `json:"position"`
	}
	if !decode(w, r, &req) {
		return
	}
	pos, err := parsePosition(req.Position)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := entry.Session.Insert(req.Title, req.Page, pos)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":      id,
		"outline": entry.Session.View(),
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		ID outline.NodeID `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}

	descendants, ok, err := entry.Session.Delete(req.ID)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"removed":     ok,
		"descendants": descendants,
		"outline":     entry.Session.View(),
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		ID    outline.NodeID `json:"id"`
		Title string         `json:"title"`
		Page  int            `json:"page"`
	}
	if !decode(w, r, &req) {
		return
	}

	changed, err := entry.Session.Edit(req.ID, req.Title, req.Page)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changed": changed,
		"outline": entry.Session.View(),
	})
}

func (s *Server) handleRelocate(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		Dragged  outline.NodeID `json:"dragged"`
		Target   outline.NodeID `json:"target"`
		Position string         `json:"position"`
	}
	if !decode(w, r, &req) {
		return
	}
	pos, err := parsePosition(req.Position)
	if err != nil || (pos != outline.Before && pos != outline.After) {
		jsonError(w, "position must be before or after", http.StatusBadRequest)
		return
	}

	reason, err := entry.Session.Relocate(req.Dragged, req.Target, pos)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": reason == outline.RejectNone,
		"reason":   reason,
		"outline":  entry.Session.View(),
	})
}

func (s *Server) handleRelocateRoot(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		Dragged outline.NodeID `json:"dragged"`
	}
	if !decode(w, r, &req) {
		return
	}

	reason, err := entry.Session.RelocateToRootEnd(req.Dragged)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": reason == outline.RejectNone,
		"reason":   reason,
		"outline":  entry.Session.View(),
	})
}

func (s *Server) handleProposeDrop(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		Dragged outline.NodeID `json:"dragged"`
		Target  outline.NodeID `json:"target"`
	}
	if !decode(w, r, &req) {
		return
	}

	reason := entry.Session.ProposeDrop(req.Dragged, req.Target)
	writeJSON(w, http.StatusOK, map[string]any{
		"accepted": reason == outline.RejectNone,
		"reason":   reason,
	})
}

func (s *Server) handleCascade(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if !decode(w, r, &req) {
		return
	}

	res, err := entry.Session.Cascade(req.Delta)
	if err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changed": res.Changed,
		"clamped": res.Clamped,
		"outline": entry.Session.View(),
	})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	if err := entry.Session.Save(r.Context()); err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dirty": entry.Session.Dirty()})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		Discard bool `json:"discard"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := entry.Session.Reload(r.Context(), req.Discard); err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"outline": entry.Session.View(),
		"dirty":   entry.Session.Dirty(),
	})
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	chapters := entry.Session.Chapters()
	if chapters == nil {
		chapters = []outline.Chapter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"chapters": chapters})
}

// handleSplitPlan plans per-chapter page ranges from the outline's top
// level. With ?text=1 each range carries its extracted page text, for
// downstream per-chapter processing.
func (s *Server) handleSplitPlan(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}

	plan := split.Plan(entry.Session.Chapters(), entry.Session.PageCount())
	if plan == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ranges": []split.Range{}})
		return
	}

	if r.URL.Query().Get("text") == "" {
		writeJSON(w, http.StatusOK, map[string]any{"ranges": plan})
		return
	}

	type textedRange struct {
		split.Range
		Text string `json:"text"`
	}
	out := make([]textedRange, 0, len(plan))
	for _, rg := range plan {
		text, err := split.ChapterText(s.reader, entry.AbsPath, rg)
		if err != nil {
			jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		out = append(out, textedRange{Range: rg, Text: text})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ranges": out})
}

func parsePosition(s string) (outline.Position, error) {
	switch p := outline.Position(s); p {
	case outline.RootEnd, outline.Before, outline.After, outline.Child:
		return p, nil
	default:
		return "", fmt.Errorf("unknown position %q", s)
	}
}

// sessionErrorStatus maps engine rejections onto HTTP status codes.
// Validation rejections are the client's problem; in-flight saves and
// dirty-reload refusals are conflicts to retry or confirm.
func sessionErrorStatus(err error) int {
	if errors.Is(err, outline.ErrSaveInFlight) || errors.Is(err, outline.ErrDirty) {
		return http.StatusConflict
	}
	var pre *outline.PageRangeError
	if errors.Is(err, outline.ErrEmptyTitle) || errors.Is(err, outline.ErrNoSelection) || errors.As(err, &pre) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
