package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pagemark/pagemark/internal/pipeline"
)

// handleRecognize queues a TOC recognition job over the given page range of
// the session's document. The client polls the job and adopts the result.
func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		TOCStart int `json:"toc_start"`
		TOCEnd   int `json:"toc_end"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.TOCStart < 1 || req.TOCEnd < req.TOCStart || req.TOCEnd > entry.Doc.PageCount {
		jsonError(w, fmt.Sprintf("invalid toc page range %d-%d (document has %d pages)",
			req.TOCStart, req.TOCEnd, entry.Doc.PageCount), http.StatusBadRequest)
		return
	}

	now := time.Now()
	job := &pipeline.Job{
		ID:        pipeline.NewULID(),
		DocPath:   entry.AbsPath,
		TOCStart:  req.TOCStart,
		TOCEnd:    req.TOCEnd,
		Status:    pipeline.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   job.Snapshot().Status,
		"poll_url": fmt.Sprintf("/api/recognize/%s/status", job.ID),
	})
}

func (s *Server) handleRecognizeStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleAdopt replaces the session's outline with a completed recognition
// job's result.
func (s *Server) handleAdopt(w http.ResponseWriter, r *http.Request) {
	entry := s.session(w, r)
	if entry == nil {
		return
	}
	var req struct {
		JobID string `json:"job_id"`
	}
	if !decode(w, r, &req) {
		return
	}

	job := s.orchestrator.GetJob(req.JobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if snap.Status != pipeline.StatusCompleted {
		jsonError(w, fmt.Sprintf("job is %s, not completed", snap.Status), http.StatusConflict)
		return
	}

	if err := entry.Session.Adopt(job.Result()); err != nil {
		jsonError(w, err.Error(), sessionErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": snap.EntryCount,
		"outline": entry.Session.View(),
	})
}
