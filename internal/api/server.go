// Package api exposes the outline editing engine over HTTP: opening
// documents, mutating their outlines through sessions, planning chapter
// splits, and running TOC recognition jobs.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/pdfdoc"
	"github.com/pagemark/pagemark/internal/pipeline"
	"github.com/pagemark/pagemark/internal/store"
)

// Server is the HTTP API server for pagemark.
type Server struct {
	router       chi.Router
	sessions     *Sessions
	orchestrator *pipeline.Orchestrator
	claude       *extract.ClaudeClient
	reader       *pdfdoc.Reader
	store        *store.Store
	recent       *store.LastOpened
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(sessions *Sessions, orch *pipeline.Orchestrator, claude *extract.ClaudeClient, reader *pdfdoc.Reader, st *store.Store, recent *store.LastOpened, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions:     sessions,
		orchestrator: orch,
		claude:       claude,
		reader:       reader,
		store:        st,
		recent:       recent,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.PagemarkAPIKey, s.log))

		r.Get("/api/documents", s.handleListDocuments)
		r.Post("/api/documents/open", s.handleOpenDocument)
		r.Post("/api/import", s.handleImport)
		r.Get("/api/recognize/{jobID}/status", s.handleRecognizeStatus)
		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", s.handleCloseSession)
			r.Get("/outline", s.handleOutline)
			r.Post("/select", s.handleSelect)
			r.Post("/insert", s.handleInsert)
			r.Post("/delete", s.handleDelete)
			r.Post("/edit", s.handleEdit)
			r.Post("/relocate", s.handleRelocate)
			r.Post("/relocate-root", s.handleRelocateRoot)
			r.Post("/propose-drop", s.handleProposeDrop)
			r.Post("/cascade", s.handleCascade)
			r.Post("/save", s.handleSave)
			r.Post("/reload", s.handleReload)
			r.Get("/chapters", s.handleChapters)
			r.Get("/split-plan", s.handleSplitPlan)
			r.Post("/recognize", s.handleRecognize)
			r.Post("/adopt", s.handleAdopt)
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// session resolves the URL's session ID, writing a 404 when it is unknown.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *SessionEntry {
	entry := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if entry == nil {
		jsonError(w, "session not found", http.StatusNotFound)
	}
	return entry
}

// decode reads the request body into dst, writing a 400 on malformed JSON.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
