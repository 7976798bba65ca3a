package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pagemark/pagemark/internal/importer"
	"github.com/pagemark/pagemark/internal/pdfdoc"
)

// handleListDocuments lists the library's PDFs, annotated with each file's
// last-opened time when known.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	entries, err := pdfdoc.List(s.cfg.LibraryDir)
	if err != nil {
		jsonError(w, "failed to list library: "+err.Error(), http.StatusInternalServerError)
		return
	}

	recent := s.recent.All()
	type doc struct {
		pdfdoc.Entry
		LastOpened string `json:"last_opened,omitempty"`
	}
	docs := make([]doc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, doc{Entry: e, LastOpened: recent[e.RelPath]})
	}

	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleImport builds an outline guess from an uploaded companion manuscript
// (Markdown, HTML, DOCX, plain text). The guess is returned for the client
// to review and adopt into a session.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	ext, err := imp.Import(io.LimitReader(file, s.cfg.MaxUploadBytes), filename)
	if err != nil {
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"outline":  ext,
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
