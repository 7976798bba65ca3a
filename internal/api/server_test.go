package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/outline"
	"github.com/pagemark/pagemark/internal/pdfdoc"
	"github.com/pagemark/pagemark/internal/pipeline"
	"github.com/pagemark/pagemark/internal/store"
)

const testAPIKey = "test-key"

type stubParser struct {
	entries []extract.Entry
}

func (p *stubParser) ParseTOC(_ context.Context, _ string) ([]extract.Entry, error) {
	return p.entries, nil
}

type stubTexter struct {
	text string
}

func (t *stubTexter) PageText(_ string, _, _ int) (string, error) {
	return t.text, nil
}

type testEnv struct {
	srv        *Server
	sessions   *Sessions
	libraryDir string
	stop       func()
}

func newTestEnv(t *testing.T, parser pipeline.TOCParser) *testEnv {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Config{
		Port:           "0",
		LibraryDir:     dir,
		PagemarkAPIKey: testAPIKey,
		WorkerCount:    2,
		MaxQueueSize:   8,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
		SessionTTL:     time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	if parser == nil {
		parser = &stubParser{}
	}
	orch := pipeline.NewOrchestrator(cfg, parser, &stubTexter{text: "Chapter 1 .... 1"}, log)
	ctx, cancel := context.WithCancel(context.Background())
	orch.Start(ctx)

	sessions := NewSessions(cfg.SessionTTL)
	srv := NewServer(sessions, orch, nil, &pdfdoc.Reader{}, store.New(), store.NewLastOpened(dir), log, cfg)

	return &testEnv{
		srv:        srv,
		sessions:   sessions,
		libraryDir: dir,
		stop: func() {
			cancel()
			orch.Stop()
		},
	}
}

// openSession installs a session directly, sidestepping PDF parsing. The
// sidecar store still backs save and reload.
func (e *testEnv) openSession(t *testing.T, pageCount int) *SessionEntry {
	t.Helper()
	abs := filepath.Join(e.libraryDir, "book.pdf")
	st := store.New()
	sess, err := outline.NewSession(context.Background(), abs, pageCount, st, st)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	entry := &SessionEntry{
		ID:      pipeline.NewULID(),
		RelPath: "book.pdf",
		AbsPath: abs,
		Doc:     pdfdoc.Document{Path: abs, PageCount: pageCount},
		Session: sess,
	}
	e.sessions.Put(entry)
	return entry
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()

	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d", rec.Code)
	}
}

func TestHealthIsPublic(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health: %d", rec.Code)
	}
}

func TestOpenRejectsEscapingPath(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()

	rec := env.do(t, http.MethodPost, "/api/documents/open", map[string]any{"path": "../../etc/passwd"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("escape: %d", rec.Code)
	}
}

func TestListDocuments(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()

	for _, name := range []string{"a.pdf", "sub/b.pdf", "notes.txt"} {
		path := filepath.Join(env.libraryDir, name)
		os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rec := env.do(t, http.MethodGet, "/api/documents", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	docs := body["documents"].([]any)
	if len(docs) != 2 {
		t.Errorf("documents: got %d, want 2", len(docs))
	}
}

func TestSessionEditFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()
	entry := env.openSession(t, 100)
	base := "/api/sessions/" + entry.ID

	// Insert a chapter at the root end.
	rec := env.do(t, http.MethodPost, base+"/insert", map[string]any{
		"title": "Chapter 1", "page": 5, "position": "root-end",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("insert: %d %s", rec.Code, rec.Body.String())
	}
	id := decodeBody(t, rec)["id"].(float64)

	// The new node is selected; insert a child under it.
	rec = env.do(t, http.MethodPost, base+"/insert", map[string]any{
		"title": "Section 1.1", "page": 6, "position": "child",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("insert child: %d %s", rec.Code, rec.Body.String())
	}

	// Edit the chapter.
	rec = env.do(t, http.MethodPost, base+"/edit", map[string]any{
		"id": id, "title": "Chapter One", "page": 5,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit: %d %s", rec.Code, rec.Body.String())
	}
	if changed := decodeBody(t, rec)["changed"].(bool); !changed {
		t.Error("edit should report a change")
	}

	// A page beyond the document is rejected.
	rec = env.do(t, http.MethodPost, base+"/edit", map[string]any{
		"id": id, "title": "Chapter One", "page": 999,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range edit: %d", rec.Code)
	}

	// Save, then the session is clean.
	rec = env.do(t, http.MethodPost, base+"/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	if dirty := decodeBody(t, rec)["dirty"].(bool); dirty {
		t.Error("session should be clean after save")
	}
	if _, err := os.Stat(store.SidecarPath(entry.AbsPath)); err != nil {
		t.Errorf("sidecar missing: %v", err)
	}

	rec = env.do(t, http.MethodGet, base+"/outline", nil)
	body := decodeBody(t, rec)
	if body["dirty"].(bool) {
		t.Error("outline should report clean")
	}
	if roots := body["outline"].([]any); len(roots) != 1 {
		t.Errorf("roots: got %d, want 1", len(roots))
	}
}

func TestReloadRequiresDiscardWhenDirty(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()
	entry := env.openSession(t, 100)
	base := "/api/sessions/" + entry.ID

	env.do(t, http.MethodPost, base+"/insert", map[string]any{
		"title": "Draft", "page": 1, "position": "root-end",
	})

	rec := env.do(t, http.MethodPost, base+"/reload", map[string]any{"discard": false})
	if rec.Code != http.StatusConflict {
		t.Errorf("dirty reload: %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, base+"/reload", map[string]any{"discard": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("discard reload: %d %s", rec.Code, rec.Body.String())
	}
	if roots := decodeBody(t, rec)["outline"].([]any); len(roots) != 0 {
		t.Errorf("discarded outline should be empty, got %d roots", len(roots))
	}
}

func TestRelocateAndProposeDrop(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()
	entry := env.openSession(t, 100)
	base := "/api/sessions/" + entry.ID

	var ids []float64
	for _, title := range []string{"A", "B"} {
		env.do(t, http.MethodPost, base+"/select", map[string]any{"id": 0})
		rec := env.do(t, http.MethodPost, base+"/insert", map[string]any{
			"title": title, "page": 1, "position": "root-end",
		})
		ids = append(ids, decodeBody(t, rec)["id"].(float64))
	}

	rec := env.do(t, http.MethodPost, base+"/propose-drop", map[string]any{
		"dragged": ids[1], "target": ids[1],
	})
	body := decodeBody(t, rec)
	if body["accepted"].(bool) {
		t.Error("self drop should be refused")
	}

	rec = env.do(t, http.MethodPost, base+"/relocate", map[string]any{
		"dragged": ids[1], "target": ids[0], "position": "before",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("relocate: %d %s", rec.Code, rec.Body.String())
	}
	body = decodeBody(t, rec)
	if !body["accepted"].(bool) {
		t.Fatalf("relocate refused: %v", body["reason"])
	}
	roots := body["outline"].([]any)
	first := roots[0].(map[string]any)
	if first["title"] != "B" {
		t.Errorf("first root: %v", first["title"])
	}

	rec = env.do(t, http.MethodPost, base+"/relocate", map[string]any{
		"dragged": ids[1], "target": ids[0], "position": "child",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("child relocate position: %d", rec.Code)
	}
}

func TestCascadeEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()
	entry := env.openSession(t, 100)
	base := "/api/sessions/" + entry.ID

	env.do(t, http.MethodPost, base+"/insert", map[string]any{
		"title": "A", "page": 1, "position": "root-end",
	})
	rec := env.do(t, http.MethodPost, base+"/insert", map[string]any{
		"title": "B", "page": 2, "position": "root-end",
	})
	id := decodeBody(t, rec)["id"].(float64)

	env.do(t, http.MethodPost, base+"/select", map[string]any{"id": id})
	rec = env.do(t, http.MethodPost, base+"/cascade", map[string]any{"delta": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("cascade: %d %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["changed"].(float64) != 1 {
		t.Errorf("changed: %v", body["changed"])
	}
	roots := body["outline"].([]any)
	if page := roots[1].(map[string]any)["page"].(float64); page != 7 {
		t.Errorf("shifted page: %v", page)
	}
}

func TestRecognizeAndAdopt(t *testing.T) {
	parser := &stubParser{entries: []extract.Entry{
		{Level: 1, Title: "Intro", Page: 1},
		{Level: 2, Title: "Scope", Page: 2},
	}}
	env := newTestEnv(t, parser)
	defer env.stop()
	entry := env.openSession(t, 50)
	base := "/api/sessions/" + entry.ID

	rec := env.do(t, http.MethodPost, base+"/recognize", map[string]any{
		"toc_start": 3, "toc_end": 4,
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("recognize: %d %s", rec.Code, rec.Body.String())
	}
	jobID := decodeBody(t, rec)["job_id"].(string)

	// Poll until the worker finishes.
	deadline := time.Now().Add(5 * time.Second)
	var status string
	for time.Now().Before(deadline) {
		rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/recognize/%s/status", jobID), nil)
		status = decodeBody(t, rec)["status"].(string)
		if status == "completed" || status == "failed" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if status != "completed" {
		t.Fatalf("job status: %s", status)
	}

	rec = env.do(t, http.MethodPost, base+"/adopt", map[string]any{"job_id": jobID})
	if rec.Code != http.StatusOK {
		t.Fatalf("adopt: %d %s", rec.Code, rec.Body.String())
	}
	roots := decodeBody(t, rec)["outline"].([]any)
	if len(roots) != 1 {
		t.Fatalf("adopted roots: %d", len(roots))
	}
	root := roots[0].(map[string]any)
	if root["title"] != "Intro" || len(root["children"].([]any)) != 1 {
		t.Errorf("adopted tree: %+v", root)
	}
}

func TestRecognizeRejectsBadRange(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()
	entry := env.openSession(t, 10)
	base := "/api/sessions/" + entry.ID

	rec := env.do(t, http.MethodPost, base+"/recognize", map[string]any{
		"toc_start": 5, "toc_end": 99,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range recognize: %d", rec.Code)
	}
}

func TestImportMarkdown(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.md")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("# Part One\n\n## Chapter 1\n\ntext\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &buf)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	env.srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("import: %d %s", rec.Code, rec.Body.String())
	}
	roots := decodeBody(t, rec)["outline"].([]any)
	if len(roots) != 1 {
		t.Fatalf("roots: %d", len(roots))
	}
	root := roots[0].(map[string]any)
	if root["title"] != "Part One" || len(root["children"].([]any)) != 1 {
		t.Errorf("imported tree: %+v", root)
	}
}

func TestSessionNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	defer env.stop()

	rec := env.do(t, http.MethodGet, "/api/sessions/nope/outline", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: %d", rec.Code)
	}
}

func TestSessionEviction(t *testing.T) {
	sessions := NewSessions(10 * time.Millisecond)
	sessions.Put(&SessionEntry{ID: "s1"})
	if sessions.Get("s1") == nil {
		t.Fatal("session should be present")
	}
	time.Sleep(25 * time.Millisecond)
	sessions.Cleanup()
	if sessions.Get("s1") != nil {
		t.Error("idle session should be evicted")
	}
}
