package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pagemark/pagemark/internal/outline"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "book.pdf")
	s := New()

	ext := []outline.External{
		{Title: "Ch 1", Page: 1, Children: []outline.External{{Title: "1.1", Page: 2}}},
		{Title: "Ch 2", Page: 10},
	}
	if err := s.StoreOutline(context.Background(), doc, ext); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := s.LoadOutline(context.Background(), doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, ext) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, ext)
	}
}

func TestStoreMissingSidecarIsEmpty(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "fresh.pdf")
	got, err := New().LoadOutline(context.Background(), doc)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("expected no outline, got %+v", got)
	}
}

func TestStoreCorruptSidecarSurfacesError(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "book.pdf")
	if err := os.WriteFile(SidecarPath(doc), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New().LoadOutline(context.Background(), doc); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestStoreWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "book.pdf")
	if err := New().StoreOutline(context.Background(), doc, nil); err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := os.Stat(SidecarPath(doc) + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
	// nil outline persists as an empty array, not null.
	data, _ := os.ReadFile(SidecarPath(doc))
	if string(data) == "null" {
		t.Error("nil outline should serialize as []")
	}
}

func TestLastOpened(t *testing.T) {
	dir := t.TempDir()
	lo := NewLastOpened(dir)

	if err := lo.Touch("shelf/book.pdf"); err != nil {
		t.Fatalf("touch: %v", err)
	}
	all := lo.All()
	if _, ok := all["shelf/book.pdf"]; !ok {
		t.Errorf("registry missing entry: %+v", all)
	}

	// A broken registry degrades to empty rather than failing.
	if err := os.WriteFile(filepath.Join(dir, lastOpenedFile), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := lo.All(); len(got) != 0 {
		t.Errorf("corrupt registry should read empty, got %+v", got)
	}
	if err := lo.Touch("other.pdf"); err != nil {
		t.Fatalf("touch after corruption: %v", err)
	}
}
