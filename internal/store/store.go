// Package store persists outlines as sidecar JSON files next to their
// documents, and tracks when documents were last opened.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pagemark/pagemark/internal/outline"
)

// Store reads and writes `<doc>.outline.json` sidecars. It implements
// outline.Source and outline.Sink.
type Store struct{}

// New returns a sidecar store.
func New() *Store {
	return &Store{}
}

// SidecarPath maps a document path to its outline sidecar.
func SidecarPath(docPath string) string {
	return strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ".outline.json"
}

// LoadOutline reads the document's sidecar. A missing sidecar means "no
// outline yet" and hydrates empty.
func (s *Store) LoadOutline(_ context.Context, docPath string) ([]outline.External, error) {
	data, err := os.ReadFile(SidecarPath(docPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read outline: %w", err)
	}

	var ext []outline.External
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("decode outline %s: %w", SidecarPath(docPath), err)
	}
	return ext, nil
}

// StoreOutline replaces the sidecar atomically: write a temp file in the
// same directory, then rename over the target.
func (s *Store) StoreOutline(_ context.Context, docPath string, ext []outline.External) error {
	if ext == nil {
		ext = []outline.External{}
	}
	data, err := json.MarshalIndent(ext, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outline: %w", err)
	}
	return writeAtomic(SidecarPath(docPath), data)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
