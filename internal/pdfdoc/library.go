package pdfdoc

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ErrOutsideRoot rejects paths that escape the configured library root.
var ErrOutsideRoot = errors.New("path outside library root")

// Resolve joins ref onto root and confirms the result stays under root.
// ref may be relative ("books/intro.pdf") but never absolute.
func Resolve(root, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || filepath.IsAbs(ref) {
		return "", ErrOutsideRoot
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	abs := filepath.Clean(filepath.Join(rootAbs, ref))
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// Entry is one PDF found in the library.
type Entry struct {
	RelPath string `json:"relpath"`
	Name    string `json:"name"`
	Folder  string `json:"folder"`
}

// List walks the library root for PDF files, skipping hidden directories
// and common junk.
func List(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree, keep walking
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		folder := filepath.Dir(rel)
		if folder == "." {
			folder = ""
		}
		entries = append(entries, Entry{RelPath: rel, Name: name, Folder: folder})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !strings.EqualFold(a.Name, b.Name) {
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
		return a.RelPath < b.RelPath
	})
	return entries, nil
}
