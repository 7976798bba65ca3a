// Package importer builds outline guesses from the heading structure of
// companion manuscripts (Markdown, HTML, DOCX, plain text). Imported pages
// default to 1; the page cascade is the tool for fixing numbering
// afterwards.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/outline"
)

// Importer converts a document into an external outline guess.
type Importer interface {
	Import(r io.Reader, filename string) ([]outline.External, error)
}

// SupportedExtensions lists file extensions this service can import.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate importer for a filename.
func ForFile(filename string) (Importer, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextImporter{}, nil
	case ".md", ".markdown":
		return &MarkdownImporter{}, nil
	case ".html", ".htm":
		return &HTMLImporter{}, nil
	case ".docx":
		return &DOCXImporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// nest turns level-annotated headings into the nested external shape.
func nest(entries []extract.Entry) []outline.External {
	return extract.BuildTree(entries)
}
