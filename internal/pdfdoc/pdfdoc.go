// Package pdfdoc is the reading side of the PDF boundary: page counts for
// the editing session, page-range text for TOC recognition, and the library
// listing.
package pdfdoc

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// Reader opens PDFs with the Go library first, falling back to pdftotext
// for text extraction if available.
type Reader struct {
	FallbackPdftotext bool
}

// Document describes an opened PDF.
type Document struct {
	Path      string `json:"path"`
	PageCount int    `json:"pageCount"`
}

// Open verifies the file is a readable PDF and returns its page count.
func (r *Reader) Open(path string) (Document, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return Document{Path: path, PageCount: reader.NumPage()}, nil
}

// PageRangeError reports an invalid 1-based page range request.
type PageRangeError struct {
	Start, End, Total int
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("invalid page range %d-%d (document has %d pages)", e.Start, e.End, e.Total)
}

// PageText extracts plain text of the inclusive 1-based page range
// [start, end].
func (r *Reader) PageText(path string, start, end int) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		if r.FallbackPdftotext {
			return pdftotextRange(path, start, end)
		}
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	if start < 1 || end > total || start > end {
		return "", &PageRangeError{Start: start, End: end, Total: total}
	}

	var buf strings.Builder
	extracted := false
	for i := start; i <= end; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
		extracted = true
	}

	if !extracted && r.FallbackPdftotext {
		return pdftotextRange(path, start, end)
	}
	return buf.String(), nil
}

func pdftotextRange(path string, start, end int) (string, error) {
	cmd := exec.Command("pdftotext", "-layout",
		"-f", strconv.Itoa(start), "-l", strconv.Itoa(end), path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

// IsPDF reports whether the path names an existing .pdf file.
func IsPDF(path string) bool {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
