// Package split plans per-chapter sub-documents from the outline's
// top-level entries: each chapter starts at its own page and ends just
// before the next chapter (or at the end of the document).
package split

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pagemark/pagemark/internal/outline"
)

// Range is one planned chapter extraction.
type Range struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Start    int    `json:"start"` // 1-based, inclusive
	End      int    `json:"end"`   // 1-based, inclusive
}

// Plan turns selected chapters into page ranges. Chapters are sorted by
// page; boundaries clamp into [1, pageCount] and never invert. An empty
// selection or an unknown page count yields no plan.
func Plan(chapters []outline.Chapter, pageCount int) []Range {
	if len(chapters) == 0 || pageCount < 1 {
		return nil
	}

	sorted := make([]outline.Chapter, len(chapters))
	copy(sorted, chapters)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	ranges := make([]Range, 0, len(sorted))
	for i, ch := range sorted {
		start := ch.Page
		end := pageCount
		if i+1 < len(sorted) {
			end = sorted[i+1].Page - 1
		}

		if start < 1 {
			start = 1
		}
		if start > pageCount {
			start = pageCount
		}
		if end > pageCount {
			end = pageCount
		}
		if end < start {
			end = start
		}

		ranges = append(ranges, Range{
			Title:    ch.Title,
			Filename: SanitizeFilename(ch.Title) + ".pdf",
			Start:    start,
			End:      end,
		})
	}
	return ranges
}

// maxFilenameRunes caps sanitized names well under common filesystem
// limits, leaving room for numbering suffixes and the extension.
const maxFilenameRunes = 120

// SanitizeFilename turns a chapter title into a safe file name: NFC
// normalization, path and shell-hostile characters replaced, whitespace
// collapsed, length capped.
func SanitizeFilename(title string) string {
	s := norm.NFC.String(strings.TrimSpace(title))

	var b strings.Builder
	for _, r := range s {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\x00':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	s = strings.Join(strings.Fields(b.String()), " ")
	s = strings.Trim(s, ". ")

	runes := []rune(s)
	if len(runes) > maxFilenameRunes {
		s = string(runes[:maxFilenameRunes])
	}
	if s == "" {
		s = "chapter"
	}
	return s
}

// ChapterText extracts the plain text of one planned range, for downstream
// per-chapter summarization.
func ChapterText(r Reader, docPath string, rg Range) (string, error) {
	text, err := r.PageText(docPath, rg.Start, rg.End)
	if err != nil {
		return "", fmt.Errorf("chapter %q: %w", rg.Title, err)
	}
	return text, nil
}

// Reader is the slice of the PDF reader this package needs.
type Reader interface {
	PageText(path string, start, end int) (string, error)
}
