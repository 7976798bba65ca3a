package extract

import "strings"

const tocPrompt = `The text below was extracted from the table-of-contents pages of a book. Reconstruct the complete table of contents.

Return strict JSON with no surrounding prose or markdown fences:
{
  "toc": [
    {"level": 1, "title": "Chapter title", "page": 12},
    {"level": 2, "title": "Section title", "page": 14}
  ]
}

Rules:
- level: 1 = chapter/part, 2 = section, 3 = subsection (judge by numbering or indentation)
- page: the printed page number shown in the TOC, as an integer
- title: keep the original wording; do not translate or rephrase
- preserve the order the entries appear in
- skip dot leaders, running heads, and anything that is not a TOC entry
- if an entry has no visible page number, omit the entry`

// BuildTOCPrompt assembles the recognition prompt around the extracted page
// text.
func BuildTOCPrompt(tocText string) string {
	var sb strings.Builder
	sb.WriteString(tocPrompt)
	sb.WriteString("\n\n---\n")
	sb.WriteString(tocText)
	return sb.String()
}
