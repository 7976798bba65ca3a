package importer

import (
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/outline"
)

// MarkdownImporter builds an outline from Markdown headings using goldmark.
type MarkdownImporter struct{}

func (p *MarkdownImporter) Import(r io.Reader, filename string) ([]outline.External, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var entries []extract.Entry
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}
		title := strings.TrimSpace(string(heading.Text(src)))
		if title == "" {
			continue
		}
		entries = append(entries, extract.Entry{
			Level: heading.Level,
			Title: title,
			Page:  1,
		})
	}

	return nest(entries), nil
}
