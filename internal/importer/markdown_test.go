package importer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pagemark/pagemark/internal/outline"
)

func TestMarkdownImporterHeadings(t *testing.T) {
	src := `# Part One

Some prose that should be ignored.

## Chapter 1

More prose.

### Section 1.1

## Chapter 2

# Part Two
`
	got, err := (&MarkdownImporter{}).Import(strings.NewReader(src), "book.md")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := []outline.External{
		{Title: "Part One", Page: 1, Children: []outline.External{
			{Title: "Chapter 1", Page: 1, Children: []outline.External{
				{Title: "Section 1.1", Page: 1},
			}},
			{Title: "Chapter 2", Page: 1},
		}},
		{Title: "Part Two", Page: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outline:\n got %+v\nwant %+v", got, want)
	}
}

func TestMarkdownImporterNoHeadings(t *testing.T) {
	got, err := (&MarkdownImporter{}).Import(strings.NewReader("just text\n\nmore text"), "notes.md")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty outline, got %+v", got)
	}
}

func TestHTMLImporterHeadings(t *testing.T) {
	src := `<html><head><title>ignored</title></head><body>
<h1>Intro</h1><p>text</p>
<h2>Background</h2>
<nav><h1>skip me</h1></nav>
<h1>Conclusion</h1>
</body></html>`

	got, err := (&HTMLImporter{}).Import(strings.NewReader(src), "book.html")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := []outline.External{
		{Title: "Intro", Page: 1, Children: []outline.External{
			{Title: "Background", Page: 1},
		}},
		{Title: "Conclusion", Page: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outline:\n got %+v\nwant %+v", got, want)
	}
}

func TestForFileDispatch(t *testing.T) {
	cases := map[string]bool{
		"book.md":   true,
		"book.HTML": true,
		"book.docx": true,
		"toc.txt":   true,
		"book.pdf":  false,
		"book.csv":  false,
	}
	for name, ok := range cases {
		_, err := ForFile(name)
		if ok && err != nil {
			t.Errorf("%s: unexpected error %v", name, err)
		}
		if !ok && err == nil {
			t.Errorf("%s: expected dispatch error", name)
		}
		if got := IsSupportedExtension(name); got != ok {
			t.Errorf("IsSupportedExtension(%s) = %v, want %v", name, got, ok)
		}
	}
}
