package importer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pagemark/pagemark/internal/outline"
)

func TestTextImporterIndentAndPages(t *testing.T) {
	src := "Part One 1\n" +
		"\tChapter 1 ........ 3\n" +
		"\tChapter 2  17\n" +
		"Part Two 88\n" +
		"\n" +
		"\tAppendix\n"

	got, err := (&TextImporter{}).Import(strings.NewReader(src), "toc.txt")
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	want := []outline.External{
		{Title: "Part One", Page: 1, Children: []outline.External{
			{Title: "Chapter 1", Page: 3},
			{Title: "Chapter 2", Page: 17},
		}},
		{Title: "Part Two", Page: 88, Children: []outline.External{
			{Title: "Appendix", Page: 1},
		}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outline:\n got %+v\nwant %+v", got, want)
	}
}

func TestSplitTrailingPage(t *testing.T) {
	tests := []struct {
		line  string
		title string
		page  int
	}{
		{"Chapter 1 ..... 12", "Chapter 1", 12},
		{"Chapter 1", "Chapter 1", 1},
		{"Chapter -5", "Chapter -5", 1},
		{"42", "42", 1},
		{"Intro 7", "Intro", 7},
	}
	for _, tc := range tests {
		title, page := splitTrailingPage(tc.line)
		if title != tc.title || page != tc.page {
			t.Errorf("%q: got (%q, %d), want (%q, %d)", tc.line, title, page, tc.title, tc.page)
		}
	}
}

func TestIndentLevelSpaces(t *testing.T) {
	if got := indentLevel("    deep"); got != 3 {
		t.Errorf("four spaces: got %d, want 3", got)
	}
	if got := indentLevel("top"); got != 1 {
		t.Errorf("no indent: got %d, want 1", got)
	}
}
