package extract

import (
	"reflect"
	"testing"

	"github.com/pagemark/pagemark/internal/outline"
)

func TestBuildTreeNestsByLevel(t *testing.T) {
	entries := []Entry{
		{Level: 1, Title: "Part I", Page: 1},
		{Level: 2, Title: "Chapter 1", Page: 3},
		{Level: 3, Title: "1.1", Page: 4},
		{Level: 2, Title: "Chapter 2", Page: 20},
		{Level: 1, Title: "Part II", Page: 50},
	}

	got := BuildTree(entries)
	want := []outline.External{
		{Title: "Part I", Page: 1, Children: []outline.External{
			{Title: "Chapter 1", Page: 3, Children: []outline.External{
				{Title: "1.1", Page: 4},
			}},
			{Title: "Chapter 2", Page: 20},
		}},
		{Title: "Part II", Page: 50},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tree:\n got %+v\nwant %+v", got, want)
	}
}

func TestBuildTreeLevelJump(t *testing.T) {
	// A jump from level 1 to level 3 nests under the last entry seen.
	entries := []Entry{
		{Level: 1, Title: "Chapter", Page: 1},
		{Level: 3, Title: "Deep", Page: 2},
		{Level: 1, Title: "Next", Page: 9},
	}
	got := BuildTree(entries)
	if len(got) != 2 {
		t.Fatalf("roots: got %d, want 2", len(got))
	}
	if len(got[0].Children) != 1 || got[0].Children[0].Title != "Deep" {
		t.Errorf("level jump should nest under previous entry: %+v", got[0])
	}
}

func TestFlattenTreeInvertsBuildTree(t *testing.T) {
	entries := []Entry{
		{Level: 1, Title: "A", Page: 1},
		{Level: 2, Title: "A.1", Page: 2},
		{Level: 2, Title: "A.2", Page: 5},
		{Level: 1, Title: "B", Page: 9},
	}
	got := FlattenTree(BuildTree(entries))
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("round trip:\n got %+v\nwant %+v", got, entries)
	}
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		ok    bool
	}{
		{"valid", Entry{Level: 1, Title: "Intro", Page: 1}, true},
		{"blank title", Entry{Level: 1, Title: "   ", Page: 1}, false},
		{"zero page", Entry{Level: 1, Title: "Intro", Page: 0}, false},
		{"negative page", Entry{Level: 2, Title: "Intro", Page: -3}, false},
		{"level floor", Entry{Level: 0, Title: "Intro", Page: 1}, true},
		{"level cap", Entry{Level: 99, Title: "Intro", Page: 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.entry
			if got := ValidateEntry(&e); got != tc.ok {
				t.Fatalf("got %v, want %v", got, tc.ok)
			}
			if !tc.ok {
				return
			}
			if e.Level < 1 || e.Level > MaxLevel {
				t.Errorf("level not normalized: %d", e.Level)
			}
		})
	}
}

func TestStripCodeBlock(t *testing.T) {
	raw := "```json\n{\"toc\": []}\n```"
	if got := stripCodeBlock(raw); got != `{"toc": []}` {
		t.Errorf("got %q", got)
	}
	plain := `{"toc": []}`
	if got := stripCodeBlock(plain); got != plain {
		t.Errorf("unfenced text altered: %q", got)
	}
}
