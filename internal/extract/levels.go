package extract

import "github.com/pagemark/pagemark/internal/outline"

// BuildTree nests a flat level-annotated entry list into the external
// outline shape. An entry becomes a child of the nearest preceding entry
// with a smaller level; level jumps (1 then 3) nest under the last entry
// seen, matching how printed TOCs read.
func BuildTree(entries []Entry) []outline.External {
	var roots []outline.External

	type frame struct {
		level    int
		children *[]outline.External
	}
	stack := []frame{{level: 0, children: &roots}}

	for _, e := range entries {
		node := outline.External{Title: e.Title, Page: e.Page}
		for len(stack) > 1 && stack[len(stack)-1].level >= e.Level {
			stack = stack[:len(stack)-1]
		}
		list := stack[len(stack)-1].children
		*list = append(*list, node)
		stack = append(stack, frame{level: e.Level, children: &(*list)[len(*list)-1].Children})
	}
	return roots
}

// FlattenTree is BuildTree's inverse: the external outline as
// level/title/page triples in document order, levels counted from 1.
func FlattenTree(ext []outline.External) []Entry {
	var out []Entry
	var walk func(nodes []outline.External, level int)
	walk = func(nodes []outline.External, level int) {
		for _, n := range nodes {
			out = append(out, Entry{Level: level, Title: n.Title, Page: n.Page})
			walk(n.Children, level+1)
		}
	}
	walk(ext, 1)
	return out
}
