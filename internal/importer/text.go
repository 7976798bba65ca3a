package importer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pagemark/pagemark/internal/extract"
	"github.com/pagemark/pagemark/internal/outline"
)

// TextImporter builds an outline from an indented plain-text listing, one
// entry per line. Nesting comes from leading tabs (or two spaces per
// level); a trailing integer after the title is taken as the page number.
//
//	Part One 1
//	    Chapter 1 ........ 3
//	    Chapter 2  17
type TextImporter struct{}

func (p *TextImporter) Import(r io.Reader, filename string) ([]outline.External, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var entries []extract.Entry
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		level := indentLevel(line)
		title, page := splitTrailingPage(strings.TrimSpace(line))
		if title == "" {
			continue
		}
		entries = append(entries, extract.Entry{Level: level, Title: title, Page: page})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return nest(entries), nil
}

func indentLevel(line string) int {
	spaces := 0
	level := 1
	for _, r := range line {
		switch r {
		case '\t':
			level++
		case ' ':
			spaces++
			if spaces == 2 {
				level++
				spaces = 0
			}
		default:
			return level
		}
	}
	return level
}

// splitTrailingPage splits "Chapter 1 ..... 12" into ("Chapter 1", 12).
// Lines without a trailing number get page 1. Dot leaders between title and
// page are stripped.
func splitTrailingPage(line string) (string, int) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return line, 1
	}
	last := fields[len(fields)-1]
	page, err := strconv.Atoi(last)
	if err != nil || page < 1 {
		return line, 1
	}
	title := strings.Join(fields[:len(fields)-1], " ")
	title = strings.TrimRight(title, ". ")
	if title == "" {
		// The line was just a number; keep it as the title.
		return line, 1
	}
	return title, page
}
