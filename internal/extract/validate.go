package extract

import "strings"

// MaxLevel caps how deep a recognized entry may nest. Deeper levels are
// clamped, not dropped: a misjudged level is still a usable entry.
const MaxLevel = 6

// ValidateEntry checks and normalizes one recognized entry in place.
// Returns false for entries that cannot be salvaged.
func ValidateEntry(e *Entry) bool {
	if e == nil {
		return false
	}
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return false
	}
	if len(e.Title) > 500 {
		e.Title = e.Title[:500]
	}
	if e.Page < 1 {
		return false
	}
	if e.Level < 1 {
		e.Level = 1
	}
	if e.Level > MaxLevel {
		e.Level = MaxLevel
	}
	return true
}
