// Package avatar holds the fixed, ordered avatar catalog. Identifiers are
// 1-based positions encoded as strings and are what travels on the wire.
package avatar

import "strconv"

// Avatar is one catalog entry.
type Avatar struct {
	ID    string
	Glyph string
	Name  string
}

var catalog = []Avatar{
	{ID: "1", Glyph: "🦁", Name: "Lion"},
	{ID: "2", Glyph: "🐯", Name: "Tiger"},
	{ID: "3", Glyph: "🦊", Name: "Fox"},
	{ID: "4", Glyph: "🐼", Name: "Panda"},
	{ID: "5", Glyph: "🐸", Name: "Frog"},
	{ID: "6", Glyph: "🦄", Name: "Unicorn"},
	{ID: "7", Glyph: "🐙", Name: "Octopus"},
	{ID: "8", Glyph: "🦋", Name: "Butterfly"},
	{ID: "9", Glyph: "🐨", Name: "Koala"},
	{ID: "10", Glyph: "🦉", Name: "Owl"},
}

// DefaultID is the first catalog entry.
const DefaultID = "1"

// All returns a copy of the catalog in display order.
func All() []Avatar {
	out := make([]Avatar, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the avatar for id.
func Lookup(id string) (Avatar, bool) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 1 || n > len(catalog) || strconv.Itoa(n) != id {
		return Avatar{}, false
	}
	return catalog[n-1], true
}

// Valid reports whether id names a catalog entry.
func Valid(id string) bool {
	_, ok := Lookup(id)
	return ok
}

// Glyph returns the glyph for id, or the default glyph for unknown ids.
func Glyph(id string) string {
	if a, ok := Lookup(id); ok {
		return a.Glyph
	}
	return catalog[0].Glyph
}
