package utils

import "strings"

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NilIfBlank maps "" (after trimming) to nil for nullable columns.
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// AppendLine joins note onto existing with a newline; an empty existing yields note.
func AppendLine(existing *string, note string) string {
	if existing == nil || *existing == "" {
		return note
	}
	return *existing + "\n" + note
}

// NormalizeEmail lower-cases and trims an address before lookups.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
