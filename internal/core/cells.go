package core

import (
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// HeaderIndex maps lowercase header names to their column position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a lookup from a header row. Names are lowercased
// and trimmed; on duplicate headers the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := idx[key]; !ok && key != "" {
			idx[key] = i
		}
	}
	return idx
}

// getCell returns the cleaned cell for a named column, or "" when the
// column is missing from the header or the row is short.
func getCell(row []string, idx HeaderIndex, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return CleanCell(row[i])
}

// CleanCell normalizes one raw cell: trims whitespace including NBSP and
// maps the usual null sentinels to the empty string.
func CleanCell(s string) string {
	s = strings.Trim(s, " \t\r\n ")
	switch strings.ToLower(s) {
	case "", "-", "nan", "none", "null", "n/a", "unknown":
		return ""
	}
	return s
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// toText wraps a cleaned string as a nullable pgtype.Text.
func toText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
