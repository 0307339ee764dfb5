package util

import "strings"

// Coalesce returns the first non-zero value, or the zero value if all are zero.
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// NormalizeExtension lowercases a file extension and strips any leading dot,
// so "SHP", ".shp" and "shp" all compare equal.
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// NormalizeExtensions applies NormalizeExtension to every entry, dropping
// entries that normalize to the empty string.
func NormalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		if n := NormalizeExtension(e); n != "" {
			out = append(out, n)
		}
	}
	return out
}
