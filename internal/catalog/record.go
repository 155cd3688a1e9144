package catalog

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Record is one cataloged file.
type Record struct {
	Name string
	Size int64

	// key is the lower-cased Name, computed once so comparisons don't re-map.
	key string
}

// NewRecord builds a Record, lower-casing the name for case-insensitive ordering.
// Negative sizes are clamped to zero.
func NewRecord(name string, size int64) Record {
	if size < 0 {
		size = 0
	}
	return Record{Name: name, Size: size, key: foldName(name)}
}

// Key returns the lower-cased name used for ordering and lookups.
func (r Record) Key() string { return r.key }

// foldName maps name to lower case. Unlike full case folding it never
// expands a character, so ß.txt and ss.txt keep distinct keys.
func foldName(name string) string {
	// cases.Caser keeps state and is not safe for concurrent use, so build one per call.
	return cases.Lower(language.Und).String(name)
}
