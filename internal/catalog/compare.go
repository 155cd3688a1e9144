package catalog

import "strings"

// Order describes how the chain is currently arranged.
type Order int

const (
	Unordered Order = iota
	ByName
	BySize
)

func (o Order) String() string {
	switch o {
	case ByName:
		return "name"
	case BySize:
		return "size"
	default:
		return "unordered"
	}
}

// compareByName is the case-insensitive lexicographic ordering.
func compareByName(a, b *Record) int {
	return strings.Compare(a.key, b.key)
}

// compareBySize is the ascending numeric ordering.
func compareBySize(a, b *Record) int {
	switch {
	case a.Size < b.Size:
		return -1
	case a.Size > b.Size:
		return 1
	default:
		return 0
	}
}
