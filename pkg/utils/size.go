package utils

import "fmt"

var units = []string{"KB", "MB", "GB", "TB"}

// scale reduces b to the largest unit it fills, returning the value and unit
// index (-1 for plain bytes).
func scale(b int64) (float64, int) {
	v := float64(b)
	u := -1
	for u+1 < len(units) && v >= 1024 {
		v /= 1024
		u++
	}
	return v, u
}

// HumanizeBytes formats a byte count into a readable string, e.g. 1536 -> "1.50 KB".
func HumanizeBytes(b int64) string {
	v, u := scale(b)
	if u < 0 {
		return fmt.Sprintf("%d B", b)
	}
	return fmt.Sprintf("%.2f %s", v, units[u])
}

// HumanizeBytesCompact formats a byte count without a space or the trailing B,
// e.g. 1536 -> "1.50K", 10 -> "10B".
func HumanizeBytesCompact(b int64) string {
	v, u := scale(b)
	if u < 0 {
		return fmt.Sprintf("%dB", b)
	}
	return fmt.Sprintf("%.2f%s", v, units[u][:1])
}
