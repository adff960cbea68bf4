package classpath

import (
	"strconv"
	"strings"
)

// NumericParts splits a version on every non digit and returns the numbers
func NumericParts(version string) []uint64 {
	fields := strings.FieldsFunc(version, func(r rune) bool { return r < '0' || r > '9' })
	parts := make([]uint64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			continue
		}
		parts = append(parts, v)
	}
	return parts
}

// CompareVersions compares the numeric parts of two versions. Missing parts count as 0.
// Versions with equal numbers are ordered as strings, so the result is only 0 for a == b.
func CompareVersions(a, b string) int {
	ap, bp := NumericParts(a), NumericParts(b)
	n := len(ap)
	if len(bp) > n {
		n = len(bp)
	}
	for i := 0; i < n; i++ {
		var av, bv uint64
		if i < len(ap) {
			av = ap[i]
		}
		if i < len(bp) {
			bv = bp[i]
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return strings.Compare(a, b)
}
