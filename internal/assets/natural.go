package assets

import (
	"path"
	"sort"
	"strings"
)

// NaturalLess orders object keys by basename, comparing digit runs
// numerically and everything else case-insensitively, so img_2 sorts before
// img_10.
func NaturalLess(a, b string) bool {
	return naturalCompare(path.Base(a), path.Base(b)) < 0
}

// SortNatural sorts keys in place using NaturalLess.
func SortNatural(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return NaturalLess(keys[i], keys[j]) })
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, cb := chunk(a), chunk(b)
		a, b = a[len(ca):], b[len(cb):]

		da, db := isDigit(ca[0]), isDigit(cb[0])
		switch {
		case da && db:
			if c := compareDigits(ca, cb); c != 0 {
				return c
			}
		case da != db:
			// digits sort before letters, mirroring int < str ordering
			if da {
				return -1
			}
			return 1
		default:
			if c := strings.Compare(strings.ToLower(ca), strings.ToLower(cb)); c != 0 {
				return c
			}
		}
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func chunk(s string) string {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i]
}

func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
