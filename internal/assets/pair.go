package assets

import (
	"path"
	"strings"
)

// Pair associates one object from each source collection by a shared key
// derived from the filename.
type Pair struct {
	Key    string
	First  string
	Second string
}

// Keying extracts the pairing key from an object key.
type Keying int

const (
	// ByNumber pairs on the first run of digits in the basename.
	ByNumber Keying = iota
	// ByBasename pairs on the basename without its extension.
	ByBasename
)

func (k Keying) String() string {
	if k == ByBasename {
		return "basename"
	}
	return "number"
}

// Key returns the pairing key for objectKey, or "" when none can be
// derived.
func (k Keying) Key(objectKey string) string {
	base := path.Base(objectKey)
	stem := strings.TrimSuffix(base, path.Ext(base))
	if k == ByBasename {
		return stem
	}
	start := strings.IndexFunc(stem, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return ""
	}
	end := start
	for end < len(stem) && isDigit(stem[end]) {
		end++
	}
	digits := strings.TrimLeft(stem[start:end], "0")
	if digits == "" {
		digits = "0"
	}
	return digits
}

// PairUp intersects the keys of both collections. Pairs follow the natural
// order of the first collection. Keys present in only one collection are
// returned as unmatched so callers can log them. When a key occurs more than
// once in a collection the first occurrence in natural order wins.
func PairUp(first, second []string, keying Keying) (pairs []Pair, unmatched []string) {
	ordered := append([]string(nil), first...)
	SortNatural(ordered)

	secondByKey := make(map[string]string, len(second))
	for _, obj := range sortedCopy(second) {
		key := keying.Key(obj)
		if key == "" {
			unmatched = append(unmatched, obj)
			continue
		}
		if _, ok := secondByKey[key]; !ok {
			secondByKey[key] = obj
		}
	}

	used := make(map[string]bool, len(ordered))
	for _, obj := range ordered {
		key := keying.Key(obj)
		match, ok := secondByKey[key]
		if key == "" || !ok {
			unmatched = append(unmatched, obj)
			continue
		}
		if used[key] {
			continue
		}
		used[key] = true
		pairs = append(pairs, Pair{Key: key, First: obj, Second: match})
	}

	for key, obj := range secondByKey {
		if !used[key] {
			unmatched = append(unmatched, obj)
		}
	}
	SortNatural(unmatched)
	return pairs, unmatched
}

func sortedCopy(keys []string) []string {
	out := append([]string(nil), keys...)
	SortNatural(out)
	return out
}
