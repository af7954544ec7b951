package token

import "github.com/rivo/uniseg"

// All offsets in this module are grapheme cluster indices, not bytes and not
// runes. A grapheme is what the user perceives as one character: "é" built
// from a base letter plus a combining accent is one grapheme, and the cursor
// always covers exactly one grapheme. The helpers below translate between
// grapheme indices and Go strings.

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// GraphemeSlice returns the substring of s covering grapheme indices
// [start, end). Out-of-range bounds are clamped; an empty or inverted range
// returns "".
func GraphemeSlice(s string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end <= start {
		return ""
	}

	idx := 0
	byteStart := -1
	rest := s
	state := -1
	consumed := 0
	for len(rest) > 0 {
		cluster, tail, _, newState := uniseg.StepString(rest, state)
		if idx == start {
			byteStart = consumed
		}
		consumed += len(cluster)
		idx++
		if idx == end {
			return s[byteStart:consumed]
		}
		rest = tail
		state = newState
	}
	if byteStart < 0 {
		return ""
	}
	return s[byteStart:]
}

// GraphemeAt returns the single grapheme cluster at the given index, or ""
// when the index is out of bounds.
func GraphemeAt(s string, idx int) string {
	return GraphemeSlice(s, idx, idx+1)
}
