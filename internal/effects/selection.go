package effects

import (
	"github.com/zjrosen/vimshot/internal/token"
)

// ApplySelection marks every character in [selStart, selEnd) as selected and
// the character at selEnd-1 as the selection tail (the block-style cursor at
// the end of a visual selection). Empty or inverted ranges are a no-op.
func ApplySelection(tokens []*token.Token, selStart, selEnd int) []*token.Token {
	if len(tokens) == 0 || selStart >= selEnd {
		return tokens
	}
	if selStart < 0 {
		selStart = 0
	}
	if end := textEnd(tokens); selEnd > end {
		selEnd = end
	}
	if selStart >= selEnd {
		return tokens
	}
	tail := selEnd - 1

	out := make([]*token.Token, 0, len(tokens)+4)
	for _, t := range tokens {
		if t.ZeroWidth() || t.End <= selStart || t.Start >= selEnd {
			out = append(out, t)
			continue
		}

		overlapStart := max(t.Start, selStart)
		overlapEnd := min(t.End, selEnd)

		if !t.CanSplit() {
			// Recursive tokens always take the character-level path; a
			// coarse whole-token flag would over-highlight nested content
			// outside the true overlap.
			c := t.Clone()
			c.PartialSelection = &token.SelectionEffect{Start: overlapStart, End: overlapEnd, Tail: tail}
			out = append(out, c)
			continue
		}

		if overlapStart == t.Start && overlapEnd == t.End && !t.Contains(tail) {
			c := t.Clone()
			c.Selected = true
			out = append(out, c)
			continue
		}
		if overlapStart == t.Start && overlapEnd == t.End && t.Len() == 1 {
			c := t.Clone()
			c.Selected = true
			c.SelectedTail = true
			out = append(out, c)
			continue
		}

		if overlapStart > t.Start {
			out = append(out, t.Slice(t.Start, overlapStart))
		}
		out = appendSelected(out, t, overlapStart, overlapEnd, tail)
		if overlapEnd < t.End {
			out = append(out, t.Slice(overlapEnd, t.End))
		}
	}
	return out
}

// appendSelected emits the selected fragment(s) of t covering
// [overlapStart, overlapEnd), splitting around the tail character so that
// exactly one single-character fragment carries SelectedTail.
func appendSelected(out []*token.Token, t *token.Token, overlapStart, overlapEnd, tail int) []*token.Token {
	if tail < overlapStart || tail >= overlapEnd {
		sel := t.Slice(overlapStart, overlapEnd)
		sel.Selected = true
		return append(out, sel)
	}

	if tail > overlapStart {
		sel := t.Slice(overlapStart, tail)
		sel.Selected = true
		out = append(out, sel)
	}
	last := t.Slice(tail, tail+1)
	last.Selected = true
	last.SelectedTail = true
	out = append(out, last)
	if tail+1 < overlapEnd {
		sel := t.Slice(tail+1, overlapEnd)
		sel.Selected = true
		out = append(out, sel)
	}
	return out
}
