// Package effects applies cursor and selection decorations to a token
// sequence. Both operations are copy-on-write: input tokens are never
// mutated, untouched tokens are reused in the output, and invalid requests
// return the input unchanged rather than failing.
package effects

import (
	"github.com/zjrosen/vimshot/internal/log"
	"github.com/zjrosen/vimshot/internal/token"
)

// ApplyCursor marks the character at position with a block cursor
// (token.CursorBlock, normal mode) or inserts a zero-width bar cursor at
// position (token.CursorInsert, insert mode). Positions outside
// [0, textLength] are a no-op.
func ApplyCursor(tokens []*token.Token, position int, mark token.CursorMark) []*token.Token {
	if len(tokens) == 0 {
		return tokens
	}
	if position < 0 || position > textEnd(tokens) {
		log.Warn(log.CatEffects, "cursor position out of range", "position", position)
		return tokens
	}

	if mark == token.CursorInsert {
		return applyInsertCursor(tokens, position)
	}
	return applyBlockCursor(tokens, position, mark)
}

// applyBlockCursor puts the cursor on the character owning position. The
// cursor never lands on a zero-width gap when a non-empty token owns the
// character; the zero-width synthesized token only appears at end-of-text
// or in a genuine gap.
func applyBlockCursor(tokens []*token.Token, position int, mark token.CursorMark) []*token.Token {
	for i, t := range tokens {
		if t.ZeroWidth() || !t.Contains(position) {
			continue
		}

		out := make([]*token.Token, 0, len(tokens)+2)
		out = append(out, tokens[:i]...)

		if !t.CanSplit() {
			// Recursive tokens self-render the cursor at the embedded offset.
			c := t.Clone()
			c.PartialCursor = &token.CursorEffect{Position: position, Mark: mark}
			out = append(out, c)
		} else {
			if position > t.Start {
				out = append(out, t.Slice(t.Start, position))
			}
			cur := t.Slice(position, position+1)
			cur.Cursor = mark
			out = append(out, cur)
			if position+1 < t.End {
				out = append(out, t.Slice(position+1, t.End))
			}
		}

		out = append(out, tokens[i+1:]...)
		return out
	}

	// No token owns the character: end of text, or a gap in coverage.
	return insertZeroWidth(tokens, position, mark)
}

// applyInsertCursor puts a zero-width bar cursor between characters. When
// position is a boundary shared by two tokens, the cursor goes before the
// next token's start.
func applyInsertCursor(tokens []*token.Token, position int) []*token.Token {
	cur := token.NewZeroWidth(token.CursorInsert, position)

	// Boundary match first: prefer start-of-next over inside/end matches.
	for i, t := range tokens {
		if t.ZeroWidth() {
			continue
		}
		if t.Start == position {
			return spliceAt(tokens, i, cur)
		}
	}

	for i, t := range tokens {
		if t.ZeroWidth() {
			continue
		}
		if t.Start < position && position < t.End {
			if !t.CanSplit() {
				c := t.Clone()
				c.PartialCursor = &token.CursorEffect{Position: position, Mark: token.CursorInsert}
				out := make([]*token.Token, 0, len(tokens))
				out = append(out, tokens[:i]...)
				out = append(out, c)
				out = append(out, tokens[i+1:]...)
				return out
			}
			out := make([]*token.Token, 0, len(tokens)+2)
			out = append(out, tokens[:i]...)
			out = append(out, t.Slice(t.Start, position), cur, t.Slice(position, t.End))
			out = append(out, tokens[i+1:]...)
			return out
		}
		if t.End == position {
			return spliceAt(tokens, i+1, cur)
		}
	}

	// Unreachable when coverage holds, but never fail on a stray offset.
	return insertZeroWidth(tokens, position, token.CursorInsert)
}

// insertZeroWidth places a synthesized zero-width cursor token at the
// correct sorted index for its offset.
func insertZeroWidth(tokens []*token.Token, position int, mark token.CursorMark) []*token.Token {
	cur := token.NewZeroWidth(mark, position)
	for i, t := range tokens {
		if t.Start >= position {
			return spliceAt(tokens, i, cur)
		}
	}
	return spliceAt(tokens, len(tokens), cur)
}

func spliceAt(tokens []*token.Token, i int, tok *token.Token) []*token.Token {
	out := make([]*token.Token, 0, len(tokens)+1)
	out = append(out, tokens[:i]...)
	out = append(out, tok)
	out = append(out, tokens[i:]...)
	return out
}

func textEnd(tokens []*token.Token) int {
	if len(tokens) == 0 {
		return 0
	}
	return tokens[len(tokens)-1].End
}
