package effects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/vimshot/internal/grammar"
	"github.com/zjrosen/vimshot/internal/token"
)

func tokenize(text string) []*token.Token {
	return grammar.Tokenize(grammar.Plain(), text, grammar.DefaultOptions())
}

func visibleText(tokens []*token.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.Content)
	}
	return b.String()
}

func cursorAt(tokens []*token.Token) (int, *token.Token) {
	for i, t := range tokens {
		if t.Cursor != token.CursorNone {
			return i, t
		}
	}
	return -1, nil
}

// ============================================================================
// Unit Tests: Block cursor (normal mode)
// ============================================================================

func TestApplyCursor_BlockMidToken(t *testing.T) {
	toks := ApplyCursor(tokenize("hello"), 2, token.CursorBlock)
	require.Len(t, toks, 3)
	require.Equal(t, "he", toks[0].Content)
	require.Equal(t, "l", toks[1].Content)
	require.Equal(t, token.CursorBlock, toks[1].Cursor)
	require.Equal(t, "lo", toks[2].Content)
	require.Equal(t, "hello", visibleText(toks))
}

func TestApplyCursor_BlockFirstCharacter(t *testing.T) {
	toks := ApplyCursor(tokenize("ab"), 0, token.CursorBlock)
	require.Len(t, toks, 2)
	require.Equal(t, "a", toks[0].Content)
	require.Equal(t, token.CursorBlock, toks[0].Cursor)
	require.Equal(t, "b", toks[1].Content)
}

func TestApplyCursor_BlockLastCharacter(t *testing.T) {
	toks := ApplyCursor(tokenize("ab"), 1, token.CursorBlock)
	require.Len(t, toks, 2)
	require.Equal(t, "b", toks[1].Content)
	require.Equal(t, token.CursorBlock, toks[1].Cursor)
}

func TestApplyCursor_BlockSingleCharacterToken(t *testing.T) {
	toks := ApplyCursor(tokenize("x"), 0, token.CursorBlock)
	require.Len(t, toks, 1)
	require.Equal(t, token.CursorBlock, toks[0].Cursor)
}

func TestApplyCursor_BlockAtEndOfTextSynthesizesZeroWidth(t *testing.T) {
	toks := ApplyCursor(tokenize("ab"), 2, token.CursorBlock)
	require.Len(t, toks, 2)
	last := toks[1]
	require.True(t, last.ZeroWidth())
	require.Equal(t, token.CursorBlock, last.Cursor)
	require.Equal(t, 2, last.Start)
	require.Equal(t, "ab", visibleText(toks))
}

func TestApplyCursor_BlockOnNewline(t *testing.T) {
	toks := ApplyCursor(tokenize("a\nb"), 1, token.CursorBlock)
	i, cur := cursorAt(toks)
	require.NotNil(t, cur)
	require.Equal(t, 1, i)
	require.Equal(t, token.ClassNewline, cur.Class)
	require.Equal(t, "a\nb", visibleText(toks))
}

func TestApplyCursor_OutOfRangeIsNoOp(t *testing.T) {
	in := tokenize("ab")
	require.Equal(t, in, ApplyCursor(in, -1, token.CursorBlock))
	require.Equal(t, in, ApplyCursor(in, 3, token.CursorBlock))
}

func TestApplyCursor_EmptySequenceStaysEmpty(t *testing.T) {
	require.Empty(t, ApplyCursor(nil, 0, token.CursorBlock))
	require.Empty(t, ApplyCursor(nil, 0, token.CursorInsert))
}

func TestApplyCursor_DoesNotMutateInput(t *testing.T) {
	in := tokenize("hello")
	_ = ApplyCursor(in, 2, token.CursorBlock)
	require.Len(t, in, 1)
	require.Equal(t, "hello", in[0].Content)
	require.Equal(t, token.CursorNone, in[0].Cursor)
}

// ============================================================================
// Unit Tests: Insert cursor (insert mode)
// ============================================================================

func TestApplyCursor_InsertMidToken(t *testing.T) {
	toks := ApplyCursor(tokenize("hello"), 2, token.CursorInsert)
	require.Len(t, toks, 3)
	require.Equal(t, "he", toks[0].Content)
	require.True(t, toks[1].ZeroWidth())
	require.Equal(t, token.CursorInsert, toks[1].Cursor)
	require.Equal(t, "llo", toks[2].Content)
	require.Equal(t, "hello", visibleText(toks))
}

func TestApplyCursor_InsertAtStart(t *testing.T) {
	toks := ApplyCursor(tokenize("ab"), 0, token.CursorInsert)
	require.True(t, toks[0].ZeroWidth())
	require.Equal(t, token.CursorInsert, toks[0].Cursor)
	require.Equal(t, "ab", visibleText(toks))
}

func TestApplyCursor_InsertAtEnd(t *testing.T) {
	toks := ApplyCursor(tokenize("ab"), 2, token.CursorInsert)
	last := toks[len(toks)-1]
	require.True(t, last.ZeroWidth())
	require.Equal(t, token.CursorInsert, last.Cursor)
}

func TestApplyCursor_InsertBoundaryPrefersStartOfNext(t *testing.T) {
	// "a" + newline: offset 1 is both end-of-"a" and start-of-newline; the
	// bar cursor sits before the newline.
	toks := ApplyCursor(tokenize("a\nb"), 1, token.CursorInsert)
	require.Len(t, toks, 4)
	require.Equal(t, "a", toks[0].Content)
	require.True(t, toks[1].ZeroWidth())
	require.Equal(t, token.ClassNewline, toks[2].Class)
}

func TestApplyCursor_InsertNeverConsumesWidth(t *testing.T) {
	for pos := 0; pos <= 5; pos++ {
		toks := ApplyCursor(tokenize("hello"), pos, token.CursorInsert)
		require.Equal(t, "hello", visibleText(toks), "position %d", pos)
	}
}

// ============================================================================
// Unit Tests: Recursive tokens take the partial-effect path
// ============================================================================

func recursiveToken(t *testing.T) []*token.Token {
	t.Helper()
	n := &token.Node{Type: "rule", Children: []*token.Node{
		{Type: "selector", Text: ".a"},
		{Type: "punctuation", Text: "{}"},
	}}
	return []*token.Token{token.NewRecursive(n, 0)}
}

func TestApplyCursor_BlockOnRecursiveTokenRecordsPartial(t *testing.T) {
	toks := ApplyCursor(recursiveToken(t), 1, token.CursorBlock)
	require.Len(t, toks, 1, "recursive tokens are never split")
	require.NotNil(t, toks[0].PartialCursor)
	require.Equal(t, 1, toks[0].PartialCursor.Position)
	require.Equal(t, token.CursorBlock, toks[0].PartialCursor.Mark)
	require.Equal(t, token.CursorNone, toks[0].Cursor)
}

func TestApplyCursor_InsertInsideRecursiveTokenRecordsPartial(t *testing.T) {
	toks := ApplyCursor(recursiveToken(t), 2, token.CursorInsert)
	require.Len(t, toks, 1)
	require.NotNil(t, toks[0].PartialCursor)
	require.Equal(t, token.CursorInsert, toks[0].PartialCursor.Mark)
}

func TestApplyCursor_InsertAtRecursiveTokenStartStaysOutside(t *testing.T) {
	toks := ApplyCursor(recursiveToken(t), 0, token.CursorInsert)
	require.Len(t, toks, 2)
	require.True(t, toks[0].ZeroWidth())
	require.Nil(t, toks[1].PartialCursor)
}

// ============================================================================
// Property Tests: Cursor application preserves visible text
// ============================================================================

func TestApplyCursor_PreservesTextProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.StringN(0, 64, -1).Draw(t, "text")
		in := tokenize(text)
		n := token.GraphemeCount(text)
		pos := rapid.IntRange(-1, n+1).Draw(t, "pos")
		mark := token.CursorBlock
		if rapid.Bool().Draw(t, "insert") {
			mark = token.CursorInsert
		}
		out := ApplyCursor(in, pos, mark)
		if visibleText(out) != text {
			t.Fatalf("visible text changed at pos %d", pos)
		}
	})
}
