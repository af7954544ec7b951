package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimshot/internal/token"
)

// ============================================================================
// Unit Tests: Block cursor inside nested markup
// ============================================================================

func TestRenderNodeWithCursor_BlockWrapsOneGrapheme(t *testing.T) {
	// ".a{color}" with the cursor on "c" (absolute offset 3).
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialCursor = &token.CursorEffect{Position: 3, Mark: token.CursorBlock}

	out := renderNodeWithCursor(tok, DefaultTheme())
	require.Contains(t, out, `<span class="property"><span class="cursor">c</span>olor</span>`)
	require.Equal(t, ".a{color}", stripTags(out))
}

func TestRenderNodeWithCursor_RespectsTokenStartOffset(t *testing.T) {
	// Token sits at offset 5; absolute position 5 is its first grapheme.
	tok := token.NewRecursive(cssRule(), 5)
	tok.PartialCursor = &token.CursorEffect{Position: 5, Mark: token.CursorBlock}

	out := renderNodeWithCursor(tok, DefaultTheme())
	require.Contains(t, out, `<span class="cursor">.</span>`)
}

func TestRenderNodeWithCursor_BlockOnLastGrapheme(t *testing.T) {
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialCursor = &token.CursorEffect{Position: 8, Mark: token.CursorBlock}

	out := renderNodeWithCursor(tok, DefaultTheme())
	require.Contains(t, out, `<span class="cursor">}</span>`)
	require.Equal(t, ".a{color}", stripTags(out))
}

// ============================================================================
// Unit Tests: Insert cursor inside nested markup
// ============================================================================

func TestRenderNodeWithCursor_InsertBetweenGraphemes(t *testing.T) {
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialCursor = &token.CursorEffect{Position: 4, Mark: token.CursorInsert}

	out := renderNodeWithCursor(tok, DefaultTheme())
	require.Contains(t, out, `c<span class="cursor-insert"></span>olor`)
	require.Equal(t, ".a{color}", stripTags(out))
}

func TestRenderNodeWithCursor_InsertPlacedExactlyOnce(t *testing.T) {
	// Offset 3 is both the end of "{" and the start of "color"; exactly one
	// marker must appear.
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialCursor = &token.CursorEffect{Position: 3, Mark: token.CursorInsert}

	out := renderNodeWithCursor(tok, DefaultTheme())
	require.Equal(t, 1, countOccurrences(out, `<span class="cursor-insert"></span>`))
}

func TestRenderNodeWithCursor_InsertAtTokenEnd(t *testing.T) {
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialCursor = &token.CursorEffect{Position: 9, Mark: token.CursorInsert}

	out := renderNodeWithCursor(tok, DefaultTheme())
	require.Contains(t, out, `</span><span class="cursor-insert"></span>`)
	require.Equal(t, ".a{color}", stripTags(out))
}

// ============================================================================
// Unit Tests: Selection inside nested markup
// ============================================================================

func TestRenderNodeWithSelection_WrapsOverlapPerLeaf(t *testing.T) {
	// Select "a{colo" = offsets [1,7), tail at 6.
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialSelection = &token.SelectionEffect{Start: 1, End: 7, Tail: 6}

	out := renderNodeWithSelection(tok, DefaultTheme())
	require.Contains(t, out, `<span class="selector">.<span class="selected">a</span></span>`)
	require.Contains(t, out, `<span class="punctuation"><span class="selected">{</span></span>`)
	require.Contains(t, out, `<span class="property"><span class="selected">col</span><span class="selected-last">o</span>r</span>`)
	require.Equal(t, ".a{color}", stripTags(out))
}

func TestRenderNodeWithSelection_TailAtLeafStart(t *testing.T) {
	// Selection [3,4): only "c", which is also the tail.
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialSelection = &token.SelectionEffect{Start: 3, End: 4, Tail: 3}

	out := renderNodeWithSelection(tok, DefaultTheme())
	require.Contains(t, out, `<span class="selected-last">c</span>olor`)
	require.NotContains(t, out, `<span class="selected">`)
}

func TestRenderNodeWithSelection_LeavesOutsideOverlapUntouched(t *testing.T) {
	tok := token.NewRecursive(cssRule(), 0)
	tok.PartialSelection = &token.SelectionEffect{Start: 3, End: 8, Tail: 7}

	out := renderNodeWithSelection(tok, DefaultTheme())
	require.Contains(t, out, `<span class="selector">.a</span>`)
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}
