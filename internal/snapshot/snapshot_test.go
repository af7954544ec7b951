package snapshot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/vimshot/internal/token"
)

func newRenderer() *Renderer {
	return New(DefaultConfig())
}

func mustRender(t *testing.T, r *Renderer, req Request) string {
	t.Helper()
	out, err := r.Render(context.Background(), req)
	require.NoError(t, err)
	return out
}

// ============================================================================
// End-to-End: Normal mode
// ============================================================================

func TestRender_NormalModeBlockCursor(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "ab", Mode: ModeNormal, SelectionStart: 0})
	require.Equal(t,
		"<span class=\"cursor\">a</span>b\n<div class=\"status-bar-ide\">-- NORMAL --</div>",
		out)
}

func TestRender_NormalModeCursorPastEnd(t *testing.T) {
	// Cursor at the end-of-text position renders as an empty cursor span.
	out := mustRender(t, newRenderer(), Request{Text: "ab", Mode: ModeNormal, SelectionStart: 2})
	require.Contains(t, out, "ab<span class=\"cursor\"></span>")
}

func TestRender_NormalModeOutOfRangeCursorDegrades(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "ab", Mode: ModeNormal, SelectionStart: 99})
	require.Equal(t, "ab\n<div class=\"status-bar-ide\">-- NORMAL --</div>", out)
}

// ============================================================================
// End-to-End: Insert mode
// ============================================================================

func TestRender_InsertModeBarCursor(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "a\nb", Mode: ModeInsert, SelectionStart: 1})
	require.Equal(t,
		"a<span class=\"cursor-insert\"></span>\nb\n<div class=\"status-bar-ide\">-- INSERT --</div>",
		out)
}

func TestRender_InsertModeAtEndOfText(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "ab", Mode: ModeInsert, SelectionStart: 2})
	require.Contains(t, out, "ab<span class=\"cursor-insert\"></span>")
}

// ============================================================================
// End-to-End: Visual mode
// ============================================================================

func TestRender_VisualModeSelection(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "hello", Mode: ModeVisual, SelectionStart: 1, SelectionEnd: 4})
	require.Equal(t,
		"h<span class=\"selected\">el</span><span class=\"selected-last\">l</span>o\n<div class=\"status-bar-ide\">-- VISUAL --</div>",
		out)
}

func TestRender_VisualModeBackwardsSelectionNormalized(t *testing.T) {
	forward := mustRender(t, newRenderer(), Request{Text: "hello", Mode: ModeVisual, SelectionStart: 1, SelectionEnd: 4})
	backward := mustRender(t, newRenderer(), Request{Text: "hello", Mode: ModeVisual, SelectionStart: 4, SelectionEnd: 1})
	require.Equal(t, forward, backward)
}

func TestRender_VisualModeEmptySelectionIsInputError(t *testing.T) {
	_, err := newRenderer().Render(context.Background(), Request{Text: "hello", Mode: ModeVisual, SelectionStart: 2, SelectionEnd: 2})
	require.Error(t, err)

	var serr SnapshotError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrCategoryInput, serr.Category)
	require.NotEmpty(t, serr.HelpText)
}

// ============================================================================
// End-to-End: Empty input
// ============================================================================

func TestRender_EmptyTextProducesOnlyTrailer(t *testing.T) {
	for _, mode := range []Mode{ModeNormal, ModeInsert} {
		out := mustRender(t, newRenderer(), Request{Text: "", Mode: mode})
		require.Equal(t, "\n<div class=\"status-bar-ide\">-- "+mode.String()+" --</div>", out)
	}
}

// ============================================================================
// End-to-End: Status bar toggle
// ============================================================================

func TestRender_StatusBarDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StatusBar = false
	out := mustRender(t, New(cfg), Request{Text: "ab", Mode: ModeNormal})
	require.NotContains(t, out, "status-bar-ide")
}

func TestRender_CustomThemeClasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme.Cursor = "caret"
	out := mustRender(t, New(cfg), Request{Text: "ab", Mode: ModeNormal})
	require.Contains(t, out, "<span class=\"caret\">a</span>")
}

// ============================================================================
// End-to-End: Syntax highlighting and recursive structure
// ============================================================================

// braceGrammar is a deterministic stand-in for a structural language.
type braceGrammar struct{}

func (braceGrammar) Parse(text string) ([]*token.Node, error) {
	// Fixed tree for ".x{color:red;}".
	return []*token.Node{{Type: "rule", Children: []*token.Node{
		{Type: "selector", Text: ".x"},
		{Type: "punctuation", Text: "{"},
		{Type: "property", Text: "color"},
		{Type: "punctuation", Text: ":"},
		token.TextNode("red"),
		{Type: "punctuation", Text: ";"},
		{Type: "punctuation", Text: "}"},
	}}}, nil
}

func TestRender_VisualModeInsideNestedStructure(t *testing.T) {
	r := newRenderer()
	r.Registry().Register("fakecss", braceGrammar{})

	// ".x{color:red;}" with "color:red" selected: offsets [3,12), tail 11.
	out := mustRender(t, r, Request{
		Text: ".x{color:red;}", Language: "fakecss",
		Mode: ModeVisual, SelectionStart: 3, SelectionEnd: 12,
	})

	require.Contains(t, out, "<span class=\"selector\">.x</span>", "markup outside the selection is untouched")
	require.Contains(t, out, "<span class=\"property\"><span class=\"selected\">color</span></span>")
	require.Contains(t, out, "<span class=\"selected\">re</span><span class=\"selected-last\">d</span>")
	require.Contains(t, out, "-- VISUAL --")
}

func TestRender_NormalModeInsideNestedStructure(t *testing.T) {
	r := newRenderer()
	r.Registry().Register("fakecss", braceGrammar{})

	out := mustRender(t, r, Request{
		Text: ".x{color:red;}", Language: "fakecss",
		Mode: ModeNormal, SelectionStart: 3,
	})
	require.Contains(t, out, "<span class=\"property\"><span class=\"cursor\">c</span>olor</span>")
}

func TestRender_InsertCursorInsideNestedStructure(t *testing.T) {
	r := newRenderer()
	r.Registry().Register("fakecss", braceGrammar{})

	// Offset 9 is the start of "red" inside the rule's nested tree.
	out := mustRender(t, r, Request{
		Text: ".x{color:red;}", Language: "fakecss",
		Mode: ModeInsert, SelectionStart: 9,
	})
	require.Contains(t, out, "<span class=\"cursor-insert\"></span>red")
	require.Contains(t, out, "-- INSERT --")
}

func TestRender_InsertCursorAtEndOfNestedStructure(t *testing.T) {
	r := newRenderer()
	r.Registry().Register("fakecss", braceGrammar{})

	// Offset 14 is the end of the recursive token's span; the bar cursor
	// lands after its markup, not inside it.
	out := mustRender(t, r, Request{
		Text: ".x{color:red;}", Language: "fakecss",
		Mode: ModeInsert, SelectionStart: 14,
	})
	require.Contains(t, out, "</span><span class=\"cursor-insert\"></span>")
}

func TestRender_CSSSelectionKeepsNestedMarkup(t *testing.T) {
	// Real chroma css grammar: the brace-grouping pass yields a rule token
	// and the selection is applied inside its nested markup.
	out := mustRender(t, newRenderer(), Request{
		Text: ".box { color: red; }", Language: "css",
		Mode: ModeVisual, SelectionStart: 7, SelectionEnd: 12,
	})
	require.Contains(t, out, "<span class=\"rule\">")
	require.Contains(t, out, "selected")
	require.Equal(t, ".box { color: red; }\n-- VISUAL --", stripMarkup(out))
}

// stripMarkup removes tags, keeping visible text.
func stripMarkup(s string) string {
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '<':
			depth++
		case r == '>':
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestRender_UnknownLanguageDegradesToPlainText(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "ab", Language: "not-a-language", Mode: ModeInsert, SelectionStart: 1})
	require.Equal(t,
		"a<span class=\"cursor-insert\"></span>b\n<div class=\"status-bar-ide\">-- INSERT --</div>",
		out)
}

func TestRender_GoSourceGetsKeywordSpans(t *testing.T) {
	out := mustRender(t, newRenderer(), Request{Text: "func main() {}", Language: "go", Mode: ModeInsert, SelectionStart: 0})
	require.Contains(t, out, "<span class=\"keyword\">func</span>")
}

// ============================================================================
// End-to-End: Malformed grammar trees
// ============================================================================

// brokenGrammar emits a tree with a nil child, as a buggy embedder grammar
// might.
type brokenGrammar struct{}

func (brokenGrammar) Parse(string) ([]*token.Node, error) {
	return []*token.Node{{Type: "rule", Children: []*token.Node{nil, token.TextNode("ab")}}}, nil
}

func TestRender_MalformedGrammarTreeIsRenderError(t *testing.T) {
	r := newRenderer()
	r.Registry().Register("broken", brokenGrammar{})

	out, err := r.Render(context.Background(), Request{Text: "ab", Language: "broken", Mode: ModeNormal})
	require.Error(t, err)
	require.Empty(t, out)

	var serr SnapshotError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, ErrCategoryRender, serr.Category)
	require.NotEmpty(t, serr.HelpText)
}

// ============================================================================
// End-to-End: Preview output
// ============================================================================

func TestPreview_ContainsStatusBar(t *testing.T) {
	r := newRenderer()
	out, err := r.Preview(context.Background(), Request{Text: "ab", Mode: ModeNormal})
	require.NoError(t, err)
	require.Contains(t, out, "-- NORMAL --")
	require.Contains(t, out, "a")
}

func TestPreview_VisualModeValidation(t *testing.T) {
	r := newRenderer()
	_, err := r.Preview(context.Background(), Request{Text: "ab", Mode: ModeVisual})
	require.Error(t, err)
}

// ============================================================================
// Unit Tests: Sequential reuse
// ============================================================================

func TestRender_RendererIsReusable(t *testing.T) {
	r := newRenderer()
	first := mustRender(t, r, Request{Text: "ab", Mode: ModeNormal})
	second := mustRender(t, r, Request{Text: "ab", Mode: ModeNormal})
	require.Equal(t, first, second)

	// A different request does not see state from the previous one.
	other := mustRender(t, r, Request{Text: "ab", Mode: ModeNormal, SelectionStart: 1})
	require.True(t, strings.Contains(other, "<span class=\"cursor\">b</span>"))
}
