package render

import (
	"html"
	"strings"

	"github.com/zjrosen/vimshot/internal/token"
)

// Recursive tokens never pass through the generic splitter, so cursor and
// selection decorations inside them are applied here at render time: the
// walkers reproduce the nested tree's normal markup while wrapping exactly
// the affected grapheme(s). Concatenated visible text always equals the
// token's flattened content; only markup differs.

// renderNode emits the nested tree's markup with no effects.
func renderNode(n *token.Node) string {
	if n.IsText() {
		return html.EscapeString(n.Text)
	}
	if n.Children == nil {
		return span(nodeClasses(n), html.EscapeString(n.Text))
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(renderNode(c))
	}
	return span(nodeClasses(n), b.String())
}

func nodeClasses(n *token.Node) string {
	return strings.Join(append([]string{n.Type}, n.Alias...), " ")
}

// renderNodeWithCursor walks the tree with a running absolute offset seeded
// at the token's start, wrapping the one grapheme at the cursor position
// (block style) or inserting a zero-width marker between graphemes (insert
// style).
func renderNodeWithCursor(t *token.Token, th Theme) string {
	eff := t.PartialCursor
	offset := t.Start
	placed := false

	leaf := func(s string) string {
		glen := token.GraphemeCount(s)
		start := offset
		offset += glen

		if eff.Mark == token.CursorInsert {
			if placed || eff.Position < start || eff.Position >= start+glen {
				return html.EscapeString(s)
			}
			placed = true
			local := eff.Position - start
			return html.EscapeString(token.GraphemeSlice(s, 0, local)) +
				emptySpan(th.InsertCursor) +
				html.EscapeString(token.GraphemeSlice(s, local, glen))
		}

		if eff.Position < start || eff.Position >= start+glen {
			return html.EscapeString(s)
		}
		local := eff.Position - start
		return html.EscapeString(token.GraphemeSlice(s, 0, local)) +
			span(th.Cursor, html.EscapeString(token.GraphemeAt(s, local))) +
			html.EscapeString(token.GraphemeSlice(s, local+1, glen))
	}

	var walk func(n *token.Node) string
	walk = func(n *token.Node) string {
		if n.IsText() {
			return leaf(n.Text)
		}
		if n.Children == nil {
			return span(nodeClasses(n), leaf(n.Text))
		}
		var b strings.Builder
		for _, c := range n.Children {
			b.WriteString(walk(c))
		}
		return span(nodeClasses(n), b.String())
	}

	out := walk(t.Structure)
	// Insert cursor at the exact end offset of the whole token.
	if eff.Mark == token.CursorInsert && !placed {
		out += emptySpan(th.InsertCursor)
	}
	return out
}

// renderNodeWithSelection walks the tree wrapping every grapheme inside the
// overlap in a selection span, with the tail grapheme in the tail span.
func renderNodeWithSelection(t *token.Token, th Theme) string {
	eff := t.PartialSelection
	offset := t.Start

	leaf := func(s string) string {
		glen := token.GraphemeCount(s)
		start := offset
		offset += glen

		overlapStart := max(start, eff.Start)
		overlapEnd := min(start+glen, eff.End)
		if overlapStart >= overlapEnd {
			return html.EscapeString(s)
		}

		var b strings.Builder
		b.WriteString(html.EscapeString(token.GraphemeSlice(s, 0, overlapStart-start)))
		if eff.Tail >= overlapStart && eff.Tail < overlapEnd {
			if eff.Tail > overlapStart {
				b.WriteString(span(th.Selection, html.EscapeString(token.GraphemeSlice(s, overlapStart-start, eff.Tail-start))))
			}
			b.WriteString(span(th.SelectionTail, html.EscapeString(token.GraphemeAt(s, eff.Tail-start))))
			if eff.Tail+1 < overlapEnd {
				b.WriteString(span(th.Selection, html.EscapeString(token.GraphemeSlice(s, eff.Tail+1-start, overlapEnd-start))))
			}
		} else {
			b.WriteString(span(th.Selection, html.EscapeString(token.GraphemeSlice(s, overlapStart-start, overlapEnd-start))))
		}
		b.WriteString(html.EscapeString(token.GraphemeSlice(s, overlapEnd-start, glen)))
		return b.String()
	}

	var walk func(n *token.Node) string
	walk = func(n *token.Node) string {
		if n.IsText() {
			return leaf(n.Text)
		}
		if n.Children == nil {
			return span(nodeClasses(n), leaf(n.Text))
		}
		var b strings.Builder
		for _, c := range n.Children {
			b.WriteString(walk(c))
		}
		return span(nodeClasses(n), b.String())
	}

	return walk(t.Structure)
}
