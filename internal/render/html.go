// Package render turns an effect-annotated token sequence into markup.
// The HTML renderer is the primary output; the ANSI renderer provides a
// terminal preview of the same sequence.
package render

import (
	"html"
	"strings"

	"github.com/zjrosen/vimshot/internal/token"
)

// Theme holds the effect class names emitted into the HTML output.
type Theme struct {
	Cursor        string `mapstructure:"cursor" yaml:"cursor"`
	InsertCursor  string `mapstructure:"insert_cursor" yaml:"insert_cursor"`
	Selection     string `mapstructure:"selection" yaml:"selection"`
	SelectionTail string `mapstructure:"selection_tail" yaml:"selection_tail"`
}

// DefaultTheme returns the stock class names.
func DefaultTheme() Theme {
	return Theme{
		Cursor:        "cursor",
		InsertCursor:  "cursor-insert",
		Selection:     "selected",
		SelectionTail: "selected-last",
	}
}

// HTML renders the token sequence as an HTML fragment safe to inject into a
// block-level container. Token content is escaped here and nowhere else.
func HTML(tokens []*token.Token, th Theme) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(renderToken(t, th))
	}
	return b.String()
}

func renderToken(t *token.Token, th Theme) string {
	if t.Structure != nil {
		switch {
		case t.PartialCursor != nil:
			return renderNodeWithCursor(t, th)
		case t.PartialSelection != nil:
			return renderNodeWithSelection(t, th)
		default:
			return renderNode(t.Structure)
		}
	}

	if t.ZeroWidth() {
		// The zero-width cursor token is the insertion-point visual.
		return emptySpan(cursorClass(t.Cursor, th))
	}

	if t.Class == token.ClassNewline {
		if cls := effectClasses(t, th); len(cls) > 0 {
			return span(strings.Join(cls, " "), "\n")
		}
		return "\n"
	}

	classes := append([]string{}, t.Tags...)
	classes = append(classes, effectClasses(t, th)...)
	escaped := html.EscapeString(t.Content)
	if len(classes) == 0 {
		return escaped
	}
	return span(strings.Join(classes, " "), escaped)
}

// effectClasses returns the effect class names for a leaf token. The
// selection tail class wins over the plain selection class; a cursor mark
// wins over both.
func effectClasses(t *token.Token, th Theme) []string {
	if t.Cursor != token.CursorNone {
		return []string{cursorClass(t.Cursor, th)}
	}
	if t.SelectedTail {
		return []string{th.SelectionTail}
	}
	if t.Selected {
		return []string{th.Selection}
	}
	return nil
}

func cursorClass(mark token.CursorMark, th Theme) string {
	if mark == token.CursorInsert {
		return th.InsertCursor
	}
	return th.Cursor
}

func span(classes, inner string) string {
	return `<span class="` + classes + `">` + inner + `</span>`
}

func emptySpan(classes string) string {
	return `<span class="` + classes + `"></span>`
}
