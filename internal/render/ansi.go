package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/zjrosen/vimshot/internal/token"
)

// ANSI codes for cursor and selection in the terminal preview.
// Cursor uses reverse video, selection a dim gray background.
const (
	cursorOn  = "\x1b[7m"  // reverse video on
	cursorOff = "\x1b[27m" // reverse video off (not full reset)
	// 48;5;238 = dark gray background, 38;5;255 = bright white foreground
	selectionOn  = "\x1b[48;5;238;38;5;255m"
	selectionOff = "\x1b[49;39m"
)

// palette maps syntax classifications to terminal styles.
var palette = map[string]lipgloss.Style{
	"keyword":     lipgloss.NewStyle().Foreground(lipgloss.Color("176")),
	"string":      lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	"number":      lipgloss.NewStyle().Foreground(lipgloss.Color("209")),
	"literal":     lipgloss.NewStyle().Foreground(lipgloss.Color("209")),
	"comment":     lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true),
	"function":    lipgloss.NewStyle().Foreground(lipgloss.Color("74")),
	"operator":    lipgloss.NewStyle().Foreground(lipgloss.Color("179")),
	"punctuation": lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
	"property":    lipgloss.NewStyle().Foreground(lipgloss.Color("74")),
	"selector":    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
	"builtin":     lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
	"tag":         lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
	"rule":        lipgloss.NewStyle(),
}

// ANSI renders the token sequence for the terminal. Layer order matches the
// editor's display: syntax styling as the base, selection background over
// it, reverse-video cursor on top.
func ANSI(tokens []*token.Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(ansiToken(t))
	}
	return b.String()
}

func ansiToken(t *token.Token) string {
	if t.Structure != nil {
		return ansiRecursive(t)
	}

	if t.ZeroWidth() {
		// The preview has no zero-width cells; a reverse-video space
		// stands in for the insertion point, as at an empty line end.
		return cursorOn + " " + cursorOff
	}

	if t.Class == token.ClassNewline {
		if t.Cursor != token.CursorNone {
			return cursorOn + " " + cursorOff + "\n"
		}
		if t.Selected || t.SelectedTail {
			return selectionOn + " " + selectionOff + "\n"
		}
		return "\n"
	}

	content := styleContent(t.Class, t.Content)
	switch {
	case t.Cursor != token.CursorNone || t.SelectedTail:
		return cursorOn + t.Content + cursorOff
	case t.Selected:
		return selectionOn + t.Content + selectionOff
	default:
		return content
	}
}

// ansiRecursive renders a recursive token's flattened content, styling the
// whole run by its classification and overlaying any partial effect per
// grapheme. Nested classes are collapsed for the preview; the HTML renderer
// is the fidelity path.
func ansiRecursive(t *token.Token) string {
	if t.PartialCursor == nil && t.PartialSelection == nil {
		return styleContent(t.Class, t.Content)
	}

	var b strings.Builder
	glen := t.Len()
	for i := 0; i < glen; i++ {
		pos := t.Start + i
		g := token.GraphemeAt(t.Content, i)
		switch {
		case t.PartialCursor != nil && t.PartialCursor.Mark == token.CursorInsert && t.PartialCursor.Position == pos:
			b.WriteString(cursorOn + " " + cursorOff)
			b.WriteString(g)
		case t.PartialCursor != nil && t.PartialCursor.Mark != token.CursorInsert && t.PartialCursor.Position == pos:
			b.WriteString(cursorOn + g + cursorOff)
		case t.PartialSelection != nil && t.PartialSelection.Tail == pos:
			b.WriteString(cursorOn + g + cursorOff)
		case t.PartialSelection != nil && pos >= t.PartialSelection.Start && pos < t.PartialSelection.End:
			b.WriteString(selectionOn + g + selectionOff)
		default:
			b.WriteString(g)
		}
	}
	return b.String()
}

func styleContent(class, content string) string {
	if st, ok := palette[class]; ok {
		return st.Render(content)
	}
	return content
}

// WidestLine returns the display width in cells of the widest line of text.
func WidestLine(text string) int {
	width := 0
	for _, line := range strings.Split(text, "\n") {
		if w := runewidth.StringWidth(line); w > width {
			width = w
		}
	}
	return width
}

// StatusBar renders the decorative mode line under the preview, padded to
// width display cells. Width 0 disables padding.
func StatusBar(mode string, width int) string {
	bar := "-- " + mode + " --"
	if width > runewidth.StringWidth(bar) {
		bar += strings.Repeat(" ", width-runewidth.StringWidth(bar))
	}
	return termenv.String(bar).Bold().String()
}
