package token

// CursorMark marks a token as carrying a cursor decoration.
type CursorMark int

const (
	// CursorNone means no cursor on this token.
	CursorNone CursorMark = iota
	// CursorBlock is the normal-mode block cursor occupying one character.
	CursorBlock
	// CursorInsert is the insert-mode bar cursor sitting between characters.
	CursorInsert
)

// Sentinel classifications with special rendering behavior.
const (
	// ClassText is plain unclassified text.
	ClassText = "text"
	// ClassNewline is a single "\n", rendered as a literal line break.
	ClassNewline = "newline"
	// ClassCursor is a zero-width synthesized token carrying only a cursor.
	ClassCursor = "cursor"
)

// CursorEffect records a cursor that must be rendered inside a recursive
// token's nested tree at an absolute grapheme offset.
type CursorEffect struct {
	Position int
	Mark     CursorMark
}

// SelectionEffect records the portion of a recursive token's span that is
// selected. Start/End are absolute grapheme offsets clipped to the token's
// span; Tail is the absolute offset of the last selected character.
type SelectionEffect struct {
	Start int
	End   int
	Tail  int
}

// Token is one highlighted span of the source text.
//
// A token with a nil Structure is a leaf: its Content is rendered directly.
// A token with a non-nil Structure is recursive: it wraps a grammar subtree
// whose nested markup must survive rendering, so the generic splitter never
// tears it apart (CanSplit reports false) and effects are recorded in
// PartialCursor/PartialSelection for the renderer's character-level walkers.
type Token struct {
	// Content is the exact text covered by this token.
	Content string

	// Class is the syntax classification ("keyword", "string", ClassText, ...).
	Class string

	// Tags are the presentational class names emitted for this token,
	// derived from Class plus any grammar aliases.
	Tags []string

	// Start and End are absolute grapheme offsets into the source text,
	// half-open. End-Start equals GraphemeCount(Content) except for
	// zero-width cursor tokens where Start == End.
	Start int
	End   int

	// Cursor, Selected and SelectedTail are the leaf effect flags.
	// SelectedTail marks the single character at selectionEnd-1; in
	// rendering it wins over plain Selected.
	Cursor       CursorMark
	Selected     bool
	SelectedTail bool

	// Structure is the retained grammar subtree for recursive tokens.
	Structure *Node

	// PartialCursor and PartialSelection are set only on recursive tokens,
	// by the effect engine, for render-time character-level application.
	PartialCursor    *CursorEffect
	PartialSelection *SelectionEffect
}

// New returns a leaf token for content starting at the given grapheme offset.
// Tags defaults to {class} for non-sentinel classes.
func New(content, class string, start int, tags ...string) *Token {
	if len(tags) == 0 && class != ClassText && class != ClassNewline {
		tags = []string{class}
	}
	return &Token{
		Content: content,
		Class:   class,
		Tags:    tags,
		Start:   start,
		End:     start + GraphemeCount(content),
	}
}

// NewRecursive returns a recursive token wrapping the given subtree.
func NewRecursive(n *Node, start int, tags ...string) *Token {
	flat := n.Flatten()
	if len(tags) == 0 {
		tags = append([]string{n.Type}, n.Alias...)
	}
	return &Token{
		Content:   flat,
		Class:     n.Type,
		Tags:      tags,
		Start:     start,
		End:       start + GraphemeCount(flat),
		Structure: n,
	}
}

// NewZeroWidth returns a zero-width cursor token at the given offset.
func NewZeroWidth(mark CursorMark, at int) *Token {
	return &Token{
		Class:  ClassCursor,
		Start:  at,
		End:    at,
		Cursor: mark,
	}
}

// CanSplit reports whether the generic splitter may fragment this token.
// Recursive tokens self-render with embedded offsets instead.
func (t *Token) CanSplit() bool {
	return t.Structure == nil
}

// Len returns the token's width in graphemes.
func (t *Token) Len() int {
	return t.End - t.Start
}

// ZeroWidth reports whether this is a synthesized zero-width cursor token.
func (t *Token) ZeroWidth() bool {
	return t.Start == t.End
}

// Contains reports whether the absolute offset falls inside the token's span.
func (t *Token) Contains(pos int) bool {
	return t.Start <= pos && pos < t.End
}

// Copy returns a fragment of this token covering the given content at the
// given start offset. Classification and tags carry over; all effect fields
// reset to inactive so splitting never leaks effect state onto siblings.
func (t *Token) Copy(content string, start int) *Token {
	tags := make([]string, len(t.Tags))
	copy(tags, t.Tags)
	return &Token{
		Content: content,
		Class:   t.Class,
		Tags:    tags,
		Start:   start,
		End:     start + GraphemeCount(content),
	}
}

// Clone returns a shallow copy of the token with its effect fields intact.
// The effect engine uses it for copy-on-write flag updates.
func (t *Token) Clone() *Token {
	c := *t
	return &c
}

// Slice returns a fragment covering the absolute grapheme range [from, to)
// of this token's span. The range must lie within the span.
func (t *Token) Slice(from, to int) *Token {
	content := GraphemeSlice(t.Content, from-t.Start, to-t.Start)
	return t.Copy(content, from)
}
