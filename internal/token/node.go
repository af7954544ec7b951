// Package token defines the in-memory representation of a highlighted span of
// text: the flat Token consumed by the effect engine and renderer, plus the
// Node tree shape produced by tokenizer grammars.
package token

import "strings"

// Node is a single node of a grammar's output tree.
//
// Three shapes are valid:
//   - a plain text leaf: Type == "" and Children == nil, text in Text
//   - a typed node with string content: Type != "", text in Text
//   - a typed node with array content: Type != "", subtree in Children
type Node struct {
	// Type is the syntax classification assigned by the grammar
	// (e.g. "keyword", "string", "rule"). Empty for plain text leaves.
	Type string

	// Alias holds extra presentational class names for this node.
	Alias []string

	// Text is the node's string content. Unused when Children is set.
	Text string

	// Children is the node's array content. A node with children keeps its
	// nested structure through tokenization (it becomes a recursive token).
	Children []*Node
}

// TextNode returns a plain text leaf.
func TextNode(s string) *Node {
	return &Node{Text: s}
}

// IsText reports whether n is a plain text leaf.
func (n *Node) IsText() bool {
	return n.Type == "" && n.Children == nil
}

// Flatten returns the concatenated text of the whole subtree.
func (n *Node) Flatten() string {
	if n == nil {
		return ""
	}
	if n.Children == nil {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.Flatten())
	}
	return b.String()
}

// Length returns the grapheme count of the flattened subtree text.
func (n *Node) Length() int {
	return GraphemeCount(n.Flatten())
}
