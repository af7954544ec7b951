package grammar

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/zjrosen/vimshot/internal/token"
)

// chromaGrammar adapts a chroma lexer to the Grammar interface. The lexer's
// flat token stream becomes a list of typed nodes; for structural languages
// a post-pass groups each `selector { ... }` run into a nested "rule" node
// so the renderer can reproduce its markup with full fidelity.
type chromaGrammar struct {
	lexer      chroma.Lexer
	structural bool
}

// newChromaGrammar returns nil when chroma has no lexer for the language.
func newChromaGrammar(language string, structural bool) *chromaGrammar {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	return &chromaGrammar{
		lexer:      chroma.Coalesce(lexer),
		structural: structural,
	}
}

func (g *chromaGrammar) Parse(text string) ([]*token.Node, error) {
	if text == "" {
		return nil, nil
	}

	it, err := g.lexer.Tokenise(nil, text)
	if err != nil {
		return nil, fmt.Errorf("tokenise: %w", err)
	}

	var nodes []*token.Node
	for _, t := range it.Tokens() {
		if t.Value == "" {
			continue
		}
		class := classify(t.Type)
		if class == "" {
			nodes = append(nodes, token.TextNode(t.Value))
			continue
		}
		nodes = append(nodes, &token.Node{Type: class, Text: t.Value})
	}

	if g.structural {
		nodes = groupRules(nodes)
	}
	return nodes, nil
}

// classify maps a chroma token type to a classification string. Whitespace,
// errors and anything unrecognized come back as "" meaning plain text.
func classify(t chroma.TokenType) string {
	switch {
	case t == chroma.Text || t == chroma.TextWhitespace || t == chroma.Error || t == chroma.Other:
		return ""
	case t.InCategory(chroma.Comment):
		return "comment"
	case t.InSubCategory(chroma.LiteralString):
		return "string"
	case t.InSubCategory(chroma.LiteralNumber):
		return "number"
	case t.InCategory(chroma.Literal):
		return "literal"
	case t == chroma.NameFunction || t == chroma.NameFunctionMagic:
		return "function"
	case t == chroma.NameTag:
		return "tag"
	case t == chroma.NameAttribute || t == chroma.NameProperty:
		return "property"
	case t == chroma.NameClass || t == chroma.NameNamespace:
		return "selector"
	case t == chroma.NameBuiltin || t == chroma.NameBuiltinPseudo:
		return "builtin"
	case t.InCategory(chroma.Keyword):
		return "keyword"
	case t.InCategory(chroma.Operator):
		return "operator"
	case t.InCategory(chroma.Punctuation):
		return "punctuation"
	default:
		return ""
	}
}

// groupRules wraps each run of nodes from a rule's first non-blank node
// through its balanced closing brace into a single "rule" node with array
// content. Whitespace between rules stays top-level so newline handling in
// the adapter still sees it.
func groupRules(nodes []*token.Node) []*token.Node {
	var out []*token.Node
	var run []*token.Node
	depth := 0
	sawBrace := false

	flush := func(wrap bool) {
		if len(run) == 0 {
			return
		}
		if wrap {
			out = append(out, &token.Node{Type: "rule", Children: run})
		} else {
			out = append(out, run...)
		}
		run = nil
		sawBrace = false
	}

	for _, n := range nodes {
		flat := n.Flatten()
		if depth == 0 && len(run) == 0 && n.IsText() && strings.TrimSpace(flat) == "" {
			out = append(out, n)
			continue
		}

		run = append(run, n)
		for _, r := range flat {
			switch r {
			case '{':
				depth++
				sawBrace = true
			case '}':
				if depth > 0 {
					depth--
				}
			}
		}
		if depth == 0 && sawBrace {
			flush(true)
		}
	}
	// Unbalanced trailing run stays flat.
	flush(false)

	return out
}
