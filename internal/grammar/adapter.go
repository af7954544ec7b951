package grammar

import (
	"fmt"
	"strings"

	"github.com/zjrosen/vimshot/internal/log"
	"github.com/zjrosen/vimshot/internal/token"
)

// Options configures the node-tree-to-token adapter.
type Options struct {
	// RecursiveTypes lists node types that always keep their nested
	// structure, becoming recursive tokens even with string content.
	// Nodes with array content are recursive regardless.
	RecursiveTypes map[string]bool
}

// DefaultRecursiveTypes is the default always-preserve-structure set. It is
// a configuration table, not a law: the config file can override it per
// language.
func DefaultRecursiveTypes() map[string]bool {
	return map[string]bool{
		"rule":     true,
		"selector": true,
		"property": true,
		"tag":      true,
		"function": true,
		"url":      true,
		"atrule":   true,
	}
}

// DefaultOptions returns the adapter defaults.
func DefaultOptions() Options {
	return Options{RecursiveTypes: DefaultRecursiveTypes()}
}

// Tokenize converts text into the flat token sequence: sorted, contiguous,
// covering every grapheme of text exactly once. It never fails: a grammar
// error, a panic, a skipped node, or a broken coverage sum all degrade to
// plain-text tokens for this call only.
func Tokenize(g Grammar, text string, opts Options) []*token.Token {
	if text == "" {
		return nil
	}
	total := token.GraphemeCount(text)

	nodes, err := parse(g, text)
	if err != nil {
		log.ErrorErr(log.CatGrammar, "grammar failed, rendering as plain text", err)
		return fallback(text)
	}

	var out []*token.Token
	cursor := 0
	for _, n := range nodes {
		if n == nil {
			log.Warn(log.CatGrammar, "skipping nil node")
			continue
		}
		if n.IsText() {
			out, cursor = emitText(out, n.Text, cursor)
			continue
		}

		flat := n.Flatten()
		if flat == "" {
			log.Warn(log.CatGrammar, "skipping node with empty content", "type", n.Type)
			continue
		}

		if n.Children != nil || opts.RecursiveTypes[n.Type] {
			tok := token.NewRecursive(n, cursor)
			out = append(out, tok)
			cursor = tok.End
			continue
		}

		tags := append([]string{n.Type}, n.Alias...)
		tok := token.New(flat, n.Type, cursor, tags...)
		out = append(out, tok)
		cursor = tok.End
	}

	// The grammar may under-cover the text (skipped nodes, lexer quirks);
	// a trailing remainder token restores the coverage invariant.
	if cursor < total {
		out, cursor = emitText(out, token.GraphemeSlice(text, cursor, total), cursor)
	}

	if cursor != total {
		log.Error(log.CatGrammar, "coverage invariant violated, rendering as plain text",
			"covered", cursor, "length", total)
		return fallback(text)
	}
	return out
}

// parse calls the grammar, converting a panic into an error.
func parse(g Grammar, text string) (nodes []*token.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("grammar panicked: %v", r)
		}
	}()
	return g.Parse(text)
}

// emitText appends tokens for a plain text run, splitting on newlines so
// every "\n" is its own newline-classified token.
func emitText(out []*token.Token, text string, cursor int) ([]*token.Token, int) {
	for len(text) > 0 {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			tok := token.New(text, token.ClassText, cursor)
			out = append(out, tok)
			cursor = tok.End
			break
		}
		// "\r\n" is a single grapheme cluster; keep it in one newline token
		// so the coverage sum stays aligned with the text's grapheme count.
		j := i
		if j > 0 && text[j-1] == '\r' {
			j--
		}
		if j > 0 {
			tok := token.New(text[:j], token.ClassText, cursor)
			out = append(out, tok)
			cursor = tok.End
		}
		out = append(out, token.New(text[j:i+1], token.ClassNewline, cursor))
		cursor++
		text = text[i+1:]
	}
	return out, cursor
}

func fallback(text string) []*token.Token {
	out, _ := emitText(nil, text, 0)
	return out
}
