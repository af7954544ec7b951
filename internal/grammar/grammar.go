// Package grammar turns source text into the flat token sequence consumed by
// the effect engine. The external tokenizer is abstracted behind the Grammar
// interface; the chroma-backed implementation covers real languages, and a
// plain-text grammar serves as the degradation target for every failure.
package grammar

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/vimshot/internal/cachemanager"
	"github.com/zjrosen/vimshot/internal/log"
	"github.com/zjrosen/vimshot/internal/token"
)

// Grammar produces a node tree for a piece of source text.
// Implementations must be safe for repeated synchronous calls.
type Grammar interface {
	Parse(text string) ([]*token.Node, error)
}

// Plain returns the grammar that emits the whole text as one untyped leaf.
func Plain() Grammar {
	return plainGrammar{}
}

type plainGrammar struct{}

func (plainGrammar) Parse(text string) ([]*token.Node, error) {
	if text == "" {
		return nil, nil
	}
	return []*token.Node{token.TextNode(text)}, nil
}

// grammarTTL keeps loaded grammars for the life of a normal CLI invocation.
const grammarTTL = time.Hour

// Registry resolves language ids to grammars. Loading is memoized through
// the read-through cache: the first lookup for a language builds the
// grammar, later lookups resolve immediately. Unknown languages resolve to
// the plain-text grammar, never an error.
type Registry struct {
	mu         sync.RWMutex
	custom     map[string]Grammar
	structural map[string]bool
	cache      *cachemanager.ReadThroughCache[string, Grammar, string]
}

// NewRegistry creates a registry. Languages listed in structural get the
// brace-grouping pass so their output keeps nested rule structure.
func NewRegistry(structural []string) *Registry {
	r := &Registry{
		custom:     make(map[string]Grammar),
		structural: make(map[string]bool, len(structural)),
	}
	for _, lang := range structural {
		r.structural[strings.ToLower(lang)] = true
	}
	cm := cachemanager.NewInMemoryCacheManager[string, Grammar](
		"grammar", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	r.cache = cachemanager.NewReadThroughCache[string, Grammar, string](cm, r.load, false)
	return r
}

// Register installs a custom grammar for a language id, shadowing the
// built-in lookup. Used by embedders with their own tokenizers.
func (r *Registry) Register(language string, g Grammar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[strings.ToLower(language)] = g
}

// Get resolves the grammar for a language id.
func (r *Registry) Get(ctx context.Context, language string) Grammar {
	lang := strings.ToLower(language)

	r.mu.RLock()
	g, ok := r.custom[lang]
	r.mu.RUnlock()
	if ok {
		return g
	}

	g, err := r.cache.Get(ctx, lang, lang, grammarTTL)
	if err != nil {
		log.ErrorErr(log.CatGrammar, "grammar load failed, falling back to plain text", err, "language", lang)
		return Plain()
	}
	return g
}

func (r *Registry) load(ctx context.Context, language string) (Grammar, error) {
	if language == "" || language == "text" || language == "plain" {
		return Plain(), nil
	}
	g := newChromaGrammar(language, r.structural[language])
	if g == nil {
		log.Warn(log.CatGrammar, "no lexer for language, falling back to plain text", "language", language)
		return Plain(), nil
	}
	log.Debug(log.CatGrammar, "grammar loaded", "language", language, "structural", r.structural[language])
	return g, nil
}
