package snapshot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/vimshot/internal/effects"
	"github.com/zjrosen/vimshot/internal/grammar"
	"github.com/zjrosen/vimshot/internal/log"
	"github.com/zjrosen/vimshot/internal/render"
	"github.com/zjrosen/vimshot/internal/token"
	"github.com/zjrosen/vimshot/internal/tracing"
)

// Request describes one render call. SelectionStart and SelectionEnd are
// grapheme offsets into Text; normal and insert mode read the cursor offset
// from SelectionStart, visual mode uses the full range.
type Request struct {
	Text           string
	Language       string
	Mode           Mode
	SelectionStart int
	SelectionEnd   int
}

// Config configures a Renderer.
type Config struct {
	// Theme supplies the effect class names for HTML output.
	Theme render.Theme

	// RecursiveTypes overrides the always-preserve-structure node type set.
	RecursiveTypes map[string]bool

	// Structural lists languages whose grammar output is grouped into
	// nested rule nodes.
	Structural []string

	// StatusBar controls the decorative mode line trailer.
	StatusBar bool

	// Tracer traces render calls; nil means no tracing.
	Tracer trace.Tracer
}

// DefaultConfig returns the stock renderer configuration.
func DefaultConfig() Config {
	return Config{
		Theme:          render.DefaultTheme(),
		RecursiveTypes: grammar.DefaultRecursiveTypes(),
		Structural:     []string{"css"},
		StatusBar:      true,
	}
}

// Renderer runs the full pipeline: grammar → adapter → effects → markup.
// Each call owns its token sequence end to end; nothing is shared or cached
// between calls, so a Renderer is safe for sequential reuse.
type Renderer struct {
	registry *grammar.Registry
	theme    render.Theme
	opts     grammar.Options
	status   bool
	tracer   trace.Tracer
}

// New creates a Renderer.
func New(cfg Config) *Renderer {
	opts := grammar.DefaultOptions()
	if cfg.RecursiveTypes != nil {
		opts.RecursiveTypes = cfg.RecursiveTypes
	}
	return &Renderer{
		registry: grammar.NewRegistry(cfg.Structural),
		theme:    cfg.Theme,
		opts:     opts,
		status:   cfg.StatusBar,
		tracer:   cfg.Tracer,
	}
}

// Registry exposes the grammar registry so embedders can install custom
// grammars.
func (r *Renderer) Registry() *grammar.Registry {
	return r.registry
}

// Render produces the HTML snapshot for a request. Grammar-side failures
// degrade to plain text inside the pipeline; an invalid request or a
// malformed tree from a registered custom grammar surfaces as a
// SnapshotError.
func (r *Renderer) Render(ctx context.Context, req Request) (out string, err error) {
	defer recoverRenderError(&out, &err)

	toks, err := r.tokens(ctx, req)
	if err != nil {
		return "", err
	}

	r.span(ctx, tracing.SpanMarkup, func(ctx context.Context) {
		out = render.HTML(toks, r.theme)
	})
	if r.status {
		out += fmt.Sprintf("\n<div class=\"status-bar-ide\">-- %s --</div>", req.Mode)
	}
	return out, nil
}

// Preview produces the ANSI terminal rendition of the same snapshot.
func (r *Renderer) Preview(ctx context.Context, req Request) (out string, err error) {
	defer recoverRenderError(&out, &err)

	toks, err := r.tokens(ctx, req)
	if err != nil {
		return "", err
	}

	out = render.ANSI(toks)
	if r.status {
		out += "\n" + render.StatusBar(req.Mode.String(), render.WidestLine(req.Text))
	}
	return out, nil
}

// recoverRenderError converts a panic in the effect or markup stages into a
// categorized error. The adapter already recovers grammar panics, but a
// custom grammar can still hand over a tree the renderer chokes on.
func recoverRenderError(out *string, err *error) {
	rec := recover()
	if rec == nil {
		return
	}
	log.Error(log.CatRender, "render stage panicked", "cause", fmt.Sprint(rec))
	*out = ""
	*err = NewSnapshotError(ErrCategoryRender, fmt.Sprintf("rendering failed: %v", rec)).
		WithHelpText("the active grammar produced a malformed tree; try --language text")
}

// tokens runs grammar, adapter and effect stages for a request.
func (r *Renderer) tokens(ctx context.Context, req Request) ([]*token.Token, error) {
	if req.Mode == ModeVisual && req.SelectionStart == req.SelectionEnd {
		return nil, NewSnapshotError(ErrCategoryInput, "visual mode requires a non-empty selection").
			WithHelpText("pass distinct selection offsets, e.g. --selection 2:7")
	}

	renderID := uuid.NewString()
	ctx, span := r.startSpan(ctx, tracing.SpanRender,
		attribute.String(tracing.AttrRenderID, renderID),
		attribute.String(tracing.AttrLanguage, req.Language),
		attribute.String(tracing.AttrMode, req.Mode.String()),
	)
	defer span.End()

	var toks []*token.Token
	r.span(ctx, tracing.SpanTokenize, func(ctx context.Context) {
		g := r.registry.Get(ctx, req.Language)
		toks = grammar.Tokenize(g, req.Text, r.opts)
	})
	span.SetAttributes(attribute.Int(tracing.AttrTokens, len(toks)))

	r.span(ctx, tracing.SpanEffects, func(ctx context.Context) {
		switch req.Mode {
		case ModeInsert:
			toks = effects.ApplyCursor(toks, req.SelectionStart, token.CursorInsert)
		case ModeVisual:
			start, end := req.SelectionStart, req.SelectionEnd
			if start > end {
				// Backwards selections arrive when the anchor trails the
				// cursor; normalize before the engine sees them.
				start, end = end, start
			}
			toks = effects.ApplySelection(toks, start, end)
		default:
			toks = effects.ApplyCursor(toks, req.SelectionStart, token.CursorBlock)
		}
	})

	log.Debug(log.CatSnapshot, "rendered snapshot",
		"id", renderID, "language", req.Language, "mode", req.Mode, "tokens", len(toks))
	return toks, nil
}

func (r *Renderer) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if r.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return r.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (r *Renderer) span(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := r.startSpan(ctx, name)
	fn(ctx)
	span.End()
}

