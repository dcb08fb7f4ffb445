package svgdraw

import (
	"strings"

	"github.com/benoitkugler/svgtree/internal/logx"
	"github.com/benoitkugler/svgtree/svgdom"
	"github.com/benoitkugler/svgtree/svgpath"
)

// Builder converts element trees into drawable trees,
// allocating natives with its backend.
// A Builder may be reused, but not concurrently.
type Builder struct {
	backend   Backend
	loader    AssetLoader
	language  string
	antialias bool

	fonts *fontCache
}

// Option configures a Builder.
type Option func(*Builder)

// WithAssetLoader sets the loader used for external images and fonts.
func WithAssetLoader(l AssetLoader) Option { return func(b *Builder) { b.loader = l } }

// WithLanguage sets the user language, matched against `systemLanguage`.
func WithLanguage(lang string) Option { return func(b *Builder) { b.language = lang } }

// WithAntialias sets the default antialiasing, used unless
// `shape-rendering` disables it.
func WithAntialias(aa bool) Option { return func(b *Builder) { b.antialias = aa } }

// NewBuilder returns a builder allocating natives with `backend`.
func NewBuilder(backend Backend, opts ...Option) *Builder {
	b := &Builder{backend: backend, language: "en", antialias: true}
	for _, opt := range opts {
		opt(b)
	}
	b.fonts = newFontCache(b.loader)
	return b
}

// Build converts the element tree rooted at `root`. `ownerBounds` is the
// viewport used to resolve percentages of the root.
// Elements which can't be drawn are kept as non drawable nodes; the
// only errors are an invalid root and backend allocation failures, in which case
// every native allocated so far is released.
func (b *Builder) Build(root *svgdom.Element, ownerBounds svgpath.Rect, ignore IgnoreAttributes) (*Tree, error) {
	if root == nil || root.IsText() {
		return nil, ErrInvalidDocument
	}
	t := &Tree{backend: b.backend}
	s := &buildState{Builder: b, tree: t, ignore: ignore}
	t.root = s.build(root, buildContext{parent: NoNode, viewport: ownerBounds})
	if t.root == NoNode { // not a renderable element
		t.root = t.newNode(KindGroup, root, NoNode).ID
	}
	if err := t.commit(t.root); err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

// Build is a shortcut for NewBuilder(backend, opts...).Build(root, ownerBounds, ignore).
func Build(backend Backend, root *svgdom.Element, ownerBounds svgpath.Rect, ignore IgnoreAttributes, opts ...Option) (*Tree, error) {
	return NewBuilder(backend, opts...).Build(root, ownerBounds, ignore)
}

// Paint draws `tree` on `canvas`, see Tree.Paint.
func Paint(tree *Tree, canvas Canvas, width, height float64) { tree.Paint(canvas, width, height) }

// Dispose releases the resources of `tree`, see Tree.Dispose.
func Dispose(tree *Tree) { tree.Dispose() }

// buildState is shared by a whole Build call.
type buildState struct {
	*Builder
	tree   *Tree
	ignore IgnoreAttributes
}

// buildContext is passed down the recursion.
type buildContext struct {
	parent NodeID
	// viewport is the nearest viewport, used to resolve percentages
	viewport svgpath.Rect
	guard    refGuard
	// clip is true when building clip path content:
	// only geometry is resolved
	clip bool
}

func (ctx buildContext) child(parent NodeID) buildContext {
	ctx.parent = parent
	return ctx
}

// refState records whether a cycle closed through one reference.
type refState struct{ cyclic bool }

type refFrame struct {
	id  string
	ref *refState // not nil if the element is the target of a reference
}

// refGuard is the stack of element ids being built on the current
// reference chain.
type refGuard struct {
	frames []refFrame
}

// enter pushes `id`, opened by `ref` (which may be nil). If `id` is
// already on the stack, it returns false and marks the references
// opened since then, which form the cycle, leaving the outer ones valid.
func (g refGuard) enter(id string, ref *refState) (refGuard, bool) {
	if id == "" {
		return g, true
	}
	for i, f := range g.frames {
		if f.id != id {
			continue
		}
		for _, f := range g.frames[i:] {
			if f.ref != nil {
				f.ref.cyclic = true
			}
		}
		return g, false
	}
	frames := make([]refFrame, len(g.frames)+1)
	copy(frames, g.frames)
	frames[len(g.frames)] = refFrame{id: id, ref: ref}
	return refGuard{frames: frames}, true
}

// inReference returns true if an element is being built as
// the content of a reference.
func (g refGuard) inReference() bool {
	for _, f := range g.frames {
		if f.ref != nil {
			return true
		}
	}
	return false
}

// withReference builds the sub-tree for `target` with `fn`,
// and returns NoNode if the reference is part of a cycle.
func (s *buildState) withReference(ctx buildContext, host *svgdom.Element, target *svgdom.Element, fn func(ctx buildContext) NodeID) NodeID {
	ref := new(refState)
	guard, ok := ctx.guard.enter(target.ID(), ref)
	if !ok {
		logx.L().Debug("svgdraw: reference ignored", "element", host.String(), "target", target.String(), "err", ErrCyclicReference)
		return NoNode
	}
	ctx.guard = guard
	id := fn(ctx)
	if ref.cyclic {
		logx.L().Debug("svgdraw: reference ignored", "element", host.String(), "target", target.String(), "err", ErrCyclicReference)
		return NoNode
	}
	return id
}

// reference resolves `url(#id)` or `#id` values, returning nil
// for external or dangling references.
func (s *buildState) reference(el *svgdom.Element, v string) *svgdom.Element {
	doc := el.Document()
	if doc == nil {
		return nil
	}
	return doc.Resolve(v)
}

type elementBuilder struct {
	kind  Kind
	build func(s *buildState, d *Drawable, ctx buildContext)
}

var elementBuilders map[string]elementBuilder

func init() {
	// avoids cyclical static declaration
	elementBuilders = map[string]elementBuilder{
		"path":     {KindPath, buildShape},
		"rect":     {KindRect, buildShape},
		"circle":   {KindCircle, buildShape},
		"ellipse":  {KindEllipse, buildShape},
		"line":     {KindLine, buildShape},
		"polyline": {KindPolyline, buildShape},
		"polygon":  {KindPolygon, buildShape},
		"g":        {KindGroup, buildGroup},
		"a":        {KindAnchor, buildGroup},
		"switch":   {KindSwitch, buildSwitch},
		"use":      {KindUse, buildUse},
		"svg":      {KindFragment, buildFragment},
		"image":    {KindImage, buildImage},
		"text":     {KindText, buildText},
	}
}

// build creates the node for `el` and links it to ctx.parent.
// Non rendering elements (definitions, descriptions, text nodes...)
// return NoNode and are never linked.
func (s *buildState) build(el *svgdom.Element, ctx buildContext) NodeID {
	eb, ok := elementBuilders[el.Name]
	if !ok {
		if !el.IsText() && !nonRendering[el.Name] {
			logx.L().Debug("svgdraw: element not supported", "element", el.String())
		}
		return NoNode
	}
	guard, ok := ctx.guard.enter(el.ID(), nil)
	if !ok && guard.inReference() { // instantiated inside itself
		return s.tree.newNode(eb.kind, el, ctx.parent).ID
	}
	ctx.guard = guard
	return s.instantiate(el, ctx)
}

// instantiate is like build, for an element already entered
// in the reference guard.
func (s *buildState) instantiate(el *svgdom.Element, ctx buildContext) NodeID {
	eb, ok := elementBuilders[el.Name]
	if !ok {
		return NoNode
	}
	d := s.tree.newNode(eb.kind, el, ctx.parent)
	s.safeBuild(eb.build, d, ctx)
	return d.ID
}

// safeBuild recovers from panics, so that a failing element
// doesn't abort its siblings.
func (s *buildState) safeBuild(fn func(s *buildState, d *Drawable, ctx buildContext), d *Drawable, ctx buildContext) {
	defer func() {
		if r := recover(); r != nil {
			d.IsDrawable = false
			logx.L().Warn("svgdraw: element skipped", "err", &PanicError{Element: d.Element.String(), Value: r})
		}
	}()
	fn(s, d, ctx)
}

var nonRendering = map[string]bool{
	"defs": true, "title": true, "desc": true, "metadata": true, "style": true,
	"clipPath": true, "mask": true, "marker": true, "pattern": true, "symbol": true,
	"linearGradient": true, "radialGradient": true, "stop": true, "filter": true,
}

// conditionsPass evaluates the conditional processing attributes.
func (s *buildState) conditionsPass(el *svgdom.Element) bool {
	if v, ok := el.Attrs["requiredExtensions"]; ok && strings.TrimSpace(v) != "" {
		return false
	}
	if v, ok := el.Attrs["systemLanguage"]; ok {
		return matchLanguage(v, s.language)
	}
	return true
}

func matchLanguage(list, lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	prefix, _, _ := strings.Cut(lang, "-")
	for _, l := range strings.Split(list, ",") {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if l == lang {
			return true
		}
		if lp, _, _ := strings.Cut(l, "-"); lp == prefix {
			return true
		}
	}
	return false
}

// hasFeatures returns false for elements which are not rendered:
// hidden, fully transparent or failing a condition.
func (s *buildState) hasFeatures(d *Drawable, ctx buildContext) bool {
	el := d.Element
	if !s.ignore.Has(IgnoreDisplay) && strings.TrimSpace(el.Attrs["display"]) == "none" {
		return false
	}
	if !s.conditionsPass(el) {
		return false
	}
	if d.Kind.Variant() != VariantContainer && d.Kind != KindFragment && !ctx.clip {
		if v, _ := s.tree.lookup(d, "visibility", true); v == "hidden" || v == "collapse" {
			return false
		}
	}
	if !s.ignore.Has(IgnoreOpacity) && !ctx.clip {
		if op, ok := s.opacityValue(d); ok && op <= 0 {
			return false
		}
	}
	return true
}
