// Package svgdom provides the element tree consumed by the drawable
// tree builder: elements with their cascaded attributes, an id index
// and `url(#id)` reference resolution.
//
// Documents are read from XML with ReadDocument, or assembled
// programmatically with NewElement and NewDocument.
package svgdom

import (
	"strings"
)

// TextNode is the Name of the elements holding character data.
const TextNode = "#text"

// Element is one node of the document. Attributes are stored
// after the style cascade: presentation attributes are overridden by
// style sheet declarations, themselves overridden by the `style` attribute.
type Element struct {
	Name     string            // local name, without namespace
	Attrs    map[string]string // cascaded attributes
	Children []*Element
	Parent   *Element
	Text     string // for TextNode elements only

	doc *Document
}

// NewElement returns an element with the given attributes and children.
// The attributes map is used as is.
func NewElement(name string, attrs map[string]string, children ...*Element) *Element {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	el := &Element{Name: name, Attrs: attrs}
	for _, c := range children {
		el.AppendChild(c)
	}
	return el
}

// NewText returns a character data node.
func NewText(text string) *Element {
	return &Element{Name: TextNode, Text: text}
}

// AppendChild links `child` as the last child of `e`.
func (e *Element) AppendChild(child *Element) {
	child.Parent = e
	e.Children = append(e.Children, child)
}

// Attr returns the value of the attribute `name`.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.Attrs[name]
	return v, ok
}

// ID returns the `id` attribute, or an empty string.
func (e *Element) ID() string { return e.Attrs["id"] }

// IsText returns true for character data nodes.
func (e *Element) IsText() bool { return e.Name == TextNode }

// Document returns the document the element belongs to,
// or nil if it has not been indexed by NewDocument.
func (e *Element) Document() *Document { return e.doc }

// TextContent returns the concatenation of the character data
// of the element and its descendants.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.Text
	}
	var b strings.Builder
	for _, c := range e.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Classes returns the list of classes of the element.
func (e *Element) Classes() []string {
	return strings.Fields(e.Attrs["class"])
}

// String returns a short description, used in logs.
func (e *Element) String() string {
	if id := e.ID(); id != "" {
		return "<" + e.Name + " id=" + id + ">"
	}
	return "<" + e.Name + ">"
}

// Document is an indexed element tree.
type Document struct {
	Root *Element

	ids map[string]*Element
}

// NewDocument indexes the tree rooted at `root` and applies the
// style cascade (`<style>` sheets and `style` attributes).
func NewDocument(root *Element) *Document {
	doc := &Document{Root: root, ids: make(map[string]*Element)}
	var sheets []string
	walk(root, func(el *Element) {
		el.doc = doc
		if el.IsText() {
			return
		}
		if id := el.ID(); id != "" {
			if _, has := doc.ids[id]; !has { // the first element wins
				doc.ids[id] = el
			}
		}
		if el.Name == "style" {
			if t := el.Attrs["type"]; t == "" || t == "text/css" {
				sheets = append(sheets, el.TextContent())
			}
		}
	})
	doc.cascade(sheets)
	return doc
}

func walk(el *Element, fn func(*Element)) {
	fn(el)
	for _, c := range el.Children {
		walk(c, fn)
	}
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element { return d.ids[id] }

// Resolve returns the element referenced by `ref`, either
// a functional IRI `url(#id)` or a local href `#id`.
// It returns nil if the reference is not local or dangling.
func (d *Document) Resolve(ref string) *Element {
	if id, _, ok := ParseFuncIRI(ref); ok {
		return d.ids[id]
	}
	if id, ok := ParseHref(ref); ok {
		return d.ids[id]
	}
	return nil
}

// ParseFuncIRI parses a value starting with `url(#id)`, where the
// IRI may be quoted, and returns the id and the (trimmed) text following
// the closing parenthesis, used as paint fallback.
func ParseFuncIRI(v string) (id, rest string, ok bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") {
		return "", "", false
	}
	end := strings.IndexByte(v, ')')
	if end == -1 {
		return "", "", false
	}
	iri := strings.Trim(strings.TrimSpace(v[4:end]), `"'`)
	id, ok = ParseHref(iri)
	return id, strings.TrimSpace(v[end+1:]), ok
}

// ParseHref returns the fragment of a local reference `#id`.
func ParseHref(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if len(v) < 2 || v[0] != '#' {
		return "", false
	}
	return v[1:], true
}
