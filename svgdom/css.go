package svgdom

import (
	"sort"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"

	"github.com/benoitkugler/svgtree/internal/logx"
)

// compound is a simple selector sequence like `rect.a#b`.
type compound struct {
	tag     string // empty or "*" for any
	id      string
	classes []string
}

func (c compound) matches(el *Element) bool {
	if el.IsText() {
		return false
	}
	if c.tag != "" && c.tag != "*" && c.tag != el.Name {
		return false
	}
	if c.id != "" && c.id != el.ID() {
		return false
	}
	if len(c.classes) != 0 {
		have := el.Classes()
		for _, cl := range c.classes {
			found := false
			for _, h := range have {
				if h == cl {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
	}
	return true
}

// selector is a list of compounds, joined by
// descendant (' ') or child ('>') combinators.
type selector struct {
	parts       []compound
	combinators []byte // len(parts) - 1
	specificity int
}

// parseSelector supports type, class, id and universal selectors,
// with descendant and child combinators. Other selectors
// (attributes, pseudo classes, siblings) are reported as unsupported.
func parseSelector(s string) (selector, bool) {
	s = strings.ReplaceAll(s, ">", " > ")
	var sel selector
	pendingChild := false
	for _, field := range strings.Fields(s) {
		if field == ">" {
			if len(sel.parts) == 0 || pendingChild {
				return sel, false
			}
			pendingChild = true
			continue
		}
		c, spec, ok := parseCompound(field)
		if !ok {
			return sel, false
		}
		if len(sel.parts) != 0 {
			comb := byte(' ')
			if pendingChild {
				comb = '>'
			}
			sel.combinators = append(sel.combinators, comb)
		}
		pendingChild = false
		sel.parts = append(sel.parts, c)
		sel.specificity += spec
	}
	return sel, len(sel.parts) != 0 && !pendingChild
}

func parseCompound(s string) (compound, int, bool) {
	var (
		c    compound
		spec int
	)
	start, kind := 0, byte(0) // kind is 0 for the tag, '.' or '#'
	flush := func(end int) bool {
		name := s[start:end]
		switch kind {
		case 0:
			c.tag = name
			if name != "" && name != "*" {
				spec++
			}
		case '.':
			if name == "" {
				return false
			}
			c.classes = append(c.classes, name)
			spec += 10
		case '#':
			if name == "" {
				return false
			}
			c.id = name
			spec += 100
		}
		return true
	}
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '.', '#':
			if !flush(i) {
				return c, 0, false
			}
			start, kind = i+1, ch
		case '[', ':', '+', '~', '(', ')':
			return c, 0, false
		}
	}
	if !flush(len(s)) {
		return c, 0, false
	}
	return c, spec, true
}

func (sel selector) matches(el *Element) bool {
	return sel.matchAt(len(sel.parts)-1, el)
}

func (sel selector) matchAt(i int, el *Element) bool {
	if !sel.parts[i].matches(el) {
		return false
	}
	if i == 0 {
		return true
	}
	if sel.combinators[i-1] == '>' {
		return el.Parent != nil && sel.matchAt(i-1, el.Parent)
	}
	for p := el.Parent; p != nil; p = p.Parent {
		if sel.matchAt(i-1, p) {
			return true
		}
	}
	return false
}

type styleRule struct {
	sel   selector
	decls []*css.Declaration
}

func parseSheets(sheets []string) []styleRule {
	var rules []styleRule
	for _, text := range sheets {
		sheet, err := parser.Parse(text)
		if err != nil {
			logx.L().Warn("svgdom: invalid style sheet", "err", err)
			continue
		}
		for _, rule := range sheet.Rules {
			if rule.Kind != css.QualifiedRule {
				logx.L().Debug("svgdom: at-rule ignored", "rule", rule.Name)
				continue
			}
			for _, s := range rule.Selectors {
				sel, ok := parseSelector(s)
				if !ok {
					logx.L().Debug("svgdom: unsupported selector", "selector", s)
					continue
				}
				rules = append(rules, styleRule{sel: sel, decls: rule.Declarations})
			}
		}
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].sel.specificity < rules[j].sel.specificity
	})
	return rules
}

// parseStyleAttr reads the declarations of a `style` attribute.
func parseStyleAttr(style string) []*css.Declaration {
	style = strings.TrimSpace(style)
	if style == "" {
		return nil
	}
	if !strings.HasSuffix(style, ";") { // the last declaration must be terminated
		style += ";"
	}
	decls, err := parser.ParseDeclarations(style)
	if err == nil {
		return decls
	}
	// fall back to a plain split, keeping valid pairs
	decls = decls[:0]
	for _, pair := range strings.Split(style, ";") {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) == 2 {
			decls = append(decls, &css.Declaration{
				Property: strings.TrimSpace(kv[0]),
				Value:    strings.TrimSpace(kv[1]),
			})
		}
	}
	return decls
}

func applyDecls(attrs map[string]string, decls []*css.Declaration, important bool) {
	for _, d := range decls {
		if d.Important != important || d.Property == "" {
			continue
		}
		attrs[strings.ToLower(d.Property)] = d.Value
	}
}

// cascade resolves the final attributes of each element:
// presentation attributes < style sheets < style attribute < !important
// sheet declarations.
func (d *Document) cascade(sheets []string) {
	rules := parseSheets(sheets)
	walk(d.Root, func(el *Element) {
		if el.IsText() {
			return
		}
		style, hasStyle := el.Attrs["style"]
		if len(rules) == 0 && !hasStyle {
			return
		}
		var matched []styleRule
		for _, r := range rules {
			if r.sel.matches(el) {
				matched = append(matched, r)
			}
		}
		for _, r := range matched {
			applyDecls(el.Attrs, r.decls, false)
		}
		if hasStyle {
			delete(el.Attrs, "style")
			inline := parseStyleAttr(style)
			applyDecls(el.Attrs, inline, false)
			applyDecls(el.Attrs, inline, true)
		}
		for _, r := range matched {
			applyDecls(el.Attrs, r.decls, true)
		}
	})
}
