package svgdom

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"

	"github.com/benoitkugler/svgtree/internal/logx"
)

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements
	IgnoreErrorMode ErrorMode = iota

	// WarnErrorMode logs a warning when an unparsed SVG element is found
	WarnErrorMode

	// StrictErrorMode returns an error when an unparsed SVG element is found
	StrictErrorMode
)

var errNoRoot = errors.New("invalid svg xml document")

// elements with a meaning for the drawable tree builder
var knownElements = map[string]bool{
	"svg": true, "g": true, "defs": true, "symbol": true, "use": true, "switch": true, "a": true,
	"path": true, "rect": true, "circle": true, "ellipse": true, "line": true, "polyline": true, "polygon": true,
	"image": true, "text": true, "tspan": true, "textPath": true,
	"title": true, "desc": true, "metadata": true, "style": true,
	"linearGradient": true, "radialGradient": true, "stop": true, "pattern": true,
	"clipPath": true, "mask": true, "marker": true,
	"filter": true, "feGaussianBlur": true, "feOffset": true, "feFlood": true, "feColorMatrix": true,
	"feComponentTransfer": true, "feFuncR": true, "feFuncG": true, "feFuncB": true, "feFuncA": true,
	"feMerge": true, "feMergeNode": true, "feBlend": true,
}

// elements whose character data is kept
var textContainers = map[string]bool{
	"text": true, "tspan": true, "textPath": true, "a": true,
	"style": true, "title": true, "desc": true,
}

// ReadDocument reads an SVG document from the given io.Reader.
// errMode determines if the parser ignores, errors out, or logs a warning
// when it finds an element it does not handle. Unknown elements are kept in the tree
// in ignore and warn mode.
func ReadDocument(stream io.Reader, errMode ErrorMode) (*Document, error) {
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	var (
		root  *Element
		stack []*Element
	)
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			if !knownElements[se.Name.Local] {
				errStr := "cannot process svg element " + se.Name.Local
				if errMode == StrictErrorMode {
					return nil, errors.New(errStr)
				} else if errMode == WarnErrorMode {
					logx.L().Warn("svgdom: " + errStr)
				}
			}
			el := NewElement(se.Name.Local, readAttrs(se.Attr))
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("invalid svg xml document: multiple root elements")
				}
				root = el
			} else {
				stack[len(stack)-1].AppendChild(el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) != 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			if textContainers[top.Name] {
				top.AppendChild(NewText(string(se)))
			}
		}
	}
	if root == nil {
		return nil, errNoRoot
	}
	if root.Name != "svg" {
		return nil, fmt.Errorf("invalid svg xml document: unexpected root element <%s>", root.Name)
	}
	return NewDocument(root), nil
}

// ReadDocumentFile reads the document from the named file.
func ReadDocumentFile(file string, errMode ErrorMode) (*Document, error) {
	fin, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fin.Close()
	return ReadDocument(fin, errMode)
}

func readAttrs(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		// `href` and `xlink:href` share the local name; the plain one wins
		if _, has := out[attr.Name.Local]; has && attr.Name.Space != "" {
			continue
		}
		out[attr.Name.Local] = attr.Value
	}
	return out
}
