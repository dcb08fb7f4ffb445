package svgdraw

import (
	"fmt"
	"strings"
)

// IgnoreAttributes is a set of features the builder must not
// resolve nor apply. Each flag is independent.
type IgnoreAttributes uint16

const IgnoreNone IgnoreAttributes = 0

const (
	IgnoreFill IgnoreAttributes = 1 << iota
	IgnoreStroke
	IgnoreOpacity
	IgnoreClip
	IgnoreMask
	IgnoreFilter
	IgnoreMarker
	IgnoreTransform
	IgnoreDisplay
)

var ignoreNames = [...]struct {
	flag IgnoreAttributes
	name string
}{
	{IgnoreFill, "fill"},
	{IgnoreStroke, "stroke"},
	{IgnoreOpacity, "opacity"},
	{IgnoreClip, "clip"},
	{IgnoreMask, "mask"},
	{IgnoreFilter, "filter"},
	{IgnoreMarker, "marker"},
	{IgnoreTransform, "transform"},
	{IgnoreDisplay, "display"},
}

// Has returns true if all the flags in `f` are set.
func (ia IgnoreAttributes) Has(f IgnoreAttributes) bool { return ia&f == f }

func (ia IgnoreAttributes) String() string {
	if ia == IgnoreNone {
		return "none"
	}
	var names []string
	for _, n := range ignoreNames {
		if ia&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// UnmarshalText parses a list of flag names separated by
// commas, spaces or '|', such as "fill|stroke" or "none".
func (ia *IgnoreAttributes) UnmarshalText(text []byte) error {
	var out IgnoreAttributes
	fields := strings.FieldsFunc(string(text), func(r rune) bool {
		return r == ',' || r == ' ' || r == '|'
	})
	for _, field := range fields {
		field = strings.ToLower(field)
		if field == "none" {
			continue
		}
		found := false
		for _, n := range ignoreNames {
			if n.name == field {
				out |= n.flag
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("svgdraw: unknown ignore attribute %q", field)
		}
	}
	*ia = out
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (ia IgnoreAttributes) MarshalText() ([]byte, error) {
	return []byte(ia.String()), nil
}
