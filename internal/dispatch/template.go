package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Converter coerces a raw path segment into a typed parameter value. A
// conversion failure means the route does not match; a malformed typed
// parameter never reaches a handler.
type Converter interface {
	Convert(raw string) (any, bool)
	// Greedy converters consume the remainder of the path, slashes included.
	Greedy() bool
}

type strConverter struct{}

func (strConverter) Convert(raw string) (any, bool) { return raw, raw != "" }
func (strConverter) Greedy() bool                   { return false }

type intConverter struct{}

func (intConverter) Convert(raw string) (any, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}
func (intConverter) Greedy() bool { return false }

type uuidConverter struct{}

func (uuidConverter) Convert(raw string) (any, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return id.String(), true
}
func (uuidConverter) Greedy() bool { return false }

type pathConverter struct{}

func (pathConverter) Convert(raw string) (any, bool) { return raw, raw != "" }
func (pathConverter) Greedy() bool                   { return true }

var converters = map[string]Converter{
	"str":  strConverter{},
	"int":  intConverter{},
	"uuid": uuidConverter{},
	"path": pathConverter{},
}

type segment struct {
	literal   string
	param     string
	converter Converter
}

// Template is a parsed route pattern such as /orders/{id:int}. A parameter
// segment without an explicit converter defaults to str.
type Template struct {
	raw      string
	segments []segment
}

// ParseTemplate validates and compiles a route pattern.
func ParseTemplate(pattern string) (Template, error) {
	if !strings.HasPrefix(pattern, "/") {
		return Template{}, fmt.Errorf("pattern %q must start with /", pattern)
	}
	tpl := Template{raw: pattern}
	parts := splitPath(pattern)
	for i, part := range parts {
		if !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
			if strings.ContainsAny(part, "{}") {
				return Template{}, fmt.Errorf("pattern %q: malformed segment %q", pattern, part)
			}
			tpl.segments = append(tpl.segments, segment{literal: part})
			continue
		}
		name, kind, _ := strings.Cut(part[1:len(part)-1], ":")
		if name == "" {
			return Template{}, fmt.Errorf("pattern %q: empty parameter name", pattern)
		}
		if kind == "" {
			kind = "str"
		}
		conv, ok := converters[kind]
		if !ok {
			return Template{}, fmt.Errorf("pattern %q: unknown converter %q", pattern, kind)
		}
		if conv.Greedy() && i != len(parts)-1 {
			return Template{}, fmt.Errorf("pattern %q: path converter must be last", pattern)
		}
		tpl.segments = append(tpl.segments, segment{param: name, converter: conv})
	}
	return tpl, nil
}

// Match attempts to bind a request path to the template, returning the
// converted parameters on success.
func (t Template) Match(path string) (map[string]any, bool) {
	parts := splitPath(path)
	params := make(map[string]any)

	for i, seg := range t.segments {
		if seg.converter != nil && seg.converter.Greedy() {
			if i >= len(parts) {
				return nil, false
			}
			rest := strings.Join(parts[i:], "/")
			val, ok := seg.converter.Convert(rest)
			if !ok {
				return nil, false
			}
			params[seg.param] = val
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		if seg.converter == nil {
			if parts[i] != seg.literal {
				return nil, false
			}
			continue
		}
		val, ok := seg.converter.Convert(parts[i])
		if !ok {
			return nil, false
		}
		params[seg.param] = val
	}
	if len(parts) != len(t.segments) && !t.greedy() {
		return nil, false
	}
	return params, true
}

// shape is the collision identity of a template: two patterns that differ
// only in parameter names or converters still claim the same paths.
func (t Template) shape() string {
	var b strings.Builder
	for _, seg := range t.segments {
		b.WriteByte('/')
		if seg.converter == nil {
			b.WriteString(seg.literal)
		} else if seg.converter.Greedy() {
			b.WriteString("{*}")
		} else {
			b.WriteString("{}")
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// rank orders templates for matching: at the first segment where two
// templates that could claim the same path differ, a literal beats a
// converter and a typed converter beats a greedy one. Lexicographically
// smaller ranks are tried first.
func (t Template) rank() string {
	var b strings.Builder
	for _, seg := range t.segments {
		switch {
		case seg.converter == nil:
			b.WriteByte('0')
		case seg.converter.Greedy():
			b.WriteByte('2')
		default:
			b.WriteByte('1')
		}
	}
	return b.String()
}

func (t Template) greedy() bool {
	if len(t.segments) == 0 {
		return false
	}
	last := t.segments[len(t.segments)-1]
	return last.converter != nil && last.converter.Greedy()
}

// splitPath normalizes the path into segments. A single trailing slash is
// equivalent to its absence, so /orders and /orders/ name the same route.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
