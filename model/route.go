package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Segment is one slash-separated piece of a route template.
type Segment struct {
	// Literal text, when Param is empty.
	Literal string

	// Param is the parameter name for "{name}" segments.
	Param string
}

// IsParam reports whether the segment is a parameter.
func (s Segment) IsParam() bool { return s.Param != "" }

// RouteTemplate is a parsed URL template such as "users/{id}/posts".
type RouteTemplate struct {
	Raw      string
	Segments []Segment
}

// ParseRoute parses a route template. Parameter segments are written
// "{name}" and may carry a constraint or default ("{id:int}", "{page=1}",
// "{*rest}"), which is dropped. A segment mixing literal text and a
// parameter is rejected.
func ParseRoute(raw string) (RouteTemplate, error) {
	rt := RouteTemplate{Raw: raw}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return rt, nil
	}
	for _, part := range strings.Split(trimmed, "/") {
		open := strings.IndexByte(part, '{')
		end := strings.LastIndexByte(part, '}')
		switch {
		case open < 0 && end < 0:
			if part == "" {
				return rt, fmt.Errorf("route %q: empty segment", raw)
			}
			rt.Segments = append(rt.Segments, Segment{Literal: part})
		case open == 0 && end == len(part)-1:
			name := part[1:end]
			name = strings.TrimLeft(name, "*")
			if i := strings.IndexAny(name, ":=?"); i >= 0 {
				name = name[:i]
			}
			if name == "" {
				return rt, fmt.Errorf("route %q: empty parameter name", raw)
			}
			rt.Segments = append(rt.Segments, Segment{Param: name})
		case open < 0 || end < 0 || end < open:
			return rt, fmt.Errorf("route %q: unbalanced braces in %q", raw, part)
		default:
			return rt, fmt.Errorf("route %q: complex segment %q is not supported", raw, part)
		}
	}
	return rt, nil
}

// MustParseRoute is like ParseRoute but panics on error. Use it for
// templates known at compile time.
func MustParseRoute(raw string) RouteTemplate {
	rt, err := ParseRoute(raw)
	if err != nil {
		panic(err)
	}
	return rt
}

// Params returns the parameter names in template order.
func (rt RouteTemplate) Params() []string {
	var names []string
	for _, s := range rt.Segments {
		if s.IsParam() {
			names = append(names, s.Param)
		}
	}
	return names
}

// ErrUnboundRouteParam is returned by Bind when a template parameter has no
// matching path parameter.
var ErrUnboundRouteParam = errors.New("route parameter has no matching path parameter")

// Bind checks that every template parameter has a path-bound parameter with
// the same wire name, and returns the first offender.
func (rt RouteTemplate) Bind(params []Parameter) (string, error) {
	for _, name := range rt.Params() {
		found := slices.ContainsFunc(params, func(p Parameter) bool {
			return p.Location == InPath && p.Wire() == name
		})
		if !found {
			return name, ErrUnboundRouteParam
		}
	}
	return "", nil
}

func sortBy[T any](s []T, key func(T) string) {
	slices.SortStableFunc(s, func(a, b T) int {
		return strings.Compare(key(a), key(b))
	})
}
