package route

import "strings"

// #region descriptor
// Descriptor describes one route as produced by the external matcher.
// The gate treats descriptors as opaque; only the table and the demo
// server look inside.
type Descriptor struct {
	Name    string     `yaml:"name" json:"name"`
	Pattern string     `yaml:"pattern" json:"pattern"`
	Actions [][]string `yaml:"actions,omitempty" json:"actions,omitempty"`
}

// #endregion descriptor

// #region context
// Params holds named path parameters extracted during matching.
type Params map[string]string

// Context is the route context handed to the dispatcher untouched.
// Location is the caller-supplied opaque location value.
type Context struct {
	Location any
	Routes   []Descriptor
	Params   Params
}

// #endregion context

// #region table
// Table matches location paths against a fixed set of route patterns.
// Patterns are segment-based: ":name" captures one segment, a trailing
// "*" matches the rest of the path.
type Table struct {
	routes []Descriptor
}

// NewTable creates a table over the given descriptors.
func NewTable(routes ...Descriptor) *Table {
	return &Table{routes: routes}
}

// Routes returns all descriptors in table order.
func (t *Table) Routes() []Descriptor {
	return t.routes
}

// Match returns every descriptor whose pattern matches path, plus the
// merged path parameters. The result is never nil: an empty slice means
// no route matched, which is distinct from "unchanged" to consumers of
// partial updates.
func (t *Table) Match(path string) ([]Descriptor, Params) {
	matched := []Descriptor{}
	params := Params{}
	for _, r := range t.routes {
		p, ok := matchPattern(r.Pattern, path)
		if !ok {
			continue
		}
		matched = append(matched, r)
		for k, v := range p {
			params[k] = v
		}
	}
	return matched, params
}

// Context builds the route context for a location, matching only when the
// location is a plain path string. Non-string locations pass through with
// no matched routes (the caller owns matching in that case).
func (t *Table) Context(location any) Context {
	ctx := Context{Location: location, Params: Params{}}
	if path, ok := location.(string); ok {
		ctx.Routes, ctx.Params = t.Match(path)
	}
	return ctx
}

// #endregion table

// #region matching
// matchPattern matches one pattern against a path.
func matchPattern(pattern, path string) (Params, bool) {
	pat := splitSegments(pattern)
	seg := splitSegments(path)

	params := Params{}
	for i, p := range pat {
		if p == "*" && i == len(pat)-1 {
			return params, true
		}
		if i >= len(seg) {
			return nil, false
		}
		if strings.HasPrefix(p, ":") {
			params[p[1:]] = seg[i]
			continue
		}
		if p != seg[i] {
			return nil, false
		}
	}
	if len(seg) != len(pat) {
		return nil, false
	}
	return params, true
}

// splitSegments splits a path on "/" dropping empty segments.
func splitSegments(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "/") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// #endregion matching
