package restless

import (
	"fmt"
	"strings"
)

// Pattern is a compiled path template. Templates are segment-based:
//
//	/users              literal segments only
//	/users/:id          :name captures one segment
//	/files/*path        a trailing *name captures the remainder
//
// A strict pattern must consume the whole candidate path; a non-strict
// pattern may leave a trailing remainder for an enclosing scope to hand to
// nested endpoints. Patterns are immutable and safe for concurrent use.
type Pattern struct {
	raw      string
	segments []segment
	catchAll string
	strict   bool
	names    []string
}

// segment matches one path segment. Capturing segments report the name to
// record the segment under.
type segment interface {
	match(s string) (name string, ok bool)
}

type literal struct {
	text string
}

func (l literal) match(s string) (string, bool) { return "", s == l.text }

type capture struct {
	name string
}

func (c capture) match(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	return c.name, true
}

// ParsePattern compiles a path template. strict requires Match to consume
// the candidate path completely.
func ParsePattern(template string, strict bool) (*Pattern, error) {
	p := &Pattern{raw: template, strict: strict}

	seen := make(map[string]bool)
	parts := splitPath(template)
	for i, part := range parts {
		switch {
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("parse pattern %q: empty capture name", template)
			}
			if seen[name] {
				return nil, fmt.Errorf("parse pattern %q: duplicate capture %q", template, name)
			}
			seen[name] = true
			p.segments = append(p.segments, capture{name: name})
			p.names = append(p.names, name)

		case strings.HasPrefix(part, "*"):
			name := part[1:]
			if name == "" {
				return nil, fmt.Errorf("parse pattern %q: empty catch-all name", template)
			}
			if i != len(parts)-1 {
				return nil, fmt.Errorf("parse pattern %q: catch-all %q must be the last segment", template, part)
			}
			if seen[name] {
				return nil, fmt.Errorf("parse pattern %q: duplicate capture %q", template, name)
			}
			p.catchAll = name
			p.names = append(p.names, name)

		default:
			p.segments = append(p.segments, literal{text: part})
		}
	}

	return p, nil
}

// MustPattern is like ParsePattern but panics on an invalid template. Use
// at route-registration time, where a bad template is a programming error.
func MustPattern(template string, strict bool) *Pattern {
	p, err := ParsePattern(template, strict)
	if err != nil {
		panic("restless: " + err.Error())
	}
	return p
}

// String returns the original template.
func (p *Pattern) String() string { return p.raw }

// Names returns the capture names in declaration order.
func (p *Pattern) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// Match tests path against the pattern. On a match it returns the named
// captures in declaration order; a miss returns ok == false and has no
// side effects.
func (p *Pattern) Match(path string) (Captures, bool) {
	parts := splitPath(path)

	if len(parts) < len(p.segments) {
		return Captures{}, false
	}

	caps := Captures{values: make(map[string]string, len(p.names))}
	for i, seg := range p.segments {
		name, ok := seg.match(parts[i])
		if !ok {
			return Captures{}, false
		}
		if name != "" {
			caps.names = append(caps.names, name)
			caps.values[name] = parts[i]
		}
	}

	rest := parts[len(p.segments):]
	switch {
	case p.catchAll != "":
		caps.names = append(caps.names, p.catchAll)
		caps.values[p.catchAll] = strings.Join(rest, "/")
	case len(rest) > 0:
		if p.strict {
			return Captures{}, false
		}
		caps.rest = "/" + strings.Join(rest, "/")
	}

	return caps, true
}

// ApplyCaptures merges the captures into params in declaration order. An
// existing key is never replaced: values seeded by an outer scope win.
func (p *Pattern) ApplyCaptures(params *ParamSet, caps Captures) {
	for _, name := range caps.names {
		params.SetIfAbsent(name, caps.values[name])
	}
}

// Captures holds the named values extracted by a pattern match.
type Captures struct {
	names  []string
	values map[string]string
	rest   string
}

// Get returns the captured value for name.
func (c Captures) Get(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Names returns the capture names in declaration order.
func (c Captures) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of captures.
func (c Captures) Len() int { return len(c.names) }

// Rest returns the unconsumed remainder of the path for non-strict
// patterns, with a leading slash, or "" when the path was fully consumed.
func (c Captures) Rest() string { return c.rest }

// splitPath splits on "/" and drops empty segments, so leading and
// trailing slashes do not affect matching.
func splitPath(path string) []string {
	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
