package restless

import (
	"sort"

	"github.com/spf13/cast"
)

// ParamSet is the unified request parameter mapping assembled from path
// captures, the query string, and the body. Keys are unique and iterate in
// insertion order. Values are JSON-like: string, float64, bool, nil,
// map[string]any, or []any.
//
// Merge phases write through SetIfAbsent, so a key set by an earlier phase
// is never overwritten by a later one (path > query > body).
//
// A ParamSet belongs to a single in-flight call and is not safe for
// concurrent use.
type ParamSet struct {
	keys   []string
	values map[string]any
}

// NewParams creates an empty ParamSet.
func NewParams() *ParamSet {
	return &ParamSet{values: make(map[string]any)}
}

// ParamsFrom creates a ParamSet seeded from m. Keys are inserted in sorted
// order so the set iterates deterministically.
func ParamsFrom(m map[string]any) *ParamSet {
	p := NewParams()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Set(k, m[k])
	}
	return p
}

// Set stores value under key, overwriting any existing entry. Insertion
// order is preserved: overwriting does not move the key.
func (p *ParamSet) Set(key string, value any) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// SetIfAbsent stores value under key only when the key is not already
// present, and reports whether it was stored. This is the merge primitive:
// earlier-set values always win.
func (p *ParamSet) SetIfAbsent(key string, value any) bool {
	if _, ok := p.values[key]; ok {
		return false
	}
	p.keys = append(p.keys, key)
	p.values[key] = value
	return true
}

// Get returns the value stored under key.
func (p *ParamSet) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present.
func (p *ParamSet) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of entries.
func (p *ParamSet) Len() int { return len(p.keys) }

// Keys returns the keys in insertion order.
func (p *ParamSet) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Map returns the entries as a plain map. The map is a shallow copy;
// nested objects and arrays are shared with the set.
func (p *ParamSet) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the set.
func (p *ParamSet) Clone() *ParamSet {
	c := &ParamSet{
		keys:   make([]string, len(p.keys)),
		values: make(map[string]any, len(p.values)),
	}
	copy(c.keys, p.keys)
	for k, v := range p.values {
		c.values[k] = v
	}
	return c
}

// String returns the value under key converted to a string, or "" when the
// key is absent or unconvertible.
func (p *ParamSet) String(key string) string {
	v, ok := p.values[key]
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Float returns the value under key converted to a float64.
func (p *ParamSet) Float(key string) (float64, bool) {
	v, ok := p.values[key]
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the value under key converted to an int64.
func (p *ParamSet) Int(key string) (int64, bool) {
	v, ok := p.values[key]
	if !ok {
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool returns the value under key converted to a bool.
func (p *ParamSet) Bool(key string) (bool, bool) {
	v, ok := p.values[key]
	if !ok {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}

// Freeze returns the immutable view handed to the handler. Later mutations
// of the set are not reflected in the view.
func (p *ParamSet) Freeze() Params {
	frozen := Params{
		keys:   make([]string, len(p.keys)),
		values: make(map[string]any, len(p.values)),
	}
	copy(frozen.keys, p.keys)
	for k, v := range p.values {
		frozen.values[k] = v
	}
	return frozen
}

// Params is the finalized, read-only parameter view a handler receives
// after merging, validation, and coercion.
type Params struct {
	keys   []string
	values map[string]any
}

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p.values[key]
	return ok
}

// Len returns the number of entries.
func (p Params) Len() int { return len(p.keys) }

// Keys returns the keys in insertion order.
func (p Params) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Map returns the entries as a plain map (shallow copy).
func (p Params) Map() map[string]any {
	out := make(map[string]any, len(p.values))
	for k, v := range p.values {
		out[k] = v
	}
	return out
}

// String returns the value under key converted to a string, or "" when the
// key is absent or unconvertible.
func (p Params) String(key string) string {
	v, ok := p.values[key]
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Float returns the value under key converted to a float64.
func (p Params) Float(key string) (float64, bool) {
	v, ok := p.values[key]
	if !ok {
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the value under key converted to an int64.
func (p Params) Int(key string) (int64, bool) {
	v, ok := p.values[key]
	if !ok {
		return 0, false
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Bool returns the value under key converted to a bool.
func (p Params) Bool(key string) (bool, bool) {
	v, ok := p.values[key]
	if !ok {
		return false, false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, false
	}
	return b, true
}
