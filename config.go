// FILE: lixenwraith/hiconf/config.go
package hiconf

import (
	"strings"
)

// Source identifies the resolution tier that produced a value.
type Source string

const (
	// SourceDefault represents the root type's own defaults
	SourceDefault Source = "default"
	// SourceVariant represents fields redeclared by the selected variant
	SourceVariant Source = "variant"
	// SourceGroup represents defaults of a selected group option
	SourceGroup Source = "group"
	// SourceCLI represents scalar command-line overrides
	SourceCLI Source = "cli"
)

// AppliedOverride records one applied selection or override, in application order.
type AppliedOverride struct {
	Source Source
	Path   string // group field or field path; empty for the variant
	Value  string // variant or option type name, or the raw override value
	Origin string // source unit of the selected type
}

// Resolved is the outcome of one resolution: a record tree tagged with the type
// that produced it and the tier each leaf came from. It is immutable; accessors
// return copies.
type Resolved struct {
	root     *Record
	typeName string
	sources  map[string]Source
	applied  []AppliedOverride
}

// TypeName returns the name of the root or variant type that produced the configuration
func (r *Resolved) TypeName() string { return r.typeName }

// Record returns a deep copy of the resolved record tree
func (r *Resolved) Record() *Record { return r.root.Clone() }

// Value returns the typed value at a dotted path.
// An empty path returns the root record.
func (r *Resolved) Value(path string) (Value, bool) {
	cur := RecordValue(r.root)
	if path == "" {
		return cur.Clone(), true
	}
	for _, segment := range strings.Split(path, ".") {
		if cur.Kind() != KindRecord {
			return Value{}, false
		}
		next, ok := cur.AsRecord().Get(segment)
		if !ok {
			return Value{}, false
		}
		cur = next
	}
	return cur.Clone(), true
}

// Get retrieves the plain Go form of the value at path:
// bool, int64, float64, string, []any or map[string]any.
// The second return value indicates whether the path exists.
func (r *Resolved) Get(path string) (any, bool) {
	v, ok := r.Value(path)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// TypeOf returns the schema type name of the record at path, which shows the
// group option in effect for a group field.
func (r *Resolved) TypeOf(path string) (string, bool) {
	if path == "" {
		return r.typeName, true
	}
	v, ok := r.Value(path)
	if !ok || v.Kind() != KindRecord {
		return "", false
	}
	return v.AsRecord().TypeName(), true
}

// SourceOf returns the tier that produced the leaf at path
func (r *Resolved) SourceOf(path string) (Source, bool) {
	src, ok := r.sources[path]
	return src, ok
}

// Paths returns every leaf path, sorted
func (r *Resolved) Paths() []string { return sortedKeys(r.sources) }

// Overrides returns the variant, group selections and field overrides applied, in order
func (r *Resolved) Overrides() []AppliedOverride {
	return append([]AppliedOverride(nil), r.applied...)
}

// ToMap converts the configuration to a nested map[string]any
func (r *Resolved) ToMap() map[string]any { return r.root.Map() }

// Equal reports structural equality of two resolved configurations
func (r *Resolved) Equal(other *Resolved) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.typeName == other.typeName && r.root.Equal(other.root)
}
