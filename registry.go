// FILE: lixenwraith/hiconf/registry.go
package hiconf

import (
	"fmt"
	"log/slog"
	"path"
	"strings"
)

// MaxTypeDepth bounds parent chains and record nesting.
const MaxTypeDepth = 32

// Registry classifies catalog types into variants of the root schema and groups
// of interchangeable types for its record fields. It is read-only after Classify
// and may be shared by any number of Resolve calls.
type Registry struct {
	root     *SchemaType
	types    map[string]*SchemaType
	layouts  map[*SchemaType][]Field
	variants map[string]TypeDescriptor
	groups   map[string]map[string]TypeDescriptor
	aliases  map[string]map[string]string // group field -> unit file stem -> type name
	fields   []string                     // group fields in root declaration order
	warnings []error
}

// ClassifyOption configures Classify
type ClassifyOption func(*classifyOptions)

type classifyOptions struct {
	logger          *slog.Logger
	directoryGroups bool
}

// WithDirectoryGroups also places a type in group <field> when its source unit
// lives in a subdirectory named <field>, regardless of its parent. Such options
// can also be selected by the unit's file name without extension.
func WithDirectoryGroups() ClassifyOption {
	return func(o *classifyOptions) { o.directoryGroups = true }
}

// WithRegistryLogger sets the logger for shadowing and classification diagnostics
func WithRegistryLogger(logger *slog.Logger) ClassifyOption {
	return func(o *classifyOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Classify builds a Registry for root over the catalog.
// Variants are direct subtypes of root; group <f> collects every type that is the
// declared type of root field <f> or a transitive subtype of it. Within one slot a
// later descriptor replaces an earlier one.
func Classify(root *SchemaType, cat *Catalog, opts ...ClassifyOption) *Registry {
	o := classifyOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if cat == nil {
		cat = &Catalog{}
	}

	reg := &Registry{
		root:     root,
		types:    make(map[string]*SchemaType),
		layouts:  make(map[*SchemaType][]Field),
		variants: make(map[string]TypeDescriptor),
		groups:   make(map[string]map[string]TypeDescriptor),
		aliases:  make(map[string]map[string]string),
	}

	for _, d := range cat.Descriptors {
		reg.types[d.Type.Name] = d.Type
	}
	// Go-linked types reachable from root are authoritative for their names
	reg.indexLinked(root, 0)

	broken := make(map[*SchemaType]bool)
	layout := func(t *SchemaType, origin string) {
		if _, err := reg.computeLayout(t, make(map[*SchemaType]bool), 0); err != nil {
			reg.warnings = append(reg.warnings, fmt.Errorf("%w: %s (%s): %v", ErrInvalidSchema, t.Name, origin, err))
			o.logger.Warn("skipping config type", "type", t.Name, "origin", origin, "error", err)
			broken[t] = true
		}
	}
	pending := func(t *SchemaType) bool {
		_, done := reg.layouts[t]
		return !done && !broken[t]
	}
	for _, name := range sortedKeys(reg.types) {
		if t := reg.types[name]; pending(t) {
			layout(t, "index")
		}
	}
	for _, d := range cat.Descriptors {
		for _, t := range linkedTypes(d.Type) {
			if pending(t) {
				layout(t, d.Origin())
			}
		}
	}

	rootFields := reg.layouts[root]
	for _, f := range rootFields {
		if f.Type.Kind != KindRecord {
			continue
		}
		reg.groups[f.Name] = make(map[string]TypeDescriptor)
		reg.fields = append(reg.fields, f.Name)
	}

	insert := func(slot map[string]TypeDescriptor, kind, key string, d TypeDescriptor) {
		if prev, exists := slot[d.Type.Name]; exists {
			o.logger.Debug("config type shadowed",
				"kind", kind, "slot", key, "name", d.Type.Name,
				"previous", prev.Origin(), "winner", d.Origin())
		}
		slot[d.Type.Name] = d
	}

	for _, d := range cat.Descriptors {
		if broken[d.Type] || d.Type == root {
			continue
		}

		if d.Type.Parent == root.Name {
			insert(reg.variants, "variant", d.Type.Name, d)
		}

		for _, f := range rootFields {
			if f.Type.Kind != KindRecord {
				continue
			}
			member := reg.isSubtype(d.Type, f.Type.Schema)
			if !member && o.directoryGroups && d.Group == f.Name {
				member = true
			}
			if member {
				insert(reg.groups[f.Name], "group", f.Name, d)
			}
			if o.directoryGroups && d.Group == f.Name {
				reg.addAlias(f.Name, unitStem(d.RelPath), d.Type.Name)
			}
		}
	}

	return reg
}

// indexLinked adds root and the types it links to directly
func (r *Registry) indexLinked(t *SchemaType, depth int) {
	if t == nil || depth > MaxTypeDepth {
		return
	}
	if existing, ok := r.types[t.Name]; ok && existing == t {
		return
	}
	r.types[t.Name] = t
	r.indexLinked(t.parent, depth+1)
	for _, f := range t.Fields {
		r.indexLinked(f.Type.nested, depth+1)
	}
}

// linkedTypes returns t and every type it reaches through Go links
func linkedTypes(t *SchemaType) []*SchemaType {
	var out []*SchemaType
	seen := make(map[*SchemaType]bool)
	var walk func(*SchemaType, int)
	walk = func(cur *SchemaType, depth int) {
		if cur == nil || seen[cur] || depth > MaxTypeDepth {
			return
		}
		seen[cur] = true
		out = append(out, cur)
		walk(cur.parent, depth+1)
		for _, f := range cur.Fields {
			walk(f.Type.nested, depth+1)
		}
	}
	walk(t, 0)
	return out
}

// parentOf resolves a type's parent through its Go link or by name
func (r *Registry) parentOf(t *SchemaType) *SchemaType {
	if t.parent != nil {
		return t.parent
	}
	if t.Parent == "" {
		return nil
	}
	return r.types[t.Parent]
}

// computeLayout returns the effective fields of t: inherited fields first, own
// declarations replacing or extending them.
func (r *Registry) computeLayout(t *SchemaType, visiting map[*SchemaType]bool, depth int) ([]Field, error) {
	if fields, ok := r.layouts[t]; ok {
		return fields, nil
	}
	if visiting[t] {
		return nil, fmt.Errorf("inheritance cycle through %s", t.Name)
	}
	if depth > MaxTypeDepth {
		return nil, fmt.Errorf("inheritance deeper than %d", MaxTypeDepth)
	}
	visiting[t] = true
	defer delete(visiting, t)

	var fields []Field
	if p := r.parentOf(t); p != nil {
		inherited, err := r.computeLayout(p, visiting, depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, inherited...)
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}

	for _, own := range t.Fields {
		pos, redeclared := index[own.Name]
		if !redeclared {
			index[own.Name] = len(fields)
			fields = append(fields, own)
			continue
		}

		base := fields[pos]
		if own.inferred && base.Type.String() != own.Type.String() {
			if base.Type.Kind == KindRecord {
				return nil, fmt.Errorf("field %s is a %s record and needs the long form to be redeclared", own.Name, base.Type)
			}
			converted, err := valueFromAny(base.Type, own.Default.Interface())
			if err != nil {
				return nil, fmt.Errorf("field %s: default does not fit inherited type %s: %v", own.Name, base.Type, err)
			}
			own.Type, own.Default = base.Type, converted
		}
		if own.Doc == "" {
			own.Doc = base.Doc
		}
		fields[pos] = own
	}

	r.layouts[t] = fields
	return fields, nil
}

// isSubtype reports whether t is base or descends from it
func (r *Registry) isSubtype(t *SchemaType, base string) bool {
	for cur, depth := t, 0; cur != nil && depth <= MaxTypeDepth; cur, depth = r.parentOf(cur), depth+1 {
		if cur.Name == base {
			return true
		}
	}
	return false
}

// Root returns the root schema the registry was classified for
func (r *Registry) Root() *SchemaType { return r.root }

// Type returns the indexed type with the given name
func (r *Registry) Type(name string) (*SchemaType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Fields returns the effective fields of a classified type
func (r *Registry) Fields(t *SchemaType) ([]Field, bool) {
	fields, ok := r.layouts[t]
	return fields, ok
}

// Warnings returns the types dropped during classification
func (r *Registry) Warnings() []error { return r.warnings }

// ListVariants returns variant names, sorted
func (r *Registry) ListVariants() []string { return sortedKeys(r.variants) }

// GroupFields returns the group field names in root declaration order
func (r *Registry) GroupFields() []string { return append([]string(nil), r.fields...) }

// ListGroups returns every group field with its sorted option names
func (r *Registry) ListGroups() map[string][]string {
	out := make(map[string][]string, len(r.groups))
	for field, options := range r.groups {
		out[field] = sortedKeys(options)
	}
	return out
}

// GetVariant looks up a variant by type name or kebab-case alias
func (r *Registry) GetVariant(name string) (TypeDescriptor, error) {
	if d, ok := lookupName(r.variants, name); ok {
		return d, nil
	}
	return TypeDescriptor{}, &LookupError{Kind: LookupVariant, Name: name, Available: r.ListVariants()}
}

// GetGroup looks up an option of a group by type name or kebab-case alias
func (r *Registry) GetGroup(field, option string) (TypeDescriptor, error) {
	name, ok := r.groupField(field)
	if !ok {
		return TypeDescriptor{}, &LookupError{Kind: LookupGroup, Name: field, Available: r.GroupFields()}
	}
	options := r.groups[name]
	if d, ok := lookupName(options, option); ok {
		return d, nil
	}
	if typeName, ok := r.aliases[name][option]; ok {
		return options[typeName], nil
	}
	return TypeDescriptor{}, &LookupError{Kind: LookupOption, Field: name, Name: option, Available: sortedKeys(options)}
}

// addAlias maps a unit file stem to an option of a directory group.
// A later unit with the same stem replaces the earlier mapping.
func (r *Registry) addAlias(field, stem, typeName string) {
	if stem == "" || stem == typeName {
		return
	}
	if r.aliases[field] == nil {
		r.aliases[field] = make(map[string]string)
	}
	r.aliases[field][stem] = typeName
}

// unitStem returns the file name of a unit path without its extension
func unitStem(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}

// groupField matches a group field name, accepting kebab-case spellings
func (r *Registry) groupField(field string) (string, bool) {
	if _, ok := r.groups[field]; ok {
		return field, true
	}
	if snake := kebabToSnake(field); snake != field {
		if _, ok := r.groups[snake]; ok {
			return snake, true
		}
	}
	return "", false
}

// schemaFor resolves the schema type referenced by a record field type
func (r *Registry) schemaFor(ft FieldType) (*SchemaType, bool) {
	if ft.nested != nil {
		return ft.nested, true
	}
	t, ok := r.types[ft.Schema]
	return t, ok
}

// lookupName matches an exact type name first, then a kebab-case alias
func lookupName(slot map[string]TypeDescriptor, name string) (TypeDescriptor, bool) {
	if d, ok := slot[name]; ok {
		return d, true
	}
	want := strings.ToLower(name)
	for _, key := range sortedKeys(slot) {
		if camelToKebab(key) == want {
			return slot[key], true
		}
	}
	return TypeDescriptor{}, false
}
