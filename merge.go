// FILE: lixenwraith/hiconf/merge.go
package hiconf

import (
	"fmt"
	"strings"
)

// Resolve assembles the configuration for the registry's root type.
// Tiers apply in increasing precedence: base defaults, the selected variant's
// redeclared fields, group selections (each a fresh instance of the option type),
// then scalar field overrides. A nil OverrideSet yields the base defaults.
func Resolve(reg *Registry, ov *OverrideSet) (*Resolved, error) {
	if ov == nil {
		ov = &OverrideSet{}
	}
	root := reg.Root()
	if root == nil {
		return nil, &ConstructionError{Err: fmt.Errorf("%w: no root type", ErrInvalidSchema)}
	}

	m := &merger{
		reg:     reg,
		sources: make(map[string]Source),
	}

	// Tier 1
	rec, err := m.instantiate(root, "", SourceDefault, 0)
	if err != nil {
		return nil, err
	}

	// Tier 2
	typeName := root.Name
	if ov.Variant != "" {
		d, err := reg.GetVariant(ov.Variant)
		if err != nil {
			return nil, err
		}
		if err := m.applyVariant(rec, d.Type); err != nil {
			return nil, err
		}
		typeName = d.Type.Name
		rec.typeName = typeName
		m.applied = append(m.applied, AppliedOverride{Source: SourceVariant, Value: typeName, Origin: d.Origin()})
	}

	// Tier 3
	for _, sel := range ov.Groups {
		d, err := reg.GetGroup(sel.Field, sel.Option)
		if err != nil {
			return nil, err
		}
		m.clearSources(sel.Field)
		sub, err := m.instantiate(d.Type, sel.Field, SourceGroup, 1)
		if err != nil {
			return nil, err
		}
		rec.Set(sel.Field, RecordValue(sub))
		m.applied = append(m.applied, AppliedOverride{Source: SourceGroup, Path: sel.Field, Value: d.Type.Name, Origin: d.Origin()})
	}

	// Tier 4
	for _, fo := range ov.Fields {
		path, err := m.setField(rec, fo)
		if err != nil {
			return nil, err
		}
		m.applied = append(m.applied, AppliedOverride{Source: SourceCLI, Path: path, Value: fo.Raw})
	}

	return &Resolved{
		root:     rec,
		typeName: typeName,
		sources:  m.sources,
		applied:  m.applied,
	}, nil
}

type merger struct {
	reg     *Registry
	sources map[string]Source
	applied []AppliedOverride
}

// instantiate builds a fresh record from a type's effective defaults.
// Nested records are built from their own type, never shared.
func (m *merger) instantiate(t *SchemaType, prefix string, src Source, depth int) (*Record, error) {
	if depth > MaxTypeDepth {
		return nil, &ConstructionError{Type: t.Name, Err: fmt.Errorf("records nested deeper than %d", MaxTypeDepth)}
	}
	fields, ok := m.reg.Fields(t)
	if !ok {
		return nil, &ConstructionError{Type: t.Name, Err: fmt.Errorf("%w: type %s was not classified", ErrInvalidSchema, t.Name)}
	}

	rec := NewRecord(t.Name)
	for _, f := range fields {
		v, err := m.fieldValue(t, f, joinPath(prefix, f.Name), src, depth)
		if err != nil {
			return nil, err
		}
		rec.Set(f.Name, v)
	}
	return rec, nil
}

// fieldValue produces the initial value of one declared field
func (m *merger) fieldValue(owner *SchemaType, f Field, path string, src Source, depth int) (Value, error) {
	if f.Type.Kind != KindRecord {
		m.sources[path] = src
		return f.Default.Clone(), nil
	}
	nested, ok := m.reg.schemaFor(f.Type)
	if !ok {
		return Value{}, &ConstructionError{
			Type: owner.Name,
			Err:  fmt.Errorf("%w: field %s refers to unknown type %s", ErrInvalidSchema, f.Name, f.Type.Schema),
		}
	}
	sub, err := m.instantiate(nested, path, src, depth+1)
	if err != nil {
		return Value{}, err
	}
	return RecordValue(sub), nil
}

// applyVariant overwrites the fields the variant declares itself; everything
// else keeps the base default.
func (m *merger) applyVariant(rec *Record, vt *SchemaType) error {
	fields, ok := m.reg.Fields(vt)
	if !ok {
		return &ConstructionError{Type: vt.Name, Err: fmt.Errorf("%w: type %s was not classified", ErrInvalidSchema, vt.Name)}
	}
	own := make(map[string]bool, len(vt.Fields))
	for _, f := range vt.Fields {
		own[f.Name] = true
	}

	for _, f := range fields {
		if !own[f.Name] {
			continue
		}
		m.clearSources(f.Name)
		v, err := m.fieldValue(vt, f, f.Name, SourceVariant, 1)
		if err != nil {
			return err
		}
		rec.Set(f.Name, v)
	}
	return nil
}

// setField navigates a dotted path and assigns the coerced raw value.
// It returns the canonical path of the field that was set.
func (m *merger) setField(rec *Record, fo FieldOverride) (string, error) {
	key := fo.Key()
	cur := rec
	var canonical []string

	for i, seg := range fo.Path {
		name, ok := matchField(cur, seg)
		if !ok {
			return "", &PathError{
				Path:    key,
				Segment: seg,
				Reason:  fmt.Sprintf("%s has no field %q; fields: %s", cur.TypeName(), seg, strings.Join(truncateNames(cur.Keys()), ", ")),
			}
		}
		canonical = append(canonical, name)
		v, _ := cur.Get(name)

		if i < len(fo.Path)-1 {
			if v.Kind() != KindRecord {
				return "", &PathError{Path: key, Segment: seg, Reason: fmt.Sprintf("%s is a %s, not a record", strings.Join(canonical, "."), v.Kind())}
			}
			cur = v.AsRecord()
			continue
		}

		if v.Kind() == KindRecord {
			return "", &PathError{Path: key, Segment: seg, Reason: fmt.Sprintf("%s is a %s record; set one of its fields or select a group option", name, v.AsRecord().TypeName())}
		}
		path := strings.Join(canonical, ".")
		coerced, err := coerceRaw(typeOfValue(v), fo.Raw, path)
		if err != nil {
			return "", err
		}
		cur.Set(name, coerced)
		m.sources[path] = SourceCLI
	}
	return strings.Join(canonical, "."), nil
}

// clearSources drops provenance of every leaf at or under prefix
func (m *merger) clearSources(prefix string) {
	for p := range m.sources {
		if p == prefix || strings.HasPrefix(p, prefix+".") {
			delete(m.sources, p)
		}
	}
}

// matchField finds a field by exact name, then by its snake_case spelling
func matchField(rec *Record, seg string) (string, bool) {
	if _, ok := rec.Get(seg); ok {
		return seg, true
	}
	if snake := kebabToSnake(seg); snake != seg {
		if _, ok := rec.Get(snake); ok {
			return snake, true
		}
	}
	return "", false
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
