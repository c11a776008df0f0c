// FILE: lixenwraith/hiconf/schema.go
package hiconf

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a field: a primitive kind, a list of a
// field type, or a nested schema type referenced by name.
type FieldType struct {
	Kind   Kind
	Elem   *FieldType // set for KindList
	Schema string     // set for KindRecord
	nested *SchemaType
}

// Prim returns the field type for a primitive kind
func Prim(k Kind) FieldType { return FieldType{Kind: k} }

// ListOf returns a list field type
func ListOf(elem FieldType) FieldType {
	e := elem
	return FieldType{Kind: KindList, Elem: &e}
}

// RecordOf returns a record field type linked directly to t
func RecordOf(t *SchemaType) FieldType {
	return FieldType{Kind: KindRecord, Schema: t.Name, nested: t}
}

// RecordNamed returns a record field type resolved by name at classification time
func RecordNamed(name string) FieldType {
	return FieldType{Kind: KindRecord, Schema: name}
}

// Nested returns the directly linked schema type, if any.
func (ft FieldType) Nested() *SchemaType { return ft.nested }

func (ft FieldType) String() string {
	switch ft.Kind {
	case KindList:
		if ft.Elem == nil {
			return "list"
		}
		return "list[" + ft.Elem.String() + "]"
	case KindRecord:
		return ft.Schema
	default:
		return ft.Kind.String()
	}
}

// ParseFieldType parses the text form of a field type:
// int, float, bool, string, list[T], []T, or a schema type name.
func ParseFieldType(s string) (FieldType, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "int", "integer", "int64":
		return Prim(KindInt), nil
	case "float", "float64", "number":
		return Prim(KindFloat), nil
	case "bool", "boolean":
		return Prim(KindBool), nil
	case "string", "str":
		return Prim(KindString), nil
	}

	var inner string
	switch {
	case strings.HasPrefix(s, "[]"):
		inner = s[2:]
	case strings.HasPrefix(strings.ToLower(s), "list[") && strings.HasSuffix(s, "]"):
		inner = s[5 : len(s)-1]
	default:
		if !isValidKeySegment(s) {
			return FieldType{}, fmt.Errorf("invalid field type %q", s)
		}
		return RecordNamed(s), nil
	}

	elem, err := ParseFieldType(inner)
	if err != nil {
		return FieldType{}, err
	}
	if elem.Kind == KindRecord || elem.Kind == KindList {
		return FieldType{}, fmt.Errorf("invalid field type %q: lists hold primitive values only", s)
	}
	return ListOf(elem), nil
}

// Field is one declared field of a schema type.
// Record-typed fields carry no Default; their default is built from the nested type.
type Field struct {
	Name    string
	Type    FieldType
	Default Value
	Doc     string

	// inferred marks a type taken from a default literal; an ancestor's
	// declaration of the same field takes precedence over it
	inferred bool
}

// FieldOf declares a field whose type follows the default value's kind
func FieldOf(name string, def Value) Field {
	return Field{Name: name, Type: typeOfValue(def), Default: def}
}

// NestedField declares a record-typed field
func NestedField(name string, t *SchemaType) Field {
	return Field{Name: name, Type: RecordOf(t)}
}

// WithDoc returns a copy of the field carrying a description
func (f Field) WithDoc(doc string) Field {
	f.Doc = doc
	return f
}

// SchemaType is a named record type with an ordered set of fields and an optional parent.
// The parent relationship is used for classification only.
type SchemaType struct {
	Name   string
	Parent string
	Doc    string
	Fields []Field

	parent *SchemaType
}

// NewType creates a schema type after checking names, field uniqueness and default kinds.
func NewType(name, parent string, fields ...Field) (*SchemaType, error) {
	t := &SchemaType{
		Name:   name,
		Parent: parent,
		Fields: fields,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// MustType is like NewType but panics on error
func MustType(name, parent string, fields ...Field) *SchemaType {
	t, err := NewType(name, parent, fields...)
	if err != nil {
		panic(err)
	}
	return t
}

// Field returns the type's own declaration of a field
func (t *SchemaType) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns own field names in declaration order
func (t *SchemaType) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.Name
	}
	return names
}

func (t *SchemaType) validate() error {
	if !isValidKeySegment(t.Name) {
		return fmt.Errorf("%w: invalid type name %q", ErrInvalidSchema, t.Name)
	}
	if t.Parent != "" && !isValidKeySegment(t.Parent) {
		return fmt.Errorf("%w: type %s has invalid parent name %q", ErrInvalidSchema, t.Name, t.Parent)
	}
	if t.Parent == t.Name && t.Parent != "" {
		return fmt.Errorf("%w: type %s cannot extend itself", ErrInvalidSchema, t.Name)
	}

	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if !isValidKeySegment(f.Name) {
			return fmt.Errorf("%w: type %s has invalid field name %q", ErrInvalidSchema, t.Name, f.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: type %s declares field %q twice", ErrInvalidSchema, t.Name, f.Name)
		}
		seen[f.Name] = true

		switch f.Type.Kind {
		case KindRecord:
			if f.Type.Schema == "" {
				return fmt.Errorf("%w: field %s.%s has no record type", ErrInvalidSchema, t.Name, f.Name)
			}
			if f.Default.IsValid() {
				return fmt.Errorf("%w: record field %s.%s cannot carry a default value", ErrInvalidSchema, t.Name, f.Name)
			}
		case KindInvalid:
			return fmt.Errorf("%w: field %s.%s has no type", ErrInvalidSchema, t.Name, f.Name)
		default:
			if !valueMatches(f.Type, f.Default) {
				return fmt.Errorf("%w: default %s of field %s.%s does not match type %s",
					ErrInvalidSchema, f.Default, t.Name, f.Name, f.Type)
			}
		}
	}
	return nil
}

// valueMatches reports whether v is a legal value of ft
func valueMatches(ft FieldType, v Value) bool {
	if v.Kind() != ft.Kind {
		return false
	}
	if ft.Kind == KindList && ft.Elem != nil {
		for _, e := range v.AsList() {
			if !valueMatches(*ft.Elem, e) {
				return false
			}
		}
	}
	return true
}

// typeOfValue derives a field type from a value
func typeOfValue(v Value) FieldType {
	switch v.Kind() {
	case KindList:
		elem := Prim(KindString)
		if list := v.AsList(); len(list) > 0 {
			elem = Prim(list[0].Kind())
		}
		return ListOf(elem)
	case KindRecord:
		return RecordNamed(v.AsRecord().TypeName())
	default:
		return Prim(v.Kind())
	}
}
