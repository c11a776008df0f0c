// FILE: lixenwraith/hiconf/value.go
package hiconf

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the payload carried by a Value and the declared kind of a field.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindRecord
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindList:    "list",
	KindRecord:  "record",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a tagged union holding one field value: a primitive, a list, or a nested record.
// The zero Value is invalid.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	rec  *Record
}

// Bool returns a boolean Value
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns an integer Value
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating point Value
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Str returns a string Value
func Str(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list Value holding the given elements
func List(elems ...Value) Value {
	return Value{kind: KindList, list: append([]Value(nil), elems...)}
}

// RecordValue wraps a record as a Value
func RecordValue(r *Record) Value { return Value{kind: KindRecord, rec: r} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsValid() bool    { return v.kind != KindInvalid }
func (v Value) AsBool() bool     { return v.b }
func (v Value) AsInt() int64     { return v.i }
func (v Value) AsFloat() float64 { return v.f }
func (v Value) AsString() string { return v.s }
func (v Value) AsList() []Value  { return v.list }
func (v Value) AsRecord() *Record {
	return v.rec
}

// Clone returns a deep copy; records and lists are never shared between copies.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		out := make([]Value, len(v.list))
		for i, e := range v.list {
			out[i] = e.Clone()
		}
		return Value{kind: KindList, list: out}
	case KindRecord:
		return RecordValue(v.rec.Clone())
	default:
		return v
	}
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindRecord:
		return v.rec.Equal(o.rec)
	}
	return true
}

// Interface converts the value into plain Go data: bool, int64, float64, string,
// []any or map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Interface()
		}
		return out
	case KindRecord:
		return v.rec.Map()
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRecord:
		return v.rec.String()
	}
	return "<invalid>"
}

// Record is an ordered set of named values produced from one schema type.
type Record struct {
	typeName string
	keys     []string
	fields   map[string]Value
}

// NewRecord creates an empty record tagged with the producing type's name
func NewRecord(typeName string) *Record {
	return &Record{
		typeName: typeName,
		fields:   make(map[string]Value),
	}
}

// TypeName returns the schema type that produced the record
func (r *Record) TypeName() string { return r.typeName }

// Len returns the number of fields
func (r *Record) Len() int { return len(r.keys) }

// Keys returns field names in declaration order
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Get returns the value of a field
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Set assigns a field, appending it to the key order if new
func (r *Record) Set(name string, v Value) {
	if _, exists := r.fields[name]; !exists {
		r.keys = append(r.keys, name)
	}
	r.fields[name] = v
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{
		typeName: r.typeName,
		keys:     append([]string(nil), r.keys...),
		fields:   make(map[string]Value, len(r.fields)),
	}
	for k, v := range r.fields {
		out.fields[k] = v.Clone()
	}
	return out
}

// Equal compares type names and field values; key order is not significant.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.typeName != o.typeName || len(r.fields) != len(o.fields) {
		return false
	}
	for k, v := range r.fields {
		ov, ok := o.fields[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Map converts the record into a nested map[string]any
func (r *Record) Map() map[string]any {
	out := make(map[string]any, len(r.fields))
	for k, v := range r.fields {
		out[k] = v.Interface()
	}
	return out
}

func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(r.typeName)
	b.WriteString("{")
	for i, k := range r.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", k, r.fields[k].String())
	}
	b.WriteString("}")
	return b.String()
}
