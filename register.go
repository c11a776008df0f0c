package hiconf

import (
	"encoding"
	"fmt"
	"net"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"time"
)

var (
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	stringerType      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	durationType      = reflect.TypeOf(time.Duration(0))
	timeType          = reflect.TypeOf(time.Time{})
	ipType            = reflect.TypeOf(net.IP{})
	ipNetType         = reflect.TypeOf(net.IPNet{})
	urlType           = reflect.TypeOf(url.URL{})
)

// Reflect builds a schema type from a Go struct holding default values.
// It uses struct tags (`toml:"..."`) for field names and `doc:"..."` for descriptions.
// Nested structs become nested schema types named after their Go type.
// Durations, times, IPs, URLs and text marshalers are declared as strings.
func Reflect(structWithDefaults any) (*SchemaType, error) {
	v := reflect.ValueOf(structWithDefaults)

	// Handle pointer or direct struct value
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("Reflect requires a non-nil struct pointer or value")
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("Reflect requires a struct or struct pointer, got %T", structWithDefaults)
	}

	r := &reflector{building: make(map[reflect.Type]bool)}
	return r.reflectStruct(addressable(v), v.Type().Name())
}

// MustReflect is like Reflect but panics on error
func MustReflect(structWithDefaults any) *SchemaType {
	t, err := Reflect(structWithDefaults)
	if err != nil {
		panic(err)
	}
	return t
}

type reflector struct {
	building map[reflect.Type]bool
}

func (r *reflector) reflectStruct(v reflect.Value, name string) (*SchemaType, error) {
	t := v.Type()
	if name == "" {
		return nil, fmt.Errorf("%w: anonymous struct needs a field name", ErrInvalidSchema)
	}
	if r.building[t] {
		return nil, fmt.Errorf("%w: recursive type %s", ErrInvalidSchema, t)
	}
	r.building[t] = true
	defer delete(r.building, t)

	var (
		fields []Field
		errs   []string
	)

	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		// Get tag value or use field name
		tag := field.Tag.Get("toml")
		if tag == "-" {
			continue
		}

		key := field.Name
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				key = parts[0]
			}
		}

		f, err := r.reflectField(key, field, fieldValue)
		if err != nil {
			errs = append(errs, fmt.Sprintf("field %s (%s): %v", field.Name, key, err))
			continue
		}
		f.Doc = field.Tag.Get("doc")
		fields = append(fields, f)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to reflect %d field(s) of %s: %s", len(errs), name, strings.Join(errs, "; "))
	}

	return NewType(name, "", fields...)
}

func (r *reflector) reflectField(key string, field reflect.StructField, fv reflect.Value) (Field, error) {
	ft := fv.Type()

	if isStringLike(ft) {
		def, err := valueFromAny(Prim(KindString), stringSource(fv))
		if err != nil {
			return Field{}, err
		}
		return Field{Name: key, Type: Prim(KindString), Default: def}, nil
	}

	switch ft.Kind() {
	case reflect.Struct:
		nested, err := r.reflectStruct(fv, nestedName(ft, field))
		if err != nil {
			return Field{}, err
		}
		return NestedField(key, nested), nil

	case reflect.Ptr:
		if ft.Elem().Kind() != reflect.Struct || isStringLike(ft.Elem()) {
			return Field{}, fmt.Errorf("unsupported pointer type %s", ft)
		}
		elem := reflect.New(ft.Elem()).Elem()
		if !fv.IsNil() {
			elem.Set(fv.Elem())
		}
		nested, err := r.reflectStruct(elem, nestedName(ft.Elem(), field))
		if err != nil {
			return Field{}, err
		}
		return NestedField(key, nested), nil

	case reflect.Slice, reflect.Array:
		if ft.Elem().Kind() == reflect.Uint8 {
			return Field{}, fmt.Errorf("byte slices are not supported")
		}
		elemKind, ok := primitiveKind(ft.Elem())
		if !ok {
			return Field{}, fmt.Errorf("unsupported list element type %s", ft.Elem())
		}
		fieldType := ListOf(Prim(elemKind))
		def, err := valueFromAny(fieldType, stringSlice(fv))
		if err != nil {
			return Field{}, err
		}
		return Field{Name: key, Type: fieldType, Default: def}, nil
	}

	kind, ok := primitiveKind(ft)
	if !ok {
		return Field{}, fmt.Errorf("unsupported field kind %s", ft.Kind())
	}
	def, err := valueFromAny(Prim(kind), fv.Interface())
	if err != nil {
		return Field{}, err
	}
	return Field{Name: key, Type: Prim(kind), Default: def}, nil
}

// Extend declares a subtype of parent that redeclares the listed fields with new defaults.
// Values are converted to the parent's declared field types. A record field may be
// redeclared with a *SchemaType or a type name to change its nested type.
func Extend(parent *SchemaType, name string, overrides map[string]any) (*SchemaType, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: Extend requires a parent type", ErrInvalidSchema)
	}

	inherited := linkedFields(parent)
	order := make(map[string]int, len(inherited))
	for i, f := range inherited {
		order[f.Name] = i
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		if _, ok := order[k]; !ok {
			return nil, fmt.Errorf("%w: %s has no field %q to redeclare", ErrInvalidSchema, parent.Name, k)
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		base := inherited[order[k]]
		f := Field{Name: k, Type: base.Type, Doc: base.Doc}

		if base.Type.Kind == KindRecord {
			switch nt := overrides[k].(type) {
			case *SchemaType:
				f.Type = RecordOf(nt)
			case string:
				f.Type = RecordNamed(nt)
			default:
				return nil, fmt.Errorf("%w: record field %s.%s must be redeclared with a schema type, got %T",
					ErrInvalidSchema, name, k, overrides[k])
			}
		} else {
			val, err := valueFromAny(base.Type, overrides[k])
			if err != nil {
				return nil, fmt.Errorf("%w: field %s.%s: %v", ErrInvalidSchema, name, k, err)
			}
			f.Default = val
		}
		fields = append(fields, f)
	}

	t, err := NewType(name, parent.Name, fields...)
	if err != nil {
		return nil, err
	}
	t.parent = parent
	return t, nil
}

// linkedFields returns effective fields along Go-linked parents
func linkedFields(t *SchemaType) []Field {
	var chain []*SchemaType
	for cur, depth := t, 0; cur != nil && depth < MaxTypeDepth; cur, depth = cur.parent, depth+1 {
		chain = append(chain, cur)
	}

	var fields []Field
	index := make(map[string]int)
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range chain[i].Fields {
			if pos, ok := index[f.Name]; ok {
				fields[pos] = f
				continue
			}
			index[f.Name] = len(fields)
			fields = append(fields, f)
		}
	}
	return fields
}

// addressable returns an addressable copy of v so pointer-receiver methods are reachable
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

func isStringLike(t reflect.Type) bool {
	switch t {
	case durationType, timeType, ipType, ipNetType, urlType:
		return true
	}
	if t.Kind() == reflect.String || t.Kind() == reflect.Ptr {
		return false
	}
	return t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
}

// stringSource returns a value whose text form valueFromAny can read
func stringSource(v reflect.Value) any {
	v = addressable(v)
	switch {
	case v.Type().Implements(textMarshalerType) || v.Type().Implements(stringerType):
		return v.Interface()
	case v.Addr().Type().Implements(textMarshalerType) || v.Addr().Type().Implements(stringerType):
		return v.Addr().Interface()
	}
	return fmt.Sprint(v.Interface())
}

// stringSlice converts slices of string-like elements to []any of their text forms
func stringSlice(v reflect.Value) any {
	if !isStringLike(v.Type().Elem()) {
		return v.Interface()
	}
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = stringSource(v.Index(i))
	}
	return out
}

func primitiveKind(t reflect.Type) (Kind, bool) {
	if isStringLike(t) {
		return KindString, true
	}
	switch t.Kind() {
	case reflect.Bool:
		return KindBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInt, true
	case reflect.Float32, reflect.Float64:
		return KindFloat, true
	case reflect.String:
		return KindString, true
	}
	return KindInvalid, false
}

// nestedName names the schema type of a nested struct; anonymous structs use the field name
func nestedName(t reflect.Type, field reflect.StructField) string {
	if t.Name() != "" {
		return t.Name()
	}
	return field.Name
}
