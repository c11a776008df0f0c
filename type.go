// File: lixenwraith/hiconf/type.go
package hiconf

import (
	"encoding"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// String retrieves a string configuration value using the path.
// Attempts conversion from common types if the stored value isn't already a string.
func (r *Resolved) String(path string) (string, error) {
	val, found := r.Get(path)
	if !found {
		return "", fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("cannot convert type %T to string for path %s", val, path)
	}
}

// Int64 retrieves an int64 configuration value using the path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (r *Resolved) Int64(path string) (int64, error) {
	val, found := r.Get(path)
	if !found {
		return 0, fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case int64:
		return v, nil
	case float64:
		// Truncate float to int
		return int64(v), nil
	case string:
		if i, err := strconv.ParseInt(v, 0, 64); err == nil {
			return i, nil
		} else {
			return 0, fmt.Errorf("cannot convert string %q to int64 for path %s: %w", v, path, err)
		}
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}

	return 0, fmt.Errorf("cannot convert type %T to int64 for path %s", val, path)
}

// Bool retrieves a boolean configuration value using the path.
// Attempts conversion from numeric types (0=false, non-zero=true) and parsable strings.
func (r *Resolved) Bool(path string) (bool, error) {
	val, found := r.Get(path)
	if !found {
		return false, fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		b, err := parseBoolLiteral(v)
		if err != nil {
			return false, fmt.Errorf("cannot convert string %q to bool for path %s: %w", v, path, err)
		}
		return b, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	}

	return false, fmt.Errorf("cannot convert type %T to bool for path %s", val, path)
}

// Float64 retrieves a float64 configuration value using the path.
// Attempts conversion from numeric types, parsable strings, and booleans.
func (r *Resolved) Float64(path string) (float64, error) {
	val, found := r.Get(path)
	if !found {
		return 0.0, fmt.Errorf("path not found: %s", path)
	}

	switch v := val.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		} else {
			return 0.0, fmt.Errorf("cannot convert string %q to float64 for path %s: %w", v, path, err)
		}
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	}

	return 0.0, fmt.Errorf("cannot convert type %T to float64 for path %s", val, path)
}

// parseBoolLiteral accepts the boolean spellings allowed on the command line
func parseBoolLiteral(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean literal %q", s)
}

// coerceRaw converts a raw command-line string to the field's declared primitive type.
func coerceRaw(ft FieldType, raw, path string) (Value, error) {
	fail := func(err error) (Value, error) {
		return Value{}, &CoercionError{Path: path, Value: raw, Expected: expectedName(ft), Err: err}
	}

	switch ft.Kind {
	case KindString:
		return Str(raw), nil
	case KindInt:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 0, 64)
		if err != nil {
			return fail(numError(err))
		}
		return Int(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fail(numError(err))
		}
		return Float(f), nil
	case KindBool:
		b, err := parseBoolLiteral(raw)
		if err != nil {
			return fail(nil)
		}
		return Bool(b), nil
	case KindList:
		return fail(fmt.Errorf("list fields cannot be set from the command line"))
	}
	return fail(fmt.Errorf("unsupported field kind %s", ft.Kind))
}

// expectedName is the type name shown in coercion diagnostics
func expectedName(ft FieldType) string {
	switch ft.Kind {
	case KindInt:
		return "integer"
	case KindFloat:
		return "floating point"
	case KindBool:
		return "boolean"
	default:
		return ft.String()
	}
}

// numError strips the strconv wrapper, which repeats the input
func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}

// valueFromAny converts decoded file data or Go values into a Value of the given field type.
// Numeric conversions are permitted when lossless.
func valueFromAny(ft FieldType, raw any) (Value, error) {
	if raw == nil {
		return Value{}, fmt.Errorf("missing value for type %s", ft)
	}

	switch ft.Kind {
	case KindRecord:
		return Value{}, fmt.Errorf("record fields take their defaults from type %s", ft.Schema)

	case KindList:
		rv := reflect.ValueOf(raw)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return Value{}, fmt.Errorf("expected list, got %T", raw)
		}
		elemType := Prim(KindString)
		if ft.Elem != nil {
			elemType = *ft.Elem
		}
		elems := make([]Value, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			e, err := valueFromAny(elemType, rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = e
		}
		return List(elems...), nil

	case KindString:
		switch v := raw.(type) {
		case string:
			return Str(v), nil
		case encoding.TextMarshaler:
			text, err := v.MarshalText()
			if err != nil {
				return Value{}, err
			}
			return Str(string(text)), nil
		case fmt.Stringer:
			return Str(v.String()), nil
		}
		if rv := reflect.ValueOf(raw); rv.Kind() == reflect.String {
			return Str(rv.String()), nil
		}
		return Value{}, fmt.Errorf("expected string, got %T", raw)

	case KindBool:
		if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Bool {
			return Bool(rv.Bool()), nil
		}
		return Value{}, fmt.Errorf("expected bool, got %T", raw)

	case KindInt:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Int(rv.Int()), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return Value{}, fmt.Errorf("unsigned integer %d overflows int64", u)
			}
			return Int(int64(u)), nil
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return Value{}, fmt.Errorf("expected integer, got %v", f)
			}
			if f < -(1<<63) || f >= 1<<63 {
				return Value{}, fmt.Errorf("%v overflows int64", f)
			}
			return Int(int64(f)), nil
		}
		return Value{}, fmt.Errorf("expected integer, got %T", raw)

	case KindFloat:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return Float(rv.Float()), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return Float(float64(rv.Int())), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return Float(float64(rv.Uint())), nil
		}
		return Value{}, fmt.Errorf("expected floating point, got %T", raw)
	}

	return Value{}, fmt.Errorf("unsupported field type %s", ft)
}

// inferValue derives a field type from a bare literal and converts it.
func inferValue(raw any) (FieldType, Value, error) {
	var ft FieldType
	switch v := raw.(type) {
	case bool:
		ft = Prim(KindBool)
	case string:
		ft = Prim(KindString)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		ft = Prim(KindInt)
	case float32, float64:
		ft = Prim(KindFloat)
	case []any:
		elem := Prim(KindString)
		if len(v) > 0 {
			et, _, err := inferValue(v[0])
			if err != nil {
				return FieldType{}, Value{}, err
			}
			if et.Kind == KindList {
				return FieldType{}, Value{}, fmt.Errorf("nested lists are not supported")
			}
			elem = et
		}
		ft = ListOf(elem)
	case map[string]any:
		return FieldType{}, Value{}, fmt.Errorf("table values need the long form with a type key")
	default:
		return FieldType{}, Value{}, fmt.Errorf("unsupported literal of type %T", raw)
	}

	val, err := valueFromAny(ft, raw)
	if err != nil {
		return FieldType{}, Value{}, err
	}
	return ft, val, nil
}
