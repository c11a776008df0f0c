// FILE: lixenwraith/hiconf/decode.go
package hiconf

import (
	"fmt"
	"net"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Validator is implemented by configuration structs that check their own constraints.
// Decode calls it after a successful decode.
type Validator interface {
	Validate() error
}

// Decode constructs the whole configuration into target, a non-nil struct pointer,
// and runs its Validate method when present. Every failure is a *ConstructionError
// matching ErrSchemaConstruction, with the underlying error preserved.
func (r *Resolved) Decode(target any) error {
	if err := r.unmarshal("", target); err != nil {
		return &ConstructionError{Type: r.typeName, Err: err}
	}
	if v, ok := target.(Validator); ok {
		if err := v.Validate(); err != nil {
			return &ConstructionError{Type: r.typeName, Err: err}
		}
	}
	return nil
}

// Scan decodes the subtree at basePath into target without validation.
// An empty basePath scans the whole configuration.
func (r *Resolved) Scan(basePath string, target any) error {
	return r.unmarshal(basePath, target)
}

// unmarshal is the single decoding path behind Decode and Scan
func (r *Resolved) unmarshal(basePath string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("unmarshal target must be non-nil pointer, got %T", target)
	}

	sectionData := navigateToPath(r.ToMap(), basePath)

	sectionMap, ok := sectionData.(map[string]any)
	if !ok {
		if sectionData == nil {
			return fmt.Errorf("path %q not found", basePath)
		}
		return fmt.Errorf("path %q refers to non-map value (type %T)", basePath, sectionData)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "toml",
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
		ZeroFields:       true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}

	if err := decoder.Decode(sectionMap); err != nil {
		if basePath == "" {
			return fmt.Errorf("decode failed: %w", err)
		}
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}

// decodeHook returns the composite hook for types stored as strings
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringHook(reflect.TypeOf(net.IP{}), 45, parseIP),
		stringHook(reflect.TypeOf(net.IPNet{}), 49, parseCIDR),
		stringHook(reflect.TypeOf(url.URL{}), 2048, parseURL),

		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}

// stringHook converts strings into target or *target using parse, which returns
// a pointer to the parsed value. Inputs longer than maxLen are rejected.
func stringHook(target reflect.Type, maxLen int, parse func(string) (any, error)) mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		isPtr := t.Kind() == reflect.Ptr
		if t != target && !(isPtr && t.Elem() == target) {
			return data, nil
		}

		str := data.(string)
		if len(str) > maxLen {
			return nil, fmt.Errorf("%s value too long: %d bytes", target, len(str))
		}
		parsed, err := parse(str)
		if err != nil {
			return nil, err
		}
		if isPtr {
			return parsed, nil
		}
		return reflect.ValueOf(parsed).Elem().Interface(), nil
	}
}

func parseIP(s string) (any, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %s", s)
	}
	return &ip, nil
}

func parseCIDR(s string) (any, error) {
	_, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("invalid CIDR: %w", err)
	}
	return ipnet, nil
}

func parseURL(s string) (any, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	return u, nil
}

// navigateToPath traverses nested map to reach the specified path
func navigateToPath(nested map[string]any, path string) any {
	if path == "" {
		return nested
	}

	path = strings.TrimSuffix(path, ".")
	if path == "" {
		return nested
	}

	segments := strings.Split(path, ".")
	current := any(nested)

	for _, segment := range segments {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		value, exists := currentMap[segment]
		if !exists {
			return nil
		}
		current = value
	}

	return current
}
