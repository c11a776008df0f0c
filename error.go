// FILE: lixenwraith/hiconf/error.go
package hiconf

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for each failure category of a resolution.
// Typed errors below match them through errors.Is.
var (
	ErrDirectoryResolution = errors.New("directory resolution failed")
	ErrCatalogLoad         = errors.New("catalog source unit skipped")
	ErrLookup              = errors.New("unknown configuration name")
	ErrCLIParse            = errors.New("failed to parse command-line arguments")
	ErrCoercion            = errors.New("cannot convert command-line value")
	ErrPathNavigation      = errors.New("invalid field path")
	ErrSchemaConstruction  = errors.New("configuration construction failed")
	ErrInvalidSchema       = errors.New("invalid schema type")

	// ErrHelp is returned by Build after help text was written.
	ErrHelp = errors.New("help requested")
)

// LoadWarning reports a source unit that was skipped during catalog loading.
type LoadWarning struct {
	Path string
	Err  error
}

func (w *LoadWarning) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCatalogLoad, w.Path, w.Err)
}

func (w *LoadWarning) Unwrap() []error { return []error{ErrCatalogLoad, w.Err} }

// LookupKind names what a LookupError failed to find
type LookupKind string

const (
	LookupVariant LookupKind = "variant"
	LookupGroup   LookupKind = "group"
	LookupOption  LookupKind = "option"
)

// LookupError is returned when a requested variant, group or option is not registered.
// Available lists the names that would have been accepted.
type LookupError struct {
	Kind      LookupKind
	Field     string
	Name      string
	Available []string
}

func (e *LookupError) Error() string {
	avail := "none"
	if len(e.Available) > 0 {
		avail = strings.Join(e.Available, ", ")
	}
	switch e.Kind {
	case LookupOption:
		return fmt.Sprintf("config %q not found in group %q; available: %s", e.Name, e.Field, avail)
	case LookupGroup:
		return fmt.Sprintf("config group %q not found; available groups: %s", e.Name, avail)
	default:
		return fmt.Sprintf("config variant %q not found; available variants: %s", e.Name, avail)
	}
}

func (e *LookupError) Is(target error) bool { return target == ErrLookup }

// ParseError identifies a command-line token that could not be classified.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q: %s", ErrCLIParse, e.Token, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrCLIParse }

// CoercionError reports a raw command-line value that does not fit the field's declared type.
type CoercionError struct {
	Path     string
	Value    string
	Expected string
	Err      error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("field %q: cannot convert %q to %s", e.Path, e.Value, e.Expected)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }

func (e *CoercionError) Unwrap() error { return e.Err }

// PathError reports a dotted override path that does not lead to a field.
type PathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %q at segment %q: %s", ErrPathNavigation, e.Path, e.Segment, e.Reason)
}

func (e *PathError) Is(target error) bool { return target == ErrPathNavigation }

// ConstructionError wraps a failure raised while building the final configuration.
// The underlying error is kept unchanged.
type ConstructionError struct {
	Type string
	Err  error
}

func (e *ConstructionError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("%s: %v", ErrSchemaConstruction, e.Err)
	}
	return fmt.Sprintf("%s for %s: %v", ErrSchemaConstruction, e.Type, e.Err)
}

func (e *ConstructionError) Unwrap() []error { return []error{ErrSchemaConstruction, e.Err} }
