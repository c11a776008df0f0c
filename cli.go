// FILE: lixenwraith/hiconf/cli.go
package hiconf

import (
	"fmt"
	"strings"
)

// DefaultSelector is the flag that selects a variant: --config=<name>
const DefaultSelector = "config"

// GroupSelection picks one option of a group field: <field>=<option>
type GroupSelection struct {
	Field  string
	Option string
}

// FieldOverride sets one scalar field: --<dotted.path>=<raw>
type FieldOverride struct {
	Path []string
	Raw  string
}

// Key returns the dotted form of the override path
func (f FieldOverride) Key() string { return strings.Join(f.Path, ".") }

// OverrideSet is the classified command line, in token order.
type OverrideSet struct {
	Variant string
	Groups  []GroupSelection
	Fields  []FieldOverride
	Help    bool
}

// ParseOption configures ParseArgs
type ParseOption func(*parseOptions)

type parseOptions struct {
	selector string
}

// WithSelector renames the variant selector flag
func WithSelector(name string) ParseOption {
	return func(o *parseOptions) {
		if name != "" {
			o.selector = name
		}
	}
}

// ParseArgs classifies command-line tokens into a variant selection, group
// selections and scalar field overrides. Field paths are only checked for
// syntax here; they are resolved against the configuration during Resolve.
func ParseArgs(args []string, reg *Registry, opts ...ParseOption) (*OverrideSet, error) {
	o := parseOptions{selector: DefaultSelector}
	for _, opt := range opts {
		opt(&o)
	}

	ov := &OverrideSet{}
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			continue

		case arg == "--help" || arg == "-h":
			ov.Help = true
			continue

		case strings.HasPrefix(arg, "--"):
			name, value, hasValue := strings.Cut(arg[2:], "=")
			if !hasValue {
				// Value in the next token unless that token is itself a flag or selection
				if i+1 < len(args) && !isFlagToken(args[i+1]) && !isGroupToken(args[i+1], reg) {
					value = args[i+1]
					i++
				} else if name == o.selector {
					return nil, &ParseError{Token: arg, Reason: "missing variant name"}
				} else {
					value = "true"
				}
			}

			if name == o.selector {
				if ov.Variant != "" {
					return nil, &ParseError{Token: arg, Reason: fmt.Sprintf("variant already selected as %q", ov.Variant)}
				}
				if value == "" {
					return nil, &ParseError{Token: arg, Reason: "missing variant name"}
				}
				ov.Variant = value
				continue
			}

			path, err := splitPath(name)
			if err != nil {
				return nil, &ParseError{Token: arg, Reason: err.Error()}
			}
			ov.Fields = append(ov.Fields, FieldOverride{Path: path, Raw: value})

		case strings.HasPrefix(arg, "-"):
			return nil, &ParseError{Token: arg, Reason: "unknown flag; use --<path>=<value>"}

		default:
			field, option, ok := strings.Cut(arg, "=")
			if !ok {
				return nil, &ParseError{Token: arg, Reason: "unexpected positional argument"}
			}
			name, isGroup := reg.groupField(field)
			if !isGroup {
				return nil, &ParseError{
					Token:  arg,
					Reason: fmt.Sprintf("%q is not a group field; groups: %s", field, groupList(reg)),
				}
			}
			if option == "" {
				return nil, &ParseError{Token: arg, Reason: "missing option name"}
			}
			ov.Groups = append(ov.Groups, GroupSelection{Field: name, Option: option})
		}
	}

	return ov, nil
}

func isFlagToken(s string) bool {
	return strings.HasPrefix(s, "--") || s == "-h"
}

func isGroupToken(s string, reg *Registry) bool {
	field, _, ok := strings.Cut(s, "=")
	if !ok || strings.HasPrefix(s, "-") {
		return false
	}
	_, isGroup := reg.groupField(field)
	return isGroup
}

func groupList(reg *Registry) string {
	fields := reg.GroupFields()
	if len(fields) == 0 {
		return "none"
	}
	return strings.Join(truncateNames(fields), ", ")
}
