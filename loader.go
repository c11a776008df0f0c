// FILE: lixenwraith/hiconf/loader.go
package hiconf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// MaxUnitSize is the default size limit for a single source unit.
const MaxUnitSize int64 = 1 << 20

// TypeDescriptor wraps a schema type with the location it was loaded from.
type TypeDescriptor struct {
	Type     *SchemaType
	Dir      string // originating directory, empty for Go-registered types
	DirIndex int    // precedence of Dir; -1 for Go-registered types
	RelPath  string // unit path relative to Dir
	Group    string // first subdirectory of RelPath, if any
}

// Origin describes where the type came from, for diagnostics
func (d TypeDescriptor) Origin() string {
	if d.Dir == "" {
		return "<registered>"
	}
	return filepath.Join(d.Dir, d.RelPath)
}

// Catalog is the flat list of type descriptors discovered in a set of directories,
// in directory-then-discovery order.
type Catalog struct {
	Descriptors []TypeDescriptor
	Warnings    []error
}

// Lookup returns the last-loaded type with the given name
func (c *Catalog) Lookup(name string) (*SchemaType, bool) {
	if c == nil {
		return nil, false
	}
	for i := len(c.Descriptors) - 1; i >= 0; i-- {
		if c.Descriptors[i].Type.Name == name {
			return c.Descriptors[i].Type, true
		}
	}
	return nil, false
}

// Names returns the distinct type names in the catalog, sorted
func (c *Catalog) Names() []string {
	seen := make(map[string]bool)
	for _, d := range c.Descriptors {
		seen[d.Type.Name] = true
	}
	return sortedKeys(seen)
}

// CatalogOption configures LoadCatalog
type CatalogOption func(*catalogOptions)

type catalogOptions struct {
	logger      *slog.Logger
	static      []*SchemaType
	maxUnitSize int64
}

// WithCatalogLogger sets the logger receiving skipped-unit warnings
func WithCatalogLogger(logger *slog.Logger) CatalogOption {
	return func(o *catalogOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStaticTypes adds Go-registered types ahead of all directories
func WithStaticTypes(types ...*SchemaType) CatalogOption {
	return func(o *catalogOptions) {
		o.static = append(o.static, types...)
	}
}

// WithMaxUnitSize overrides the per-unit size limit
func WithMaxUnitSize(n int64) CatalogOption {
	return func(o *catalogOptions) {
		if n > 0 {
			o.maxUnitSize = n
		}
	}
}

// LoadCatalog scans directories in precedence order (lowest first) and extracts every
// type definition. A unit that cannot be read or parsed is skipped with a warning;
// loading never aborts.
func LoadCatalog(dirs []string, opts ...CatalogOption) *Catalog {
	o := catalogOptions{
		logger:      slog.Default(),
		maxUnitSize: MaxUnitSize,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cat := &Catalog{}
	for _, t := range o.static {
		if t == nil {
			continue
		}
		cat.Descriptors = append(cat.Descriptors, TypeDescriptor{Type: t, DirIndex: -1})
	}

	warn := func(path string, err error) {
		w := &LoadWarning{Path: path, Err: err}
		cat.Warnings = append(cat.Warnings, w)
		o.logger.Warn("skipping config source unit", "path", path, "error", err)
	}

	for dirIndex, dir := range dirs {
		walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return err
				}
				warn(path, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}

			if path != dir && isPrivateName(d.Name()) {
				if d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || detectFileFormat(path) == "" {
				return nil
			}

			rel, relErr := filepath.Rel(dir, path)
			if relErr != nil {
				rel = path
			}

			types, unitWarnings, loadErr := loadUnit(path, o.maxUnitSize)
			if loadErr != nil {
				warn(path, loadErr)
				return nil
			}
			for _, uw := range unitWarnings {
				warn(path, uw)
			}

			for _, t := range types {
				cat.Descriptors = append(cat.Descriptors, TypeDescriptor{
					Type:     t,
					Dir:      dir,
					DirIndex: dirIndex,
					RelPath:  filepath.ToSlash(rel),
					Group:    groupOf(rel),
				})
			}
			return nil
		})
		if walkErr != nil {
			warn(dir, walkErr)
		}
	}

	return cat
}

// unitDecl is one top-level type table of a source unit with its field order
type unitDecl struct {
	name       string
	body       any
	fieldOrder []string
}

// typeDecl is the decoded form of a type table
type typeDecl struct {
	Parent string         `mapstructure:"parent"`
	Doc    string         `mapstructure:"doc"`
	Fields map[string]any `mapstructure:"fields"`
}

// fieldDecl is the long form of a field entry
type fieldDecl struct {
	Type    string `mapstructure:"type"`
	Default any    `mapstructure:"default"`
	Doc     string `mapstructure:"doc"`
}

// loadUnit reads one source unit and returns its types.
// Invalid type tables are reported as warnings without discarding the rest of the unit.
func loadUnit(path string, maxSize int64) ([]*SchemaType, []error, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat source unit: %w", err)
	}
	if info.Size() > maxSize {
		return nil, nil, fmt.Errorf("source unit exceeds maximum size %d bytes", maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read source unit: %w", err)
	}

	var decls []unitDecl
	switch detectFileFormat(path) {
	case "toml":
		decls, err = decodeTOMLUnit(data)
	case "json", "yaml":
		decls, err = decodeYAMLUnit(data)
	default:
		err = fmt.Errorf("unable to determine format")
	}
	if err != nil {
		return nil, nil, err
	}

	var (
		types    []*SchemaType
		warnings []error
	)
	for _, decl := range decls {
		t, err := buildType(decl)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("type %s: %w", decl.name, err))
			continue
		}
		types = append(types, t)
	}
	return types, warnings, nil
}

// decodeTOMLUnit parses TOML and recovers key order from the decoder metadata
func decodeTOMLUnit(data []byte) ([]unitDecl, error) {
	raw := make(map[string]any)
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	var typeOrder []string
	fieldOrder := make(map[string][]string)
	for _, key := range md.Keys() {
		switch {
		case len(key) == 1:
			typeOrder = append(typeOrder, key[0])
		case len(key) == 3 && key[1] == "fields":
			fieldOrder[key[0]] = append(fieldOrder[key[0]], key[2])
		}
	}
	typeOrder = completeOrder(typeOrder, raw)

	decls := make([]unitDecl, 0, len(typeOrder))
	for _, name := range typeOrder {
		decls = append(decls, unitDecl{name: name, body: raw[name], fieldOrder: fieldOrder[name]})
	}
	return decls, nil
}

// decodeYAMLUnit parses YAML or JSON through the yaml node tree, which keeps mapping order
func decodeYAMLUnit(data []byte) ([]unitDecl, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil // empty unit
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top level must be a mapping of type definitions")
	}

	var decls []unitDecl
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		bodyNode := root.Content[i+1]

		var body any
		if err := bodyNode.Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode type %s: %w", name, err)
		}
		decls = append(decls, unitDecl{
			name:       name,
			body:       body,
			fieldOrder: mappingKeys(mappingChild(bodyNode, "fields")),
		})
	}
	return decls, nil
}

// buildType converts a decoded type table into a schema type
func buildType(decl unitDecl) (*SchemaType, error) {
	body, ok := decl.body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a table, got %T", decl.body)
	}

	var td typeDecl
	if err := decodeStrict(body, &td); err != nil {
		return nil, err
	}

	order := completeOrder(decl.fieldOrder, td.Fields)
	fields := make([]Field, 0, len(order))
	for _, name := range order {
		f, err := buildField(name, td.Fields[name])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		fields = append(fields, f)
	}

	t, err := NewType(decl.name, td.Parent, fields...)
	if err != nil {
		return nil, err
	}
	t.Doc = td.Doc
	return t, nil
}

// buildField accepts the short form (a literal) or the long form (a table with type/default/doc)
func buildField(name string, raw any) (Field, error) {
	table, isTable := raw.(map[string]any)
	if !isTable {
		ft, val, err := inferValue(raw)
		if err != nil {
			return Field{}, err
		}
		return Field{Name: name, Type: ft, Default: val, inferred: true}, nil
	}

	var fd fieldDecl
	if err := decodeStrict(table, &fd); err != nil {
		return Field{}, err
	}

	if fd.Type == "" {
		if fd.Default == nil {
			return Field{}, fmt.Errorf("long form needs a type or a default")
		}
		ft, val, err := inferValue(fd.Default)
		if err != nil {
			return Field{}, err
		}
		return Field{Name: name, Type: ft, Default: val, Doc: fd.Doc, inferred: true}, nil
	}

	ft, err := ParseFieldType(fd.Type)
	if err != nil {
		return Field{}, err
	}
	f := Field{Name: name, Type: ft, Doc: fd.Doc}

	switch {
	case ft.Kind == KindRecord:
		if fd.Default != nil {
			return Field{}, fmt.Errorf("record field takes its defaults from type %s", ft.Schema)
		}
	case fd.Default == nil:
		f.Default = zeroValue(ft)
	default:
		if f.Default, err = valueFromAny(ft, fd.Default); err != nil {
			return Field{}, err
		}
	}
	return f, nil
}

// decodeStrict decodes a table into a declaration struct, rejecting unknown keys
func decodeStrict(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      target,
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	return decoder.Decode(input)
}

// zeroValue is the default of a primitive field declared without one
func zeroValue(ft FieldType) Value {
	switch ft.Kind {
	case KindBool:
		return Bool(false)
	case KindInt:
		return Int(0)
	case KindFloat:
		return Float(0)
	case KindString:
		return Str("")
	case KindList:
		return List()
	}
	return Value{}
}

// completeOrder appends keys missing from the recorded order, sorted
func completeOrder[V any](order []string, m map[string]V) []string {
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func mappingChild(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func mappingKeys(node *yaml.Node) []string {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys = append(keys, node.Content[i].Value)
	}
	return keys
}

// isPrivateName reports units and directories excluded from discovery
func isPrivateName(name string) bool {
	return strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")
}

// groupOf returns the first directory segment of a relative unit path
func groupOf(rel string) string {
	rel = filepath.ToSlash(rel)
	if i := strings.Index(rel, "/"); i > 0 {
		return rel[:i]
	}
	return ""
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// Try JSON first (strict format)
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	// TOML before YAML: most TOML documents are not valid YAML, while YAML accepts many stray texts
	var tomlTest map[string]any
	if _, err := toml.Decode(string(data), &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
