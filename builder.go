// File: lixenwraith/hiconf/builder.go
package hiconf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ValidatorFunc checks a resolved configuration before it is returned by Build.
type ValidatorFunc func(r *Resolved) error

// Builder provides a fluent interface for resolving a configuration:
// directories, catalog, classification, command line, then merge.
type Builder struct {
	root       *SchemaType
	defaults   any
	dirs       []string
	workDir    string
	scriptDir  string
	args       []string
	types      []*SchemaType
	selector   string
	dirGroups  bool
	logger     *slog.Logger
	output     io.Writer
	err        error
	validators []ValidatorFunc

	resolvedDirs Dirs
	catalog      *Catalog
	registry     *Registry
}

// NewBuilder creates a new configuration builder
func NewBuilder() *Builder {
	return &Builder{
		args:       os.Args[1:],
		selector:   DefaultSelector,
		logger:     slog.Default(),
		output:     os.Stdout,
		validators: make([]ValidatorFunc, 0),
	}
}

// WithDefaults sets the struct whose type and values form the root schema
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithRoot sets the root schema directly. A variant type may be used as the
// root of a dedicated entry point.
func (b *Builder) WithRoot(root *SchemaType) *Builder {
	if root == nil {
		b.err = errors.Join(b.err, fmt.Errorf("%w: nil root type", ErrInvalidSchema))
		return b
	}
	b.root = root
	return b
}

// WithDirs sets explicit configuration directories, lowest precedence first
func (b *Builder) WithDirs(dirs ...string) *Builder {
	b.dirs = append(b.dirs, dirs...)
	return b
}

// WithWorkDir sets the directory substituted for $CWD and searched for settings
func (b *Builder) WithWorkDir(dir string) *Builder {
	b.workDir = dir
	return b
}

// WithScriptDir sets the anchor for relative directory entries
func (b *Builder) WithScriptDir(dir string) *Builder {
	b.scriptDir = dir
	return b
}

// WithArgs sets the command-line arguments
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithTypes registers Go-declared types ahead of all directories
func (b *Builder) WithTypes(types ...*SchemaType) *Builder {
	for _, t := range types {
		if t == nil {
			b.err = errors.Join(b.err, fmt.Errorf("%w: nil registered type", ErrInvalidSchema))
			continue
		}
		b.types = append(b.types, t)
	}
	return b
}

// WithSelector renames the variant selector flag (default "config")
func (b *Builder) WithSelector(name string) *Builder {
	if name == "" {
		b.err = errors.Join(b.err, fmt.Errorf("empty variant selector"))
		return b
	}
	b.selector = name
	return b
}

// WithDirectoryGroups enables grouping by subdirectory name
func (b *Builder) WithDirectoryGroups() *Builder {
	b.dirGroups = true
	return b
}

// WithLogger sets the logger for all resolution stages
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithOutput sets where help text is written
func (b *Builder) WithOutput(w io.Writer) *Builder {
	if w != nil {
		b.output = w
	}
	return b
}

// WithValidator adds a validation function that runs at the end of the build process
// Multiple validators can be added and are executed in the order they are added
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build resolves the configuration.
// When --help is present, help text is written to the output and ErrHelp returned.
func (b *Builder) Build() (*Resolved, error) {
	if b.err != nil {
		return nil, b.err
	}

	root, err := b.rootType()
	if err != nil {
		return nil, err
	}

	b.resolvedDirs = ResolveDirs(DirOptions{
		Explicit:  b.dirs,
		WorkDir:   b.workDir,
		ScriptDir: b.scriptDir,
		Logger:    b.logger,
	})

	b.catalog = LoadCatalog(b.resolvedDirs.Paths,
		WithCatalogLogger(b.logger),
		WithStaticTypes(b.types...),
	)

	classifyOpts := []ClassifyOption{WithRegistryLogger(b.logger)}
	if b.dirGroups {
		classifyOpts = append(classifyOpts, WithDirectoryGroups())
	}
	b.registry = Classify(root, b.catalog, classifyOpts...)

	ov, err := ParseArgs(b.args, b.registry, WithSelector(b.selector))
	if err != nil {
		return nil, err
	}

	if ov.Help {
		if err := b.writeHelp(ov); err != nil {
			return nil, err
		}
		return nil, ErrHelp
	}

	res, err := Resolve(b.registry, ov)
	if err != nil {
		return nil, err
	}

	for _, validator := range b.validators {
		if err := validator(res); err != nil {
			return nil, &ConstructionError{Type: res.TypeName(), Err: err}
		}
	}

	b.logger.Debug("configuration resolved", "type", res.TypeName(), "overrides", len(res.Overrides()))
	return res, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Resolved {
	res, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("config build failed: %v", err))
	}
	return res
}

// BuildAndScan builds and decodes the final configuration into the provided target struct pointer
func (b *Builder) BuildAndScan(target any) error {
	res, err := b.Build()
	if err != nil {
		return err
	}
	return res.Decode(target)
}

// Registry returns the registry classified by the last Build
func (b *Builder) Registry() *Registry { return b.registry }

// Catalog returns the catalog loaded by the last Build
func (b *Builder) Catalog() *Catalog { return b.catalog }

// Dirs returns the directories resolved by the last Build
func (b *Builder) Dirs() Dirs { return b.resolvedDirs }

// rootType returns the explicit root or reflects it from the defaults struct
func (b *Builder) rootType() (*SchemaType, error) {
	if b.root != nil {
		return b.root, nil
	}
	if b.defaults == nil {
		return nil, fmt.Errorf("%w: no root type; use WithDefaults or WithRoot", ErrInvalidSchema)
	}
	root, err := Reflect(b.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to register defaults: %w", err)
	}
	return root, nil
}

// writeHelp renders help for the configuration the other arguments would select,
// falling back to the base defaults when they do not resolve.
func (b *Builder) writeHelp(ov *OverrideSet) error {
	res, err := Resolve(b.registry, ov)
	if err != nil {
		b.logger.Debug("help shows base defaults", "error", err)
		if res, err = Resolve(b.registry, nil); err != nil {
			return err
		}
	}
	return WriteHelp(b.output, b.registry, res, b.selector)
}
