// File: lixenwraith/hiconf/convenience.go
package hiconf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mitchellh/go-wordwrap"
)

const helpWrapWidth = 72

// Invoke resolves the configuration, decodes it into a fresh T and calls fn with it.
// Without WithDefaults or WithRoot, the zero value of T defines the root schema.
func Invoke[T any](b *Builder, fn func(T) error) error {
	var cfg T
	if b.root == nil && b.defaults == nil {
		b.WithDefaults(cfg)
	}
	if err := b.BuildAndScan(&cfg); err != nil {
		return err
	}
	return fn(cfg)
}

// Main runs Invoke and exits the process: 0 on success or help, 1 with a
// diagnostic on stderr otherwise.
func Main[T any](b *Builder, fn func(T) error) {
	os.Exit(run(b, os.Stderr, fn))
}

// run is Main without the exit
func run[T any](b *Builder, stderr io.Writer, fn func(T) error) int {
	err := Invoke(b, fn)
	switch {
	case err == nil, errors.Is(err, ErrHelp):
		return 0
	default:
		red := color.New(color.FgRed)
		if !isTerminal(stderr) {
			red.DisableColor()
		}
		red.Fprintf(stderr, "✗ %s: %v\n", programName(), err)
		return 1
	}
}

// WriteHelp lists variants, groups with their options, and every overridable
// field path with the value it currently resolves to.
func WriteHelp(w io.Writer, reg *Registry, res *Resolved, selector string) error {
	heading := color.New(color.FgCyan, color.Bold)
	if !isTerminal(w) {
		heading.DisableColor()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [--%s=<variant>] [<group>=<option> ...] [--<path>=<value> ...]\n",
		programName(), selector)

	b.WriteString("\n")
	b.WriteString(heading.Sprint("Variants:"))
	b.WriteString("\n")
	variants := reg.ListVariants()
	if len(variants) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, name := range variants {
		d, _ := reg.GetVariant(name)
		writeEntry(&b, fmt.Sprintf("--%s=%s", selector, name), d.Type.Doc)
	}

	b.WriteString("\n")
	b.WriteString(heading.Sprint("Groups:"))
	b.WriteString("\n")
	fields := reg.GroupFields()
	if len(fields) == 0 {
		b.WriteString("  (none)\n")
	}
	groups := reg.ListGroups()
	for _, field := range fields {
		options := "(no options)"
		if len(groups[field]) > 0 {
			options = strings.Join(groups[field], ", ")
		}
		current, _ := res.TypeOf(field)
		fmt.Fprintf(&b, "  %s=<option>  [%s]  options: %s\n", field, current, options)
	}

	b.WriteString("\n")
	b.WriteString(heading.Sprint("Fields:"))
	b.WriteString("\n")
	writeFields(&b, reg, res, res.root, "")

	_, err := io.WriteString(w, b.String())
	return err
}

// writeFields lists leaf fields in declaration order
func writeFields(b *strings.Builder, reg *Registry, res *Resolved, rec *Record, prefix string) {
	docs := fieldDocs(reg, rec.TypeName())
	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		path := joinPath(prefix, key)
		if v.Kind() == KindRecord {
			writeFields(b, reg, res, v.AsRecord(), path)
			continue
		}

		label := fmt.Sprintf("--%s=%s  (%s)", path, v, typeOfValue(v))
		if src, ok := res.SourceOf(path); ok && src != SourceDefault {
			label += fmt.Sprintf(" [%s]", src)
		}
		writeEntry(b, label, docs[key])
	}
}

// writeEntry writes one indented label with its wrapped description
func writeEntry(b *strings.Builder, label, doc string) {
	b.WriteString("  ")
	b.WriteString(label)
	b.WriteString("\n")
	if doc == "" {
		return
	}
	for _, line := range strings.Split(wordwrap.WrapString(doc, helpWrapWidth), "\n") {
		b.WriteString("      ")
		b.WriteString(line)
		b.WriteString("\n")
	}
}

// fieldDocs maps field names of a type to their descriptions
func fieldDocs(reg *Registry, typeName string) map[string]string {
	docs := make(map[string]string)
	t, ok := reg.Type(typeName)
	if !ok {
		return docs
	}
	fields, _ := reg.Fields(t)
	for _, f := range fields {
		docs[f.Name] = f.Doc
	}
	return docs
}

// Debug returns a formatted string showing all configuration values and their sources
func (r *Resolved) Debug() string {
	var b strings.Builder
	b.WriteString("Configuration Debug Info:\n")
	b.WriteString(fmt.Sprintf("Type: %s\n", r.typeName))

	if len(r.applied) > 0 {
		b.WriteString("Applied:\n")
		for _, a := range r.applied {
			switch a.Source {
			case SourceVariant:
				b.WriteString(fmt.Sprintf("  variant %s (%s)\n", a.Value, a.Origin))
			case SourceGroup:
				b.WriteString(fmt.Sprintf("  group %s=%s (%s)\n", a.Path, a.Value, a.Origin))
			default:
				b.WriteString(fmt.Sprintf("  override %s=%s\n", a.Path, a.Value))
			}
		}
	}

	b.WriteString("Current values:\n")
	for _, path := range r.Paths() {
		v, _ := r.Value(path)
		b.WriteString(fmt.Sprintf("  %s = %s [%s]\n", path, v, r.sources[path]))
	}

	return b.String()
}

func programName() string {
	return filepath.Base(os.Args[0])
}

// isTerminal reports whether w is the process's stdout or stderr; color output
// still follows fatih/color's own terminal detection for those.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return f == os.Stdout || f == os.Stderr
}
