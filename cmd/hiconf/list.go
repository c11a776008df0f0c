// FILE: lixenwraith/hiconf/cmd/hiconf/list.go
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/lixenwraith/hiconf"
	"github.com/spf13/cobra"
)

func newListCommand(opts *globalOptions) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog types, or the variants and groups of a root type",
		Example: `  hiconf list
  hiconf list --root TrainConfig -d ./configs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat := opts.loadCatalog()
			out := cmd.OutOrStdout()

			for _, w := range cat.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}

			if root == "" {
				listTypes(out, cat)
				return nil
			}

			rootType, ok := cat.Lookup(root)
			if !ok {
				return &hiconf.LookupError{Kind: hiconf.LookupVariant, Name: root, Available: cat.Names()}
			}
			reg := hiconf.Classify(rootType, cat, hiconf.WithRegistryLogger(opts.logger()))
			listRegistry(out, reg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&root, "root", "r", "", "classify the catalog for this root type")
	return cmd
}

func listTypes(out io.Writer, cat *hiconf.Catalog) {
	if len(cat.Descriptors) == 0 {
		fmt.Fprintln(out, "no types found")
		return
	}
	for _, d := range cat.Descriptors {
		parent := d.Type.Parent
		if parent == "" {
			parent = "-"
		}
		fmt.Fprintf(out, "%-24s parent=%-20s %s\n", d.Type.Name, parent, d.Origin())
	}
}

func listRegistry(out io.Writer, reg *hiconf.Registry) {
	heading := color.New(color.FgCyan, color.Bold)

	heading.Fprintln(out, "Variants:")
	for _, name := range reg.ListVariants() {
		d, _ := reg.GetVariant(name)
		fmt.Fprintf(out, "  %-22s %s\n", name, d.Origin())
	}

	heading.Fprintln(out, "Groups:")
	groups := reg.ListGroups()
	for _, field := range reg.GroupFields() {
		fmt.Fprintf(out, "  %s: %s\n", field, strings.Join(groups[field], ", "))
	}

	for _, w := range reg.Warnings() {
		fmt.Fprintf(out, "warning: %v\n", w)
	}
}
