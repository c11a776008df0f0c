// FILE: lixenwraith/hiconf/cmd/hiconf/resolve.go
package main

import (
	"fmt"
	"path/filepath"

	"github.com/lixenwraith/hiconf"
	"github.com/spf13/cobra"
)

func newResolveCommand(opts *globalOptions) *cobra.Command {
	var (
		format string
		output string
		debug  bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <root-type> [-- overrides...]",
		Short: "Resolve a root type against the catalog and a command line",
		Long: `Resolve loads the catalog, classifies it for the named root type and applies
the overrides given after "--" exactly as a program built on hiconf would.`,
		Example: `  hiconf resolve TrainConfig -- --config=Quick model=Vit --model.dim=1024
  hiconf resolve TrainConfig --format yaml -o resolved.yaml -- optimizer=Adam`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootName := args[0]
			var overrides []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				if dash != 1 {
					return fmt.Errorf("expected exactly one root type before --")
				}
				overrides = args[dash:]
			} else if len(args) > 1 {
				return fmt.Errorf("overrides must follow --")
			}

			_, cat := opts.loadCatalog()
			rootType, ok := cat.Lookup(rootName)
			if !ok {
				return &hiconf.LookupError{Kind: hiconf.LookupVariant, Name: rootName, Available: cat.Names()}
			}

			reg := hiconf.Classify(rootType, cat, hiconf.WithRegistryLogger(opts.logger()))
			ov, err := hiconf.ParseArgs(overrides, reg)
			if err != nil {
				return err
			}

			res, err := hiconf.Resolve(reg, ov)
			if ov.Help {
				if err != nil {
					// Help still lists the base defaults
					if res, err = hiconf.Resolve(reg, nil); err != nil {
						return err
					}
				}
				return hiconf.WriteHelp(cmd.OutOrStdout(), reg, res, hiconf.DefaultSelector)
			}
			if err != nil {
				return err
			}

			if debug {
				fmt.Fprint(cmd.ErrOrStderr(), res.Debug())
			}

			if output != "" {
				if err := res.Save(output); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", filepath.Clean(output))
				return nil
			}

			data, err := res.Marshal(format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file; format follows its extension")
	cmd.Flags().BoolVar(&debug, "debug", false, "print values with their sources to stderr")
	return cmd
}
