// FILE: lixenwraith/hiconf/cmd/hiconf/dirs.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDirsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dirs",
		Short: "Show the configuration directories in precedence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := opts.resolveDirs()
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "source: %s\n", dirs.Source)
			fmt.Fprintf(out, "root:   %s\n", dirs.Root)
			if len(dirs.Paths) == 0 {
				fmt.Fprintln(out, "no existing directories")
			}
			for i, p := range dirs.Paths {
				fmt.Fprintf(out, "%d  %s\n", i, p)
			}
			for _, w := range dirs.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}
			return nil
		},
	}
}
