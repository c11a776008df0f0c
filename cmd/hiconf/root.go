// FILE: lixenwraith/hiconf/cmd/hiconf/root.go
package main

import (
	"log/slog"
	"os"

	"github.com/lixenwraith/hiconf"
	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every subcommand
type globalOptions struct {
	dirs    []string
	workDir string
	verbose bool
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "hiconf",
		Short: "Inspect and resolve hierarchical configuration catalogs",
		Long: `hiconf inspects configuration directories the way a program using the
hiconf package sees them: which directories are searched, which types each
source unit defines, how they classify into variants and groups, and what a
given command line resolves to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringSliceVarP(&opts.dirs, "dir", "d", nil,
		"configuration directory, lowest precedence first (repeatable)")
	rootCmd.PersistentFlags().StringVar(&opts.workDir, "workdir", "",
		"directory used for $CWD and the settings search (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"log shadowing and directory decisions")

	rootCmd.AddCommand(
		newDirsCommand(opts),
		newListCommand(opts),
		newResolveCommand(opts),
	)

	return rootCmd
}

func (o *globalOptions) logger() *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (o *globalOptions) resolveDirs() hiconf.Dirs {
	return hiconf.ResolveDirs(hiconf.DirOptions{
		Explicit:  o.dirs,
		WorkDir:   o.workDir,
		ScriptDir: o.workDir,
		Logger:    o.logger(),
	})
}

func (o *globalOptions) loadCatalog() (hiconf.Dirs, *hiconf.Catalog) {
	dirs := o.resolveDirs()
	return dirs, hiconf.LoadCatalog(dirs.Paths, hiconf.WithCatalogLogger(o.logger()))
}
