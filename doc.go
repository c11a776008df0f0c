// File: lixenwraith/hiconf/doc.go

// Package hiconf resolves a typed configuration from a root schema type, a catalog
// of named variants and group options discovered in configuration directories, and
// command-line overrides.
//
// Features:
//   - Root schema from a Go struct with defaults (Reflect), NewType or Extend
//   - Catalog units in TOML, YAML or JSON, one or many type definitions per file
//   - Variants: direct subtypes of the root, selected with --config=<name>
//   - Groups: interchangeable types for a record field, selected with <field>=<option>
//   - Scalar overrides with --<dotted.path>=<value>, coerced to the declared type
//   - Directory shadowing: a type in a later directory replaces the same name earlier
//   - Per-leaf provenance, help listing, export to TOML/JSON/YAML
//
// Quick Start:
//
//	type Model struct {
//	    Dim int `toml:"dim"`
//	}
//
//	type Train struct {
//	    Epochs    int   `toml:"epochs" doc:"passes over the data"`
//	    BatchSize int   `toml:"batch_size"`
//	    Model     Model `toml:"model"`
//	}
//
//	hiconf.Main(hiconf.NewBuilder().WithDefaults(Train{Epochs: 100, BatchSize: 32, Model: Model{Dim: 512}}),
//	    func(cfg Train) error {
//	        fmt.Println(cfg.Epochs)
//	        return nil
//	    })
//
// A configs/ directory next to the program may then hold:
//
//	# configs/quick.toml
//	[Quick]
//	parent = "Train"
//	fields = { epochs = 5 }
//
//	# configs/model/vit.toml
//	[Vit]
//	parent = "Model"
//	fields = { dim = 768, heads = 12 }
//
// and the program accepts: --config=Quick model=Vit --model.dim=1024
//
// Precedence (highest to lowest):
//  1. Command-line field overrides (--model.dim=1024)
//  2. Group selections (model=Vit), each a fresh instance of the option type
//  3. Fields redeclared by the selected variant (--config=Quick)
//  4. Root defaults
//
// Directories:
// Explicit directories (WithDirs) win; otherwise config_dirs from the nearest
// .hiconfrc, then from [tool.hiconf] in the nearest project.toml, then
// "$ROOT/configs", "$CWD/configs" and "configs" next to the executable.
//
// A resolved configuration is immutable; a Registry is read-only after Classify
// and may be reused across Resolve calls.
package hiconf
