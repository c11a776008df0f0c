// FILE: lixenwraith/hiconf/example/main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/lixenwraith/hiconf"
)

// Model is the base type of the model group
type Model struct {
	Dim    int `toml:"dim" doc:"Hidden dimension of every layer."`
	Layers int `toml:"layers" doc:"Number of stacked layers."`
}

// Optimizer is the base type of the optimizer group
type Optimizer struct {
	Name string  `toml:"name"`
	LR   float64 `toml:"lr" doc:"Peak learning rate."`
}

// TrainConfig is the root schema; variants in configs/ extend it
type TrainConfig struct {
	Epochs    int       `toml:"epochs" doc:"Passes over the training set."`
	BatchSize int       `toml:"batch_size" doc:"Examples per optimizer step."`
	Debug     bool      `toml:"debug"`
	Model     Model     `toml:"model"`
	Optimizer Optimizer `toml:"optimizer"`
}

// Validate rejects settings the trainer cannot run with
func (c *TrainConfig) Validate() error {
	var errs []error
	if c.Epochs <= 0 {
		errs = append(errs, fmt.Errorf("epochs must be positive, got %d", c.Epochs))
	}
	if c.Optimizer.LR <= 0 {
		errs = append(errs, fmt.Errorf("optimizer.lr must be positive, got %g", c.Optimizer.LR))
	}
	return errors.Join(errs...)
}

// Vit holds the fields only the Vit model option declares
type Vit struct {
	Model     `toml:",squash"`
	Heads     int `toml:"heads"`
	PatchSize int `toml:"patch_size"`
}

var defaults = TrainConfig{
	Epochs:    100,
	BatchSize: 32,
	Model:     Model{Dim: 512, Layers: 6},
	Optimizer: Optimizer{Name: "sgd", LR: 0.1},
}

// Run from this directory:
//
//	go run . --config=Quick model=Vit --model.dim=1024
//	go run . --help
func main() {
	builder := hiconf.NewBuilder().WithDefaults(defaults)

	res, err := builder.Build()
	if errors.Is(err, hiconf.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	var cfg TrainConfig
	if err := res.Decode(&cfg); err != nil {
		log.Fatalf("❌ %v", err)
	}

	modelType, _ := res.TypeOf("model")
	optimizerType, _ := res.TypeOf("optimizer")
	log.Printf("✅ resolved %s from %v", res.TypeName(), builder.Dirs().Paths)
	log.Printf("   model=%s optimizer=%s", modelType, optimizerType)

	if modelType == "Vit" {
		var vit Vit
		if err := res.Scan("model", &vit); err != nil {
			log.Fatalf("❌ %v", err)
		}
		log.Printf("   vit: dim=%d heads=%d patch=%d", vit.Dim, vit.Heads, vit.PatchSize)
	}

	train(cfg)

	fmt.Println("---")
	fmt.Print(res.Debug())
	if err := res.Dump(os.Stdout); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func train(cfg TrainConfig) {
	log.Printf("   training %d epochs, batch %d, %s lr=%g, model dim %d x %d layers",
		cfg.Epochs, cfg.BatchSize, cfg.Optimizer.Name, cfg.Optimizer.LR, cfg.Model.Dim, cfg.Model.Layers)
}
