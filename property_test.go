// FILE: lixenwraith/hiconf/property_test.go
package hiconf

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func propertyRegistry(t *testing.T) *Registry {
	t.Helper()
	dir := writeUnits(t, map[string]string{
		"quick.toml":      trainUnits,
		"long.toml":       "[LongRun]\nparent = \"Train\"\n\n[LongRun.fields]\nepochs = 1000\nbatch_size = 256\n",
		"model/vit.toml":  modelUnits,
		"model/wide.toml": "[Wide]\nparent = \"Model\"\n\n[Wide.fields]\ndim = 4096\nwidth = 8\n",
	})
	return classify(t, trainRoot(), dir)
}

var groupDefaults = map[string]map[string]any{
	"Vit":  {"dim": int64(768), "heads": int64(12)},
	"Wide": {"dim": int64(4096), "width": int64(8)},
}

func TestResolveProperties(t *testing.T) {
	reg := propertyRegistry(t)
	variants := []string{"", "Quick", "LongRun"}
	options := []string{"Vit", "Wide"}

	t.Run("FieldOverrideWins", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			args := []string{}
			if v := rapid.SampledFrom(variants).Draw(t, "variant"); v != "" {
				args = append(args, "--config="+v)
			}
			if rapid.Bool().Draw(t, "group") {
				args = append(args, "model="+rapid.SampledFrom(options).Draw(t, "option"))
			}
			n := rapid.Int64().Draw(t, "epochs")
			dim := rapid.Int64Range(1, 1<<20).Draw(t, "dim")
			args = append(args, "--epochs="+strconv.FormatInt(n, 10), "--model.dim="+strconv.FormatInt(dim, 10))

			ov, err := ParseArgs(args, reg)
			if err != nil {
				t.Fatalf("parse %v: %v", args, err)
			}
			res, err := Resolve(reg, ov)
			if err != nil {
				t.Fatalf("resolve %v: %v", args, err)
			}
			if got, _ := res.Get("epochs"); got != n {
				t.Fatalf("epochs = %v, want %d", got, n)
			}
			if got, _ := res.Get("model.dim"); got != dim {
				t.Fatalf("model.dim = %v, want %d", got, dim)
			}
		})
	})

	t.Run("VariantKeepsUndeclaredFields", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			v := rapid.SampledFrom([]string{"Quick", "LongRun"}).Draw(t, "variant")
			res, err := Resolve(reg, &OverrideSet{Variant: v})
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if got, _ := res.Get("model.dim"); got != int64(512) {
				t.Fatalf("model.dim = %v, want base default", got)
			}
			if v == "Quick" {
				if got, _ := res.Get("batch_size"); got != int64(32) {
					t.Fatalf("batch_size = %v, want base default", got)
				}
			}
		})
	})

	t.Run("LastGroupSelectionIsFresh", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			picks := rapid.SliceOfN(rapid.SampledFrom(options), 1, 5).Draw(t, "picks")
			ov := &OverrideSet{}
			for _, p := range picks {
				ov.Groups = append(ov.Groups, GroupSelection{Field: "model", Option: p})
			}
			res, err := Resolve(reg, ov)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			last := picks[len(picks)-1]
			got, _ := res.Get("model")
			require.Equal(t, groupDefaults[last], got)
		})
	})

	t.Run("Deterministic", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			ov := &OverrideSet{
				Variant: rapid.SampledFrom(variants).Draw(t, "variant"),
			}
			if rapid.Bool().Draw(t, "group") {
				ov.Groups = []GroupSelection{{Field: "model", Option: rapid.SampledFrom(options).Draw(t, "option")}}
			}
			a, errA := Resolve(reg, ov)
			b, errB := Resolve(reg, ov)
			if errA != nil || errB != nil {
				t.Fatalf("resolve: %v, %v", errA, errB)
			}
			if !a.Equal(b) {
				t.Fatalf("results differ: %s vs %s", a.root, b.root)
			}
		})
	})

	t.Run("ArbitraryTokensNeverPanic", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			args := rapid.SliceOfN(rapid.String(), 0, 6).Draw(t, "args")
			ov, err := ParseArgs(args, reg)
			if err != nil {
				return
			}
			_, _ = Resolve(reg, ov)
		})
	})
}
