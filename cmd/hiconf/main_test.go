// FILE: lixenwraith/hiconf/cmd/hiconf/main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/hiconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogUnits = `
[Model.fields]
dim = 512

[Train]
doc = "training run"

[Train.fields]
epochs = 100
batch_size = 32

[Train.fields.model]
type = "Model"

[Quick]
parent = "Train"

[Quick.fields]
epochs = 5
`

const vitUnit = `
Vit:
  parent: Model
  fields:
    dim: 768
    heads: 12
`

func catalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "model"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.toml"), []byte(catalogUnits), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "model", "vit.yaml"), []byte(vitUnit), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDirsCommand(t *testing.T) {
	dir := catalogDir(t)
	out, _, err := execute(t, "dirs", "-d", dir, "--workdir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "source: explicit")
	assert.Contains(t, out, "0  "+dir)
}

func TestListCommand(t *testing.T) {
	dir := catalogDir(t)

	t.Run("Types", func(t *testing.T) {
		out, _, err := execute(t, "list", "-d", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "Train")
		assert.Contains(t, out, filepath.Join(dir, "model", "vit.yaml"))
	})

	t.Run("Registry", func(t *testing.T) {
		out, _, err := execute(t, "list", "-d", dir, "--root", "Train")
		require.NoError(t, err)
		assert.Contains(t, out, "Quick")
		assert.Contains(t, out, "model: Model, Vit")
	})

	t.Run("UnknownRoot", func(t *testing.T) {
		_, _, err := execute(t, "list", "-d", dir, "--root", "Nope")
		assert.ErrorIs(t, err, hiconf.ErrLookup)
		assert.Equal(t, 1, exitCode(err))
	})
}

func TestResolveCommand(t *testing.T) {
	dir := catalogDir(t)

	t.Run("JSON", func(t *testing.T) {
		out, _, err := execute(t, "resolve", "Train", "-d", dir, "-f", "json",
			"--", "--config=Quick", "model=Vit", "--model.dim=1024")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, map[string]any{
			"epochs":     5.0,
			"batch_size": 32.0,
			"model":      map[string]any{"dim": 1024.0, "heads": 12.0},
		}, got)
	})

	t.Run("OutputFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "resolved.yaml")
		_, stderr, err := execute(t, "resolve", "Train", "-d", dir, "-o", path, "--debug")
		require.NoError(t, err)
		assert.Contains(t, stderr, "wrote")
		assert.Contains(t, stderr, "epochs = 100 [default]")
		assert.FileExists(t, path)
	})

	t.Run("Help", func(t *testing.T) {
		out, _, err := execute(t, "resolve", "Train", "-d", dir, "--", "--config=Nope", "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Contains(t, out, "--epochs=100")
	})

	t.Run("ExitCodes", func(t *testing.T) {
		_, _, err := execute(t, "resolve", "Train", "-d", dir, "--", "-x")
		assert.Equal(t, 2, exitCode(err))

		_, _, err = execute(t, "resolve", "Train", "-d", dir, "--", "--config=Nope")
		assert.Equal(t, 1, exitCode(err))

		_, _, err = execute(t, "resolve", "Train", "extra", "-d", dir)
		assert.Error(t, err)

		assert.Equal(t, 0, exitCode(nil))
	})
}
