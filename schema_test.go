// FILE: lixenwraith/hiconf/schema_test.go
package hiconf

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"int", "int", false},
		{"Integer", "int", false},
		{"float64", "float", false},
		{"bool", "bool", false},
		{"str", "string", false},
		{"list[int]", "list[int]", false},
		{"[]string", "list[string]", false},
		{"Model", "Model", false},
		{"list[Model]", "", true},
		{"[][]int", "", true},
		{"not a type", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			ft, err := ParseFieldType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ft.String())
		})
	}
}

func TestNewType(t *testing.T) {
	model := MustType("Model", "", FieldOf("dim", Int(512)))

	tests := []struct {
		name   string
		tname  string
		parent string
		fields []Field
	}{
		{"InvalidName", "bad name", "", nil},
		{"InvalidParent", "T", "a.b", nil},
		{"SelfParent", "T", "T", nil},
		{"DuplicateField", "T", "", []Field{FieldOf("x", Int(1)), FieldOf("x", Int(2))}},
		{"InvalidFieldName", "T", "", []Field{FieldOf("a.b", Int(1))}},
		{"DefaultKindMismatch", "T", "", []Field{{Name: "x", Type: Prim(KindInt), Default: Str("1")}}},
		{"RecordWithDefault", "T", "", []Field{{Name: "m", Type: RecordOf(model), Default: Int(1)}}},
		{"UntypedField", "T", "", []Field{{Name: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewType(tt.tname, tt.parent, tt.fields...)
			assert.ErrorIs(t, err, ErrInvalidSchema)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		typ, err := NewType("Train", "", FieldOf("epochs", Int(1)), NestedField("model", model))
		require.NoError(t, err)
		assert.Equal(t, []string{"epochs", "model"}, typ.FieldNames())
		f, ok := typ.Field("model")
		require.True(t, ok)
		assert.Same(t, model, f.Type.Nested())
	})

	t.Run("MustTypePanics", func(t *testing.T) {
		assert.Panics(t, func() { MustType("", "") })
	})
}

type reflectModel struct {
	Dim    int    `toml:"dim" doc:"hidden size"`
	Layers int    `toml:"layers"`
	Kind   string `toml:"kind"`
}

type reflectRoot struct {
	Epochs   int           `toml:"epochs" doc:"passes over the data"`
	LR       float64       `toml:"lr"`
	Debug    bool          `toml:"debug"`
	Tags     []string      `toml:"tags"`
	Timeout  time.Duration `toml:"timeout"`
	Bind     net.IP        `toml:"bind"`
	Model    reflectModel  `toml:"model"`
	Ignored  string        `toml:"-"`
	internal int
}

func TestReflect(t *testing.T) {
	defaults := reflectRoot{
		Epochs:  10,
		LR:      0.01,
		Tags:    []string{"a", "b"},
		Timeout: 5 * time.Second,
		Bind:    net.ParseIP("127.0.0.1"),
		Model:   reflectModel{Dim: 512, Layers: 6, Kind: "dense"},
	}

	t.Run("Struct", func(t *testing.T) {
		typ, err := Reflect(defaults)
		require.NoError(t, err)
		assert.Equal(t, "reflectRoot", typ.Name)
		assert.Equal(t, []string{"epochs", "lr", "debug", "tags", "timeout", "bind", "model"}, typ.FieldNames())

		epochs, _ := typ.Field("epochs")
		assert.Equal(t, KindInt, epochs.Type.Kind)
		assert.Equal(t, int64(10), epochs.Default.AsInt())
		assert.Equal(t, "passes over the data", epochs.Doc)

		tags, _ := typ.Field("tags")
		assert.Equal(t, "list[string]", tags.Type.String())

		timeout, _ := typ.Field("timeout")
		assert.Equal(t, KindString, timeout.Type.Kind)
		assert.Equal(t, "5s", timeout.Default.AsString())

		bind, _ := typ.Field("bind")
		assert.Equal(t, "127.0.0.1", bind.Default.AsString())

		model, _ := typ.Field("model")
		require.Equal(t, KindRecord, model.Type.Kind)
		nested := model.Type.Nested()
		require.NotNil(t, nested)
		assert.Equal(t, "reflectModel", nested.Name)
		dim, _ := nested.Field("dim")
		assert.Equal(t, "hidden size", dim.Doc)
	})

	t.Run("Pointer", func(t *testing.T) {
		typ, err := Reflect(&defaults)
		require.NoError(t, err)
		assert.Equal(t, "reflectRoot", typ.Name)
	})

	t.Run("Rejects", func(t *testing.T) {
		_, err := Reflect(42)
		assert.Error(t, err)

		var nilPtr *reflectRoot
		_, err = Reflect(nilPtr)
		assert.Error(t, err)

		type withMap struct {
			M map[string]int `toml:"m"`
		}
		_, err = Reflect(withMap{})
		assert.Error(t, err)

		type recursive struct {
			Next *recursive `toml:"next"`
		}
		_, err = Reflect(recursive{})
		assert.ErrorContains(t, err, "recursive type")
	})
}

func TestExtend(t *testing.T) {
	root := trainRoot()

	t.Run("RedeclaresFields", func(t *testing.T) {
		quick, err := Extend(root, "Quick", map[string]any{"epochs": 5})
		require.NoError(t, err)
		assert.Equal(t, "Train", quick.Parent)
		assert.Equal(t, []string{"epochs"}, quick.FieldNames())
		f, _ := quick.Field("epochs")
		assert.Equal(t, KindInt, f.Type.Kind)
		assert.Equal(t, int64(5), f.Default.AsInt())
	})

	t.Run("ConvertsToDeclaredType", func(t *testing.T) {
		typ, err := Extend(root, "Whole", map[string]any{"batch_size": 64.0})
		require.NoError(t, err)
		f, _ := typ.Field("batch_size")
		assert.Equal(t, int64(64), f.Default.AsInt())

		_, err = Extend(root, "Bad", map[string]any{"batch_size": "many"})
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("RecordField", func(t *testing.T) {
		big := MustType("Big", "Model", FieldOf("dim", Int(2048)))
		typ, err := Extend(root, "Large", map[string]any{"model": big})
		require.NoError(t, err)
		f, _ := typ.Field("model")
		assert.Same(t, big, f.Type.Nested())

		named, err := Extend(root, "Named", map[string]any{"model": "Vit"})
		require.NoError(t, err)
		f, _ = named.Field("model")
		assert.Equal(t, "Vit", f.Type.Schema)

		_, err = Extend(root, "Broken", map[string]any{"model": 3})
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("ChainsThroughGoParents", func(t *testing.T) {
		quick, err := Extend(root, "Quick", map[string]any{"epochs": 5})
		require.NoError(t, err)
		tiny, err := Extend(quick, "Tiny", map[string]any{"batch_size": 1})
		require.NoError(t, err)
		assert.Equal(t, "Quick", tiny.Parent)
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := Extend(root, "Bad", map[string]any{"nope": 1})
		assert.ErrorIs(t, err, ErrInvalidSchema)

		_, err = Extend(nil, "Bad", nil)
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})
}
