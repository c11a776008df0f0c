// FILE: lixenwraith/hiconf/cli_test.go
package hiconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	reg := classify(t, trainRoot())

	tests := []struct {
		name string
		args []string
		want OverrideSet
	}{
		{
			name: "Empty",
			args: nil,
			want: OverrideSet{},
		},
		{
			name: "Variant",
			args: []string{"--config=Quick"},
			want: OverrideSet{Variant: "Quick"},
		},
		{
			name: "VariantTwoTokens",
			args: []string{"--config", "Quick"},
			want: OverrideSet{Variant: "Quick"},
		},
		{
			name: "AllKinds",
			args: []string{"--config=Quick", "model=Vit", "--model.dim=1024", "--epochs", "10"},
			want: OverrideSet{
				Variant: "Quick",
				Groups:  []GroupSelection{{Field: "model", Option: "Vit"}},
				Fields: []FieldOverride{
					{Path: []string{"model", "dim"}, Raw: "1024"},
					{Path: []string{"epochs"}, Raw: "10"},
				},
			},
		},
		{
			name: "BareFlagIsTrue",
			args: []string{"--debug", "--epochs=3"},
			want: OverrideSet{Fields: []FieldOverride{
				{Path: []string{"debug"}, Raw: "true"},
				{Path: []string{"epochs"}, Raw: "3"},
			}},
		},
		{
			name: "BareFlagBeforeGroup",
			args: []string{"--debug", "model=Vit"},
			want: OverrideSet{
				Groups: []GroupSelection{{Field: "model", Option: "Vit"}},
				Fields: []FieldOverride{{Path: []string{"debug"}, Raw: "true"}},
			},
		},
		{
			name: "TrailingBareFlag",
			args: []string{"--debug"},
			want: OverrideSet{Fields: []FieldOverride{{Path: []string{"debug"}, Raw: "true"}}},
		},
		{
			name: "ValueKeepsEquals",
			args: []string{"--name=a=b"},
			want: OverrideSet{Fields: []FieldOverride{{Path: []string{"name"}, Raw: "a=b"}}},
		},
		{
			name: "EmptyValue",
			args: []string{"--name="},
			want: OverrideSet{Fields: []FieldOverride{{Path: []string{"name"}, Raw: ""}}},
		},
		{
			name: "Help",
			args: []string{"--config=Quick", "--help"},
			want: OverrideSet{Variant: "Quick", Help: true},
		},
		{
			name: "ShortHelpAndSeparator",
			args: []string{"--", "-h"},
			want: OverrideSet{Help: true},
		},
		{
			name: "KebabGroupField",
			args: []string{"model=vit"},
			want: OverrideSet{Groups: []GroupSelection{{Field: "model", Option: "vit"}}},
		},
		{
			name: "RepeatedGroupKeepsOrder",
			args: []string{"model=A", "model=B"},
			want: OverrideSet{Groups: []GroupSelection{{Field: "model", Option: "A"}, {Field: "model", Option: "B"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov, err := ParseArgs(tt.args, reg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *ov)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	reg := classify(t, trainRoot())

	tests := []struct {
		name  string
		args  []string
		token string
	}{
		{"DuplicateVariant", []string{"--config=A", "--config=B"}, "--config=B"},
		{"MissingVariant", []string{"--config"}, "--config"},
		{"EmptyVariant", []string{"--config="}, "--config="},
		{"VariantBeforeFlag", []string{"--config", "--epochs=1"}, "--config"},
		{"SingleDash", []string{"-x"}, "-x"},
		{"Positional", []string{"stray"}, "stray"},
		{"NotAGroup", []string{"epochs=10"}, "epochs=10"},
		{"MissingOption", []string{"model="}, "model="},
		{"BadPath", []string{"--model..dim=1"}, "--model..dim=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args, reg)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.ErrorIs(t, err, ErrCLIParse)
			assert.Equal(t, tt.token, pe.Token)
		})
	}

	t.Run("NotAGroupListsGroups", func(t *testing.T) {
		_, err := ParseArgs([]string{"epochs=10"}, reg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "groups: model")
	})
}

func TestCustomSelector(t *testing.T) {
	reg := classify(t, trainRoot())

	ov, err := ParseArgs([]string{"--preset=Quick", "--config=1"}, reg, WithSelector("preset"))
	require.NoError(t, err)
	assert.Equal(t, "Quick", ov.Variant)
	require.Len(t, ov.Fields, 1)
	assert.Equal(t, "config", ov.Fields[0].Key())
}
