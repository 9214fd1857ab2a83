package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseScheme(t *testing.T) {
	tests := []struct {
		input string
		want  Scheme
	}{
		{"SSC", Scheme{Kind: KeySpecies, Symmetry: Stereo}},
		{"spc", Scheme{Kind: KeySpecies, Symmetry: Positional}},
		{"TMC", Scheme{Kind: KeyType, Symmetry: Mono}},
		{"MPC", Scheme{Kind: KeyMass, Symmetry: Positional}},
		{"NMC", Scheme{Kind: KeyECN, Symmetry: Mono}},
		{"USC", Scheme{Kind: KeyUnsaturation, Symmetry: Stereo}},
		{"Species/Positional", Scheme{Kind: KeySpecies, Symmetry: Positional}},
		{" ecn/mono ", Scheme{Kind: KeyECN, Symmetry: Mono}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScheme(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "XYZ", "SXC", "Species", "Species/Flat"} {
		_, err := ParseScheme(bad)
		assert.Error(t, err, bad)
	}
}

func TestSchemeCode(t *testing.T) {
	for _, code := range []string{"SSC", "SPC", "SMC", "TSC", "TPC", "TMC", "MSC", "MPC", "MMC", "NSC", "NPC", "NMC", "USC", "UPC", "UMC"} {
		s, err := ParseScheme(code)
		require.NoError(t, err)
		assert.Equal(t, code, s.Code())
	}
	assert.Equal(t, "Unsaturation/Mono", Scheme{Kind: KeyUnsaturation, Symmetry: Mono}.String())
}

func TestSchemeYAML(t *testing.T) {
	var doc struct {
		Schemes []Scheme `yaml:"schemes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("schemes: [SPC, Type/Mono]\n"), &doc))
	assert.Equal(t, []Scheme{
		{Kind: KeySpecies, Symmetry: Positional},
		{Kind: KeyType, Symmetry: Mono},
	}, doc.Schemes)

	out, err := yaml.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t, "schemes:\n    - SPC\n    - TMC\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte("schemes: [XYZ]\n"), &doc))
}
