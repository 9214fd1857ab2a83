package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/filter"
)

func TestDefault(t *testing.T) {
	settings := Default()
	require.NoError(t, settings.Validate())
	assert.Equal(t, VanderWal, settings.Method)
	assert.Equal(t, 1, settings.DDOF)
	assert.Equal(t, []core.Scheme{{Kind: core.KeySpecies, Symmetry: core.Stereo}}, settings.Compositions)
	assert.Equal(t, Beta, settings.Properties.Polymorph)
}

func TestDecode(t *testing.T) {
	input := `
method: Gunstone
ddof: 0
index: 1
compositions: [SPC, ECN/Mono]
threshold:
  auto: [0.01, 1]
  filter: true
standard:
  label: "17:0"
  amount: 2.5
discriminants:
  "16:0": [1, 0.5, 1]
filter:
  levels:
    - exclude:
        - key: "18:1Δ9c"
          positions: [false, true, false]
properties:
  temperature: 333.15
  polymorph: alpha
`
	settings, err := Decode(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, Gunstone, settings.Method)
	assert.Equal(t, 0, settings.DDOF)
	require.NotNil(t, settings.Index)
	assert.Equal(t, 1, *settings.Index)
	assert.Equal(t, []core.Scheme{
		{Kind: core.KeySpecies, Symmetry: core.Positional},
		{Kind: core.KeyECN, Symmetry: core.Mono},
	}, settings.Compositions)
	assert.Equal(t, [2]float64{0.01, 1}, settings.Threshold.Auto)
	assert.True(t, settings.Threshold.Filter)
	assert.True(t, settings.Threshold.IsAuto, "defaults survive a partial document")
	assert.Equal(t, Standard{Label: "17:0", Amount: 2.5}, settings.Standard)
	assert.Equal(t, [3]float64{1, 0.5, 1}, settings.Discriminants["16:0"])
	assert.Equal(t, []filter.Exclusion{{Key: "18:1Δ9c", Positions: [3]bool{false, true, false}}}, settings.Filter.Levels[0].Exclude)
	assert.Equal(t, Properties{Temperature: 333.15, Polymorph: Alpha}, settings.Properties)
}

func TestDecodeEmpty(t *testing.T) {
	settings, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), settings)
}

func TestDecodeUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("methd: Gunstone\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse settings")
	assert.Contains(t, err.Error(), "methd")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		field  string
		msg    string
	}{
		{"unknown method", func(s *Settings) { s.Method = "Random" }, "Settings", "Settings.Method failed 'oneof'"},
		{"ddof", func(s *Settings) { s.DDOF = 2 }, "Settings", "Settings.DDOF failed 'oneof'"},
		{"no compositions", func(s *Settings) { s.Compositions = nil }, "Settings", "Settings.Compositions failed 'min'"},
		{"threshold range", func(s *Settings) { s.Threshold.Auto = [2]float64{0, 1.5} }, "Settings", "Settings.Threshold.Auto[1] failed 'lte'"},
		{"negative index", func(s *Settings) { i := -1; s.Index = &i }, "Settings", "Settings.Index failed 'gte'"},
		{"temperature", func(s *Settings) { s.Properties.Temperature = 0 }, "Settings", "Settings.Properties.Temperature failed 'gt'"},
		{"polymorph", func(s *Settings) { s.Properties.Polymorph = "gamma" }, "Settings", "Settings.Properties.Polymorph failed 'oneof'"},
		{"martinez force", func(s *Settings) { s.MartinezForce.SU2 = 120 }, "Settings", "Settings.MartinezForce.SU2 failed 'lte'"},
		{"correlation", func(s *Settings) { s.Correlation = "Kendall" }, "Settings", "Settings.Correlation failed 'oneof'"},
		{"position", func(s *Settings) { s.Position = "sn1" }, "Settings", "Settings.Position failed 'oneof'"},
		{"empty exclusion key", func(s *Settings) {
			s.Filter.Levels = []filter.Level{{Exclude: []filter.Exclusion{{}}}}
		}, "Settings", "Settings.Filter.Levels[0].Exclude[0].Key failed 'required'"},
		{"bounds out of order", func(s *Settings) { s.Threshold.Auto = [2]float64{0.5, 0.2} }, "Settings.Threshold.Auto", "lower bound exceeds upper bound"},
		{"negative discriminant", func(s *Settings) {
			s.Discriminants = map[string][3]float64{"P": {1, -1, 1}}
		}, "Settings.Discriminants", `negative factor for "P"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := Default()
			tt.modify(settings)
			err := settings.Validate()
			var ve *core.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Contains(t, ve.Message, tt.msg)
		})
	}
}

func TestHash(t *testing.T) {
	base := Default().Sum64()

	presentation := Default()
	presentation.Precision = 4
	presentation.Significant = true
	presentation.Percent = false
	assert.Equal(t, base, presentation.Sum64())

	for name, modify := range map[string]func(*Settings){
		"method":       func(s *Settings) { s.Method = Gunstone },
		"ddof":         func(s *Settings) { s.DDOF = 0 },
		"index":        func(s *Settings) { i := 0; s.Index = &i },
		"christie":     func(s *Settings) { s.Christie = true },
		"compositions": func(s *Settings) { s.Compositions = append(s.Compositions, core.Scheme{Kind: core.KeyECN}) },
		"threshold":    func(s *Settings) { s.Threshold.Auto[0] = 0.01 },
		"polymorph":    func(s *Settings) { s.Properties.Polymorph = Alpha },
		"filter":       func(s *Settings) { s.Filter.Levels = []filter.Level{{Minimum: 0.01}} },
		"correlation":  func(s *Settings) { s.Correlation = SpearmanRank },
		"position":     func(s *Settings) { s.Position = "sn13" },
	} {
		t.Run(name, func(t *testing.T) {
			s := Default()
			modify(s)
			assert.NotEqual(t, base, s.Sum64())
		})
	}

	ordered := Default()
	ordered.Discriminants = map[string][3]float64{"P": {1, 1, 1}, "O": {1, 2, 1}, "L": {1, 3, 1}}
	for range 10 {
		assert.Equal(t, ordered.Sum64(), ordered.Clone().Sum64())
	}
}

func TestStageHashes(t *testing.T) {
	base := Default()

	method := Default()
	method.Method = Gunstone
	assert.Equal(t, base.CalculationSum64(), method.CalculationSum64())
	assert.NotEqual(t, base.CompositionSum64(), method.CompositionSum64())
	assert.Equal(t, base.PropertiesSum64(), method.PropertiesSum64())

	temperature := Default()
	temperature.Properties.Temperature = 310.15
	assert.Equal(t, base.CalculationSum64(), temperature.CalculationSum64())
	assert.Equal(t, base.CompositionSum64(), temperature.CompositionSum64())
	assert.NotEqual(t, base.PropertiesSum64(), temperature.PropertiesSum64())

	standard := Default()
	standard.Standard = Standard{Label: "17:0", Amount: 1}
	assert.NotEqual(t, base.CalculationSum64(), standard.CalculationSum64())
	assert.Equal(t, base.CompositionSum64(), standard.CompositionSum64())

	ddof := Default()
	ddof.DDOF = 0
	assert.NotEqual(t, base.CalculationSum64(), ddof.CalculationSum64())
	assert.NotEqual(t, base.CompositionSum64(), ddof.CompositionSum64())
	assert.Equal(t, base.PropertiesSum64(), ddof.PropertiesSum64())

	position := Default()
	position.Position = "sn2"
	assert.Equal(t, base.CalculationSum64(), position.CalculationSum64())
	assert.Equal(t, base.CompositionSum64(), position.CompositionSum64())
	assert.NotEqual(t, base.CorrelationsSum64(), position.CorrelationsSum64())
	assert.Equal(t, base.CorrelationsSum64(), method.CorrelationsSum64())
}

func TestClone(t *testing.T) {
	original := Default()
	i := 2
	original.Index = &i
	original.Discriminants = map[string][3]float64{"P": {1, 1, 1}}
	original.Filter.Levels = []filter.Level{{Exclude: []filter.Exclusion{{Key: "16:0"}}}}

	clone := original.Clone()
	assert.Equal(t, original, clone)

	*clone.Index = 3
	clone.Compositions[0].Kind = core.KeyMass
	clone.Discriminants["P"] = [3]float64{2, 2, 2}
	clone.Filter.Levels[0].Exclude[0].Key = "18:0"

	assert.Equal(t, 2, *original.Index)
	assert.Equal(t, core.KeySpecies, original.Compositions[0].Kind)
	assert.Equal(t, [3]float64{1, 1, 1}, original.Discriminants["P"])
	assert.Equal(t, "16:0", original.Filter.Levels[0].Exclude[0].Key)
}

func TestEncodeLoad(t *testing.T) {
	original := Default()
	original.Method = MartinezForce
	original.Compositions = []core.Scheme{{Kind: core.KeyType, Symmetry: core.Positional}}

	var buf bytes.Buffer
	require.NoError(t, original.Encode(&buf))
	assert.Contains(t, buf.String(), "method: MartinezForce")
	assert.Contains(t, buf.String(), "- TPC")

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original.Sum64(), loaded.Sum64())
	assert.Equal(t, original.Precision, loaded.Precision)
	assert.Equal(t, original.Percent, loaded.Percent)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
