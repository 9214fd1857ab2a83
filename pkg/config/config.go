// Package config provides the settings shared by every pipeline stage.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/filter"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Method selects the species enumeration model.
type Method string

const (
	Gunstone      Method = "Gunstone"
	VanderWal     Method = "VanderWal"
	MartinezForce Method = "MartinezForce"
)

// Polymorph selects the solid form for melting predictions.
type Polymorph string

const (
	Alpha     Polymorph = "alpha"
	BetaPrime Polymorph = "beta-prime"
	Beta      Polymorph = "beta"
)

// Correlation selects the coefficient of the fatty acid correlation matrix.
type Correlation string

const (
	Pearson      Correlation = "Pearson"
	SpearmanRank Correlation = "SpearmanRank"
)

// Threshold controls row selection.
type Threshold struct {
	Filter bool       `yaml:"filter"`
	Sort   bool       `yaml:"sort"`
	Auto   [2]float64 `yaml:"auto" validate:"dive,gte=0,lte=1"`
	IsAuto bool       `yaml:"is_auto"`
	Manual []bool     `yaml:"manual,omitempty"`
}

// Standard names the internal standard row.
type Standard struct {
	Label  string  `yaml:"label,omitempty"`
	Amount float64 `yaml:"amount,omitempty" validate:"gte=0"` // 0 means unscaled ratios
}

// Normalize switches the two normalization passes.
type Normalize struct {
	Experimental bool `yaml:"experimental"`
	Theoretical  bool `yaml:"theoretical"`
}

// Measured holds the measured S2U and SU2 populations in percent.
type Measured struct {
	S2U float64 `yaml:"s2u" validate:"gte=0,lte=100"`
	SU2 float64 `yaml:"su2" validate:"gte=0,lte=100"`
}

// Sort orders composition rows.
type Sort struct {
	By    string `yaml:"by" validate:"oneof=key value"`
	Order string `yaml:"order" validate:"oneof=ascending descending"`
}

// Properties parameterizes the property engine.
type Properties struct {
	Temperature float64   `yaml:"temperature" validate:"gt=0"` // Kelvin
	Polymorph   Polymorph `yaml:"polymorph" validate:"oneof=alpha beta-prime beta"`
}

// Settings is immutable for the duration of a compute.
type Settings struct {
	Index            *int                  `yaml:"index,omitempty" validate:"omitempty,gte=0"`
	DDOF             int                   `yaml:"ddof" validate:"oneof=0 1"`
	Precision        int                   `yaml:"precision" validate:"gte=0,lte=15"`
	Significant      bool                  `yaml:"significant"`
	Percent          bool                  `yaml:"percent"`
	Threshold        Threshold             `yaml:"threshold"`
	Standard         Standard              `yaml:"standard"`
	Christie         bool                  `yaml:"christie"`
	Normalize        Normalize             `yaml:"normalize"`
	NormalizeFactors bool                  `yaml:"normalize_factors"`
	Unsigned         bool                  `yaml:"unsigned"`
	Weighted         bool                  `yaml:"weighted"`
	Compositions     []core.Scheme         `yaml:"compositions" validate:"min=1"`
	Method           Method                `yaml:"method" validate:"oneof=Gunstone VanderWal MartinezForce"`
	Discriminants    map[string][3]float64 `yaml:"discriminants,omitempty"`
	MartinezForce    Measured              `yaml:"martinez_force"`
	Sort             Sort                  `yaml:"sort"`
	Adduct           float64               `yaml:"adduct"`
	RoundMass        int                   `yaml:"round_mass" validate:"gte=0,lte=6"`
	Filter           filter.Config         `yaml:"filter"`
	Properties       Properties            `yaml:"properties"`
	Correlation      Correlation           `yaml:"correlation" validate:"oneof=Pearson SpearmanRank"`
	Position         string                `yaml:"position" validate:"oneof=sn123 sn13 sn2"` // column read by correlations and distances
}

// Default returns the settings used when no file is given.
func Default() *Settings {
	return &Settings{
		DDOF:      1,
		Precision: 1,
		Percent:   true,
		Threshold: Threshold{
			Auto:   [2]float64{0.0025, 1},
			IsAuto: true,
		},
		Normalize:        Normalize{Experimental: true, Theoretical: true},
		NormalizeFactors: true,
		Unsigned:         true,
		Compositions:     []core.Scheme{{Kind: core.KeySpecies, Symmetry: core.Stereo}},
		Method:           VanderWal,
		MartinezForce:    Measured{S2U: 7.03, SU2: 36.08},
		Sort:             Sort{By: "value", Order: "descending"},
		RoundMass:        1,
		Properties:       Properties{Temperature: 313.15, Polymorph: Beta},
		Correlation:      Pearson,
		Position:         "sn123",
	}
}

// Load reads YAML settings on top of the defaults.
func Load(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML settings from r on top of the defaults and validates them.
func Decode(r io.Reader) (*Settings, error) {
	settings := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(settings); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Encode writes the settings as YAML.
func (s *Settings) Encode(w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return encoder.Close()
}

var validate = validator.New()

// Validate checks struct tags and cross-field rules.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var errs []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
		return &core.ValidationError{Field: "Settings", Message: strings.Join(errs, "; ")}
	}
	if s.Threshold.Auto[0] > s.Threshold.Auto[1] {
		return &core.ValidationError{Field: "Settings.Threshold.Auto", Message: "lower bound exceeds upper bound"}
	}
	for label, d := range s.Discriminants {
		for _, v := range d {
			if v < 0 {
				return &core.ValidationError{
					Field:   "Settings.Discriminants",
					Message: fmt.Sprintf("negative factor for %q", label),
				}
			}
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s *Settings) Clone() *Settings {
	c := *s
	if s.Index != nil {
		i := *s.Index
		c.Index = &i
	}
	c.Threshold.Manual = append([]bool(nil), s.Threshold.Manual...)
	c.Compositions = append([]core.Scheme(nil), s.Compositions...)
	if s.Discriminants != nil {
		c.Discriminants = make(map[string][3]float64, len(s.Discriminants))
		for k, v := range s.Discriminants {
			c.Discriminants[k] = v
		}
	}
	c.Filter.Levels = nil
	for _, level := range s.Filter.Levels {
		level.Exclude = append([]filter.Exclusion(nil), level.Exclude...)
		c.Filter.Levels = append(c.Filter.Levels, level)
	}
	return &c
}

// Hash writes every compute-relevant field in a canonical order.
// Presentation fields (precision, significant, percent) are left out.
func (s *Settings) Hash(h *frame.Hasher) {
	s.HashCalculation(h)
	s.HashComposition(h)
	s.HashProperties(h)
	s.HashCorrelations(h)
}

// HashCalculation writes the fields read by the calculation stage.
func (s *Settings) HashCalculation(h *frame.Hasher) {
	if s.Index != nil {
		h.Bool(true)
		h.Int(*s.Index)
	} else {
		h.Bool(false)
	}
	h.Int(s.DDOF)
	h.Float(s.Threshold.Auto[0])
	h.Float(s.Threshold.Auto[1])
	h.Bool(s.Threshold.IsAuto)
	h.Int(len(s.Threshold.Manual))
	for _, m := range s.Threshold.Manual {
		h.Bool(m)
	}
	h.String(s.Standard.Label)
	h.Float(s.Standard.Amount)
	h.Bool(s.Christie)
	h.Bool(s.Normalize.Experimental)
	h.Bool(s.Normalize.Theoretical)
	h.Bool(s.NormalizeFactors)
	h.Bool(s.Unsigned)
	h.Bool(s.Weighted)
}

// HashComposition writes the fields read by the composition stage.
func (s *Settings) HashComposition(h *frame.Hasher) {
	h.Int(s.DDOF)
	h.Float(s.Threshold.Auto[0])
	h.Bool(s.Threshold.Filter)
	h.Bool(s.Threshold.Sort)
	h.Int(len(s.Compositions))
	for _, c := range s.Compositions {
		h.String(c.Code())
	}
	h.String(string(s.Method))
	labels := make([]string, 0, len(s.Discriminants))
	for label := range s.Discriminants {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	h.Int(len(labels))
	for _, label := range labels {
		h.String(label)
		for _, v := range s.Discriminants[label] {
			h.Float(v)
		}
	}
	h.Float(s.MartinezForce.S2U)
	h.Float(s.MartinezForce.SU2)
	h.String(s.Sort.By)
	h.String(s.Sort.Order)
	h.Float(s.Adduct)
	h.Int(s.RoundMass)
	h.Int(len(s.Filter.Levels))
	for _, level := range s.Filter.Levels {
		h.Float(level.Minimum)
		h.Int(len(level.Exclude))
		for _, e := range level.Exclude {
			h.String(e.Key)
			for _, p := range e.Positions {
				h.Bool(p)
			}
		}
	}
}

// HashProperties writes the fields read by the property stage.
func (s *Settings) HashProperties(h *frame.Hasher) {
	h.Float(s.Properties.Temperature)
	h.String(string(s.Properties.Polymorph))
}

// HashCorrelations writes the fields read by the correlation and distance
// stages.
func (s *Settings) HashCorrelations(h *frame.Hasher) {
	h.String(string(s.Correlation))
	h.String(s.Position)
	h.Bool(s.Threshold.Filter)
	h.Bool(s.Threshold.Sort)
}

// Sum64 returns the settings hash on its own.
func (s *Settings) Sum64() uint64 {
	return sum(s.Hash)
}

// CalculationSum64 returns the calculation stage hash on its own.
func (s *Settings) CalculationSum64() uint64 {
	return sum(s.HashCalculation)
}

// CompositionSum64 returns the composition stage hash on its own.
func (s *Settings) CompositionSum64() uint64 {
	return sum(s.HashComposition)
}

// CorrelationsSum64 returns the correlation stage hash on its own.
func (s *Settings) CorrelationsSum64() uint64 {
	return sum(s.HashCorrelations)
}

// PropertiesSum64 returns the property stage hash on its own.
func (s *Settings) PropertiesSum64() uint64 {
	return sum(s.HashProperties)
}

func sum(write func(*frame.Hasher)) uint64 {
	h := frame.NewHasher()
	write(h)
	return h.Sum64()
}
