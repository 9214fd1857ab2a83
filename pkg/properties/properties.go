// Package properties predicts physical properties of fatty acids and
// triacylglycerols: Hammond molar refraction, molar volume and refractive
// index, Rabelo viscosity, and Wesdorp melting enthalpy and temperature.
package properties

import (
	"fmt"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// FattyAcidRow holds the predictions for one calculation row.
type FattyAcidRow struct {
	Label     string
	FattyAcid core.FattyAcid
	Hammond   Hammond
	Viscosity float64 // mPa·s
}

// TriacylglycerolRow holds the predictions for one species.
type TriacylglycerolRow struct {
	Label           [3]string
	Triacylglycerol core.Triacylglycerol
	Viscosity       float64 // mPa·s
	Melting         Melting
}

// Frame collects property predictions at one temperature and polymorph.
type Frame struct {
	Temperature      float64 // K
	Polymorph        config.Polymorph
	FattyAcids       []FattyAcidRow
	Triacylglycerols []TriacylglycerolRow
}

// FattyAcids evaluates every row of calc at temperature t kelvin.
func FattyAcids(calc *frame.CalcFrame, t float64) []FattyAcidRow {
	out := make([]FattyAcidRow, len(calc.Rows))
	for i, row := range calc.Rows {
		out[i] = FattyAcidRow{
			Label:     row.Label,
			FattyAcid: row.FattyAcid,
			Hammond:   HammondOf(row.FattyAcid),
			Viscosity: FattyAcidViscosity(row.FattyAcid, t),
		}
	}
	return out
}

// Triacylglycerols evaluates every species at temperature t kelvin in the
// given polymorph.
func Triacylglycerols(species []frame.Species, t float64, polymorph config.Polymorph) ([]TriacylglycerolRow, error) {
	out := make([]TriacylglycerolRow, len(species))
	for i, sp := range species {
		melting, err := Wesdorp(sp.Triacylglycerol, polymorph)
		if err != nil {
			return nil, fmt.Errorf("species %s: %w", sp.Triacylglycerol, err)
		}
		out[i] = TriacylglycerolRow{
			Label:           sp.Label,
			Triacylglycerol: sp.Triacylglycerol,
			Viscosity:       TriacylglycerolViscosity(sp.Triacylglycerol, t),
			Melting:         melting,
		}
	}
	return out, nil
}

// Compute evaluates the fatty acids of calc and the given species under the
// property settings.
func Compute(calc *frame.CalcFrame, species []frame.Species, settings *config.Settings) (*Frame, error) {
	opts := settings.Properties
	if opts.Temperature <= 0 {
		return nil, &core.ValidationError{Field: "Properties.Temperature", Message: "must be positive kelvin"}
	}
	tags, err := Triacylglycerols(species, opts.Temperature, opts.Polymorph)
	if err != nil {
		return nil, err
	}
	return &Frame{
		Temperature:      opts.Temperature,
		Polymorph:        opts.Polymorph,
		FattyAcids:       FattyAcids(calc, opts.Temperature),
		Triacylglycerols: tags,
	}, nil
}
