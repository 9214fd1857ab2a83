// Package core provides chemistry calculations for fatty acids and triacylglycerols
package core

import "math"

// Atomic masses (monoisotopic)
const (
	MassH = 1.0078250321
	MassC = 12.0000000000
	MassN = 14.0030740052
	MassO = 15.9949146221
	MassI = 126.904473

	// Proton mass for charged adducts
	ProtonMass = 1.00727646688
)

// Standard atomic weights (IUPAC conventional values)
const (
	WeightH = 1.008
	WeightC = 12.011
	WeightO = 15.999
	WeightI = 126.90447
)

// Composition stores elemental composition
type Composition struct {
	C, H, O int
}

// Add returns the element-wise sum of two compositions.
func (c Composition) Add(other Composition) Composition {
	return Composition{C: c.C + other.C, H: c.H + other.H, O: c.O + other.O}
}

// MonoisotopicMass returns the monoisotopic mass of the composition.
func (c Composition) MonoisotopicMass() float64 {
	return float64(c.C)*MassC + float64(c.H)*MassH + float64(c.O)*MassO
}

// RelativeMass returns the mass from standard atomic weights.
func (c Composition) RelativeMass() float64 {
	return float64(c.C)*WeightC + float64(c.H)*WeightH + float64(c.O)*WeightO
}

var (
	// Glycerol C3H8O3
	Glycerol = Composition{C: 3, H: 8, O: 3}
	// Water C0H2O1, released once per ester bond
	Water = Composition{H: 2, O: 1}
)

// Adducts maps common positive-mode ion adducts to their mass shift.
var Adducts = map[string]float64{
	"":    0,
	"H":   ProtonMass,
	"NH4": MassN + 4*MassH - (MassH - ProtonMass),
	"Na":  22.9897692820 - (MassH - ProtonMass),
	"Li":  7.0160034366 - (MassH - ProtonMass),
	"K":   38.9637064864 - (MassH - ProtonMass),
}

// TriacylglycerolComposition computes the elemental composition of the ester
// formed from glycerol and three free fatty acids.
func TriacylglycerolComposition(tag Triacylglycerol) Composition {
	comp := Glycerol
	for _, fa := range tag {
		comp = comp.Add(fa.Composition())
		comp.H -= Water.H
		comp.O -= Water.O
	}
	return comp
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
