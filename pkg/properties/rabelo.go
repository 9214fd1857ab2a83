package properties

import (
	"math"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// rabelo is one coefficient table of the viscosity correlation
// ln η = A + B/(T - C).
type rabelo struct {
	a1, a2, a3, a4, a5 float64
	b                  float64
	c1, c2, c3         float64
}

var (
	rabeloFattyAcid       = rabelo{a1: -6.09, a2: -3.536, a3: 5.40, a4: 3.10, a5: -0.066, b: 1331.5, c1: 41.6, c2: 4.135, c3: -8.0}
	rabeloTriacylglycerol = rabelo{a1: -4.01, a2: -2.954, a3: 28.9, a4: 6.5, a5: -0.0033, b: 1156, c1: 99.1, c2: 0.851, c3: -3.65}
)

// viscosity returns η in mPa·s for carbon count nc and double bond count nd at t kelvin.
func (r rabelo) viscosity(nc, nd, t float64) float64 {
	a := (r.a1-r.a2)/(1+math.Exp((nc-r.a3)/r.a4)) + r.a2 + r.a5*nd
	c := r.c1 + r.c2*nc + r.c3*nd
	return math.Exp(a + r.b/(t-c))
}

// FattyAcidViscosity predicts the dynamic viscosity of the free acid at t kelvin.
func FattyAcidViscosity(fa core.FattyAcid, t float64) float64 {
	return rabeloFattyAcid.viscosity(float64(fa.Carbon), float64(fa.DoubleBonds()), t)
}

// TriacylglycerolViscosity predicts the dynamic viscosity of tag at t kelvin
// using the carbon and double bond counts summed over its three chains.
func TriacylglycerolViscosity(tag core.Triacylglycerol, t float64) float64 {
	return rabeloTriacylglycerol.viscosity(float64(tag.Carbon()), float64(tag.Unsaturation()), t)
}
