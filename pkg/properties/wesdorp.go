package properties

import (
	"fmt"
	"math"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Melting is the predicted melting behaviour of one polymorph.
type Melting struct {
	Polymorph   config.Polymorph
	Enthalpy    float64 // kJ/mol
	Temperature float64 // °C
}

// Melting temperature of an infinitely long saturated chain, in kelvin.
const tInfinity = 401.15

// celsius is the kelvin offset of 0 °C.
const celsius = 273.15

// wesdorp holds the coefficients of one polymorph.
type wesdorp struct {
	h, h0, hxy, hOdd float64
	k, x0            float64

	a0, aOdd, ax, ax2, axy, ay, ay2 float64
	b0, bOdd, bx, bx2, bxy, by, by2 float64

	aO, aE, aJ, aN     float64
	aOO, aEE, aJJ, aNN float64
	aOJ, aON, aJN      float64
	bO, bJ, bN         float64
	hO, hE, hJ         float64
}

var wesdorpCoefficients = map[config.Polymorph]wesdorp{
	config.Alpha: {
		h: 2.7, h0: -31.95, hxy: -13.28,
		k: 4.39, x0: 1.25,
		a0: -9.058, aOdd: -0.196, ax: 0.003, ax2: -0.062, axy: 0.115, ay: -0.453, ay2: -0.006,
		b0: -4.484, bOdd: -0.003, bx: -0.001, bx2: 0.149, bxy: -0.366, by: 1.412, by2: -0.002,
		aO: -3.46, aE: -1.38, aJ: -3.35, aN: -4.2,
		aOO: -0.01, aEE: 0.01, aJJ: -3.68, aNN: -0.98,
		aOJ: 0.53, aON: 0.83, aJN: -2.97,
		bO: 0, bJ: 5.4, bN: 2.6,
		hO: -31.7, hE: -11.7, hJ: -37.7,
	},
	config.BetaPrime: {
		h: 3.86, h0: -35.86, hxy: -19.35,
		k: 1.99, x0: 2.46,
		a0: -8.454, aOdd: -0.308, ax: -0.104, ax2: -0.019, axy: 0.074, ay: -0.497, ay2: 0.012,
		b0: -0.265, bOdd: 0.005, bx: 0.550, bx2: 0.074, bxy: -0.341, by: 2.342, by2: -0.136,
		aO: -2.2, aE: -1.34, aJ: -2.51, aN: -2.23,
		aOO: 0.27, aEE: 0.04, aJJ: 0.55, aNN: 1.51,
		aOJ: -1, aON: 0.76, aJN: 1.12,
		bO: -4.3, bJ: -7.8, bN: -13.7,
		hO: -28.3, hE: -15.9, hJ: -37.7,
	},
	config.Beta: {
		h: 3.89, h0: -17.16, hxy: -22.29, hOdd: 2.29,
		k: 2.88, x0: 0.77,
		a0: -8.048, aOdd: -0.019, ax: 0.074, ax2: -0.035, axy: 0.008, ay: -0.404, ay2: 0.011,
		b0: 2.670, bOdd: 0.008, bx: -0.317, bx2: 0.086, bxy: 0.041, by: 0.550, by2: 9e-4,
		aO: -2.93, aE: -1.68, aJ: -4.69, aN: -5.18,
		aOO: 0.89, aEE: 0.4, aJJ: 1.21, aNN: 1.38,
		aOJ: 0.71, aON: 0.69, aJN: 0.73,
		bO: -3.7, bJ: -1.5, bN: -1.8,
		hO: -30.2, hE: -15.9, hJ: -37.7,
	},
}

var (
	oleic     = core.MustParseFattyAcid("18:1Δ9c")
	elaidic   = core.MustParseFattyAcid("18:1Δ9t")
	linoleic  = core.MustParseFattyAcid("18:2Δ9c,12c")
	linolenic = core.MustParseFattyAcid("18:3Δ9c,12c,15c")
)

// residues counts the unsaturated C18 chains the model corrects for.
type residues struct {
	o, e, j, n float64
}

func countResidues(tag core.Triacylglycerol) residues {
	var r residues
	for _, fa := range tag {
		switch {
		case fa.Equal(oleic):
			r.o++
		case fa.Equal(elaidic):
			r.e++
		case fa.Equal(linoleic):
			r.j++
		case fa.Equal(linolenic):
			r.n++
		}
	}
	return r
}

func pairs(n float64) float64 {
	return math.Max(n-1, 0)
}

// Wesdorp predicts the melting enthalpy and temperature of tag in the given
// polymorph.
func Wesdorp(tag core.Triacylglycerol, polymorph config.Polymorph) (Melting, error) {
	c, ok := wesdorpCoefficients[polymorph]
	if !ok {
		return Melting{}, &core.ValidationError{
			Field:   "Polymorph",
			Message: fmt.Sprintf("unknown polymorph %q", polymorph),
		}
	}

	n1, n2, n3 := float64(tag[core.SN1].Carbon), float64(tag[core.SN2].Carbon), float64(tag[core.SN3].Carbon)
	n := n1 + n2 + n3
	p, q, r := math.Min(n1, n3), n2, math.Max(n1, n3)
	x, y := q-p, r-p

	fOdd := 0.0
	for _, fa := range tag {
		if fa.Carbon%2 != 0 {
			fOdd = 1
			break
		}
	}
	fxy := 2 - math.Exp(-math.Pow((x-c.x0)/c.k, 2)) - math.Exp(-math.Pow(y/c.k, 2))

	res := countResidues(tag)

	enthalpy := c.h*n + c.h0 + c.hxy*fxy + c.hOdd*fOdd +
		c.hO*res.o + c.hE*res.e + c.hJ*res.j

	as := c.a0 + c.aOdd*fOdd + c.ax2*x*x + c.ax*x + c.axy*x*y + c.ay*y + c.ay2*y*y
	bs := c.b0 + c.bOdd*fOdd + c.bx2*x*x + c.bx*x + c.bxy*x*y + c.by*y + c.by2*y*y

	au := as +
		c.aO*res.o + c.aE*res.e + c.aJ*res.j + c.aN*res.n +
		c.aOO*pairs(res.o) + c.aEE*pairs(res.e) + c.aJJ*pairs(res.j) + c.aNN*pairs(res.n) +
		c.aOJ*res.o*res.j + c.aON*res.o*res.n + c.aJN*res.j*res.n
	bu := bs + c.bO*res.o + c.bJ*res.j + c.bN*res.n

	temperature := tInfinity*(1+au/n-au*bu/(n*n)) - celsius

	return Melting{Polymorph: polymorph, Enthalpy: enthalpy, Temperature: temperature}, nil
}
