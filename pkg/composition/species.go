package composition

import (
	"math"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// enumerated is one triacylglycerol of the cartesian product. rows indexes
// the calculation rows at sn-1, sn-2 and sn-3.
type enumerated struct {
	rows   [3]int
	sample []frame.Float
}

// pools holds replicate i of the position columns.
type pools struct {
	fattyAcids []core.FattyAcid
	labels     []string
	sn123      []frame.Float
	sn13       []frame.Float
	sn2        []frame.Float
}

func poolsOf(calc *frame.CalcFrame, i int) pools {
	p := pools{
		fattyAcids: calc.FattyAcids(),
		labels:     make([]string, len(calc.Rows)),
		sn123:      calc.Column(frame.SN123, i),
		sn13:       calc.Column(frame.SN13, i),
		sn2:        calc.Column(frame.SN2, i),
	}
	for j, row := range calc.Rows {
		p.labels[j] = row.Label
	}
	return p
}

// enumerate builds the full product for every replicate, emitting (a,b,c)
// in row order with sn-1 outermost.
func enumerate(calc *frame.CalcFrame, settings *config.Settings) []enumerated {
	n := len(calc.Rows)
	r := calc.Replicates
	out := make([]enumerated, 0, n*n*n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for c := 0; c < n; c++ {
				out = append(out, enumerated{rows: [3]int{a, b, c}, sample: make([]frame.Float, r)})
			}
		}
	}

	for i := 0; i < r; i++ {
		p := poolsOf(calc, i)
		switch settings.Method {
		case config.Gunstone:
			gunstone(out, i, p, settings)
		case config.MartinezForce:
			product(out, i, martinezForce(p, settings))
		default:
			product(out, i, [3][]frame.Float{p.sn13, p.sn2, p.sn13})
		}
	}
	return out
}

// product stores w1(a)*w2(b)*w3(c) into replicate i and renormalizes.
func product(species []enumerated, i int, w [3][]frame.Float) {
	sum := 0.0
	for j := range species {
		rows := species[j].rows
		v := frame.Mul(frame.Mul(w[0][rows[0]], w[1][rows[1]]), w[2][rows[2]])
		species[j].sample[i] = v
		if v.Valid {
			sum += v.Float64
		}
	}
	total := frame.Some(sum)
	for j := range species {
		species[j].sample[i] = frame.Div(species[j].sample[i], total)
	}
}

// GunstoneFactors returns the S3, S2U, SU2 and U3 class proportions for a
// saturated fraction s of the sn-1,2,3 pool.
func GunstoneFactors(s float64) [4]float64 {
	u := 1 - s
	if s <= 2.0/3.0 {
		return [4]float64{
			0,
			math.Pow(3*s/2, 2),
			3 * s / 2 * (3*u - 1),
			math.Pow((3*u-1)/2, 2),
		}
	}
	return [4]float64{3*s - 2, 3 * u, 0, 0}
}

// gunstone weights the product of sn-1,2,3 values of each triacylglycerol
// by the proportion of its unsaturation class and renormalizes.
func gunstone(species []enumerated, i int, p pools, settings *config.Settings) {
	s := 0.0
	for j, fa := range p.fattyAcids {
		if fa.IsSaturated() && p.sn123[j].Valid {
			s += p.sn123[j].Float64
		}
	}
	factors := GunstoneFactors(s)

	w := discriminated(p, settings.Discriminants)
	sum := 0.0
	values := make([]frame.Float, len(species))
	for j := range species {
		rows := species[j].rows
		k := 0
		for _, row := range rows {
			if p.fattyAcids[row].IsUnsaturated() {
				k++
			}
		}
		v := frame.Mul(frame.Mul(w[0][rows[0]], w[1][rows[1]]), w[2][rows[2]])
		v = frame.Mul(v, frame.Some(factors[k]))
		values[j] = v
		if v.Valid {
			sum += v.Float64
		}
	}
	total := frame.Some(sum)
	for j := range species {
		species[j].sample[i] = frame.Div(values[j], total)
	}
}

// discriminated scales sn-1,2,3 by per-position factors of each label and
// renormalizes each position. Labels without factors keep 1.
func discriminated(p pools, discriminants map[string][3]float64) [3][]frame.Float {
	var w [3][]frame.Float
	for pos := 0; pos < 3; pos++ {
		w[pos] = make([]frame.Float, len(p.sn123))
		copy(w[pos], p.sn123)
	}
	if len(discriminants) == 0 {
		return w
	}
	for pos := 0; pos < 3; pos++ {
		for j, label := range p.labels {
			if d, ok := discriminants[label]; ok {
				w[pos][j] = frame.Mul(w[pos][j], frame.Some(d[pos]))
			}
		}
		total := frame.Some(frame.Column(w[pos]))
		for j := range w[pos] {
			w[pos][j] = frame.Div(w[pos][j], total)
		}
	}
	return w
}

// MartinezForceShares solves the sn-1 and sn-3 saturated shares s1, s3 from
// the saturated sn-2 share s2, the saturated sn-1,3 share s13 and the
// measured S2U and SU2 class fractions.
func MartinezForceShares(s2, s13, s2u, su2 float64) (s1, s3 float64) {
	c := 2 * s13
	if c <= 0 {
		return 0, 0
	}
	alpha := 0.5
	solve := func(p float64) bool {
		disc := 0.25 - p/(c*c)
		if p < 0 || disc < 0 {
			return false
		}
		a := 0.5 + math.Sqrt(disc)
		if a*c > 1 {
			return false
		}
		alpha = a
		return true
	}
	solved := false
	if d := 1 - 3*s2; d != 0 {
		solved = solve((s2u - s2*c) / d)
	}
	if !solved {
		u2 := 1 - s2
		if d := 1 - 3*u2; d != 0 {
			q := (su2 - u2*(2-c)) / d
			solved = solve(q - 1 + c)
		}
	}
	if !solved {
		alpha = 0.5
	}
	return alpha * c, (1 - alpha) * c
}

// martinezForce splits the sn-1,3 pool into stereospecific sn-1 and sn-3
// pools that reproduce the measured S2U population.
func martinezForce(p pools, settings *config.Settings) [3][]frame.Float {
	var s2, s13 float64
	for j, fa := range p.fattyAcids {
		if !fa.IsSaturated() {
			continue
		}
		if p.sn2[j].Valid {
			s2 += p.sn2[j].Float64
		}
		if p.sn13[j].Valid {
			s13 += p.sn13[j].Float64
		}
	}
	s1, s3 := MartinezForceShares(s2, s13, settings.MartinezForce.S2U/100, settings.MartinezForce.SU2/100)

	ratio := func(x, y float64) float64 {
		if y == 0 {
			return 0
		}
		return x / y
	}
	scale := func(share float64) []frame.Float {
		out := make([]frame.Float, len(p.sn13))
		for j, fa := range p.fattyAcids {
			k := ratio(1-share, 1-s13)
			if fa.IsSaturated() {
				k = ratio(share, s13)
			}
			out[j] = frame.Mul(p.sn13[j], frame.Some(k))
		}
		return out
	}
	return [3][]frame.Float{scale(s1), p.sn2, scale(s3)}
}
