// Package indices derives nutritional indices and biodiesel properties from
// the position columns of a calculation frame.
package indices

import (
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Index names in output order.
const (
	Saturated                                 = "Saturated"
	Monounsaturated                           = "Monounsaturated"
	Polyunsaturated                           = "Polyunsaturated"
	Trans                                     = "Trans"
	Unsaturated                               = "Unsaturated"
	Unsaturated3                              = "Unsaturated-3"
	Unsaturated6                              = "Unsaturated-6"
	Unsaturated9                              = "Unsaturated-9"
	UnsaturatedDelta9                         = "Unsaturated9"
	EicosapentaenoicAndDocosahexaenoic        = "EicosapentaenoicAndDocosahexaenoic"
	FishLipidQuality                          = "FishLipidQuality"
	HealthPromotingIndex                      = "HealthPromotingIndex"
	HypocholesterolemicToHypercholesterolemic = "HypocholesterolemicToHypercholesterolemic"
	IndexOfAtherogenicity                     = "IndexOfAtherogenicity"
	IndexOfThrombogenicity                    = "IndexOfThrombogenicity"
	LinoleicToAlphaLinolenic                  = "LinoleicToAlphaLinolenic"
	Polyunsaturated6ToPolyunsaturated3        = "Polyunsaturated-6ToPolyunsaturated-3"
	PolyunsaturatedToSaturated                = "PolyunsaturatedToSaturated"
	UnsaturationIndex                         = "UnsaturationIndex"
)

// Index is one named index evaluated for each position column.
type Index struct {
	Name   string
	Values [3]frame.Cell // indexed by frame.Position
}

// Get returns the cell of position p.
func (i Index) Get(p frame.Position) frame.Cell {
	return i.Values[p]
}

// Frame holds the indices and biodiesel properties of a calculation.
type Frame struct {
	Replicates int
	Indices    []Index
	Biodiesel  []Index
}

// column is one replicate of one position: the fatty acids with their values.
type column struct {
	fas    []core.FattyAcid
	values []frame.Float
}

// sum adds the valid values of the chains accepted by keep.
func (c column) sum(keep func(core.FattyAcid) bool) float64 {
	total := 0.0
	for j, fa := range c.fas {
		if v := c.values[j]; v.Valid && keep(fa) {
			total += v.Float64
		}
	}
	return total
}

// weighted adds value times weight(fa) over every chain.
func (c column) weighted(weight func(core.FattyAcid) float64) float64 {
	total := 0.0
	for j, fa := range c.fas {
		if v := c.values[j]; v.Valid {
			total += v.Float64 * weight(fa)
		}
	}
	return total
}

// of returns the value of one fatty acid.
func (c column) of(target core.FattyAcid) float64 {
	return c.sum(target.Equal)
}

var (
	lauric    = core.Saturated(12)
	myristic  = core.Saturated(14)
	palmitic  = core.Saturated(16)
	stearic   = core.Saturated(18)
	oleic     = core.MustParseFattyAcid("18:1Δ9c")
	linoleic  = core.MustParseFattyAcid("18:2Δ9c,12c")
	linolenic = core.MustParseFattyAcid("18:3Δ9c,12c,15c")
	arachidon = core.MustParseFattyAcid("20:4Δ5c,8c,11c,14c")
	epa       = core.MustParseFattyAcid("20:5Δ5c,8c,11c,14c,17c")
	dpa       = core.MustParseFattyAcid("22:5Δ7c,10c,13c,16c,19c")
	dha       = core.MustParseFattyAcid("22:6Δ4c,7c,10c,13c,16c,19c")
)

var (
	saturated = core.FattyAcid.IsSaturated
	monoenoic = core.FattyAcid.IsMonoenoic
	polyenoic = core.FattyAcid.IsPolyunsaturated
)

func omega(n int) func(core.FattyAcid) bool {
	return func(fa core.FattyAcid) bool { return fa.IsUnsaturated(-n) }
}

func polyOmega(n int) func(core.FattyAcid) bool {
	return func(fa core.FattyAcid) bool { return fa.IsPolyunsaturated() && fa.IsUnsaturated(-n) }
}

func unsaturated(fa core.FattyAcid) bool { return fa.IsUnsaturated() }

func ratio(a, b float64) frame.Float {
	return frame.Div(frame.Some(a), frame.Some(b))
}

// definition evaluates one index over a single replicate column.
type definition struct {
	name string
	eval func(c column) frame.Float
}

var definitions = []definition{
	{Saturated, func(c column) frame.Float { return frame.Some(c.sum(saturated)) }},
	{Monounsaturated, func(c column) frame.Float { return frame.Some(c.sum(monoenoic)) }},
	{Polyunsaturated, func(c column) frame.Float { return frame.Some(c.sum(polyenoic)) }},
	{Trans, func(c column) frame.Float { return frame.Some(c.sum(core.FattyAcid.IsTrans)) }},
	{Unsaturated, func(c column) frame.Float { return frame.Some(c.sum(unsaturated)) }},
	{Unsaturated3, func(c column) frame.Float { return frame.Some(c.sum(omega(3))) }},
	{Unsaturated6, func(c column) frame.Float { return frame.Some(c.sum(omega(6))) }},
	{Unsaturated9, func(c column) frame.Float { return frame.Some(c.sum(omega(9))) }},
	{UnsaturatedDelta9, func(c column) frame.Float {
		return frame.Some(c.sum(func(fa core.FattyAcid) bool { return fa.IsUnsaturated(9) }))
	}},
	{EicosapentaenoicAndDocosahexaenoic, func(c column) frame.Float {
		return frame.Some(c.of(epa) + c.of(dha))
	}},
	{FishLipidQuality, func(c column) frame.Float {
		return ratio(100*(c.of(epa)+c.of(dha)), c.sum(func(core.FattyAcid) bool { return true }))
	}},
	{HealthPromotingIndex, func(c column) frame.Float {
		return ratio(c.sum(unsaturated), c.of(lauric)+4*c.of(myristic)+c.of(palmitic))
	}},
	{HypocholesterolemicToHypercholesterolemic, func(c column) frame.Float {
		return ratio(c.of(oleic)+c.of(linoleic)+c.of(arachidon)+c.of(linolenic)+c.of(epa)+c.of(dpa)+c.of(dha),
			c.of(myristic)+c.of(palmitic))
	}},
	{IndexOfAtherogenicity, func(c column) frame.Float {
		return ratio(c.of(lauric)+4*c.of(myristic)+c.of(palmitic), c.sum(unsaturated))
	}},
	{IndexOfThrombogenicity, func(c column) frame.Float {
		n3, n6 := c.sum(omega(3)), c.sum(omega(6))
		denominator := 0.5*c.sum(monoenoic) + 0.5*n6 + 3*n3
		if n6 != 0 {
			denominator += n3 / n6
		}
		return ratio(c.of(myristic)+c.of(palmitic)+c.of(stearic), denominator)
	}},
	{LinoleicToAlphaLinolenic, func(c column) frame.Float {
		return ratio(c.of(linoleic), c.of(linolenic))
	}},
	{Polyunsaturated6ToPolyunsaturated3, func(c column) frame.Float {
		return ratio(c.sum(polyOmega(6)), c.sum(polyOmega(3)))
	}},
	{PolyunsaturatedToSaturated, func(c column) frame.Float {
		return ratio(c.sum(polyenoic), c.sum(saturated))
	}},
	{UnsaturationIndex, func(c column) frame.Float {
		return frame.Some(c.weighted(func(fa core.FattyAcid) float64 { return float64(fa.DoubleBonds()) }))
	}},
}

// Names lists the index names in output order.
func Names() []string {
	out := make([]string, len(definitions))
	for i, d := range definitions {
		out[i] = d.name
	}
	return out
}

// Compute evaluates every index and biodiesel property for each position
// and replicate of calc, aggregating replicates with ddof.
func Compute(calc *frame.CalcFrame, ddof int) *Frame {
	columns := columnsOf(calc)
	return &Frame{
		Replicates: calc.Replicates,
		Indices:    evaluate(definitions, columns, ddof),
		Biodiesel:  evaluate(biodiesel, columns, ddof),
	}
}

// columnsOf splits calc into per-position, per-replicate columns.
func columnsOf(calc *frame.CalcFrame) [3][]column {
	fas := calc.FattyAcids()
	var out [3][]column
	for _, p := range frame.Positions {
		out[p] = make([]column, calc.Replicates)
		for i := range calc.Replicates {
			out[p][i] = column{fas: fas, values: calc.Column(p, i)}
		}
	}
	return out
}

func evaluate(defs []definition, columns [3][]column, ddof int) []Index {
	out := make([]Index, len(defs))
	for k, d := range defs {
		out[k].Name = d.name
		for _, p := range frame.Positions {
			sample := make([]frame.Float, len(columns[p]))
			for i, c := range columns[p] {
				sample[i] = d.eval(c)
			}
			out[k].Values[p] = frame.Aggregate(sample, ddof)
		}
	}
	return out
}
