package indices

import (
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Biodiesel property names in output order.
const (
	CetaneNumber             = "CetaneNumber"
	ColdFilterPluggingPoint  = "ColdFilterPluggingPoint"
	DegreeOfUnsaturation     = "DegreeOfUnsaturation"
	IodineValue              = "IodineValue"
	LongChainSaturatedFactor = "LongChainSaturatedFactor"
	OxidationStability       = "OxidationStability"
)

// The correlations below take mass percent, so fractions are scaled by 100.

func percent(c column, keep func(core.FattyAcid) bool) float64 {
	return 100 * c.sum(keep)
}

func iodineValue(c column) float64 {
	return c.weighted(core.FattyAcid.IodineValue)
}

// saponificationValue is mg KOH per g of oil.
func saponificationValue(c column) float64 {
	return c.weighted(func(fa core.FattyAcid) float64 { return 560 * 100 / fa.RelativeAtomicMass() })
}

func longChainSaturatedFactor(c column) float64 {
	return 100 * (0.1*c.of(palmitic) + 0.5*c.of(stearic) +
		c.of(core.Saturated(20)) + 1.5*c.of(core.Saturated(22)) + 2*c.of(core.Saturated(24)))
}

var biodiesel = []definition{
	{CetaneNumber, func(c column) frame.Float {
		sv := saponificationValue(c)
		if sv == 0 {
			return frame.Null
		}
		return frame.Some(46.3 + 5458/sv - 0.225*iodineValue(c))
	}},
	{ColdFilterPluggingPoint, func(c column) frame.Float {
		return frame.Some(3.1417*longChainSaturatedFactor(c) - 16.477)
	}},
	{DegreeOfUnsaturation, func(c column) frame.Float {
		return frame.Some(percent(c, monoenoic) + 2*percent(c, polyenoic))
	}},
	{IodineValue, func(c column) frame.Float {
		return frame.Some(iodineValue(c))
	}},
	{LongChainSaturatedFactor, func(c column) frame.Float {
		return frame.Some(longChainSaturatedFactor(c))
	}},
	{OxidationStability, func(c column) frame.Float {
		x := 100 * (c.of(linoleic) + c.of(linolenic))
		if x == 0 {
			return frame.Null
		}
		return frame.Some(117.9295/x + 2.5905)
	}},
}

// BiodieselNames lists the biodiesel property names in output order.
func BiodieselNames() []string {
	out := make([]string, len(biodiesel))
	for i, d := range biodiesel {
		out[i] = d.name
	}
	return out
}
