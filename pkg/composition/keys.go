package composition

import (
	"sort"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// KeyOptions parameterize mass keys.
type KeyOptions struct {
	Adduct    float64
	RoundMass int
}

// KeyOf computes the composition key of a triacylglycerol under a scheme.
func KeyOf(scheme core.Scheme, labels [3]string, tag core.Triacylglycerol, opts KeyOptions) frame.Key {
	switch scheme.Kind {
	case core.KeySpecies:
		return labelKey(scheme.Symmetry, labels)
	case core.KeyType:
		var types [3]string
		for i, fa := range tag {
			types[i] = "U"
			if fa.IsSaturated() {
				types[i] = "S"
			}
		}
		return labelKey(scheme.Symmetry, types)
	case core.KeyMass:
		if scheme.Symmetry == core.Mono {
			return frame.Key{Numbers: []float64{core.RoundFloat(tag.Mass(opts.Adduct), opts.RoundMass)}}
		}
		var masses [3]float64
		for i, fa := range tag {
			masses[i] = core.RoundFloat(fa.Mass(), opts.RoundMass)
		}
		return numberKey(scheme.Symmetry, masses)
	case core.KeyECN:
		var ecn [3]float64
		for i, fa := range tag {
			ecn[i] = float64(fa.EquivalentCarbonNumber())
		}
		return numberKey(scheme.Symmetry, ecn)
	case core.KeyUnsaturation:
		var bonds [3]float64
		for i, fa := range tag {
			bonds[i] = float64(fa.DoubleBonds())
		}
		return numberKey(scheme.Symmetry, bonds)
	}
	return frame.Key{}
}

func labelKey(symmetry core.Symmetry, parts [3]string) frame.Key {
	switch symmetry {
	case core.Positional:
		if parts[2] < parts[0] {
			parts[0], parts[2] = parts[2], parts[0]
		}
	case core.Mono:
		sort.Strings(parts[:])
	}
	return frame.Key{Labels: parts[:]}
}

func numberKey(symmetry core.Symmetry, parts [3]float64) frame.Key {
	switch symmetry {
	case core.Positional:
		if parts[2] < parts[0] {
			parts[0], parts[2] = parts[2], parts[0]
		}
	case core.Mono:
		return frame.Key{Numbers: []float64{parts[0] + parts[1] + parts[2]}}
	}
	return frame.Key{Numbers: parts[:]}
}
