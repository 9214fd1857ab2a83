// Package composition enumerates triacylglycerol species from a calculation
// frame and groups them under composition schemes.
package composition

import (
	"log/slog"
	"slices"

	"github.com/ChrisMcGann/TAGKey/pkg/calculation"
	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Engine computes composition frames.
type Engine struct {
	Logger *slog.Logger
}

// New returns a composition engine.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Logger: logger}
}

// Species enumerates every triacylglycerol with its value under the
// configured method, in product order.
func (e *Engine) Species(calc *frame.CalcFrame, settings *config.Settings) []frame.Species {
	enumerated := enumerate(calc, settings)
	out := make([]frame.Species, len(enumerated))
	for j, sp := range enumerated {
		out[j] = species(calc, sp, settings)
	}
	return out
}

func species(calc *frame.CalcFrame, sp enumerated, settings *config.Settings) frame.Species {
	var s frame.Species
	for pos, row := range sp.rows {
		s.Label[pos] = calc.Rows[row].Label
		s.Triacylglycerol[pos] = calc.Rows[row].FattyAcid
	}
	s.Value = frame.Aggregate(sp.sample, settings.DDOF)
	s.Threshold = calculation.AboveAuto(sp.sample, settings.Threshold.Auto[0])
	return s
}

// group is a row under construction.
type group struct {
	keys    []frame.Key
	species []frame.Species
	prefix  []uint64 // tuple hash of Keys[0..k]
}

// Compose enumerates species and groups them by the configured schemes.
func (e *Engine) Compose(calc *frame.CalcFrame, settings *config.Settings) (*frame.CompFrame, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := frame.Validate(frame.CalcSchema(calc.Replicates), calc.Schema()); err != nil {
		return nil, err
	}
	schemes := settings.Compositions
	if len(schemes) == 0 {
		return nil, &core.ValidationError{Field: "Settings.Compositions", Message: "at least one composition is required"}
	}
	opts := KeyOptions{Adduct: settings.Adduct, RoundMass: settings.RoundMass}

	all := e.Species(calc, settings)
	logger.Debug("enumerated species", "method", string(settings.Method), "species", len(all))

	// Group by the full key tuple in order of first appearance.
	index := make(map[uint64]*group)
	var groups []*group
	sums := make([]map[uint64][]frame.Float, len(schemes))
	for k := range sums {
		sums[k] = make(map[uint64][]frame.Float)
	}
	for _, sp := range all {
		keys := make([]frame.Key, len(schemes))
		prefix := make([]uint64, len(schemes))
		h := frame.NewHasher()
		for k, scheme := range schemes {
			keys[k] = KeyOf(scheme, sp.Label, sp.Triacylglycerol, opts)
			h.Key(keys[k])
			prefix[k] = h.Sum64()
			sums[k][prefix[k]] = frame.Sum(sums[k][prefix[k]], sp.Value.Sample)
		}
		g, ok := index[prefix[len(prefix)-1]]
		if !ok {
			g = &group{keys: keys, prefix: prefix}
			index[prefix[len(prefix)-1]] = g
			groups = append(groups, g)
		}
		g.species = append(g.species, sp)
	}

	out := &frame.CompFrame{
		Schemes:    append([]core.Scheme(nil), schemes...),
		Replicates: calc.Replicates,
		Rows:       make([]frame.CompRow, 0, len(groups)),
	}
	bound := settings.Threshold.Auto[0]
	for _, g := range groups {
		row := frame.CompRow{
			Keys:    g.keys,
			Values:  make([]frame.Cell, len(schemes)),
			Species: g.species,
		}
		for k := range schemes {
			row.Values[k] = frame.Aggregate(sums[k][g.prefix[k]], settings.DDOF)
		}
		row.Threshold = calculation.AboveAuto(row.Values[len(schemes)-1].Sample, bound)
		row.Species = thresholdSpecies(row.Species, settings.Threshold)
		out.Rows = append(out.Rows, row)
	}

	out.Rows = thresholdRows(out.Rows, settings.Threshold)
	sortRows(out.Rows, settings)
	out = settings.Filter.Apply(out)

	logger.Debug("composition complete", "rows", len(out.Rows), "levels", len(schemes))
	return out, nil
}

func thresholdSpecies(species []frame.Species, t config.Threshold) []frame.Species {
	switch {
	case t.Filter:
		return slices.DeleteFunc(species, func(sp frame.Species) bool { return !sp.Threshold })
	case t.Sort:
		slices.SortStableFunc(species, func(a, b frame.Species) int { return compareBool(a.Threshold, b.Threshold) })
	}
	return species
}

func thresholdRows(rows []frame.CompRow, t config.Threshold) []frame.CompRow {
	if t.Filter {
		return slices.DeleteFunc(rows, func(row frame.CompRow) bool { return !row.Threshold })
	}
	return rows
}

// sortRows applies the final stable ordering. Rows passing the threshold come
// first when threshold sorting is enabled; nulls sort last.
func sortRows(rows []frame.CompRow, settings *config.Settings) {
	descending := settings.Sort.Order == "descending"
	byKey := settings.Sort.By == "key"
	thresholdFirst := settings.Threshold.Sort && !settings.Threshold.Filter

	slices.SortStableFunc(rows, func(a, b frame.CompRow) int {
		if thresholdFirst {
			if c := compareBool(a.Threshold, b.Threshold); c != 0 {
				return c
			}
		}
		if byKey {
			c := frame.CompareKeys(a.Keys, b.Keys)
			if descending {
				c = -c
			}
			return c
		}
		return compareMean(a.Values[len(a.Values)-1].Mean, b.Values[len(b.Values)-1].Mean, descending)
	})
}

// compareBool orders true before false.
func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func compareMean(a, b frame.Float, descending bool) int {
	switch {
	case !a.Valid && !b.Valid:
		return 0
	case !a.Valid:
		return 1
	case !b.Valid:
		return -1
	case a.Float64 == b.Float64:
		return 0
	case (a.Float64 < b.Float64) != descending:
		return -1
	default:
		return 1
	}
}
