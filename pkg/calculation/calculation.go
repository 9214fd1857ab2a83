// Package calculation derives per-position fatty acid distributions from
// replicate sn-1,2,3 and partial-pool measurements.
package calculation

import (
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Engine computes calculation frames.
type Engine struct {
	Logger   *slog.Logger
	Christie *core.FactorTable // nil means the default table
}

// New returns an engine with the default Christie table.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{Logger: logger, Christie: core.DefaultChristieTable()}
}

// joined is a row after the replicate join. Slices are indexed by replicate.
type joined struct {
	label     string
	fattyAcid core.FattyAcid
	sn123     []frame.Float
	partial   []frame.Float
	sn2       []frame.Float
	sn13      []frame.Float
	filter    []*bool
	standard  bool
	factor    []frame.Float
	ef        []frame.Float
	sf        []frame.Float
	threshold bool
}

// Compute runs the calculation pipeline over replicate frames.
func (e *Engine) Compute(frames []*frame.RawFrame, settings *config.Settings) (*frame.CalcFrame, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := Check(frames); err != nil {
		return nil, err
	}
	pool := frames[0].Pool
	r := len(frames)

	rows := join(frames)
	logger.Debug("joined replicates", "replicates", r, "rows", len(rows), "pool", pool.String())

	if settings.Christie {
		table := e.Christie
		if table == nil {
			table = core.DefaultChristieTable()
		}
		applyChristie(rows, table)
	}

	if err := tagStandard(rows, r, settings.Standard); err != nil {
		return nil, err
	}

	for i := 0; i < r; i++ {
		normalize(rows, i, settings, func(row *joined) []frame.Float { return row.sn123 })
		normalize(rows, i, settings, func(row *joined) []frame.Float { return row.partial })
	}

	for i := 0; i < r; i++ {
		derive(rows, i, pool, settings)
	}

	if err := threshold(rows, settings.Threshold); err != nil {
		return nil, err
	}

	for i := 0; i < r; i++ {
		factors(rows, i, settings.NormalizeFactors)
	}

	out, err := aggregate(rows, r, settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("calculation complete", "rows", len(out.Rows), "replicates", out.Replicates)
	return out, nil
}

// Check validates every frame against its declared schema and requires a
// common pool across replicates.
func Check(frames []*frame.RawFrame) error {
	if len(frames) == 0 {
		return &core.ValidationError{Field: "frames", Message: "at least one replicate is required"}
	}
	pool := frames[0].Pool
	for i, f := range frames {
		if err := frame.Validate(frame.RawSchema(pool), f.Schema()); err != nil {
			return errors.Wrapf(err, "replicate %d", i)
		}
		if err := f.Validate(); err != nil {
			return errors.Wrapf(err, "replicate %d", i)
		}
	}
	return nil
}

// join performs a full outer join on (Label, FattyAcid), keeping the order of
// first appearance across replicates. Missing cells are null.
func join(frames []*frame.RawFrame) []*joined {
	r := len(frames)
	index := make(map[string]*joined)
	var rows []*joined
	for i, f := range frames {
		for _, raw := range f.Rows {
			key := raw.Label + "\x00" + raw.FattyAcid.String()
			row, ok := index[key]
			if !ok {
				row = &joined{
					label:     raw.Label,
					fattyAcid: raw.FattyAcid,
					sn123:     make([]frame.Float, r),
					partial:   make([]frame.Float, r),
					sn2:       make([]frame.Float, r),
					sn13:      make([]frame.Float, r),
					filter:    make([]*bool, r),
					factor:    make([]frame.Float, r),
					ef:        make([]frame.Float, r),
					sf:        make([]frame.Float, r),
				}
				index[key] = row
				rows = append(rows, row)
			}
			row.sn123[i] = frame.Some(raw.SN123)
			row.partial[i] = frame.Some(raw.Partial)
			row.filter[i] = raw.Filter
		}
	}
	return rows
}

// applyChristie scales every measured value by the detector response factor.
func applyChristie(rows []*joined, table *core.FactorTable) {
	for _, row := range rows {
		factor, ok := table.Get(row.fattyAcid)
		if !ok {
			factor = 1
		}
		row.sn123 = frame.Scale(row.sn123, factor)
		row.partial = frame.Scale(row.partial, factor)
	}
}

// tagStandard marks the internal standard and stores peak ratios against it.
func tagStandard(rows []*joined, r int, standard config.Standard) error {
	if standard.Label == "" {
		return nil
	}
	var std *joined
	for _, row := range rows {
		if row.label == standard.Label {
			row.standard = true
			if std == nil {
				std = row
			}
		}
	}
	if std == nil {
		return &core.MissingStandardError{Label: standard.Label}
	}
	for _, row := range rows {
		for i := 0; i < r; i++ {
			ratio := frame.Div(row.sn123[i], std.sn123[i])
			if standard.Amount > 0 && ratio.Valid {
				ratio.Float64 *= standard.Amount
			}
			row.factor[i] = ratio
		}
	}
	return nil
}

// normalize zeroes the standard, optionally weights by molar mass and divides
// replicate i of the selected column by its sum.
func normalize(rows []*joined, i int, settings *config.Settings, column func(*joined) []frame.Float) {
	values := make([]frame.Float, len(rows))
	for j, row := range rows {
		v := column(row)[i]
		if row.standard && v.Valid {
			v = frame.Some(0)
		}
		if settings.Weighted && v.Valid {
			v = frame.Some(v.Float64 * row.fattyAcid.RelativeAtomicMass())
		}
		values[j] = v
	}
	if settings.Normalize.Experimental {
		sum := frame.Some(frame.Column(values))
		for j := range values {
			values[j] = frame.Div(values[j], sum)
		}
	}
	for j, row := range rows {
		column(row)[i] = values[j]
	}
}

// derive fills sn2 and sn13 of replicate i from sn123 and the measured pool:
// 2*DAG1(3) = 3*TAG - MAG2.
func derive(rows []*joined, i int, pool frame.Pool, settings *config.Settings) {
	for _, row := range rows {
		tag, partial := row.sn123[i], row.partial[i]
		if !tag.Valid || !partial.Valid {
			row.sn2[i], row.sn13[i] = frame.Null, frame.Null
			continue
		}
		switch pool {
		case frame.PoolSN2:
			row.sn2[i] = partial
			row.sn13[i] = frame.Some((3*tag.Float64 - partial.Float64) / 2)
		case frame.PoolSN13:
			row.sn13[i] = partial
			row.sn2[i] = frame.Some(3*tag.Float64 - 2*partial.Float64)
		case frame.PoolSN1223:
			row.sn13[i] = frame.Some(3*tag.Float64 - 2*partial.Float64)
			row.sn2[i] = frame.Some(4*partial.Float64 - 3*tag.Float64)
		}
	}

	var derived []func(*joined) []frame.Float
	switch pool {
	case frame.PoolSN2:
		derived = append(derived, func(row *joined) []frame.Float { return row.sn13 })
	case frame.PoolSN13:
		derived = append(derived, func(row *joined) []frame.Float { return row.sn2 })
	case frame.PoolSN1223:
		derived = append(derived,
			func(row *joined) []frame.Float { return row.sn13 },
			func(row *joined) []frame.Float { return row.sn2 })
	}
	for _, column := range derived {
		if settings.Unsigned {
			for _, row := range rows {
				if v := column(row)[i]; v.Valid && v.Float64 < 0 {
					column(row)[i] = frame.Some(0)
				}
			}
		}
		if settings.Normalize.Theoretical {
			values := make([]frame.Float, len(rows))
			for j, row := range rows {
				values[j] = column(row)[i]
			}
			sum := frame.Some(frame.Column(values))
			for _, row := range rows {
				column(row)[i] = frame.Div(column(row)[i], sum)
			}
		}
	}
}

// threshold marks the rows kept for display and composition sorting.
func threshold(rows []*joined, t config.Threshold) error {
	if !t.IsAuto {
		if len(t.Manual) != len(rows) {
			return &core.ThresholdMismatchError{Expected: len(rows), Got: len(t.Manual)}
		}
		for j, row := range rows {
			row.threshold = t.Manual[j]
		}
		return nil
	}
	for _, row := range rows {
		row.threshold = row.standard || AboveAuto(row.sn123, t.Auto[0]) || AboveAuto(row.sn2, t.Auto[0])

		var override *bool
		for _, f := range row.filter {
			if f == nil {
				continue
			}
			v := *f || (override != nil && *override)
			override = &v
		}
		if override != nil {
			row.threshold = *override
		}
	}
	return nil
}

// AboveAuto reports whether any valid replicate value reaches the bound.
func AboveAuto(sample []frame.Float, bound float64) bool {
	for _, v := range sample {
		if v.Valid && v.Float64 >= bound {
			return true
		}
	}
	return false
}

// factors computes enrichment and selectivity for replicate i.
func factors(rows []*joined, i int, normalizeFactors bool) {
	var unsat123, unsat2 float64
	for _, row := range rows {
		if !row.fattyAcid.IsUnsaturated() {
			continue
		}
		if v := row.sn123[i]; v.Valid {
			unsat123 += v.Float64
		}
		if v := row.sn2[i]; v.Valid {
			unsat2 += v.Float64
		}
	}
	ratio := frame.Div(frame.Some(unsat123), frame.Some(unsat2))
	for _, row := range rows {
		ef := frame.Div(row.sn2[i], row.sn123[i])
		sf := frame.Mul(ef, ratio)
		if normalizeFactors {
			if ef.Valid {
				ef.Float64 /= 3
			}
			if sf.Valid {
				sf.Float64 /= 3
			}
		}
		row.ef[i], row.sf[i] = ef, sf
	}
}

// aggregate wraps replicate arrays into value cells.
func aggregate(rows []*joined, r int, settings *config.Settings) (*frame.CalcFrame, error) {
	cell := func(sample []frame.Float) frame.Cell {
		return frame.Aggregate(sample, settings.DDOF)
	}
	pick := func(sample []frame.Float) []frame.Float { return sample }
	replicates := r

	if settings.Index != nil {
		i := *settings.Index
		if i >= r {
			return nil, &core.ValidationError{
				Field:   "Settings.Index",
				Message: fmt.Sprintf("index %d out of range for %d replicates", i, r),
			}
		}
		cell = func(sample []frame.Float) frame.Cell { return frame.Single(sample[0]) }
		pick = func(sample []frame.Float) []frame.Float { return []frame.Float{sample[i]} }
		replicates = 1
	}

	out := &frame.CalcFrame{Replicates: replicates, Rows: make([]frame.CalcRow, len(rows))}
	for j, row := range rows {
		out.Rows[j] = frame.CalcRow{
			Label:       row.label,
			FattyAcid:   row.fattyAcid,
			SN123:       cell(pick(row.sn123)),
			SN2:         cell(pick(row.sn2)),
			SN13:        cell(pick(row.sn13)),
			Enrichment:  cell(pick(row.ef)),
			Selectivity: cell(pick(row.sf)),
			Standard: frame.Standard{
				Factor: pick(row.factor),
				Mask:   row.standard,
			},
			Threshold: row.threshold,
		}
	}
	return out, nil
}
