package calculation

import (
	"math"
	"slices"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/distance"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Correlations is the square matrix of correlation coefficients between the
// fatty acids of a calculation frame.
type Correlations struct {
	Method   config.Correlation
	Position frame.Position
	Labels   []string
	Values   [][]frame.Float // Values[i][j] correlates Labels[i] with Labels[j]
}

// Correlate correlates every pair of rows over the replicate samples of the
// configured position. Rows are first selected and ordered by the threshold
// settings. Replicates where either value is null are skipped.
func Correlate(calc *frame.CalcFrame, settings *config.Settings) (*Correlations, error) {
	position, err := frame.ParsePosition(settings.Position)
	if err != nil {
		return nil, &core.ValidationError{Field: "Settings.Position", Message: err.Error()}
	}
	metric := distance.Pearson
	if settings.Correlation == config.SpearmanRank {
		metric = distance.SpearmanRank
	}

	rows := thresholdRows(calc.Rows, settings.Threshold)
	out := &Correlations{
		Method:   settings.Correlation,
		Position: position,
		Labels:   make([]string, len(rows)),
		Values:   make([][]frame.Float, len(rows)),
	}
	for i := range rows {
		out.Labels[i] = rows[i].Label
		out.Values[i] = make([]frame.Float, len(rows))
		for j := 0; j <= i; j++ {
			r := correlate(metric, rows[i].Get(position).Sample, rows[j].Get(position).Sample)
			out.Values[i][j] = r
			out.Values[j][i] = r
		}
	}
	return out, nil
}

// thresholdRows keeps the rows above the threshold when filtering, or moves
// them first when sorting.
func thresholdRows(rows []frame.CalcRow, t config.Threshold) []frame.CalcRow {
	switch {
	case t.Filter:
		var out []frame.CalcRow
		for _, row := range rows {
			if row.Threshold {
				out = append(out, row)
			}
		}
		return out
	case t.Sort:
		out := slices.Clone(rows)
		slices.SortStableFunc(out, func(a, b frame.CalcRow) int {
			switch {
			case a.Threshold == b.Threshold:
				return 0
			case a.Threshold:
				return -1
			}
			return 1
		})
		return out
	}
	return rows
}

// correlate needs two shared replicates; a pair without variance is null.
func correlate(metric distance.Metric, a, b []frame.Float) frame.Float {
	var x, y []float64
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].Valid && b[i].Valid {
			x = append(x, a[i].Float64)
			y = append(y, b[i].Float64)
		}
	}
	if len(x) < 2 {
		return frame.Null
	}
	return frame.Some(distance.Measure(metric, x, y))
}

// Strength is a band of the Chaddock scale.
type Strength int

const (
	VeryWeak Strength = iota
	Weak
	Moderate
	Strong
	VeryStrong
)

// Chaddock returns the band of |r|.
func Chaddock(r float64) Strength {
	switch r = math.Abs(r); {
	case r < 0.3:
		return VeryWeak
	case r < 0.5:
		return Weak
	case r < 0.7:
		return Moderate
	case r < 0.9:
		return Strong
	}
	return VeryStrong
}

func (s Strength) String() string {
	switch s {
	case VeryWeak:
		return "very weak"
	case Weak:
		return "weak"
	case Moderate:
		return "moderate"
	case Strong:
		return "strong"
	default:
		return "very strong"
	}
}

// Interpret describes a coefficient on the Chaddock scale, e.g. "strong
// negative". Zero reads "none" and null is empty.
func Interpret(r frame.Float) string {
	switch {
	case !r.Valid:
		return ""
	case r.Float64 == 0:
		return "none"
	case r.Float64 < 0:
		return Chaddock(r.Float64).String() + " negative"
	}
	return Chaddock(r.Float64).String() + " positive"
}
