package frame

import (
	"database/sql"
	"math"
)

// Float is a nullable float64. It doubles as a database/sql value.
type Float = sql.NullFloat64

// Null is the null Float.
var Null = Float{}

// Some wraps a finite value; NaN and ±Inf become null.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null
	}
	return Float{Float64: v, Valid: true}
}

// Div divides a by b, yielding null on a null operand or a zero divisor.
func Div(a, b Float) Float {
	if !a.Valid || !b.Valid || b.Float64 == 0 {
		return Null
	}
	return Some(a.Float64 / b.Float64)
}

// Mul multiplies a by b, propagating null.
func Mul(a, b Float) Float {
	if !a.Valid || !b.Valid {
		return Null
	}
	return Some(a.Float64 * b.Float64)
}

// Cell is a value aggregated over replicates.
type Cell struct {
	Mean              Float
	StandardDeviation Float
	Sample            []Float
}

// Single wraps one value as a single-replicate cell with null deviation.
func Single(v Float) Cell {
	return Cell{Mean: v, StandardDeviation: Null, Sample: []Float{v}}
}

// Aggregate computes mean and standard deviation over the valid sample
// elements. The deviation divides by N-ddof and is null when that is not
// positive.
func Aggregate(sample []Float, ddof int) Cell {
	cell := Cell{Sample: sample}

	n := 0
	sum := 0.0
	for _, v := range sample {
		if v.Valid {
			n++
			sum += v.Float64
		}
	}
	if n == 0 {
		return cell
	}
	mean := sum / float64(n)
	cell.Mean = Some(mean)

	if n-ddof <= 0 {
		return cell
	}
	ss := 0.0
	for _, v := range sample {
		if v.Valid {
			d := v.Float64 - mean
			ss += d * d
		}
	}
	cell.StandardDeviation = Some(math.Sqrt(ss / float64(n-ddof)))
	return cell
}

// Sum adds sample arrays elementwise. Null elements are skipped; an element
// stays null only when every addend is null at that index.
func Sum(samples ...[]Float) []Float {
	n := 0
	for _, sample := range samples {
		n = max(n, len(sample))
	}
	out := make([]Float, n)
	for _, sample := range samples {
		for i, v := range sample {
			if !v.Valid {
				continue
			}
			if out[i].Valid {
				out[i].Float64 += v.Float64
			} else {
				out[i] = v
			}
		}
	}
	return out
}

// Scale multiplies every valid value by k.
func Scale(sample []Float, k float64) []Float {
	out := make([]Float, len(sample))
	for i, v := range sample {
		if v.Valid {
			out[i] = Some(v.Float64 * k)
		}
	}
	return out
}

// Column sums the valid values.
func Column(values []Float) float64 {
	sum := 0.0
	for _, v := range values {
		if v.Valid {
			sum += v.Float64
		}
	}
	return sum
}

// Values returns the raw float64 slice with nulls as NaN.
func Values(sample []Float) []float64 {
	out := make([]float64, len(sample))
	for i, v := range sample {
		if v.Valid {
			out[i] = v.Float64
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}
