// Package distance compares the replicate columns of a calculation frame as
// probability distributions, points and series.
package distance

import (
	"cmp"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// Metric names a distance or correlation between two columns.
type Metric string

const (
	// Between probability distributions
	Hellinger     Metric = "HellingerDistance"
	JensenShannon Metric = "JensenShannonDistance"
	Bhattacharyya Metric = "BhattacharyyaDistance"

	// Between points
	Chebyshev Metric = "ChebyshevDistance"
	Euclidean Metric = "EuclideanDistance"
	Manhattan Metric = "ManhattanDistance"

	// Between series
	Cosine  Metric = "CosineDistance"
	Jaccard Metric = "JaccardDistance"
	Overlap Metric = "OverlapDistance"

	// Correlations
	Pearson      Metric = "PearsonCorrelation"
	SpearmanRank Metric = "SpearmanRankCorrelation"
)

// Metrics lists every metric in output order.
var Metrics = []Metric{
	Hellinger, JensenShannon, Bhattacharyya,
	Chebyshev, Euclidean, Manhattan,
	Cosine, Jaccard, Overlap,
	Pearson, SpearmanRank,
}

// Measure evaluates m between a and b, which must have equal length.
// Undefined results, such as logarithms of negative values, are NaN.
func Measure(m Metric, a, b []float64) float64 {
	switch m {
	case Hellinger:
		s := 0.0
		for i := range a {
			d := math.Sqrt(a[i]) - math.Sqrt(b[i])
			s += d * d
		}
		return math.Sqrt(s) / math.Sqrt2
	case JensenShannon:
		return math.Sqrt(stat.JensenShannon(normalized(a), normalized(b)) / math.Ln2)
	case Bhattacharyya:
		return stat.Bhattacharyya(a, b)
	case Chebyshev:
		return floats.Distance(a, b, math.Inf(1))
	case Euclidean:
		return floats.Distance(a, b, 2)
	case Manhattan:
		return floats.Distance(a, b, 1)
	case Cosine:
		return 1 - floats.Dot(a, b)/(floats.Norm(a, 2)*floats.Norm(b, 2))
	case Jaccard:
		return 1 - pairwise(a, b, math.Min)/pairwise(a, b, math.Max)
	case Overlap:
		return 1 - pairwise(a, b, math.Min)/math.Min(floats.Sum(a), floats.Sum(b))
	case Pearson:
		return stat.Correlation(a, b, nil)
	case SpearmanRank:
		return stat.Correlation(rank(a), rank(b), nil)
	}
	return math.NaN()
}

// normalized scales v to sum to one.
func normalized(v []float64) []float64 {
	out := slices.Clone(v)
	floats.Scale(1/floats.Sum(v), out)
	return out
}

// pairwise sums f over paired elements.
func pairwise(a, b []float64, f func(x, y float64) float64) float64 {
	s := 0.0
	for i := range a {
		s += f(a[i], b[i])
	}
	return s
}

// rank returns 1-based ranks; ties share their average rank.
func rank(v []float64) []float64 {
	order := make([]int, len(v))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int { return cmp.Compare(v[i], v[j]) })

	ranks := make([]float64, len(v))
	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && v[order[j+1]] == v[order[i]] {
			j++
		}
		r := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = r
		}
		i = j + 1
	}
	return ranks
}

// Matrix holds one metric between every pair of replicate columns.
type Matrix struct {
	Metric Metric
	Values [][]frame.Float // Values[i][j] compares replicate i with replicate j
}

// Frame holds every metric over one position column.
type Frame struct {
	Position   frame.Position
	Replicates int
	Matrices   []Matrix
}

// Compute compares every pair of replicate columns of position p. Null values
// count as zero.
func Compute(calc *frame.CalcFrame, p frame.Position) *Frame {
	columns := make([][]float64, calc.Replicates)
	for i := range columns {
		column := calc.Column(p, i)
		columns[i] = make([]float64, len(column))
		for j, v := range column {
			if v.Valid {
				columns[i][j] = v.Float64
			}
		}
	}

	out := &Frame{Position: p, Replicates: calc.Replicates}
	for _, m := range Metrics {
		matrix := Matrix{Metric: m, Values: make([][]frame.Float, len(columns))}
		for i, a := range columns {
			matrix.Values[i] = make([]frame.Float, len(columns))
			for j, b := range columns {
				matrix.Values[i][j] = frame.Some(Measure(m, a, b))
			}
		}
		out.Matrices = append(out.Matrices, matrix)
	}
	return out
}

// Get returns the matrix of m.
func (f *Frame) Get(m Metric) (Matrix, bool) {
	for _, matrix := range f.Matrices {
		if matrix.Metric == m {
			return matrix, true
		}
	}
	return Matrix{}, false
}
