package frame

import (
	"fmt"
	"sync"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Standard marks the internal standard and carries per-replicate peak ratios.
type Standard struct {
	Factor []Float
	Mask   bool
}

// CalcRow is one fatty acid of the calculation output.
type CalcRow struct {
	Label       string
	FattyAcid   core.FattyAcid
	SN123       Cell
	SN2         Cell
	SN13        Cell
	Enrichment  Cell
	Selectivity Cell
	Standard    Standard
	Threshold   bool
}

// CalcFrame is the output of the calculation engine.
type CalcFrame struct {
	Replicates int
	Rows       []CalcRow

	hashOnce sync.Once
	hash     uint64
}

// Schema returns the runtime schema of the frame. Array sizes are read from
// the rows, so a frame whose samples do not match Replicates fails validation
// against CalcSchema. A column whose rows disagree on size is a list.
func (f *CalcFrame) Schema() Schema {
	cell := func(get func(*CalcRow) Cell) DataType {
		return cellOf(f.samples(func(r *CalcRow) []Float { return get(r).Sample }))
	}
	return Schema{
		{Name: "Label", Type: String},
		{Name: "FattyAcid", Type: FattyAcidType},
		{Name: "sn123", Type: cell(func(r *CalcRow) Cell { return r.SN123 })},
		{Name: "sn2", Type: cell(func(r *CalcRow) Cell { return r.SN2 })},
		{Name: "sn13", Type: cell(func(r *CalcRow) Cell { return r.SN13 })},
		{Name: "Factors", Type: StructOf(
			Field{Name: "Enrichment", Type: cell(func(r *CalcRow) Cell { return r.Enrichment })},
			Field{Name: "Selectivity", Type: cell(func(r *CalcRow) Cell { return r.Selectivity })},
		)},
		{Name: "Standard", Type: StructOf(
			Field{Name: "Factor", Type: f.samples(func(r *CalcRow) []Float { return r.Standard.Factor })},
			Field{Name: "Mask", Type: Bool},
		)},
		{Name: "Threshold", Type: Bool},
	}
}

// samples returns the array type shared by one column of every row. An empty
// frame falls back to Replicates.
func (f *CalcFrame) samples(get func(*CalcRow) []Float) DataType {
	if len(f.Rows) == 0 {
		return ArrayOf(Float64, f.Replicates)
	}
	n := len(get(&f.Rows[0]))
	for i := 1; i < len(f.Rows); i++ {
		if len(get(&f.Rows[i])) != n {
			return ListOf(Float64)
		}
	}
	return ArrayOf(Float64, n)
}

// Position selects one of the three position pools of a row.
type Position int

const (
	SN123 Position = iota
	SN13
	SN2
)

// Positions lists the position pools in output order.
var Positions = []Position{SN123, SN13, SN2}

func (p Position) String() string {
	switch p {
	case SN13:
		return "sn13"
	case SN2:
		return "sn2"
	default:
		return "sn123"
	}
}

// ParsePosition parses the names printed by Position.String.
func ParsePosition(s string) (Position, error) {
	for _, p := range Positions {
		if p.String() == s {
			return p, nil
		}
	}
	return SN123, fmt.Errorf("unknown position %q", s)
}

// Get returns the row's cell for the position.
func (r *CalcRow) Get(p Position) Cell {
	switch p {
	case SN13:
		return r.SN13
	case SN2:
		return r.SN2
	default:
		return r.SN123
	}
}

// Column returns replicate i of position p for every row.
func (f *CalcFrame) Column(p Position, i int) []Float {
	out := make([]Float, len(f.Rows))
	for j := range f.Rows {
		sample := f.Rows[j].Get(p).Sample
		if i < len(sample) {
			out[j] = sample[i]
		}
	}
	return out
}

// FattyAcids returns the fatty acid of every row.
func (f *CalcFrame) FattyAcids() []core.FattyAcid {
	out := make([]core.FattyAcid, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row.FattyAcid
	}
	return out
}

// Hash returns the content hash of the frame. It is computed once.
func (f *CalcFrame) Hash() uint64 {
	f.hashOnce.Do(func() {
		h := NewHasher()
		h.Schema(f.Schema())
		for _, row := range f.Rows {
			h.String(row.Label)
			h.FattyAcid(row.FattyAcid)
			h.Cell(row.SN123)
			h.Cell(row.SN2)
			h.Cell(row.SN13)
			h.Cell(row.Enrichment)
			h.Cell(row.Selectivity)
			h.Int(len(row.Standard.Factor))
			for _, v := range row.Standard.Factor {
				h.Nullable(v)
			}
			h.Bool(row.Standard.Mask)
			h.Bool(row.Threshold)
		}
		f.hash = h.Sum64()
	})
	return f.hash
}
