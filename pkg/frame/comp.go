package frame

import (
	"cmp"
	"strconv"
	"strings"
	"sync"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Key is a composition key. Label keys carry Labels, numeric keys carry
// Numbers; both may be per position or a single aggregate.
type Key struct {
	Labels  []string
	Numbers []float64
}

// String renders the key, e.g. "16:0;18:1Δ9c;16:0" or "50;2;52".
func (k Key) String() string {
	parts := make([]string, 0, len(k.Labels)+len(k.Numbers))
	parts = append(parts, k.Labels...)
	for _, n := range k.Numbers {
		parts = append(parts, strconv.FormatFloat(n, 'f', -1, 64))
	}
	return strings.Join(parts, ";")
}

// Compare orders numeric parts first, then labels lexicographically.
func (k Key) Compare(other Key) int {
	for i := 0; i < len(k.Numbers) && i < len(other.Numbers); i++ {
		if c := cmp.Compare(k.Numbers[i], other.Numbers[i]); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(len(k.Numbers), len(other.Numbers)); c != 0 {
		return c
	}
	for i := 0; i < len(k.Labels) && i < len(other.Labels); i++ {
		if c := strings.Compare(k.Labels[i], other.Labels[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(k.Labels), len(other.Labels))
}

// CompareKeys orders key tuples lexicographically.
func CompareKeys(a, b []Key) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := a[i].Compare(b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Species is one enumerated triacylglycerol with its value.
type Species struct {
	Label           [3]string
	Triacylglycerol core.Triacylglycerol
	Value           Cell
	Threshold       bool
}

// CompRow is one equivalence class under the full key tuple.
type CompRow struct {
	Threshold bool
	Keys      []Key
	Values    []Cell // Values[k] aggregates the class of Keys[0..k]
	Species   []Species
}

// CompFrame is the output of the composition engine.
type CompFrame struct {
	Schemes    []core.Scheme
	Replicates int
	Rows       []CompRow

	hashOnce sync.Once
	hash     uint64
}

// Schema returns the runtime schema of the frame.
func (f *CompFrame) Schema() Schema {
	return CompSchema(len(f.Schemes), f.Replicates)
}

// Hash returns the content hash of the frame. It is computed once.
func (f *CompFrame) Hash() uint64 {
	f.hashOnce.Do(func() {
		h := NewHasher()
		h.Schema(f.Schema())
		for _, s := range f.Schemes {
			h.String(s.Code())
		}
		for _, row := range f.Rows {
			h.Bool(row.Threshold)
			for _, key := range row.Keys {
				h.Key(key)
			}
			for _, v := range row.Values {
				h.Cell(v)
			}
			h.Int(len(row.Species))
			for _, sp := range row.Species {
				h.Strings(sp.Label[:])
				for _, fa := range sp.Triacylglycerol {
					h.FattyAcid(fa)
				}
				h.Cell(sp.Value)
				h.Bool(sp.Threshold)
			}
		}
		f.hash = h.Sum64()
	})
	return f.hash
}

// Triacylglycerols returns the species of every row in order.
func (f *CompFrame) Triacylglycerols() []Species {
	var out []Species
	for _, row := range f.Rows {
		out = append(out, row.Species...)
	}
	return out
}
