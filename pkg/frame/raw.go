// Package frame provides the typed tables exchanged between pipeline stages:
// raw sample frames, calculation frames and composition frames, together
// with their schemas and content hashes.
package frame

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Pool identifies the partial pool measured next to sn-1,2,3.
type Pool int

const (
	PoolSN2    Pool = iota // sn-2 monoacylglycerols
	PoolSN13               // sn-1,3 diacylglycerols
	PoolSN1223             // sn-1,2(2,3) diacylglycerols
)

func (p Pool) String() string {
	switch p {
	case PoolSN13:
		return "sn13"
	case PoolSN1223:
		return "sn12_23"
	default:
		return "sn2"
	}
}

// ParsePool maps a column name to its pool.
func ParsePool(s string) (Pool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sn2", "sn-2":
		return PoolSN2, nil
	case "sn13", "sn-1,3":
		return PoolSN13, nil
	case "sn12_23", "sn1223", "sn-1,2(2,3)":
		return PoolSN1223, nil
	}
	return 0, fmt.Errorf("unknown pool %q", s)
}

// RawRow is a single fatty acid measured in one sample.
type RawRow struct {
	Label     string
	FattyAcid core.FattyAcid
	SN123     float64
	Partial   float64 // value of the frame's partial pool
	Filter    *bool   // optional threshold override
}

// RawFrame represents one sample or replicate as submitted by the user.
type RawFrame struct {
	Name string
	Pool Pool
	Rows []RawRow

	// Internal tracking
	SourceFile string

	hashOnce sync.Once
	hash     uint64
}

// HasFilter reports whether any row carries a Filter value.
func (f *RawFrame) HasFilter() bool {
	for _, row := range f.Rows {
		if row.Filter != nil {
			return true
		}
	}
	return false
}

// Schema returns the runtime schema of the frame.
func (f *RawFrame) Schema() Schema {
	schema := Schema{
		{Name: "Label", Type: String},
		{Name: "FattyAcid", Type: FattyAcidType},
		{Name: "sn123", Type: Float64},
		{Name: f.Pool.String(), Type: Float64},
	}
	if f.HasFilter() {
		schema = append(schema, Field{Name: "Filter", Type: Bool})
	}
	return schema
}

// Validate checks that a frame meets all requirements for processing.
func (f *RawFrame) Validate() error {
	var errs []string

	if len(f.Rows) == 0 {
		errs = append(errs, "at least one row is required")
	}

	labels := make(map[string]int, len(f.Rows))
	for i, row := range f.Rows {
		if row.Label == "" {
			errs = append(errs, fmt.Sprintf("row %d has empty label", i))
		} else if j, ok := labels[row.Label]; ok {
			errs = append(errs, fmt.Sprintf("row %d duplicates label %q of row %d", i, row.Label, j))
		} else {
			labels[row.Label] = i
		}
		if row.FattyAcid.Carbon <= 0 {
			errs = append(errs, fmt.Sprintf("row %d has no fatty acid", i))
		}
		if math.IsNaN(row.SN123) || math.IsInf(row.SN123, 0) {
			errs = append(errs, fmt.Sprintf("row %d has invalid sn123", i))
		} else if row.SN123 < 0 {
			errs = append(errs, fmt.Sprintf("row %d sn123 must be non-negative", i))
		}
		if math.IsNaN(row.Partial) || math.IsInf(row.Partial, 0) {
			errs = append(errs, fmt.Sprintf("row %d has invalid %s", i, f.Pool))
		} else if row.Partial < 0 {
			errs = append(errs, fmt.Sprintf("row %d %s must be non-negative", i, f.Pool))
		}
	}

	if len(errs) > 0 {
		return &core.ValidationError{
			Field:   "RawFrame " + f.Name,
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Hash returns the content hash of the frame. It is computed once.
func (f *RawFrame) Hash() uint64 {
	f.hashOnce.Do(func() {
		h := NewHasher()
		h.Schema(f.Schema())
		filter := f.HasFilter()
		for _, row := range f.Rows {
			h.String(row.Label)
			h.FattyAcid(row.FattyAcid)
			h.Float(row.SN123)
			h.Float(row.Partial)
			if filter {
				h.OptionalBool(row.Filter)
			}
		}
		f.hash = h.Sum64()
	})
	return f.hash
}
