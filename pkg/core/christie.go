package core

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// FactorTable stores per-fatty-acid GLC detector response factors
type FactorTable struct {
	factors map[string]float64 // canonical fatty acid code -> factor
}

// NewFactorTable creates an empty factor table
func NewFactorTable() *FactorTable {
	return &FactorTable{
		factors: make(map[string]float64),
	}
}

// LoadFromTSV loads factors from a tab-separated file (format: FattyAcid<TAB>Factor).
// Entries override existing ones.
func (t *FactorTable) LoadFromTSV(r io.Reader) error {
	scanner := bufio.NewScanner(r)

	// Skip header line
	scanner.Scan()

	lineNum := 1
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, "\t")
		if len(parts) < 2 {
			return fmt.Errorf("line %d: invalid format, expected 2 tab-separated fields", lineNum)
		}

		fa, err := ParseFattyAcid(parts[0])
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}

		factorStr := strings.TrimSpace(parts[1])
		factor, err := strconv.ParseFloat(factorStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid factor value '%s': %w", lineNum, factorStr, err)
		}

		t.Add(fa, factor)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading factor table: %w", err)
	}

	return nil
}

// Get returns the factor for a fatty acid
func (t *FactorTable) Get(fa FattyAcid) (float64, bool) {
	factor, ok := t.factors[fa.String()]
	return factor, ok
}

// Add adds or updates a factor
func (t *FactorTable) Add(fa FattyAcid, factor float64) {
	t.factors[fa.String()] = factor
}

// Codes returns the stored fatty acid codes in sorted order.
func (t *FactorTable) Codes() []string {
	return slices.Sorted(maps.Keys(t.factors))
}

// Lookup returns the factor stored under a canonical code.
func (t *FactorTable) Lookup(code string) (float64, bool) {
	factor, ok := t.factors[code]
	return factor, ok
}

// Len returns the number of entries
func (t *FactorTable) Len() int {
	return len(t.factors)
}

// DefaultChristieTable returns theoretical FID response factors relative to 16:0
// for methyl esters (Christie, Lipid Analysis).
func DefaultChristieTable() *FactorTable {
	t := NewFactorTable()

	for _, entry := range []struct {
		code   string
		factor float64
	}{
		{"4:0", 1.5107},
		{"6:0", 1.2837},
		{"8:0", 1.1702},
		{"10:0", 1.1021},
		{"12:0", 1.0567},
		{"14:0", 1.0243},
		{"14:1Δ9c", 1.0158},
		{"15:0", 1.0113},
		{"16:0", 1.0000},
		{"16:1Δ9c", 0.9925},
		{"17:0", 0.9900},
		{"17:1Δ10c", 0.9830},
		{"18:0", 0.9811},
		{"18:1Δ9c", 0.9745},
		{"18:1Δ9t", 0.9745},
		{"18:1Δ11c", 0.9745},
		{"18:2Δ9c,12c", 0.9678},
		{"18:3Δ6c,9c,12c", 0.9612},
		{"18:3Δ9c,12c,15c", 0.9612},
		{"20:0", 0.9660},
		{"20:1Δ11c", 0.9600},
		{"20:2Δ11c,14c", 0.9540},
		{"20:3Δ8c,11c,14c", 0.9481},
		{"20:4Δ5c,8c,11c,14c", 0.9421},
		{"20:5Δ5c,8c,11c,14c,17c", 0.9361},
		{"22:0", 0.9536},
		{"22:1Δ13c", 0.9481},
		{"22:6Δ4c,7c,10c,13c,16c,19c", 0.9210},
		{"24:0", 0.9433},
		{"24:1Δ15c", 0.9383},
	} {
		t.Add(MustParseFattyAcid(entry.code), entry.factor)
	}

	return t
}
