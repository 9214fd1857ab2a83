package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Isomerism is the geometry of a double bond.
type Isomerism int

const (
	Cis Isomerism = iota
	Trans
)

func (i Isomerism) String() string {
	if i == Trans {
		return "t"
	}
	return "c"
}

// Conjugation classifies a double bond relative to its neighbours.
type Conjugation int

const (
	MethyleneInterrupted Conjugation = iota
	Conjugated
)

// DoubleBond is a single carbon-carbon double bond counted from the carboxyl end.
type DoubleBond struct {
	Position    int
	Isomerism   Isomerism
	Conjugation Conjugation
}

// FattyAcid is a carbon chain with an ordered set of double bonds.
type FattyAcid struct {
	Carbon int
	Bonds  []DoubleBond
}

// Saturated returns a fatty acid without double bonds.
func Saturated(carbon int) FattyAcid {
	return FattyAcid{Carbon: carbon}
}

// NewFattyAcid builds a fatty acid, sorting bonds and deriving conjugation.
func NewFattyAcid(carbon int, bonds ...DoubleBond) (FattyAcid, error) {
	fa := FattyAcid{Carbon: carbon, Bonds: append([]DoubleBond(nil), bonds...)}
	if err := fa.normalize(); err != nil {
		return FattyAcid{}, err
	}
	return fa, nil
}

// MustParseFattyAcid is like ParseFattyAcid but panics on malformed input.
func MustParseFattyAcid(s string) FattyAcid {
	fa, err := ParseFattyAcid(s)
	if err != nil {
		panic(err)
	}
	return fa
}

// ParseFattyAcid parses notation like "16:0", "18:1Δ9c" or "18:2Δ9c,12c".
// A missing geometry letter means cis. "D" or "d" may stand in for Δ.
func ParseFattyAcid(s string) (FattyAcid, error) {
	input := s
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "C")

	head, tail := s, ""
	if i := strings.IndexAny(s, "ΔDd"); i >= 0 {
		head, tail = s[:i], s[i:]
		tail = strings.TrimPrefix(tail, "Δ")
		tail = strings.TrimLeft(tail, "Dd")
	}

	parts := strings.Split(head, ":")
	if len(parts) != 2 {
		return FattyAcid{}, &InvalidFattyAcidError{Input: input, Reason: "expected 'carbon:bonds'"}
	}
	carbon, err := strconv.Atoi(parts[0])
	if err != nil || carbon <= 0 {
		return FattyAcid{}, &InvalidFattyAcidError{Input: input, Reason: "carbon count must be a positive integer"}
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil || count < 0 {
		return FattyAcid{}, &InvalidFattyAcidError{Input: input, Reason: "double bond count must be a non-negative integer"}
	}

	var bonds []DoubleBond
	if tail != "" {
		for _, field := range strings.Split(tail, ",") {
			field = strings.TrimSpace(field)
			bond := DoubleBond{Isomerism: Cis}
			switch {
			case strings.HasSuffix(field, "t"):
				bond.Isomerism = Trans
				field = strings.TrimSuffix(field, "t")
			case strings.HasSuffix(field, "c"):
				field = strings.TrimSuffix(field, "c")
			}
			pos, err := strconv.Atoi(field)
			if err != nil {
				return FattyAcid{}, &InvalidFattyAcidError{Input: input, Reason: fmt.Sprintf("invalid bond position %q", field)}
			}
			bond.Position = pos
			bonds = append(bonds, bond)
		}
	}
	if len(bonds) != count {
		return FattyAcid{}, &InvalidFattyAcidError{
			Input:  input,
			Reason: fmt.Sprintf("declared %d double bonds but listed %d", count, len(bonds)),
		}
	}

	fa := FattyAcid{Carbon: carbon, Bonds: bonds}
	if err := fa.normalize(); err != nil {
		if ife, ok := err.(*InvalidFattyAcidError); ok {
			ife.Input = input
		}
		return FattyAcid{}, err
	}
	return fa, nil
}

// normalize sorts bonds, checks positions and derives conjugation.
func (fa *FattyAcid) normalize() error {
	if fa.Carbon <= 0 {
		return &InvalidFattyAcidError{Input: fa.String(), Reason: "carbon count must be positive"}
	}
	sort.SliceStable(fa.Bonds, func(i, j int) bool {
		return fa.Bonds[i].Position < fa.Bonds[j].Position
	})
	for i, bond := range fa.Bonds {
		if bond.Position < 1 || bond.Position > fa.Carbon-1 {
			return &InvalidFattyAcidError{
				Input:  fa.String(),
				Reason: fmt.Sprintf("bond position %d outside 1..%d", bond.Position, fa.Carbon-1),
			}
		}
		if i > 0 && fa.Bonds[i-1].Position == bond.Position {
			return &InvalidFattyAcidError{
				Input:  fa.String(),
				Reason: fmt.Sprintf("duplicate bond position %d", bond.Position),
			}
		}
	}
	for i := range fa.Bonds {
		fa.Bonds[i].Conjugation = MethyleneInterrupted
		if (i > 0 && fa.Bonds[i].Position-fa.Bonds[i-1].Position == 2) ||
			(i+1 < len(fa.Bonds) && fa.Bonds[i+1].Position-fa.Bonds[i].Position == 2) {
			fa.Bonds[i].Conjugation = Conjugated
		}
	}
	return nil
}

// String formats the fatty acid in Δ notation.
func (fa FattyAcid) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d", fa.Carbon, len(fa.Bonds))
	for i, bond := range fa.Bonds {
		if i == 0 {
			b.WriteString("Δ")
		} else {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%d%s", bond.Position, bond.Isomerism)
	}
	return b.String()
}

// Equal reports whether both fatty acids have the same carbon count and bond set.
func (fa FattyAcid) Equal(other FattyAcid) bool {
	if fa.Carbon != other.Carbon || len(fa.Bonds) != len(other.Bonds) {
		return false
	}
	for i := range fa.Bonds {
		if fa.Bonds[i].Position != other.Bonds[i].Position ||
			fa.Bonds[i].Isomerism != other.Bonds[i].Isomerism {
			return false
		}
	}
	return true
}

// DoubleBonds returns the number of double bonds.
func (fa FattyAcid) DoubleBonds() int {
	return len(fa.Bonds)
}

// IsSaturated reports whether the chain has no double bonds.
func (fa FattyAcid) IsSaturated() bool {
	return len(fa.Bonds) == 0
}

// IsMonoenoic reports whether the chain has exactly one double bond.
func (fa FattyAcid) IsMonoenoic() bool {
	return len(fa.Bonds) == 1
}

// IsPolyunsaturated reports whether the chain has two or more double bonds.
func (fa FattyAcid) IsPolyunsaturated() bool {
	return len(fa.Bonds) >= 2
}

// IsUnsaturated reports whether the chain has any double bond. A negative
// offset -n restricts to the ω-n family (first bond n carbons from the
// methyl end), a positive offset n to chains whose first bond is at Δn.
func (fa FattyAcid) IsUnsaturated(offset ...int) bool {
	if len(fa.Bonds) == 0 {
		return false
	}
	if len(offset) == 0 || offset[0] == 0 {
		return true
	}
	n := offset[0]
	if n < 0 {
		return fa.Carbon-fa.Bonds[len(fa.Bonds)-1].Position == -n
	}
	return fa.Bonds[0].Position == n
}

// IsTrans reports whether any double bond is trans.
func (fa FattyAcid) IsTrans() bool {
	for _, bond := range fa.Bonds {
		if bond.Isomerism == Trans {
			return true
		}
	}
	return false
}

// IsConjugated reports whether any two double bonds are conjugated.
func (fa FattyAcid) IsConjugated() bool {
	for _, bond := range fa.Bonds {
		if bond.Conjugation == Conjugated {
			return true
		}
	}
	return false
}

// EquivalentCarbonNumber is carbon - 2 * double bonds.
func (fa FattyAcid) EquivalentCarbonNumber() int {
	return fa.Carbon - 2*len(fa.Bonds)
}

// Composition returns the elemental composition of the free acid C_nH_{2n-2d}O_2.
func (fa FattyAcid) Composition() Composition {
	return Composition{C: fa.Carbon, H: 2*fa.Carbon - 2*len(fa.Bonds), O: 2}
}

// RelativeAtomicMass returns the molar mass of the free acid from standard atomic weights.
func (fa FattyAcid) RelativeAtomicMass() float64 {
	return fa.Composition().RelativeMass()
}

// Mass returns the monoisotopic mass of the free acid.
func (fa FattyAcid) Mass() float64 {
	return fa.Composition().MonoisotopicMass()
}

// IodineValue returns grams of iodine absorbed per 100 g of the acid.
func (fa FattyAcid) IodineValue() float64 {
	return 100 * 2 * WeightI * float64(len(fa.Bonds)) / fa.RelativeAtomicMass()
}

// Is reports whether the fatty acid matches the notation s exactly.
func (fa FattyAcid) Is(s string) bool {
	other, err := ParseFattyAcid(s)
	if err != nil {
		return false
	}
	return fa.Equal(other)
}
