package core

import "fmt"

// Positions on the glycerol backbone.
const (
	SN1 = iota
	SN2
	SN3
)

// Triacylglycerol holds the fatty acids esterified at sn-1, sn-2 and sn-3.
type Triacylglycerol [3]FattyAcid

// String formats the triacylglycerol as sn-1/sn-2/sn-3 codes.
func (t Triacylglycerol) String() string {
	return fmt.Sprintf("%s/%s/%s", t[SN1], t[SN2], t[SN3])
}

// Mass returns the monoisotopic mass of the neutral ester plus an adduct shift.
func (t Triacylglycerol) Mass(adduct float64) float64 {
	return TriacylglycerolComposition(t).MonoisotopicMass() + adduct
}

// EquivalentCarbonNumber sums the chain equivalent carbon numbers.
func (t Triacylglycerol) EquivalentCarbonNumber() int {
	return t[SN1].EquivalentCarbonNumber() + t[SN2].EquivalentCarbonNumber() + t[SN3].EquivalentCarbonNumber()
}

// Unsaturation sums the chain double bonds.
func (t Triacylglycerol) Unsaturation() int {
	return t[SN1].DoubleBonds() + t[SN2].DoubleBonds() + t[SN3].DoubleBonds()
}

// UnsaturatedPositions counts positions carrying an unsaturated chain.
func (t Triacylglycerol) UnsaturatedPositions() int {
	n := 0
	for _, fa := range t {
		if fa.IsUnsaturated() {
			n++
		}
	}
	return n
}

// Carbon sums the chain carbon counts.
func (t Triacylglycerol) Carbon() int {
	return t[SN1].Carbon + t[SN2].Carbon + t[SN3].Carbon
}
