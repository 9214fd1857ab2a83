package properties

import (
	"math"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
)

// Hammond holds the 20 °C molar properties of a fatty acid.
type Hammond struct {
	MolarRefraction float64 // cm³/mol
	MolarVolume     float64 // cm³/mol
	RefractiveIndex float64
}

const (
	hammondK1 = 4.641
	hammondK2 = -0.30
	hammondK3 = 8.247
	hammondK4 = 16.54
	hammondK6 = 47.99
)

// HammondOf evaluates the Hammond group contributions for fa.
func HammondOf(fa core.FattyAcid) Hammond {
	c := float64(fa.Carbon)
	d := float64(fa.DoubleBonds())
	k5 := -6.87
	if fa.IsMonoenoic() {
		k5 = -6.65
	}
	rm := hammondK1*c + hammondK2*d + hammondK3
	vm := hammondK4*c + k5*d + hammondK6
	return Hammond{
		MolarRefraction: rm,
		MolarVolume:     vm,
		RefractiveIndex: math.Sqrt((vm + 2*rm) / (vm - rm)),
	}
}
