package indices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

const tolerance = 1e-9

func sample(values ...float64) []frame.Float {
	out := make([]frame.Float, len(values))
	for i, v := range values {
		out[i] = frame.Some(v)
	}
	return out
}

// calcFrame puts the same values in every position.
func calcFrame(fas []string, replicates ...[]float64) *frame.CalcFrame {
	f := &frame.CalcFrame{Replicates: len(replicates)}
	for j, code := range fas {
		values := make([]float64, len(replicates))
		for i, r := range replicates {
			values[i] = r[j]
		}
		cell := frame.Aggregate(sample(values...), 1)
		f.Rows = append(f.Rows, frame.CalcRow{
			Label:     code,
			FattyAcid: core.MustParseFattyAcid(code),
			SN123:     cell,
			SN13:      cell,
			SN2:       cell,
		})
	}
	return f
}

func find(t *testing.T, list []Index, name string) Index {
	t.Helper()
	for _, index := range list {
		if index.Name == name {
			return index
		}
	}
	t.Fatalf("index %s not found", name)
	return Index{}
}

var oil = []string{"16:0", "18:1Δ9c", "18:2Δ9c,12c", "18:3Δ9c,12c,15c"}

func TestNames(t *testing.T) {
	names := Names()
	require.Len(t, names, 19)
	assert.Equal(t, Saturated, names[0])
	assert.Equal(t, UnsaturationIndex, names[18])
	assert.Len(t, BiodieselNames(), 6)
}

func TestIndices(t *testing.T) {
	out := Compute(calcFrame(oil, []float64{0.2, 0.3, 0.4, 0.1}), 1)
	require.Len(t, out.Indices, 19)

	tests := []struct {
		name string
		want float64
	}{
		{Saturated, 0.2},
		{Monounsaturated, 0.3},
		{Polyunsaturated, 0.5},
		{Trans, 0},
		{Unsaturated, 0.8},
		{Unsaturated3, 0.1},
		{Unsaturated6, 0.4},
		{Unsaturated9, 0.3},
		{UnsaturatedDelta9, 0.8},
		{EicosapentaenoicAndDocosahexaenoic, 0},
		{FishLipidQuality, 0},
		{HealthPromotingIndex, 4},
		{HypocholesterolemicToHypercholesterolemic, 4},
		{IndexOfAtherogenicity, 0.25},
		{IndexOfThrombogenicity, 0.2 / 0.9},
		{LinoleicToAlphaLinolenic, 4},
		{Polyunsaturated6ToPolyunsaturated3, 4},
		{PolyunsaturatedToSaturated, 2.5},
		{UnsaturationIndex, 1.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index := find(t, out.Indices, tt.name)
			for _, p := range frame.Positions {
				cell := index.Get(p)
				require.True(t, cell.Mean.Valid, "position %s", p)
				assert.InDelta(t, tt.want, cell.Mean.Float64, tolerance, "position %s", p)
				assert.Len(t, cell.Sample, 1)
				assert.False(t, cell.StandardDeviation.Valid)
			}
		})
	}
}

func TestZeroDenominatorIsNull(t *testing.T) {
	out := Compute(calcFrame([]string{"18:1Δ9c", "18:2Δ9c,12c"}, []float64{0.5, 0.5}), 1)
	for _, name := range []string{
		HealthPromotingIndex,
		HypocholesterolemicToHypercholesterolemic,
		LinoleicToAlphaLinolenic,
		PolyunsaturatedToSaturated,
		Polyunsaturated6ToPolyunsaturated3,
	} {
		assert.False(t, find(t, out.Indices, name).Get(frame.SN123).Mean.Valid, name)
	}
	assert.InDelta(t, 0, find(t, out.Indices, IndexOfAtherogenicity).Get(frame.SN2).Mean.Float64, tolerance)
}

func TestReplicates(t *testing.T) {
	out := Compute(calcFrame(oil,
		[]float64{0.2, 0.3, 0.4, 0.1},
		[]float64{0.4, 0.2, 0.3, 0.1},
	), 1)
	assert.Equal(t, 2, out.Replicates)

	sat := find(t, out.Indices, Saturated).Get(frame.SN13)
	require.Len(t, sat.Sample, 2)
	assert.InDelta(t, 0.2, sat.Sample[0].Float64, tolerance)
	assert.InDelta(t, 0.4, sat.Sample[1].Float64, tolerance)
	assert.InDelta(t, 0.3, sat.Mean.Float64, tolerance)
	assert.InDelta(t, 0.141421356, sat.StandardDeviation.Float64, 1e-8)

	ia := find(t, out.Indices, IndexOfAtherogenicity).Get(frame.SN123)
	assert.InDelta(t, (0.25+0.4/0.6)/2, ia.Mean.Float64, tolerance)
}

func TestFishLipidQuality(t *testing.T) {
	out := Compute(calcFrame(
		[]string{"16:0", "20:5Δ5c,8c,11c,14c,17c", "22:6Δ4c,7c,10c,13c,16c,19c"},
		[]float64{0.5, 0.2, 0.3},
	), 0)
	assert.InDelta(t, 0.5, find(t, out.Indices, EicosapentaenoicAndDocosahexaenoic).Get(frame.SN2).Mean.Float64, tolerance)
	assert.InDelta(t, 50, find(t, out.Indices, FishLipidQuality).Get(frame.SN2).Mean.Float64, tolerance)
	assert.InDelta(t, 0.5, find(t, out.Indices, Unsaturated3).Get(frame.SN2).Mean.Float64, tolerance)
	assert.InDelta(t, 0.2*5+0.3*6, find(t, out.Indices, UnsaturationIndex).Get(frame.SN2).Mean.Float64, tolerance)
}

func TestBiodiesel(t *testing.T) {
	out := Compute(calcFrame(oil, []float64{0.2, 0.3, 0.4, 0.1}), 1)
	require.Len(t, out.Biodiesel, 6)

	value := func(name string) float64 {
		cell := find(t, out.Biodiesel, name).Get(frame.SN123)
		require.True(t, cell.Mean.Valid, name)
		return cell.Mean.Float64
	}

	assert.InDelta(t, 130, value(DegreeOfUnsaturation), tolerance)
	assert.InDelta(t, 2, value(LongChainSaturatedFactor), tolerance)
	assert.InDelta(t, 3.1417*2-16.477, value(ColdFilterPluggingPoint), tolerance)
	assert.InDelta(t, 117.9295/50+2.5905, value(OxidationStability), tolerance)

	fas := []core.FattyAcid{
		core.MustParseFattyAcid("16:0"),
		core.MustParseFattyAcid("18:1Δ9c"),
		core.MustParseFattyAcid("18:2Δ9c,12c"),
		core.MustParseFattyAcid("18:3Δ9c,12c,15c"),
	}
	iv := 0.3*fas[1].IodineValue() + 0.4*fas[2].IodineValue() + 0.1*fas[3].IodineValue()
	assert.InDelta(t, iv, value(IodineValue), 1e-9)

	sv := 0.0
	for i, w := range []float64{0.2, 0.3, 0.4, 0.1} {
		sv += w * 56000 / fas[i].RelativeAtomicMass()
	}
	assert.InDelta(t, 46.3+5458/sv-0.225*iv, value(CetaneNumber), 1e-9)
	assert.Greater(t, value(IodineValue), 100.0)

	saturatedOnly := Compute(calcFrame([]string{"16:0"}, []float64{1}), 1)
	assert.False(t, find(t, saturatedOnly.Biodiesel, OxidationStability).Get(frame.SN123).Mean.Valid)
}
