package calculation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

func correlationFrame() *frame.CalcFrame {
	row := func(label string, threshold bool, sn2 ...frame.Float) frame.CalcRow {
		return frame.CalcRow{
			Label:     label,
			FattyAcid: core.MustParseFattyAcid(label),
			SN2:       frame.Aggregate(sn2, 1),
			Threshold: threshold,
		}
	}
	v := frame.Some
	return &frame.CalcFrame{Replicates: 3, Rows: []frame.CalcRow{
		row("16:0", true, v(0.5), v(0.4), v(0.3)),
		row("18:1Δ9c", true, v(0.3), v(0.4), v(0.5)),
		row("18:0", false, v(0.25), v(0.25), v(0.25)),
		row("18:2Δ9c,12c", true, v(0.9), v(0.2), v(0.1)),
		row("18:3Δ9c,12c,15c", true, v(0.1), v(0.2), frame.Null),
	}}
}

func TestCorrelate(t *testing.T) {
	settings := config.Default()
	settings.Position = "sn2"

	out, err := Correlate(correlationFrame(), settings)
	require.NoError(t, err)
	assert.Equal(t, config.Pearson, out.Method)
	assert.Equal(t, frame.SN2, out.Position)
	assert.Equal(t, []string{"16:0", "18:1Δ9c", "18:0", "18:2Δ9c,12c", "18:3Δ9c,12c,15c"}, out.Labels)
	require.Len(t, out.Values, 5)

	for i := range out.Values {
		for j := range out.Values {
			assert.Equal(t, out.Values[i][j], out.Values[j][i], "%d,%d", i, j)
		}
	}
	assert.InDelta(t, 1, out.Values[0][0].Float64, tolerance)
	assert.InDelta(t, -1, out.Values[0][1].Float64, tolerance)
	assert.False(t, out.Values[0][2].Valid, "constant row has no correlation")
	assert.False(t, out.Values[2][2].Valid)
	assert.InDelta(t, 0.08/math.Sqrt(0.02*0.38), out.Values[0][3].Float64, tolerance)
	// only the first two replicates are shared
	assert.InDelta(t, -1, out.Values[0][4].Float64, tolerance)

	settings.Correlation = config.SpearmanRank
	out, err = Correlate(correlationFrame(), settings)
	require.NoError(t, err)
	assert.InDelta(t, 1, out.Values[0][3].Float64, tolerance)
	assert.InDelta(t, -1, out.Values[1][3].Float64, tolerance)
}

func TestCorrelateThreshold(t *testing.T) {
	settings := config.Default()
	settings.Position = "sn2"

	settings.Threshold.Filter = true
	out, err := Correlate(correlationFrame(), settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"16:0", "18:1Δ9c", "18:2Δ9c,12c", "18:3Δ9c,12c,15c"}, out.Labels)
	require.Len(t, out.Values, 4)
	assert.Len(t, out.Values[0], 4)

	settings.Threshold.Filter = false
	settings.Threshold.Sort = true
	out, err = Correlate(correlationFrame(), settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"16:0", "18:1Δ9c", "18:2Δ9c,12c", "18:3Δ9c,12c,15c", "18:0"}, out.Labels)
	assert.False(t, out.Values[4][0].Valid)
}

func TestCorrelateRejectsPosition(t *testing.T) {
	settings := config.Default()
	settings.Position = "sn4"
	_, err := Correlate(correlationFrame(), settings)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Settings.Position", verr.Field)
}

func TestChaddock(t *testing.T) {
	tests := []struct {
		r    float64
		want Strength
	}{
		{0.1, VeryWeak},
		{-0.35, Weak},
		{0.5, Moderate},
		{0.89, Strong},
		{0.9, VeryStrong},
		{-1, VeryStrong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Chaddock(tt.r), "r=%v", tt.r)
	}

	assert.Equal(t, "", Interpret(frame.Null))
	assert.Equal(t, "none", Interpret(frame.Some(0)))
	assert.Equal(t, "strong negative", Interpret(frame.Some(-0.75)))
	assert.Equal(t, "very weak positive", Interpret(frame.Some(0.2)))
}
