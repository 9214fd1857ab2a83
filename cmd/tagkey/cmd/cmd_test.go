package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

func TestFormatCell(t *testing.T) {
	settings := config.Default()
	cell := frame.Aggregate([]frame.Float{frame.Some(0.40), frame.Some(0.42)}, 1)

	assert.Equal(t, "41.0 ± 1.4", formatCell(cell, settings, true))
	assert.Equal(t, "0.4 ± 0.0", formatCell(cell, settings, false))
	assert.Equal(t, "25.0", formatCell(frame.Single(frame.Some(0.25)), settings, true))
	assert.Equal(t, "-", formatCell(frame.Single(frame.Null), settings, true))

	settings.Significant = true
	settings.Precision = 3
	assert.Equal(t, "41 ± 1.41", formatCell(cell, settings, true))

	settings.Percent = false
	assert.Equal(t, "0.41 ± 0.0141", formatCell(cell, settings, true))
}

func TestSummarize(t *testing.T) {
	f := &frame.RawFrame{Pool: frame.PoolSN2, Rows: []frame.RawRow{
		{Label: "P", FattyAcid: core.Saturated(16), SN123: 0.6, Partial: 0.2},
		{Label: "O", FattyAcid: core.MustParseFattyAcid("18:1Δ9c"), SN123: 0.3, Partial: 0.7},
		{Label: "X", FattyAcid: core.Saturated(19), SN123: 0.1, Partial: 0.1},
	}}

	s := summarize(f, core.DefaultChristieTable())
	assert.Equal(t, 3, s.rows)
	assert.Equal(t, frame.PoolSN2, s.pool)
	assert.InDelta(t, 1.0, s.sn123, 1e-12)
	assert.InDelta(t, 1.0, s.partial, 1e-12)
	assert.InDelta(t, 0.7, s.saturated, 1e-12)
	assert.Equal(t, []string{"X"}, s.unresolved)
}

func TestLoadSettingsFlags(t *testing.T) {
	cmd := composeCmd
	t.Cleanup(func() {
		for _, name := range []string{"method", "composition", "adduct", "correlation", "position"} {
			cmd.Flags().Lookup(name).Changed = false
		}
		method, adduct, correlation, position = "", "", "", ""
		compositions = nil
	})

	assert.NoError(t, cmd.Flags().Set("method", "Gunstone"))
	assert.NoError(t, cmd.Flags().Set("composition", "SPC,NMC"))
	assert.NoError(t, cmd.Flags().Set("adduct", "NH4"))
	assert.NoError(t, cmd.Flags().Set("correlation", "SpearmanRank"))
	assert.NoError(t, cmd.Flags().Set("position", "sn2"))

	settings, err := loadSettings(cmd)
	assert.NoError(t, err)
	assert.Equal(t, config.Gunstone, settings.Method)
	assert.Equal(t, []core.Scheme{
		{Kind: core.KeySpecies, Symmetry: core.Positional},
		{Kind: core.KeyECN, Symmetry: core.Mono},
	}, settings.Compositions)
	assert.Equal(t, core.Adducts["NH4"], settings.Adduct)
	assert.Equal(t, config.SpearmanRank, settings.Correlation)
	assert.Equal(t, "sn2", settings.Position)

	assert.NoError(t, cmd.Flags().Set("adduct", "Cs"))
	_, err = loadSettings(cmd)
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}
