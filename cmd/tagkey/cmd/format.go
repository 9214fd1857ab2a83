package cmd

import (
	"strconv"

	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
)

// formatFloat renders v with the configured precision.
func formatFloat(v float64, settings *config.Settings) string {
	if settings.Significant {
		return strconv.FormatFloat(v, 'g', max(settings.Precision, 1), 64)
	}
	return strconv.FormatFloat(v, 'f', settings.Precision, 64)
}

// formatCell renders a cell as "mean ± deviation". Fractions are shown as
// percent when scale is set and settings.Percent is on.
func formatCell(c frame.Cell, settings *config.Settings, scale bool) string {
	if !c.Mean.Valid {
		return "-"
	}
	k := 1.0
	if scale && settings.Percent {
		k = 100
	}
	s := formatFloat(c.Mean.Float64*k, settings)
	if c.StandardDeviation.Valid {
		s += " ± " + formatFloat(c.StandardDeviation.Float64*k, settings)
	}
	return s
}
