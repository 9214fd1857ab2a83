package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
	"github.com/ChrisMcGann/TAGKey/pkg/reader/tsv"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file...]",
	Short: "Summarize sample tables",
	Long: `Print summary statistics about sample tables including row counts, column
sums per pool, the saturated share of sn-1,2,3 and fatty acids without a
Christie response factor.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSummarize,
}

// summary holds the statistics printed for one sample table.
type summary struct {
	rows       int
	pool       frame.Pool
	sn123      float64
	partial    float64
	saturated  float64
	unresolved []string
}

func summarize(f *frame.RawFrame, table *core.FactorTable) summary {
	s := summary{rows: len(f.Rows), pool: f.Pool}
	for _, row := range f.Rows {
		s.sn123 += row.SN123
		s.partial += row.Partial
		if row.FattyAcid.IsSaturated() {
			s.saturated += row.SN123
		}
		if _, ok := table.Get(row.FattyAcid); !ok {
			s.unresolved = append(s.unresolved, row.Label)
		}
	}
	return s
}

func runSummarize(cmd *cobra.Command, args []string) error {
	table, err := loadChristie()
	if err != nil {
		return err
	}
	for _, path := range args {
		f, err := tsv.ReadFile(path)
		if err != nil {
			return err
		}
		s := summarize(f, table)

		fmt.Printf("%s\n", path)
		fmt.Printf("  Rows: %d\n", s.rows)
		fmt.Printf("  Partial pool: %s\n", s.pool)
		fmt.Printf("  Sum sn123: %.4g\n", s.sn123)
		fmt.Printf("  Sum %s: %.4g\n", s.pool, s.partial)
		if s.sn123 > 0 {
			fmt.Printf("  Saturated share of sn123: %.1f%%\n", 100*s.saturated/s.sn123)
		}
		if len(s.unresolved) > 0 {
			fmt.Printf("  Without Christie factor: %s\n", strings.Join(s.unresolved, ", "))
		}
	}
	return nil
}
