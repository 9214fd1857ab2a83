package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/TAGKey/pkg/writer/sqlite"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Run the full pipeline and write a SQLite database",
	Long: `Calculate per-position fatty acid distributions, triacylglycerol
compositions, indices and property predictions from replicate sample tables
and write them to a SQLite database.

Examples:
  # One replicate with default settings
  tagkey calculate --in olive.tsv --out olive.db

  # Three replicates, positional species and ECN compositions, Gunstone model
  tagkey calculate -i r1.tsv -i r2.tsv -i r3.tsv --out oil.db \
    --method Gunstone --composition SPC --composition NMC

  # Internal standard and a settings file
  tagkey calculate --in sample.tsv --out sample.db --standard 17:0 --settings settings.yaml`,
	RunE: runCalculate,
}

func runCalculate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	frames, err := readInputs()
	if err != nil {
		return err
	}
	engine, reg, err := newEngine()
	if err != nil {
		return err
	}

	fmt.Printf("Calculating %d replicate(s) to %s...\n", len(frames), outputFile)
	fmt.Printf("Method: %s\n", settings.Method)
	for _, scheme := range settings.Compositions {
		fmt.Printf("Composition: %s (%s)\n", scheme.Code(), scheme)
	}

	start := time.Now()
	analysis, err := engine.Analyze(cmd.Context(), frames, settings)
	if err != nil {
		return err
	}

	writer, err := sqlite.NewWriter(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output database: %w", err)
	}
	writer.Description = frames[0].Name
	writer.Settings = settings
	if err := writer.WriteAnalysis(analysis); err != nil {
		writer.Close()
		return err
	}
	if err := writer.Finalize(); err != nil {
		return err
	}

	fmt.Printf("\nCalculation complete!\n")
	fmt.Printf("Fatty acids: %d\n", len(analysis.Calculation.Rows))
	fmt.Printf("Composition rows: %d\n", len(analysis.Composition.Rows))
	fmt.Printf("Species: %d\n", len(analysis.Composition.Triacylglycerols()))
	fmt.Printf("Correlations: %d fatty acids (%s, %s)\n",
		len(analysis.Correlations.Labels), analysis.Correlations.Method, analysis.Correlations.Position)
	fmt.Printf("Time: %v\n", time.Since(start).Round(time.Millisecond))

	printStats(reg)
	return nil
}
