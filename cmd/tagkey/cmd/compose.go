package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Print the triacylglycerol composition table",
	Long: `Compose triacylglycerol species from replicate sample tables and print
one row per composition key with its value and replicate deviation.

Examples:
  tagkey compose --in olive.tsv --composition SPC
  tagkey compose -i r1.tsv -i r2.tsv --composition TSC --composition SSC --filter`,
	RunE: runCompose,
}

func runCompose(cmd *cobra.Command, args []string) error {
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

	calc, err := engine.Calculate(cmd.Context(), frames, settings)
	if err != nil {
		return err
	}
	comp, err := engine.Compose(cmd.Context(), calc, settings)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	var header []string
	for _, scheme := range comp.Schemes {
		header = append(header, scheme.Code(), "Value")
	}
	header = append(header, "Species", "Threshold")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range comp.Rows {
		var cols []string
		for k := range comp.Schemes {
			cols = append(cols, row.Keys[k].String(), formatCell(row.Values[k], settings, true))
		}
		cols = append(cols, fmt.Sprint(len(row.Species)), fmt.Sprint(row.Threshold))
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printStats(reg)
	return nil
}
