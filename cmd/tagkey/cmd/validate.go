package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/TAGKey/pkg/calculation"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
	"github.com/ChrisMcGann/TAGKey/pkg/reader/tsv"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate sample tables",
	Long: `Validate that sample tables are properly formatted: the header names the
required columns, every fatty acid parses, labels are unique and values are
non-negative. Files sharing a run must also agree on the partial pool.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var frames []*frame.RawFrame
	failed := 0
	for _, path := range args {
		f, err := tsv.ReadFile(path)
		if err == nil {
			err = frame.Validate(frame.RawSchema(f.Pool), f.Schema())
		}
		if err == nil {
			err = f.Validate()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Printf("OK   %s (%d rows, pool %s)\n", path, len(f.Rows), f.Pool)
		frames = append(frames, f)
	}

	if failed == 0 && len(frames) > 1 {
		if err := calculation.Check(frames); err != nil {
			return fmt.Errorf("replicates are incompatible: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(args))
	}
	return nil
}
