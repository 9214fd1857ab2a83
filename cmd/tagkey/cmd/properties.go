package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Print physical property predictions",
	Long: `Predict Hammond molar refraction, molar volume and refractive index, and
Rabelo viscosity for every fatty acid, and Rabelo viscosity with Wesdorp
melting enthalpy and melting point for every triacylglycerol species.

Examples:
  tagkey properties --in olive.tsv
  tagkey properties --in olive.tsv --temperature 333.15 --polymorph beta-prime`,
	RunE: runProperties,
}

func runProperties(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	calc, err := engine.Calculate(ctx, frames, settings)
	if err != nil {
		return err
	}
	comp, err := engine.Compose(ctx, calc, settings)
	if err != nil {
		return err
	}
	props, err := engine.Properties(ctx, calc, comp, settings)
	if err != nil {
		return err
	}

	f := func(v float64) string { return formatFloat(v, settings) }

	fmt.Printf("Fatty acids at %s K\n", f(props.Temperature))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Label\tFattyAcid\tRm\tVm\tn20\tViscosity")
	for _, fa := range props.FattyAcids {
		fmt.Fprintln(tw, strings.Join([]string{
			fa.Label,
			fa.FattyAcid.String(),
			f(fa.Hammond.MolarRefraction),
			f(fa.Hammond.MolarVolume),
			strconv.FormatFloat(fa.Hammond.RefractiveIndex, 'f', 4, 64),
			f(fa.Viscosity),
		}, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nTriacylglycerols (%s)\n", props.Polymorph)
	tw = tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Species\tTriacylglycerol\tViscosity\tΔH\tMeltingPoint")
	for _, tag := range props.Triacylglycerols {
		fmt.Fprintln(tw, strings.Join([]string{
			strings.Join(tag.Label[:], "/"),
			tag.Triacylglycerol.String(),
			f(tag.Viscosity),
			f(tag.Melting.Enthalpy),
			f(tag.Melting.Temperature),
		}, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	printStats(reg)
	return nil
}
