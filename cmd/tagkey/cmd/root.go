// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/TAGKey/pkg/cache"
	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
	"github.com/ChrisMcGann/TAGKey/pkg/pipeline"
	"github.com/ChrisMcGann/TAGKey/pkg/reader/tsv"
)

var (
	// Global flags
	verbose      bool
	settingsFile string
	showStats    bool

	// Flags shared by the compute commands
	inputFiles    []string
	outputFile    string
	standard      string
	christie      bool
	christieTable string
	method        string
	compositions  []string
	threshold     float64
	filterRows    bool
	index         int
	ddof          int
	weighted      bool
	signed        bool
	temperature   float64
	polymorph     string
	adduct        string
	correlation   string
	position      string
)

var rootCmd = &cobra.Command{
	Use:   "tagkey",
	Short: "TAGKey - Triacylglycerol positional-species composition tool",
	Long: `TAGKey computes the positional-species composition of triacylglycerols
from sn-1,2,3 and partial-pool fatty acid measurements.

It supports:
- Replicate aggregation with mean and standard deviation
- Gunstone, Vander Wal and Martinez-Force species models
- Species, type, mass, ECN and unsaturation compositions
- Nutritional indices, biodiesel properties and physical property predictions`,
	Version:       pipeline.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log pipeline stages to stderr")
	rootCmd.PersistentFlags().StringVarP(&settingsFile, "settings", "s", "", "Settings YAML file")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "Print cache statistics after the run")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(propertiesCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)

	for _, c := range []*cobra.Command{calculateCmd, composeCmd, propertiesCmd} {
		addComputeFlags(c)
	}
	calculateCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output database file (required)")
	calculateCmd.MarkFlagRequired("out")
	summarizeCmd.Flags().StringVar(&christieTable, "christie-table", "", "TSV file extending the Christie table")
}

func addComputeFlags(c *cobra.Command) {
	c.Flags().StringArrayVarP(&inputFiles, "in", "i", nil, "Replicate TSV file, repeat for each replicate (required)")
	c.Flags().StringVar(&standard, "standard", "", "Label of the internal standard")
	c.Flags().BoolVar(&christie, "christie", false, "Apply Christie response factors")
	c.Flags().StringVar(&christieTable, "christie-table", "", "TSV file extending the Christie table")
	c.Flags().StringVar(&method, "method", "", "Species model: Gunstone, VanderWal or MartinezForce")
	c.Flags().StringSliceVar(&compositions, "composition", nil, "Composition scheme code (e.g. SPC), repeatable")
	c.Flags().Float64Var(&threshold, "threshold", 0, "Auto threshold lower bound as a fraction")
	c.Flags().BoolVar(&filterRows, "filter", false, "Drop rows below the threshold")
	c.Flags().IntVar(&index, "index", -1, "Use a single replicate instead of aggregating (-1 = aggregate)")
	c.Flags().IntVar(&ddof, "ddof", 1, "Delta degrees of freedom for standard deviations")
	c.Flags().BoolVar(&weighted, "weighted", false, "Weight by relative atomic mass")
	c.Flags().BoolVar(&signed, "signed", false, "Keep negative derived sn-1,3 values")
	c.Flags().Float64Var(&temperature, "temperature", 0, "Property temperature in kelvin")
	c.Flags().StringVar(&polymorph, "polymorph", "", "Melting polymorph: alpha, beta-prime or beta")
	c.Flags().StringVar(&adduct, "adduct", "", "Ion adduct for mass keys: H, NH4, Na, Li or K")
	c.Flags().StringVar(&correlation, "correlation", "", "Fatty acid correlation: Pearson or SpearmanRank")
	c.Flags().StringVar(&position, "position", "", "Column for correlations and distances: sn123, sn13 or sn2")
	c.MarkFlagRequired("in")
}

// setupLogger installs the default slog logger. Debug output is enabled by --verbose.
func setupLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadSettings reads the settings file, if any, and applies changed flags.
func loadSettings(cmd *cobra.Command) (*config.Settings, error) {
	settings := config.Default()
	if settingsFile != "" {
		loaded, err := config.Load(settingsFile)
		if err != nil {
			return nil, err
		}
		settings = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("standard") {
		settings.Standard.Label = standard
	}
	if flags.Changed("christie") {
		settings.Christie = christie
	}
	if flags.Changed("method") {
		settings.Method = config.Method(method)
	}
	if flags.Changed("composition") {
		settings.Compositions = nil
		for _, code := range compositions {
			scheme, err := core.ParseScheme(code)
			if err != nil {
				return nil, err
			}
			settings.Compositions = append(settings.Compositions, scheme)
		}
	}
	if flags.Changed("threshold") {
		settings.Threshold.Auto[0] = threshold
		settings.Threshold.IsAuto = true
	}
	if flags.Changed("filter") {
		settings.Threshold.Filter = filterRows
	}
	if flags.Changed("index") {
		if index < 0 {
			settings.Index = nil
		} else {
			i := index
			settings.Index = &i
		}
	}
	if flags.Changed("ddof") {
		settings.DDOF = ddof
	}
	if flags.Changed("weighted") {
		settings.Weighted = weighted
	}
	if flags.Changed("signed") {
		settings.Unsigned = !signed
	}
	if flags.Changed("temperature") {
		settings.Properties.Temperature = temperature
	}
	if flags.Changed("polymorph") {
		settings.Properties.Polymorph = config.Polymorph(polymorph)
	}
	if flags.Changed("adduct") {
		shift, ok := core.Adducts[adduct]
		if !ok {
			return nil, &core.ValidationError{Field: "Adduct", Message: fmt.Sprintf("unknown adduct %q", adduct)}
		}
		settings.Adduct = shift
	}
	if flags.Changed("correlation") {
		settings.Correlation = config.Correlation(correlation)
	}
	if flags.Changed("position") {
		settings.Position = position
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// loadChristie returns the default table extended by --christie-table.
func loadChristie() (*core.FactorTable, error) {
	table := core.DefaultChristieTable()
	if christieTable == "" {
		return table, nil
	}
	f, err := os.Open(christieTable)
	if err != nil {
		return nil, fmt.Errorf("failed to open Christie table: %w", err)
	}
	defer f.Close()
	if err := table.LoadFromTSV(f); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", christieTable, err)
	}
	return table, nil
}

// readInputs reads every replicate file.
func readInputs() ([]*frame.RawFrame, error) {
	frames := make([]*frame.RawFrame, 0, len(inputFiles))
	for _, path := range inputFiles {
		f, err := tsv.ReadFile(path)
		if err != nil {
			return nil, err
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// newEngine builds a pipeline engine with a private metrics registry.
func newEngine() (*pipeline.Engine, *prometheus.Registry, error) {
	table, err := loadChristie()
	if err != nil {
		return nil, nil, err
	}
	reg := prometheus.NewRegistry()
	metrics, err := cache.NewMetrics(reg)
	if err != nil {
		return nil, nil, err
	}
	engine, err := pipeline.New(pipeline.Options{
		Logger:   slog.Default(),
		Metrics:  metrics,
		Christie: table,
	})
	if err != nil {
		return nil, nil, err
	}
	return engine, reg, nil
}

// printStats prints every counter of reg when --stats is set.
func printStats(reg *prometheus.Registry) {
	if !showStats {
		return
	}
	families, err := reg.Gather()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to gather statistics: %v\n", err)
		return
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			lines = append(lines, fmt.Sprintf("  %s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	fmt.Println("Cache statistics:")
	for _, line := range lines {
		fmt.Println(line)
	}
}
