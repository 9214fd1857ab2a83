// Package pipeline runs calculation, composition, properties, indices,
// correlations and distances with every stage memoized on the content of
// its inputs.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ChrisMcGann/TAGKey/pkg/cache"
	"github.com/ChrisMcGann/TAGKey/pkg/calculation"
	"github.com/ChrisMcGann/TAGKey/pkg/composition"
	"github.com/ChrisMcGann/TAGKey/pkg/config"
	"github.com/ChrisMcGann/TAGKey/pkg/core"
	"github.com/ChrisMcGann/TAGKey/pkg/distance"
	"github.com/ChrisMcGann/TAGKey/pkg/frame"
	"github.com/ChrisMcGann/TAGKey/pkg/indices"
	"github.com/ChrisMcGann/TAGKey/pkg/properties"
)

// Version is mixed into every cache key so results of other releases are
// never reused.
const Version = "1.0.0"

// Stage names, also used as metric labels.
const (
	StageCalculation  = "calculation"
	StageComposition  = "composition"
	StageProperties   = "properties"
	StageIndices      = "indices"
	StageCorrelations = "correlations"
	StageDistances    = "distances"
)

// Options configures an Engine.
type Options struct {
	Logger    *slog.Logger
	Metrics   *cache.Metrics    // nil disables cache metrics
	Christie  *core.FactorTable // nil means the default table
	CacheSize int               // entries per stage, 0 means cache.DefaultSize
}

// Engine memoizes each pipeline stage.
type Engine struct {
	logger      *slog.Logger
	calculation *calculation.Engine
	composition *composition.Engine

	calcs *cache.Cache[*frame.CalcFrame]
	comps *cache.Cache[*frame.CompFrame]
	props *cache.Cache[*properties.Frame]
	idx   *cache.Cache[*indices.Frame]
	corrs *cache.Cache[*calculation.Correlations]
	dists *cache.Cache[*distance.Frame]

	christie uint64
}

// New creates an engine with empty caches.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	calc := calculation.New(logger)
	if opts.Christie != nil {
		calc.Christie = opts.Christie
	}
	h := frame.NewHasher()
	h.FactorTable(calc.Christie)

	e := &Engine{
		logger:      logger,
		calculation: calc,
		composition: composition.New(logger),
		christie:    h.Sum64(),
	}

	var err error
	if e.calcs, err = cache.New[*frame.CalcFrame](StageCalculation, opts.CacheSize, opts.Metrics); err != nil {
		return nil, err
	}
	if e.comps, err = cache.New[*frame.CompFrame](StageComposition, opts.CacheSize, opts.Metrics); err != nil {
		return nil, err
	}
	if e.props, err = cache.New[*properties.Frame](StageProperties, opts.CacheSize, opts.Metrics); err != nil {
		return nil, err
	}
	if e.idx, err = cache.New[*indices.Frame](StageIndices, opts.CacheSize, opts.Metrics); err != nil {
		return nil, err
	}
	if e.corrs, err = cache.New[*calculation.Correlations](StageCorrelations, opts.CacheSize, opts.Metrics); err != nil {
		return nil, err
	}
	if e.dists, err = cache.New[*distance.Frame](StageDistances, opts.CacheSize, opts.Metrics); err != nil {
		return nil, err
	}
	return e, nil
}

// key hashes the source version, the stage and its inputs.
func key(stage string, inputs ...uint64) uint64 {
	h := frame.NewHasher()
	h.String(Version)
	h.String(stage)
	for _, v := range inputs {
		h.Uint(v)
	}
	return h.Sum64()
}

// Calculate returns the calculation frame of the replicate frames.
func (e *Engine) Calculate(ctx context.Context, frames []*frame.RawFrame, settings *config.Settings) (*frame.CalcFrame, error) {
	inputs := make([]uint64, 0, len(frames)+2)
	for _, f := range frames {
		inputs = append(inputs, f.Hash())
	}
	inputs = append(inputs, e.christie, settings.CalculationSum64())

	return e.calcs.GetOrCompute(ctx, key(StageCalculation, inputs...), func() (*frame.CalcFrame, error) {
		calc, err := e.calculation.Compute(frames, settings)
		if err != nil {
			return nil, &core.ComputeError{Stage: StageCalculation, Cause: err}
		}
		return calc, nil
	})
}

// Compose returns the composition frame of calc.
func (e *Engine) Compose(ctx context.Context, calc *frame.CalcFrame, settings *config.Settings) (*frame.CompFrame, error) {
	k := key(StageComposition, calc.Hash(), settings.CompositionSum64())
	return e.comps.GetOrCompute(ctx, k, func() (*frame.CompFrame, error) {
		comp, err := e.composition.Compose(calc, settings)
		if err != nil {
			return nil, &core.ComputeError{Stage: StageComposition, Cause: err}
		}
		return comp, nil
	})
}

// Properties returns property predictions for the fatty acids of calc and
// the species of comp.
func (e *Engine) Properties(ctx context.Context, calc *frame.CalcFrame, comp *frame.CompFrame, settings *config.Settings) (*properties.Frame, error) {
	k := key(StageProperties, calc.Hash(), comp.Hash(), settings.PropertiesSum64())
	return e.props.GetOrCompute(ctx, k, func() (*properties.Frame, error) {
		props, err := properties.Compute(calc, comp.Triacylglycerols(), settings)
		if err != nil {
			return nil, &core.ComputeError{Stage: StageProperties, Cause: err}
		}
		return props, nil
	})
}

// Indices returns the indices of calc.
func (e *Engine) Indices(ctx context.Context, calc *frame.CalcFrame, settings *config.Settings) (*indices.Frame, error) {
	k := key(StageIndices, calc.Hash(), uint64(settings.DDOF))
	return e.idx.GetOrCompute(ctx, k, func() (*indices.Frame, error) {
		return indices.Compute(calc, settings.DDOF), nil
	})
}

// Correlations returns the fatty acid correlation matrix of calc.
func (e *Engine) Correlations(ctx context.Context, calc *frame.CalcFrame, settings *config.Settings) (*calculation.Correlations, error) {
	k := key(StageCorrelations, calc.Hash(), settings.CorrelationsSum64())
	return e.corrs.GetOrCompute(ctx, k, func() (*calculation.Correlations, error) {
		corrs, err := calculation.Correlate(calc, settings)
		if err != nil {
			return nil, &core.ComputeError{Stage: StageCorrelations, Cause: err}
		}
		return corrs, nil
	})
}

// Distances returns the distances between the replicate columns of calc.
func (e *Engine) Distances(ctx context.Context, calc *frame.CalcFrame, settings *config.Settings) (*distance.Frame, error) {
	position, err := frame.ParsePosition(settings.Position)
	if err != nil {
		return nil, &core.ComputeError{
			Stage: StageDistances,
			Cause: &core.ValidationError{Field: "Settings.Position", Message: err.Error()},
		}
	}
	k := key(StageDistances, calc.Hash(), uint64(position))
	return e.dists.GetOrCompute(ctx, k, func() (*distance.Frame, error) {
		return distance.Compute(calc, position), nil
	})
}

// Analysis is the output of a full pipeline run.
type Analysis struct {
	Calculation  *frame.CalcFrame
	Composition  *frame.CompFrame
	Properties   *properties.Frame
	Indices      *indices.Frame
	Correlations *calculation.Correlations
	Distances    *distance.Frame
}

// Analyze runs every stage. Properties, indices, correlations and distances
// run concurrently once the composition is available.
func (e *Engine) Analyze(ctx context.Context, frames []*frame.RawFrame, settings *config.Settings) (*Analysis, error) {
	calc, err := e.Calculate(ctx, frames, settings)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("calculation ready", "rows", len(calc.Rows), "replicates", calc.Replicates)

	comp, err := e.Compose(ctx, calc, settings)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("composition ready", "rows", len(comp.Rows))

	out := &Analysis{Calculation: calc, Composition: comp}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		props, err := e.Properties(gctx, calc, comp, settings)
		if err != nil {
			return err
		}
		out.Properties = props
		return nil
	})
	g.Go(func() error {
		idx, err := e.Indices(gctx, calc, settings)
		if err != nil {
			return err
		}
		out.Indices = idx
		return nil
	})
	g.Go(func() error {
		corrs, err := e.Correlations(gctx, calc, settings)
		if err != nil {
			return err
		}
		out.Correlations = corrs
		return nil
	})
	g.Go(func() error {
		dists, err := e.Distances(gctx, calc, settings)
		if err != nil {
			return err
		}
		out.Distances = dists
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return out, nil
}

// Purge drops every cached result.
func (e *Engine) Purge() {
	e.calcs.Purge()
	e.comps.Purge()
	e.props.Purge()
	e.idx.Purge()
	e.corrs.Purge()
	e.dists.Purge()
}
